package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"herba-guide/pkg/config"
	"herba-guide/pkg/logger"
	"herba-guide/pkg/postgres"
)

// catalogPlant mirrors one entry of cmd/seed/catalog.json.
type catalogPlant struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Diseases    []struct {
		Name    string   `json:"name"`
		Recipes []string `json:"recipes"`
	} `json:"diseases"`
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT NOT NULL UNIQUE,
		password TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS plants (
		id BIGSERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS diseases (
		id BIGSERIAL PRIMARY KEY,
		plant_id BIGINT NOT NULL REFERENCES plants(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		UNIQUE (plant_id, name)
	)`,
	`CREATE TABLE IF NOT EXISTS recipes (
		id BIGSERIAL PRIMARY KEY,
		disease_id BIGINT NOT NULL REFERENCES diseases(id) ON DELETE CASCADE,
		recipe TEXT NOT NULL
	)`,
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Logger.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	appLogger := logger.Get()

	ctx := context.Background()
	db, err := postgres.NewPool(ctx, &cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	appLogger.Info("Starting catalog seeding...")

	for _, stmt := range schema {
		if _, err := db.Exec(ctx, stmt); err != nil {
			appLogger.Fatal("Failed to create schema", zap.Error(err))
		}
	}

	plants, err := loadCatalog(filepath.Join("cmd", "seed", "catalog.json"))
	if err != nil {
		appLogger.Fatal("Failed to load catalog file", zap.Error(err))
	}

	for _, plant := range plants {
		if err := seedPlant(ctx, db, plant); err != nil {
			appLogger.Fatal("Failed to seed plant", zap.String("plant", plant.Name), zap.Error(err))
		}
		appLogger.Info("Seeded plant", zap.String("plant", plant.Name))
	}

	appLogger.Info("Catalog seeding completed successfully!")
}

func loadCatalog(path string) ([]catalogPlant, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var plants []catalogPlant
	if err := json.Unmarshal(data, &plants); err != nil {
		return nil, err
	}
	return plants, nil
}

// seedPlant is idempotent: reruns refresh the plant's diseases and recipes
// instead of duplicating them.
func seedPlant(ctx context.Context, db *pgxpool.Pool, plant catalogPlant) error {
	sql, args, err := squirrel.Insert("plants").
		Columns("name", "description").
		Values(plant.Name, plant.Description).
		Suffix("ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description RETURNING id").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	var plantID int64
	if err := db.QueryRow(ctx, sql, args...).Scan(&plantID); err != nil {
		return err
	}

	// Drop the plant's old diseases (recipes cascade) before re-inserting.
	sql, args, err = squirrel.Delete("diseases").
		Where(squirrel.Eq{"plant_id": plantID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, sql, args...); err != nil {
		return err
	}

	for _, disease := range plant.Diseases {
		sql, args, err = squirrel.Insert("diseases").
			Columns("plant_id", "name").
			Values(plantID, disease.Name).
			Suffix("RETURNING id").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var diseaseID int64
		if err := db.QueryRow(ctx, sql, args...).Scan(&diseaseID); err != nil {
			return err
		}

		for _, recipe := range disease.Recipes {
			sql, args, err = squirrel.Insert("recipes").
				Columns("disease_id", "recipe").
				Values(diseaseID, recipe).
				PlaceholderFormat(squirrel.Dollar).
				ToSql()
			if err != nil {
				return err
			}
			if _, err := db.Exec(ctx, sql, args...); err != nil {
				return err
			}
		}
	}

	return nil
}
