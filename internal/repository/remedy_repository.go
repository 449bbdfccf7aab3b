package repository

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"herba-guide/internal/models"
	"herba-guide/pkg/apperrors"
)

// RemedyRepository reads the curated remedy catalog. A connection is held
// only for the duration of one query; the pool is acquired and released
// inside Query.
type RemedyRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewRemedyRepository(db *pgxpool.Pool, logger *zap.Logger) *RemedyRepository {
	return &RemedyRepository{
		db:     db,
		logger: logger,
	}
}

// FindBySpecies returns every (species, disease, recipe) tuple for the plant.
// An empty slice means the species has no catalog entry. Row order carries no
// guarantee; the aggregator imposes its own.
func (r *RemedyRepository) FindBySpecies(ctx context.Context, name string) ([]models.RemedyRow, error) {
	query := squirrel.Select("p.name", "p.description", "d.name", "r.recipe").
		From("plants p").
		Join("diseases d ON d.plant_id = p.id").
		Join("recipes r ON r.disease_id = d.id").
		Where(squirrel.Eq{"p.name": name}).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, apperrors.NewUnknown("failed to build remedy query", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, apperrors.NewPoolExhausted("no catalog connection available", err)
		}
		return nil, apperrors.NewStorage("remedy lookup failed", err)
	}
	defer rows.Close()

	var remedies []models.RemedyRow
	for rows.Next() {
		var row models.RemedyRow
		if err := rows.Scan(&row.SpeciesName, &row.Description, &row.DiseaseName, &row.Recipe); err != nil {
			return nil, apperrors.NewStorage("failed to scan remedy row", err)
		}
		remedies = append(remedies, row)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorage("remedy lookup failed", err)
	}

	return remedies, nil
}
