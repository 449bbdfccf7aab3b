package history_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"herba-guide/internal/history"
	"herba-guide/internal/models"
)

func record(name string, createdAt time.Time) models.PredictionRecord {
	return models.PredictionRecord{
		Remedy: models.RemedyDocument{
			Name:        name,
			Description: "desc",
			Treats: []models.DiseaseEntry{
				{Disease: "Batuk", Recipes: []string{"Recipe A"}},
			},
		},
		Confidence: 0.9,
		PhotoURL:   "https://example.com/photo.jpg",
		CreatedAt:  createdAt,
	}
}

func TestMemoryStoreAllIsEmptyForUnknownUser(t *testing.T) {
	store := history.NewMemoryStore()

	records, err := store.All(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestMemoryStoreAllReturnsDescendingOrder(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		err := store.Append(ctx, "user-1", record(fmt.Sprintf("Plant %d", i), base.Add(time.Duration(i)*time.Second)))
		require.NoError(t, err)
	}

	records, err := store.All(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 5)
	for i, rec := range records {
		assert.Equal(t, fmt.Sprintf("Plant %d", 4-i), rec.Remedy.Name)
	}
}

func TestMemoryStoreSearchIsCaseInsensitiveAndOrdered(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	names := []string{"Sirih", "Jahe", "Daun Sirih Merah", "Kunyit", "SIRIH"}
	for i, name := range names {
		require.NoError(t, store.Append(ctx, "user-1", record(name, base.Add(time.Duration(i)*time.Second))))
	}

	records, err := store.Search(ctx, "user-1", "sirih")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "SIRIH", records[0].Remedy.Name)
	assert.Equal(t, "Daun Sirih Merah", records[1].Remedy.Name)
	assert.Equal(t, "Sirih", records[2].Remedy.Name)

	none, err := store.Search(ctx, "user-1", "temulawak")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestMemoryStoreSearchMatchesSubsetOfAll(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()
	base := time.Now()

	names := []string{"Jahe", "Jahe Merah", "Kunyit", "Jahe"}
	for i, name := range names {
		require.NoError(t, store.Append(ctx, "u", record(name, base.Add(time.Duration(i)*time.Second))))
	}

	all, err := store.All(ctx, "u")
	require.NoError(t, err)
	matched, err := store.Search(ctx, "u", "jahe")
	require.NoError(t, err)

	// Search must equal All filtered by name, in the same relative order.
	var want []models.PredictionRecord
	for _, rec := range all {
		if rec.Remedy.Name != "Kunyit" {
			want = append(want, rec)
		}
	}
	assert.Equal(t, want, matched)
}

func TestMemoryStoreConcurrentAppendsAreNotLost(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	const workers = 16
	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			_ = store.Append(ctx, "user-1", record(fmt.Sprintf("Plant %d", i), time.Now()))
		}(i)
	}
	wg.Wait()

	records, err := store.All(ctx, "user-1")
	require.NoError(t, err)
	assert.Len(t, records, workers)
}

func TestMemoryStoreIsolatesUsers(t *testing.T) {
	store := history.NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, "user-1", record("Sirih", time.Now())))
	require.NoError(t, store.Append(ctx, "user-2", record("Jahe", time.Now())))

	records, err := store.All(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Sirih", records[0].Remedy.Name)
}
