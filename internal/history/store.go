package history

import (
	"context"
	"sort"
	"strings"

	"herba-guide/internal/models"
)

// Store is the per-user, append-only prediction history. Append is not
// idempotent: every call adds one more entry, so the pipeline must append at
// most once per successful run. Implementations must not lose concurrent
// appends for the same user.
type Store interface {
	Append(ctx context.Context, userID string, record models.PredictionRecord) error
	// All returns the user's records most recent first; an empty slice if
	// the user has no history.
	All(ctx context.Context, userID string) ([]models.PredictionRecord, error)
	// Search filters All by case-insensitive substring match on the remedy
	// name, preserving the descending order.
	Search(ctx context.Context, userID, plantName string) ([]models.PredictionRecord, error)
}

// sortDescending orders records most recent first. Records are stored in
// append order, so a stable sort keeps submission order for equal timestamps.
func sortDescending(records []models.PredictionRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}

func matchName(record models.PredictionRecord, plantName string) bool {
	return strings.Contains(
		strings.ToLower(record.Remedy.Name),
		strings.ToLower(plantName),
	)
}
