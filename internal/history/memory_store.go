package history

import (
	"context"
	"sync"

	"herba-guide/internal/models"
)

// MemoryStore is an in-process Store for tests and redis-less deployments.
// The mutex serializes appends, so concurrent predictions for the same user
// all land; reads copy the slice before sorting.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string][]models.PredictionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string][]models.PredictionRecord),
	}
}

func (s *MemoryStore) Append(_ context.Context, userID string, record models.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = append(s.entries[userID], record)
	return nil
}

func (s *MemoryStore) All(_ context.Context, userID string) ([]models.PredictionRecord, error) {
	s.mu.RLock()
	stored := s.entries[userID]
	records := make([]models.PredictionRecord, len(stored))
	copy(records, stored)
	s.mu.RUnlock()

	sortDescending(records)
	return records, nil
}

func (s *MemoryStore) Search(ctx context.Context, userID, plantName string) ([]models.PredictionRecord, error) {
	records, err := s.All(ctx, userID)
	if err != nil {
		return nil, err
	}

	matched := make([]models.PredictionRecord, 0, len(records))
	for _, record := range records {
		if matchName(record, plantName) {
			matched = append(matched, record)
		}
	}

	return matched, nil
}
