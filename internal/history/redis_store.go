package history

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"herba-guide/internal/models"
	"herba-guide/pkg/apperrors"
)

const keyPrefix = "history:"

// RedisStore keeps each user's history in a redis list. RPUSH is an atomic
// list append, so concurrent predictions for the same user can never lose an
// entry the way a read-modify-write of the whole list would.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
}

func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
	}
}

func (s *RedisStore) Append(ctx context.Context, userID string, record models.PredictionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return apperrors.NewStorage("failed to encode prediction record", err)
	}

	if err := s.client.RPush(ctx, keyPrefix+userID, data).Err(); err != nil {
		return apperrors.NewStorage("failed to append prediction record", err)
	}

	return nil
}

func (s *RedisStore) All(ctx context.Context, userID string) ([]models.PredictionRecord, error) {
	raw, err := s.client.LRange(ctx, keyPrefix+userID, 0, -1).Result()
	if err != nil {
		return nil, apperrors.NewStorage("failed to read prediction history", err)
	}

	records := make([]models.PredictionRecord, 0, len(raw))
	for _, item := range raw {
		var record models.PredictionRecord
		if err := json.Unmarshal([]byte(item), &record); err != nil {
			return nil, apperrors.NewStorage(fmt.Sprintf("corrupt history entry for user %s", userID), err)
		}
		records = append(records, record)
	}

	sortDescending(records)
	return records, nil
}

func (s *RedisStore) Search(ctx context.Context, userID, plantName string) ([]models.PredictionRecord, error) {
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
