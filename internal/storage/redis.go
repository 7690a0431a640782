package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/go-redis/redis/v8"

	"github.com/ravila/patrimonio/internal/models"
)

const (
	snapshotKeyPrefix = "snapshot:"
	snapshotDatesKey  = "snapshot:dates"
)

// RedisSnapshotStore keeps snapshots as JSON values under
// snapshot:<date> with a set of known dates for enumeration.
type RedisSnapshotStore struct {
	client *redis.Client
}

// NewRedisSnapshotStore creates a Redis-backed snapshot store
func NewRedisSnapshotStore(addr string) *RedisSnapshotStore {
	return &RedisSnapshotStore{
		client: redis.NewClient(&redis.Options{Addr: addr}),
	}
}

// Ping verifies the connection
func (s *RedisSnapshotStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// ListDates returns all snapshot dates in ascending order
func (s *RedisSnapshotStore) ListDates(ctx context.Context) ([]string, error) {
	dates, err := s.client.SMembers(ctx, snapshotDatesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot dates: %w", err)
	}
	sort.Strings(dates)
	return dates, nil
}

// Get retrieves the snapshot for a date, nil when absent
func (s *RedisSnapshotStore) Get(ctx context.Context, date string) (*models.PortfolioSnapshot, error) {
	data, err := s.client.Get(ctx, snapshotKeyPrefix+date).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", date, err)
	}

	var snapshot models.PortfolioSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot %s: %w", date, err)
	}
	return &snapshot, nil
}

// Put stores a snapshot under its date, overwriting any existing one
func (s *RedisSnapshotStore) Put(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	if snapshot == nil || snapshot.Date == "" {
		return errMissingDate
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, snapshotKeyPrefix+snapshot.Date, data, 0)
	pipe.SAdd(ctx, snapshotDatesKey, snapshot.Date)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store snapshot %s: %w", snapshot.Date, err)
	}
	return nil
}

// Delete removes the snapshot for a date
func (s *RedisSnapshotStore) Delete(ctx context.Context, date string) error {
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, snapshotKeyPrefix+date)
	pipe.SRem(ctx, snapshotDatesKey, date)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete snapshot %s: %w", date, err)
	}
	return nil
}

// Latest returns the most recent snapshot, nil when none exist
func (s *RedisSnapshotStore) Latest(ctx context.Context) (*models.PortfolioSnapshot, error) {
	dates, err := s.ListDates(ctx)
	if err != nil {
		return nil, err
	}
	if len(dates) == 0 {
		return nil, nil
	}
	return s.Get(ctx, dates[len(dates)-1])
}

// Close releases the underlying client
func (s *RedisSnapshotStore) Close() error {
	return s.client.Close()
}
