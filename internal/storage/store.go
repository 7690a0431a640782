package storage

import (
	"context"
	"errors"
	"log"

	"github.com/ravila/patrimonio/internal/models"
)

var errMissingDate = errors.New("snapshot must have a date")

// SnapshotStore persists daily portfolio snapshots keyed by date
// (YYYY-MM-DD). Snapshots are the baselines the performance
// reconciliation reads, so reads must stay cheap.
type SnapshotStore interface {
	Ping(ctx context.Context) error
	ListDates(ctx context.Context) ([]string, error)
	Get(ctx context.Context, date string) (*models.PortfolioSnapshot, error)
	Put(ctx context.Context, snapshot *models.PortfolioSnapshot) error
	Delete(ctx context.Context, date string) error
	Latest(ctx context.Context) (*models.PortfolioSnapshot, error)
}

// NewSnapshotStore returns the Redis-backed store when the server is
// reachable, otherwise an in-memory store. The dashboard keeps working
// without Redis; only history durability is lost.
func NewSnapshotStore(ctx context.Context, redisAddr string) SnapshotStore {
	if redisAddr != "" {
		store := NewRedisSnapshotStore(redisAddr)
		if err := store.Ping(ctx); err == nil {
			return store
		}
		log.Printf("WARN: redis unreachable at %s, using in-memory snapshots", redisAddr)
	}
	return NewMemorySnapshotStore()
}
