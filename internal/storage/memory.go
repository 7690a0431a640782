package storage

import (
	"context"
	"sort"
	"sync"

	"github.com/ravila/patrimonio/internal/models"
)

// MemorySnapshotStore holds snapshots in process memory. It is the
// fallback when Redis is unavailable and the fixture store for tests.
type MemorySnapshotStore struct {
	mu        sync.RWMutex
	snapshots map[string]*models.PortfolioSnapshot
}

// NewMemorySnapshotStore creates an empty in-memory snapshot store
func NewMemorySnapshotStore() *MemorySnapshotStore {
	return &MemorySnapshotStore{
		snapshots: make(map[string]*models.PortfolioSnapshot),
	}
}

// Ping always succeeds
func (s *MemorySnapshotStore) Ping(ctx context.Context) error {
	return nil
}

// ListDates returns all snapshot dates in ascending order
func (s *MemorySnapshotStore) ListDates(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dates := make([]string, 0, len(s.snapshots))
	for date := range s.snapshots {
		dates = append(dates, date)
	}
	sort.Strings(dates)
	return dates, nil
}

// Get retrieves the snapshot for a date, nil when absent
func (s *MemorySnapshotStore) Get(ctx context.Context, date string) (*models.PortfolioSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, ok := s.snapshots[date]
	if !ok {
		return nil, nil
	}
	copied := *snapshot
	return &copied, nil
}

// Put stores a snapshot under its date, overwriting any existing one
func (s *MemorySnapshotStore) Put(ctx context.Context, snapshot *models.PortfolioSnapshot) error {
	if snapshot == nil || snapshot.Date == "" {
		return errMissingDate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *snapshot
	s.snapshots[snapshot.Date] = &copied
	return nil
}

// Delete removes the snapshot for a date
func (s *MemorySnapshotStore) Delete(ctx context.Context, date string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.snapshots, date)
	return nil
}

// Latest returns the most recent snapshot, nil when none exist
func (s *MemorySnapshotStore) Latest(ctx context.Context) (*models.PortfolioSnapshot, error) {
	dates, err := s.ListDates(ctx)
	if err != nil || len(dates) == 0 {
		return nil, err
	}
	return s.Get(ctx, dates[len(dates)-1])
}
