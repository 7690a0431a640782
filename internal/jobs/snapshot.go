// Package jobs runs the scheduled background work
package jobs

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ravila/patrimonio/internal/models"
	"github.com/ravila/patrimonio/internal/services/marketdata"
	"github.com/ravila/patrimonio/internal/storage"
)

// Snapshotter captures a daily valuation snapshot so the performance
// baselines keep accruing without anyone opening the dashboard.
type Snapshotter struct {
	positions *storage.PositionRepository
	profiles  *storage.ProfileRepository
	snapshots storage.SnapshotStore
	market    *marketdata.Service
	cron      *cron.Cron
}

// NewSnapshotter creates the snapshot job runner
func NewSnapshotter(
	positions *storage.PositionRepository,
	profiles *storage.ProfileRepository,
	snapshots storage.SnapshotStore,
	market *marketdata.Service,
) *Snapshotter {
	return &Snapshotter{
		positions: positions,
		profiles:  profiles,
		snapshots: snapshots,
		market:    market,
		cron:      cron.New(),
	}
}

// Start schedules the capture according to the cron spec
func (s *Snapshotter) Start(spec string) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := s.Capture(ctx); err != nil {
			log.Printf("ERROR: snapshot capture failed: %v", err)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Snapshot job scheduled: %s", spec)
	return nil
}

// Stop halts the scheduler, waiting for a running capture
func (s *Snapshotter) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// Capture values the portfolio and stores today's snapshot. Empty
// valuations are skipped so a bad market day cannot zero a baseline.
func (s *Snapshotter) Capture(ctx context.Context) error {
	positions, err := s.positions.List()
	if err != nil {
		return err
	}

	profile, err := s.profiles.Get()
	if err != nil {
		return err
	}

	portfolio := &models.Portfolio{
		ID:        "family",
		Name:      "Family Portfolio",
		Profile:   *profile,
		Positions: positions,
	}

	if err := s.market.RefreshPortfolio(ctx, portfolio); err != nil {
		log.Printf("WARN: snapshot using stored values, refresh failed: %v", err)
	} else {
		s.persistValues(portfolio)
	}

	snapshot := models.NewSnapshot(portfolio, time.Now().UTC())
	if !snapshot.Valid() {
		log.Printf("WARN: skipping empty snapshot for %s", snapshot.Date)
		return nil
	}

	if err := s.snapshots.Put(ctx, snapshot); err != nil {
		return err
	}

	log.Printf("Captured snapshot %s: total value %s", snapshot.Date, snapshot.TotalValue.StringFixed(2))
	return nil
}

// persistValues writes the refreshed market values back to storage so
// the stored positions stay current when later refreshes fail.
func (s *Snapshotter) persistValues(p *models.Portfolio) {
	for i := range p.Positions {
		pos := &p.Positions[i]
		if pos.Ticker == "" {
			continue
		}
		if err := s.positions.UpdateValue(pos.ID, pos.CurrentValue); err != nil {
			log.Printf("WARN: failed to persist value for %s: %v", pos.Name, err)
		}
	}
}
