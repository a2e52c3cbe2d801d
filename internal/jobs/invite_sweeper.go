// invite_sweeper.go implements the InviteSweeper background job, which
// periodically deletes unused organization invites whose expiry has passed.
// Expired tokens are already rejected at consume time, so the sweeper is
// housekeeping: it keeps the invites table from accumulating dead rows and
// keeps the buyer's invite list free of links that can never be used.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/freshgreens/ordering-backend/internal/db/repositories"
	"github.com/freshgreens/ordering-backend/internal/telemetry"
)

// InviteSweeper periodically removes expired, unused invites.
type InviteSweeper struct {
	invites  *repositories.InviteRepository
	interval time.Duration
	stopChan chan struct{}
}

// NewInviteSweeper creates a new InviteSweeper.
// intervalHours controls how often the sweep runs (default 24h).
func NewInviteSweeper(invites *repositories.InviteRepository, intervalHours int) *InviteSweeper {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &InviteSweeper{
		invites:  invites,
		interval: time.Duration(intervalHours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start begins the background sweep loop. It runs an initial sweep
// immediately, then repeats on the configured interval. The loop exits when
// ctx is cancelled or Stop() is called.
//
// Launch via safego.Go so a panic in the loop cannot kill the process:
//
//	safego.Go(func() { sweeper.Start(ctx) })
func (s *InviteSweeper) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("invite sweeper started", "interval", s.interval)

	// Run once immediately on startup
	s.runSweep(ctx)

	for {
		select {
		case <-ticker.C:
			s.runSweep(ctx)
		case <-s.stopChan:
			slog.Info("invite sweeper stopped")
			return
		case <-ctx.Done():
			slog.Info("invite sweeper context cancelled")
			return
		}
	}
}

// Stop signals the background loop to exit.
func (s *InviteSweeper) Stop() {
	close(s.stopChan)
}

// runSweep deletes expired invites and records how many were removed.
func (s *InviteSweeper) runSweep(ctx context.Context) {
	swept, err := s.invites.DeleteExpired(ctx)
	if err != nil {
		slog.Error("invite sweeper: failed to delete expired invites", "error", err)
		return
	}
	if swept == 0 {
		return
	}

	telemetry.InvitesExpiredTotal.Add(float64(swept))
	slog.Info("invite sweeper: removed expired invites", "count", swept)
}
