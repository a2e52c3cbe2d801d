package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/freshgreens/ordering-backend/internal/db/repositories"
)

func newSweeper(t *testing.T, intervalHours int) (*InviteSweeper, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	repo := repositories.NewInviteRepository(sqlx.NewDb(db, "postgres"))
	return NewInviteSweeper(repo, intervalHours), mock
}

func TestNewInviteSweeper_DefaultInterval(t *testing.T) {
	s, _ := newSweeper(t, 0)
	if s.interval != 24*time.Hour {
		t.Errorf("interval = %v, want 24h default", s.interval)
	}

	s, _ = newSweeper(t, 6)
	if s.interval != 6*time.Hour {
		t.Errorf("interval = %v, want 6h", s.interval)
	}
}

func TestRunSweep_DeletesExpired(t *testing.T) {
	s, mock := newSweeper(t, 24)
	mock.ExpectExec("DELETE FROM invites").
		WillReturnResult(sqlmock.NewResult(0, 3))

	s.runSweep(context.Background())

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRunSweep_DBErrorDoesNotPanic(t *testing.T) {
	s, mock := newSweeper(t, 24)
	mock.ExpectExec("DELETE FROM invites").
		WillReturnError(errors.New("db failure"))

	// Must log and return, not panic.
	s.runSweep(context.Background())
}

func TestStart_RunsImmediatelyAndStops(t *testing.T) {
	s, mock := newSweeper(t, 24)
	mock.ExpectExec("DELETE FROM invites").
		WillReturnResult(sqlmock.NewResult(0, 0))

	done := make(chan struct{})
	go func() {
		s.Start(context.Background())
		close(done)
	}()

	// The initial sweep runs before the first tick; give it a moment.
	time.Sleep(50 * time.Millisecond)
	s.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() did not exit after Stop()")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestStart_ExitsOnContextCancel(t *testing.T) {
	s, mock := newSweeper(t, 24)
	mock.ExpectExec("DELETE FROM invites").
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Start() did not exit after context cancel")
	}
}
