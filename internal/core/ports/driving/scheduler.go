package driving

import (
	"context"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// Scheduler fires the subscriber push once a day at the configured hour
// and keeps a history of each run.
type Scheduler interface {
	// Start blocks, firing the push at each due hour, until ctx is done.
	Start(ctx context.Context) error

	// Stop ends a running Start and waits for an in-flight push.
	Stop() error

	// RunNow runs the daily push immediately for the previous day.
	RunNow(ctx context.Context) (*domain.TaskResult, error)

	// History returns the most recent runs, newest first.
	History(ctx context.Context, limit int) ([]domain.TaskResult, error)

	// NextRun is the next firing time in the scheduler's time zone.
	NextRun() time.Time
}
