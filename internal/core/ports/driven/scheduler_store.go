package driven

import (
	"context"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// SchedulerStore persists the daily push task and its run history so the
// schedule survives restarts and runs can be audited.
type SchedulerStore interface {
	// Task returns the stored task, or nil and no error when it was never saved.
	Task(ctx context.Context, taskID string) (*domain.ScheduledTask, error)

	// SaveTask creates or replaces the task with the same ID.
	SaveTask(ctx context.Context, task *domain.ScheduledTask) error

	// RecordRun appends a run. Run IDs are unique.
	RecordRun(ctx context.Context, run *domain.TaskResult) error

	// Runs returns up to limit runs of a task, newest first.
	Runs(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error)

	// PruneRuns keeps the newest keep runs of every task.
	PruneRuns(ctx context.Context, keep int) error
}
