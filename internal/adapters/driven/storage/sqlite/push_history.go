package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
)

// stampLayout keeps UTC timestamps lexically ordered.
const stampLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, name, run_hour, timezone, enabled, last_run, next_run, last_success, last_error`

const runColumns = `run_id, task_id, window_from, window_to, started_at, ended_at,
	success, error, fetched, eligible, sent, manual`

// pushHistory stores the daily push task and its runs.
type pushHistory struct {
	db *sql.DB
}

var _ driven.SchedulerStore = (*pushHistory)(nil)

func (h *pushHistory) Task(ctx context.Context, taskID string) (*domain.ScheduledTask, error) {
	row := h.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM push_tasks WHERE id = ?`, taskID)

	var (
		task                             domain.ScheduledTask
		enabled                          bool
		lastRun, nextRun, lastOK, errMsg sql.NullString
	)
	err := row.Scan(&task.ID, &task.Name, &task.Hour, &task.Timezone, &enabled,
		&lastRun, &nextRun, &lastOK, &errMsg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading push task %s: %w", taskID, err)
	}

	task.Enabled = enabled
	task.LastRun = parseStamp(lastRun.String)
	task.NextRun = parseStamp(nextRun.String)
	task.LastSuccess = parseStamp(lastOK.String)
	task.LastError = errMsg.String
	return &task, nil
}

func (h *pushHistory) SaveTask(ctx context.Context, task *domain.ScheduledTask) error {
	if task == nil || task.ID == "" {
		return domain.ErrInvalidInput
	}
	tz := task.Timezone
	if tz == "" {
		tz = time.UTC.String()
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO push_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			run_hour = excluded.run_hour,
			timezone = excluded.timezone,
			enabled = excluded.enabled,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_success = excluded.last_success,
			last_error = excluded.last_error
	`, task.ID, task.Name, task.Hour, tz, task.Enabled,
		stamp(task.LastRun), stamp(task.NextRun), stamp(task.LastSuccess), nullable(task.LastError))
	if err != nil {
		return fmt.Errorf("saving push task %s: %w", task.ID, err)
	}
	return nil
}

func (h *pushHistory) RecordRun(ctx context.Context, run *domain.TaskResult) error {
	if run == nil || run.RunID == "" || run.TaskID == "" {
		return domain.ErrInvalidInput
	}

	_, err := h.db.ExecContext(ctx, `
		INSERT INTO push_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.RunID, run.TaskID,
		mustStamp(run.WindowFrom), mustStamp(run.WindowTo),
		mustStamp(run.StartedAt), mustStamp(run.EndedAt),
		run.Success, nullable(run.Error),
		run.Fetched, run.Eligible, run.Sent, run.Manual)
	if err != nil {
		return fmt.Errorf("recording push run %s: %w", run.RunID, err)
	}
	return nil
}

func (h *pushHistory) Runs(ctx context.Context, taskID string, limit int) ([]domain.TaskResult, error) {
	if limit <= 0 {
		return []domain.TaskResult{}, nil
	}

	rows, err := h.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM push_runs
		WHERE task_id = ?
		ORDER BY started_at DESC, seq DESC
		LIMIT ?
	`, taskID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing push runs: %w", err)
	}
	defer rows.Close()

	runs := make([]domain.TaskResult, 0, limit)
	for rows.Next() {
		var (
			run                      domain.TaskResult
			from, to, started, ended string
			errMsg                   sql.NullString
		)
		if err := rows.Scan(&run.RunID, &run.TaskID, &from, &to, &started, &ended,
			&run.Success, &errMsg, &run.Fetched, &run.Eligible, &run.Sent, &run.Manual); err != nil {
			return nil, fmt.Errorf("scanning push run: %w", err)
		}
		run.WindowFrom = parseStamp(from)
		run.WindowTo = parseStamp(to)
		run.StartedAt = parseStamp(started)
		run.EndedAt = parseStamp(ended)
		run.Error = errMsg.String
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing push runs: %w", err)
	}
	return runs, nil
}

func (h *pushHistory) PruneRuns(ctx context.Context, keep int) error {
	if keep < 0 {
		keep = 0
	}
	_, err := h.db.ExecContext(ctx, `
		DELETE FROM push_runs
		WHERE seq IN (
			SELECT seq FROM (
				SELECT seq, ROW_NUMBER() OVER (
					PARTITION BY task_id ORDER BY started_at DESC, seq DESC
				) AS position
				FROM push_runs
			) WHERE position > ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning push runs: %w", err)
	}
	return nil
}

// stamp formats t in UTC, or NULL for the zero time.
func stamp(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return mustStamp(t)
}

func mustStamp(t time.Time) string {
	return t.UTC().Format(stampLayout)
}

// parseStamp returns the zero time for empty or malformed values.
func parseStamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(stampLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
