package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

const dailyPushName = "Daily subscriber push"

// Scheduler runs the daily subscriber push. It is a pure core service; the
// CLI and HTTP adapters drive it through RunNow and History.
type Scheduler struct {
	config domain.DailyPushConfig
	store  driven.SchedulerStore
	pusher driving.Pusher

	now  func() time.Time
	tick time.Duration

	mu      sync.Mutex
	running bool
	busy    bool
	nextRun time.Time
	stopCh  chan struct{}
	wg      sync.WaitGroup
}

// NewScheduler creates a scheduler for the daily push.
func NewScheduler(config domain.DailyPushConfig, store driven.SchedulerStore, pusher driving.Pusher) *Scheduler {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.HistoryKeep < 1 {
		config.HistoryKeep = DefaultHistoryKeep
	}
	return &Scheduler{
		config: config,
		store:  store,
		pusher: pusher,
		now:    time.Now,
		tick:   time.Minute,
	}
}

// Start begins the scheduler loop. It blocks until Stop is called or ctx
// is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.stopCh = make(chan struct{})
	stopCh := s.stopCh
	s.nextRun = domain.NextDailyRun(s.now(), s.config.Hour, s.config.Location)
	s.mu.Unlock()

	if err := s.ensureTask(ctx); err != nil {
		logger.Warn("scheduler: failed to initialise task: %v", err)
	}

	if s.config.Enabled {
		logger.Info("scheduler: daily push at %02d:00 %s, next run %s",
			s.config.Hour, s.config.Location, s.NextRun().Format(time.RFC3339))
	} else {
		logger.Info("scheduler: daily push disabled")
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.checkDue(ctx)
		}
	}
}

// Stop shuts the loop down and waits for a push in flight.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	s.mu.Unlock()

	s.wg.Wait()
	return nil
}

// RunNow pushes the previous day immediately. The run is recorded like a
// scheduled one and flagged as manual.
func (s *Scheduler) RunNow(ctx context.Context) (*domain.TaskResult, error) {
	return s.execute(ctx, true)
}

// History returns the most recent daily push runs, newest first.
func (s *Scheduler) History(ctx context.Context, limit int) ([]domain.TaskResult, error) {
	if limit < 1 {
		limit = s.config.HistoryKeep
	}
	return s.store.Runs(ctx, domain.TaskIDDailyPush, limit)
}

// NextRun returns when the next scheduled push is due.
func (s *Scheduler) NextRun() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nextRun.IsZero() {
		return domain.NextDailyRun(s.now(), s.config.Hour, s.config.Location)
	}
	return s.nextRun
}

func (s *Scheduler) ensureTask(ctx context.Context) error {
	task, err := s.store.Task(ctx, domain.TaskIDDailyPush)
	if err != nil {
		return err
	}
	return s.store.SaveTask(ctx, s.stamp(task))
}

// checkDue starts the push when its time has come and moves the next run
// to the following day.
func (s *Scheduler) checkDue(ctx context.Context) {
	if !s.config.Enabled {
		return
	}

	now := s.now()
	s.mu.Lock()
	if now.Before(s.nextRun) {
		s.mu.Unlock()
		return
	}
	s.nextRun = domain.NextDailyRun(now, s.config.Hour, s.config.Location)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		if _, err := s.execute(ctx, false); err != nil {
			logger.Error("scheduler: daily push failed: %v", err)
		}
	}()
}

func (s *Scheduler) execute(ctx context.Context, manual bool) (*domain.TaskResult, error) {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		return nil, domain.ErrTaskRunning
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	started := s.now()
	from, to := domain.PreviousDay(started, s.config.Location)
	filter := domain.OrderFilter{
		From:         &from,
		To:           &to,
		Status:       s.config.Status,
		CustomerType: s.config.CustomerType,
	}

	logger.Info("scheduler: pushing orders from %s", from.Format(sinkDateLayout))
	push, err := s.pusher.Push(ctx, filter, false)

	result := &domain.TaskResult{
		RunID:      uuid.NewString(),
		TaskID:     domain.TaskIDDailyPush,
		WindowFrom: from,
		WindowTo:   to,
		StartedAt:  started,
		EndedAt:    s.now(),
		Manual:     manual,
	}
	if push != nil {
		result.RunID = push.RunID
		result.Fetched = push.Fetched
		result.Eligible = push.Eligible
		result.Sent = push.Sent
	}
	switch {
	case err != nil:
		result.Error = err.Error()
	case !push.Success:
		result.Error = push.Message
	default:
		result.Success = true
	}

	s.record(ctx, result)
	return result, err
}

// record persists the task state and the run. Store failures are logged
// and never fail the run.
func (s *Scheduler) record(ctx context.Context, result *domain.TaskResult) {
	ctx = context.WithoutCancel(ctx)

	task, err := s.store.Task(ctx, domain.TaskIDDailyPush)
	if err != nil {
		logger.Warn("scheduler: failed to load task: %v", err)
	}
	task = s.stamp(task)
	task.LastRun = result.StartedAt
	if result.Success {
		task.LastError = ""
		task.LastSuccess = result.EndedAt
	} else {
		task.LastError = result.Error
	}

	if err := s.store.SaveTask(ctx, task); err != nil {
		logger.Warn("scheduler: failed to save task %s: %v", task.ID, err)
	}
	if err := s.store.RecordRun(ctx, result); err != nil {
		logger.Warn("scheduler: failed to record result for %s: %v", task.ID, err)
	}
	if err := s.store.PruneRuns(ctx, s.config.HistoryKeep); err != nil {
		logger.Warn("scheduler: failed to prune history: %v", err)
	}
}

// stamp copies the current schedule onto task, creating it when nil.
func (s *Scheduler) stamp(task *domain.ScheduledTask) *domain.ScheduledTask {
	if task == nil {
		task = &domain.ScheduledTask{ID: domain.TaskIDDailyPush, Name: dailyPushName}
	}
	task.Hour = s.config.Hour
	task.Timezone = s.config.Location.String()
	task.Enabled = s.config.Enabled
	task.NextRun = s.NextRun()
	return task
}
