package cli

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

type countingScheduler struct {
	mockScheduler
	started atomic.Int32
	stopped atomic.Int32
}

func (s *countingScheduler) Start(ctx context.Context) error {
	s.started.Add(1)
	<-ctx.Done()
	return ctx.Err()
}

func (s *countingScheduler) Stop() error {
	s.stopped.Add(1)
	return nil
}

func TestServeCmd_RunsUntilCancelled(t *testing.T) {
	s := testServices()
	sched := &countingScheduler{}
	s.Scheduler = sched
	var watched atomic.Bool
	s.Watch = func(ctx context.Context) error {
		watched.Store(true)
		<-ctx.Done()
		return nil
	}
	withServices(t, s)

	ctx, cancel := context.WithCancel(context.Background())
	cmd := newServeCmd()
	cmd.SetArgs([]string{"--addr", "127.0.0.1:0"})
	cmd.SilenceUsage = true

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return sched.started.Load() == 1 && watched.Load()
	}, 2*time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not stop")
	}
	assert.Equal(t, int32(1), sched.stopped.Load())
}

func TestServeCmd_SchedulerDisabled(t *testing.T) {
	s := testServices()
	s.DailyPush = domain.DailyPushConfig{}
	sched := &countingScheduler{}
	s.Scheduler = sched
	withServices(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	cmd := newServeCmd()
	cmd.SetArgs(nil)
	cmd.SilenceUsage = true

	assert.NoError(t, cmd.ExecuteContext(ctx))
	assert.Equal(t, int32(0), sched.started.Load())
}

func TestServeCmd_MissingPorts(t *testing.T) {
	s := testServices()
	s.Orders = nil
	withServices(t, s)

	cmd := newServeCmd()
	cmd.SetArgs(nil)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	assert.Error(t, cmd.ExecuteContext(context.Background()))
}
