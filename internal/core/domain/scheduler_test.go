package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextDailyRun(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Stockholm")
	require.NoError(t, err)

	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{
			name: "before hour runs today",
			now:  time.Date(2025, 3, 10, 6, 30, 0, 0, loc),
			hour: 8,
			want: time.Date(2025, 3, 10, 8, 0, 0, 0, loc),
		},
		{
			name: "after hour runs tomorrow",
			now:  time.Date(2025, 3, 10, 9, 0, 0, 0, loc),
			hour: 8,
			want: time.Date(2025, 3, 11, 8, 0, 0, 0, loc),
		},
		{
			name: "within a minute of hour runs tomorrow",
			now:  time.Date(2025, 3, 10, 7, 59, 30, 0, loc),
			hour: 8,
			want: time.Date(2025, 3, 11, 8, 0, 0, 0, loc),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDailyRun(tt.now, tt.hour, loc)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
		})
	}
}

func TestNextDailyRun_NilLocation(t *testing.T) {
	now := time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
	got := NextDailyRun(now, 8, nil)
	assert.Equal(t, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC), got)
}

func TestPreviousDay(t *testing.T) {
	now := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	from, to := PreviousDay(now, time.UTC)

	assert.Equal(t, time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2025, 2, 28, 23, 59, 59, 0, time.UTC), to)
}

func TestTaskResult_Duration(t *testing.T) {
	started := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	assert.Equal(t, 1500*time.Millisecond, TaskResult{StartedAt: started, EndedAt: started.Add(1500 * time.Millisecond)}.Duration())
	assert.Zero(t, TaskResult{StartedAt: started}.Duration())
}
