package domain

import "time"

// ScheduledTask is the persisted state of the daily push.
type ScheduledTask struct {
	ID   string
	Name string

	// Hour and Timezone record the schedule the task was last saved with.
	Hour     int
	Timezone string

	LastRun     time.Time
	NextRun     time.Time
	LastSuccess time.Time

	// LastError is the message of the last failed run, cleared on success.
	LastError string

	Enabled bool
}

// TaskResult is one recorded push run.
type TaskResult struct {
	RunID  string `json:"runId"`
	TaskID string `json:"taskId"`

	// WindowFrom and WindowTo bound the order dates the run pushed.
	WindowFrom time.Time `json:"windowFrom"`
	WindowTo   time.Time `json:"windowTo"`

	StartedAt time.Time `json:"startedAt"`
	EndedAt   time.Time `json:"endedAt"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	// Fetched, Eligible and Sent mirror the PushResult counts.
	Fetched  int `json:"fetched"`
	Eligible int `json:"eligible"`
	Sent     int `json:"sent"`

	// Manual is true for runs triggered outside the schedule.
	Manual bool `json:"manual"`
}

// Duration returns how long the run took.
func (r TaskResult) Duration() time.Duration {
	if r.EndedAt.Before(r.StartedAt) {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// DailyPushConfig configures the daily subscriber push.
type DailyPushConfig struct {
	Enabled bool

	// Hour is the local hour (0-23) the push runs at.
	Hour int

	// Location is the time zone Hour is interpreted in.
	Location *time.Location

	// Status and CustomerType filter the pushed orders.
	Status       string
	CustomerType CustomerType

	// HistoryKeep is the number of results kept per task.
	HistoryKeep int
}

// NextDailyRun returns the first time at or after now with the given hour,
// in loc. Runs are at least one minute in the future.
func NextDailyRun(now time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if next.Sub(local) < time.Minute {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// PreviousDay returns the full calendar day before now in loc.
func PreviousDay(now time.Time, loc *time.Location) (time.Time, time.Time) {
	if loc == nil {
		loc = time.UTC
	}
	return DayRange(now.In(loc).AddDate(0, 0, -1))
}

// Task IDs for built-in tasks.
const (
	TaskIDDailyPush = "daily-push"
)
