package cli

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/services"
)

func TestPushCmd_DryRun(t *testing.T) {
	s := testServices()
	pusher := &mockPusher{result: &domain.PushResult{
		RunID:    "run-1",
		Fetched:  3,
		Eligible: 1,
		DryRun:   true,
		Batch: &domain.SubscriberBatch{Subscribers: []domain.Subscriber{{
			Email:       "anna@example.se",
			PhoneNumber: "+46703833567",
			Fields: []domain.SubscriberField{
				{Key: services.FieldPlate, Value: "ABC123", Type: domain.FieldText},
				{Key: services.FieldFacility, Value: "Umeå", Type: domain.FieldText},
			},
		}}},
	}}
	s.Pusher = pusher
	withServices(t, s)

	out, err := execute(t, newPushCmd(), "--from", "2025-10-15", "--to", "2025-10-15", "--status", "KON", "--dry-run")
	require.NoError(t, err)

	assert.Equal(t, []bool{true}, pusher.dryRuns)
	assert.Equal(t, "KON", pusher.filters[0].Status)
	assert.Contains(t, out, "run-1")
	assert.Contains(t, out, "Dry run, nothing sent.")
	assert.Contains(t, out, "anna@example.se")
	assert.Contains(t, out, "ABC123")
	assert.Contains(t, out, "Umeå")
}

func TestPushCmd_DefaultsToPreviousDay(t *testing.T) {
	s := testServices()
	pusher := &mockPusher{result: &domain.PushResult{RunID: "run-1", Success: true}}
	s.Pusher = pusher
	withServices(t, s)

	_, err := execute(t, newPushCmd())
	require.NoError(t, err)
	require.Len(t, pusher.filters, 1)

	f := pusher.filters[0]
	require.True(t, f.HasRange())
	wantFrom, wantTo := domain.PreviousDay(time.Now(), time.UTC)
	assert.True(t, wantFrom.Equal(*f.From), "from %s", f.From)
	assert.True(t, wantTo.Equal(*f.To), "to %s", f.To)
	assert.Equal(t, []bool{false}, pusher.dryRuns)
}

func TestPushCmd_Sent(t *testing.T) {
	s := testServices()
	s.Pusher = &mockPusher{result: &domain.PushResult{RunID: "run-2", Fetched: 4, Eligible: 2, Sent: 2, Success: true}}
	withServices(t, s)

	out, err := execute(t, newPushCmd(), "--from", "2025-10-15", "--to", "2025-10-15")
	require.NoError(t, err)
	assert.Contains(t, out, "Sent:     2 subscribers")
	assert.Contains(t, out, "Status:   OK")
}

func TestPushCmd_SinkFailure(t *testing.T) {
	s := testServices()
	s.Pusher = &mockPusher{
		result: &domain.PushResult{RunID: "run-3", Eligible: 2, Message: "API error: 400 - bad request"},
		err:    errors.New("send subscribers: rejected"),
	}
	withServices(t, s)

	out, err := execute(t, newPushCmd(), "--from", "2025-10-15", "--to", "2025-10-15")
	assert.EqualError(t, err, "send subscribers: rejected")
	assert.Contains(t, out, "Status:   FAILED")
	assert.Contains(t, out, "API error: 400 - bad request")
}

func TestPushCmd_JSON(t *testing.T) {
	s := testServices()
	s.Pusher = &mockPusher{result: &domain.PushResult{RunID: "run-4", Success: true, Sent: 1}}
	withServices(t, s)

	out, err := execute(t, newPushCmd(), "--from", "2025-10-15", "--to", "2025-10-15", "--json")
	require.NoError(t, err)

	var result domain.PushResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "run-4", result.RunID)
	assert.Equal(t, 1, result.Sent)
}

func TestPushCmd_NotConfigured(t *testing.T) {
	s := testServices()
	s.Pusher = &mockPusher{err: &domain.ConfigurationError{Err: domain.ErrSinkNotConfigured}}
	withServices(t, s)

	out, err := execute(t, newPushCmd(), "--from", "2025-10-15", "--to", "2025-10-15")
	assert.ErrorIs(t, err, domain.ErrSinkNotConfigured)
	assert.Empty(t, out)
}
