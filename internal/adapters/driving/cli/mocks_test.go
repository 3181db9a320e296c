package cli

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/services"
)

type mockOrderQuery struct {
	orders  []domain.Order
	err     error
	filters []domain.OrderFilter
}

func (m *mockOrderQuery) Aggregate(_ context.Context, filter domain.OrderFilter) ([]domain.Order, error) {
	m.filters = append(m.filters, filter)
	return m.orders, m.err
}

type mockPusher struct {
	result  *domain.PushResult
	err     error
	filters []domain.OrderFilter
	dryRuns []bool
}

func (m *mockPusher) Push(_ context.Context, filter domain.OrderFilter, dryRun bool) (*domain.PushResult, error) {
	m.filters = append(m.filters, filter)
	m.dryRuns = append(m.dryRuns, dryRun)
	return m.result, m.err
}

type mockReceipts struct {
	receipts []domain.GoodsReceipt
	err      error
	queries  []domain.ReceiptQuery
}

func (m *mockReceipts) Receipts(_ context.Context, q domain.ReceiptQuery) ([]domain.GoodsReceipt, error) {
	m.queries = append(m.queries, q)
	return m.receipts, m.err
}

type mockScheduler struct {
	result  *domain.TaskResult
	err     error
	history []domain.TaskResult
	limit   int
	next    time.Time
}

func (m *mockScheduler) Start(context.Context) error { return nil }
func (m *mockScheduler) Stop() error                 { return nil }

func (m *mockScheduler) RunNow(context.Context) (*domain.TaskResult, error) {
	return m.result, m.err
}

func (m *mockScheduler) History(_ context.Context, limit int) ([]domain.TaskResult, error) {
	m.limit = limit
	return m.history, m.err
}

func (m *mockScheduler) NextRun() time.Time { return m.next }

type mockSettings struct {
	settings *domain.Settings
	getErr   error
	setErr   error
	sets     map[string]any
}

func (m *mockSettings) Get() (*domain.Settings, error) {
	return m.settings, m.getErr
}

func (m *mockSettings) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	if m.sets == nil {
		m.sets = make(map[string]any)
	}
	m.sets[key] = value
	return nil
}

func (m *mockSettings) Reload() error { return nil }

func testSettings() *domain.Settings {
	envs := domain.KnownEnvironments()
	envs[0].DSN = "sysdba:masterkey@db1/nie2v.fdb"
	return &domain.Settings{
		DefaultEnvironment: domain.DefaultEnvironmentID,
		Environments:       envs,
		Query:              domain.DefaultQuerySettings(),
		Keywords:           domain.DefaultKeywordTable(),
		Sink: domain.SinkSettings{
			BaseURL:           "https://app.rule.io/api/v2",
			Token:             "rule-token-0123456789",
			Tags:              []string{"Infoflex"},
			Language:          "sv",
			RequestsPerSecond: 2,
			Timeout:           30 * time.Second,
		},
		DailyPush: domain.DailyPushConfig{
			Enabled:      true,
			Hour:         8,
			Location:     time.UTC,
			Status:       "KON",
			CustomerType: domain.CustomerPrivate,
			HistoryKeep:  50,
		},
		HTTPAddr: ":8080",
		DataDir:  "/var/lib/infoflex-bridge",
	}
}

// testServices returns services over a real registry and classifier.
func testServices() *Services {
	envs := domain.KnownEnvironments()
	envs[0].DSN = "sysdba:masterkey@db1/nie2v.fdb"
	return &Services{
		Registry:   services.NewEnvironmentRegistry(envs, domain.DefaultEnvironmentID),
		Classifier: services.NewClassifier(domain.DefaultKeywordTable()),
		Orders:     &mockOrderQuery{},
		Pusher:     &mockPusher{},
		Receipts:   &mockReceipts{},
		Scheduler:  &mockScheduler{},
		Settings:   &mockSettings{settings: testSettings()},
		DailyPush:  testSettings().DailyPush,
		HTTPAddr:   "127.0.0.1:0",
		Location:   time.UTC,
	}
}

func withServices(t *testing.T, s *Services) {
	t.Helper()
	active = s
	t.Cleanup(func() { active = nil })
}

// execute runs a standalone command and returns its combined output.
func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(bytes.NewReader(nil))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return buf.String(), err
}

// executeWithInput runs a standalone command reading input from stdin.
func executeWithInput(t *testing.T, cmd *cobra.Command, input string, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetIn(bytes.NewBufferString(input))
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	err := cmd.Execute()
	return buf.String(), err
}
