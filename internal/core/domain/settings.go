package domain

import "time"

// PhonePriority selects the order in which phone fields are tested for a mobile number.
type PhonePriority string

// Phone field priorities.
const (
	// PhoneTel1First tests phone 1, then 2, then 3.
	PhoneTel1First PhonePriority = "tel1_first"

	// PhoneTel2First tests phone 2, then 1, then 3.
	PhoneTel2First PhonePriority = "tel2_first"
)

// IsValid returns true if the priority is recognised.
func (p PhonePriority) IsValid() bool {
	return p == PhoneTel1First || p == PhoneTel2First
}

// Order returns the zero-based phone field indexes in test order.
func (p PhonePriority) Order() []int {
	if p == PhoneTel2First {
		return []int{1, 0, 2}
	}
	return []int{0, 1, 2}
}

// QuerySettings tunes the executor and aggregator.
type QuerySettings struct {
	// Driver is the database/sql driver name for the legacy databases.
	Driver string

	// Concurrency bounds the number of environments queried at once.
	Concurrency int

	// BatchSize caps the number of values in one IN list.
	BatchSize int

	PhonePriority PhonePriority

	// LaborType is the line type code of labor rows.
	LaborType string

	// MaterialSentinelCode is the material code that marks a vehicle
	// category, and MaterialSentinelCategory the category it sets.
	MaterialSentinelCode     string
	MaterialSentinelCategory string

	// DefaultCategory is assigned to orders with labor but no match.
	DefaultCategory string
}

// SinkSettings configures the subscriber sink client.
type SinkSettings struct {
	BaseURL           string
	Token             string
	Tags              []string
	Language          string
	RequestsPerSecond float64
	Timeout           time.Duration
}

// Configured reports whether the sink can be called.
func (s SinkSettings) Configured() bool {
	return s.BaseURL != "" && s.Token != ""
}

// Settings is the complete application configuration.
type Settings struct {
	DefaultEnvironment string
	Environments       []Environment
	Query              QuerySettings
	Keywords           KeywordTable
	Sink               SinkSettings
	DailyPush          DailyPushConfig
	HTTPAddr           string
	DataDir            string
}

// Limits for query settings.
const (
	MaxBatchSize       = 1000
	DefaultConcurrency = 4
)

// DefaultQuerySettings returns sensible defaults for the executor.
func DefaultQuerySettings() QuerySettings {
	return QuerySettings{
		Driver:                   "firebirdsql",
		Concurrency:              DefaultConcurrency,
		BatchSize:                MaxBatchSize,
		PhonePriority:            PhoneTel1First,
		LaborType:                "A",
		MaterialSentinelCode:     "HUSBIL",
		MaterialSentinelCategory: "Husbil",
		DefaultCategory:          "Allmän reparation",
	}
}

// Normalise clamps values into their valid ranges.
func (q *QuerySettings) Normalise() {
	if q.Concurrency < 1 {
		q.Concurrency = 1
	}
	if q.BatchSize < 1 || q.BatchSize > MaxBatchSize {
		q.BatchSize = MaxBatchSize
	}
	if !q.PhonePriority.IsValid() {
		q.PhonePriority = PhoneTel1First
	}
}
