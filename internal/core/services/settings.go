package services

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata" // scheduler.timezone must resolve without system zoneinfo
	"unicode/utf8"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEnvDefault      = "environments.default"
	keyEnvEnabled      = "environments.enabled"
	envPrefix          = "environments."
	keyConcurrency     = "query.concurrency"
	keyBatchSize       = "query.batch_size"
	keyPhonePriority   = "query.phone_priority"
	keyLaborType       = "query.labor_type"
	keySentinelCode    = "query.material_sentinel_code"
	keySentinelCat     = "query.material_sentinel_category"
	keyDefaultCategory = "query.default_category"
	keyDriver          = "query.driver"
	keyKeywordOrder    = "keywords.order"
	keywordPrefix      = "keywords."
	keySinkBaseURL     = "rule_io.base_url"
	keySinkToken       = "rule_io.token"
	keySinkTags        = "rule_io.tags"
	keySinkLanguage    = "rule_io.language"
	keySinkRPS         = "rule_io.requests_per_second"
	keySinkTimeout     = "rule_io.timeout"
	keySchedEnabled    = "scheduler.enabled"
	keySchedHour       = "scheduler.hour"
	keySchedTimezone   = "scheduler.timezone"
	keySchedStatus     = "scheduler.status"
	keySchedCustomer   = "scheduler.customer_type"
	keySchedKeep       = "scheduler.history_keep"
	keyHTTPAddr        = "http.addr"
	keyDataDir         = "data_dir"
)

// Defaults not owned by the domain package.
const (
	DefaultSinkLanguage = "sv"
	DefaultSinkRPS      = 2.0
	DefaultSinkTimeout  = 30 * time.Second
	DefaultHTTPAddr     = ":8080"
	DefaultTimezone     = "Europe/Stockholm"
	DefaultPushHour     = 8
	DefaultPushStatus   = "KON"
	DefaultHistoryKeep  = 50
)

// DefaultSinkTags is the tag list sent with every batch unless configured.
var DefaultSinkTags = []string{"Infoflex"}

// SettingsService materialises domain.Settings from a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get builds the current settings with defaults applied.
func (s *SettingsService) Get() (*domain.Settings, error) {
	query := domain.DefaultQuerySettings()
	query.Driver = s.getString(keyDriver, query.Driver)
	query.Concurrency = s.getInt(keyConcurrency, query.Concurrency)
	query.BatchSize = s.getInt(keyBatchSize, query.BatchSize)
	query.PhonePriority = domain.PhonePriority(s.getString(keyPhonePriority, string(query.PhonePriority)))
	query.LaborType = s.getString(keyLaborType, query.LaborType)
	query.MaterialSentinelCode = s.getString(keySentinelCode, query.MaterialSentinelCode)
	query.MaterialSentinelCategory = s.getString(keySentinelCat, query.MaterialSentinelCategory)
	query.DefaultCategory = s.getString(keyDefaultCategory, query.DefaultCategory)
	query.Normalise()

	daily, err := s.dailyPush()
	if err != nil {
		return nil, err
	}

	sink := domain.SinkSettings{
		BaseURL:           strings.TrimRight(s.configStore.GetString(keySinkBaseURL), "/"),
		Token:             s.configStore.GetString(keySinkToken),
		Tags:              s.configStore.GetStringSlice(keySinkTags),
		Language:          s.getString(keySinkLanguage, DefaultSinkLanguage),
		RequestsPerSecond: s.configStore.GetFloat(keySinkRPS),
		Timeout:           s.getDuration(keySinkTimeout, DefaultSinkTimeout),
	}
	if len(sink.Tags) == 0 {
		sink.Tags = append([]string(nil), DefaultSinkTags...)
	}
	if sink.RequestsPerSecond <= 0 {
		sink.RequestsPerSecond = DefaultSinkRPS
	}

	dataDir := s.configStore.GetString(keyDataDir)
	if dataDir == "" {
		dataDir = filepath.Join(filepath.Dir(s.configStore.Path()), "data")
	}

	return &domain.Settings{
		DefaultEnvironment: domain.NormaliseEnvironmentID(s.getString(keyEnvDefault, domain.DefaultEnvironmentID)),
		Environments:       s.environments(),
		Query:              query,
		Keywords:           s.keywords(),
		Sink:               sink,
		DailyPush:          daily,
		HTTPAddr:           s.getString(keyHTTPAddr, DefaultHTTPAddr),
		DataDir:            dataDir,
	}, nil
}

// Set stores a single configuration key.
func (s *SettingsService) Set(key string, value any) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return &domain.ValidationError{Field: "key", Err: domain.ErrInvalidInput}
	}
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Reload re-reads configuration from storage.
func (s *SettingsService) Reload() error {
	return s.configStore.Load()
}

// environments starts from the built-in table, applies per-environment
// overrides and adds environments that only exist in configuration. When
// environments.enabled is set it decides both membership and order.
func (s *SettingsService) environments() []domain.Environment {
	envs := domain.KnownEnvironments()
	index := make(map[string]int, len(envs))
	for i, env := range envs {
		index[env.ID] = i
	}

	for _, key := range s.configStore.Keys(envPrefix) {
		rest := strings.TrimPrefix(key, envPrefix)
		dot := strings.LastIndex(rest, ".")
		if dot <= 0 {
			continue
		}
		id := domain.NormaliseEnvironmentID(rest[:dot])
		i, ok := index[id]
		if !ok {
			index[id] = len(envs)
			envs = append(envs, domain.Environment{ID: id, Facility: domain.DefaultFacility})
			i = len(envs) - 1
		}
		value := s.configStore.GetString(key)
		field := rest[dot+1:]
		if (field == "name" || field == "email" || field == "phone") && envs[i].Facility == (domain.Facility{}) {
			envs[i].Facility = domain.DefaultFacility
		}
		switch field {
		case "dsn":
			envs[i].DSN = value
		case "name":
			envs[i].Facility.Name = value
		case "email":
			envs[i].Facility.Email = value
		case "phone":
			envs[i].Facility.Phone = value
		case "enabled":
			envs[i].Enabled = s.configStore.GetBool(key)
		}
	}

	enabled := s.configStore.GetStringSlice(keyEnvEnabled)
	if len(enabled) == 0 {
		return envs
	}

	ordered := make([]domain.Environment, 0, len(envs))
	taken := make(map[string]bool, len(envs))
	for _, raw := range enabled {
		id := domain.NormaliseEnvironmentID(raw)
		i, ok := index[id]
		if !ok || taken[id] {
			continue
		}
		env := envs[i]
		env.Enabled = true
		ordered = append(ordered, env)
		taken[id] = true
	}
	for _, env := range envs {
		if taken[env.ID] {
			continue
		}
		env.Enabled = false
		ordered = append(ordered, env)
	}
	return ordered
}

// keywords builds the keyword table from keywords.order and the per-category
// lists, or returns the built-in table.
func (s *SettingsService) keywords() domain.KeywordTable {
	order := s.configStore.GetStringSlice(keyKeywordOrder)
	if len(order) == 0 {
		return domain.DefaultKeywordTable()
	}
	lists := make(map[string][]string, len(order))
	for _, name := range order {
		list := s.configStore.GetStringSlice(keywordPrefix + name)
		for _, k := range list {
			warnUnanchored(name, k)
		}
		lists[name] = list
	}
	return domain.KeywordTableFromLists(order, lists)
}

// warnUnanchored flags configured keywords that can match inside words.
func warnUnanchored(category, keyword string) {
	if anchored, changed := domain.AnchorKeyword(keyword); changed {
		logger.Warn("keyword %q in %s is too short to match inside words; using %q", keyword, category, anchored)
		return
	}
	if !strings.HasPrefix(keyword, " ") && utf8.RuneCountInString(keyword) == domain.MinInnerKeywordLen {
		logger.Warn("keyword %q in %s also matches inside longer words; prefix a space to match word starts only",
			keyword, category)
	}
}

func (s *SettingsService) dailyPush() (domain.DailyPushConfig, error) {
	tz := s.getString(keySchedTimezone, DefaultTimezone)
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return domain.DailyPushConfig{}, fmt.Errorf("%s %q: %w", keySchedTimezone, tz, err)
	}

	hour := DefaultPushHour
	if _, ok := s.configStore.Get(keySchedHour); ok {
		hour = s.configStore.GetInt(keySchedHour)
	}
	if hour < 0 || hour > 23 {
		return domain.DailyPushConfig{}, &domain.ValidationError{
			Field: keySchedHour,
			Err:   errors.New("must be between 0 and 23"),
		}
	}

	customerType, err := domain.ParseCustomerType(s.getString(keySchedCustomer, string(domain.CustomerPrivate)))
	if err != nil {
		return domain.DailyPushConfig{}, &domain.ValidationError{Field: keySchedCustomer, Err: err}
	}

	keep := s.getInt(keySchedKeep, DefaultHistoryKeep)
	if keep < 1 {
		keep = DefaultHistoryKeep
	}

	return domain.DailyPushConfig{
		Enabled:      s.getBool(keySchedEnabled, false),
		Hour:         hour,
		Location:     loc,
		Status:       s.getString(keySchedStatus, DefaultPushStatus),
		CustomerType: customerType,
		HistoryKeep:  keep,
	}, nil
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := strings.TrimSpace(s.configStore.GetString(key))
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	d, err := time.ParseDuration(s.configStore.GetString(key))
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}
