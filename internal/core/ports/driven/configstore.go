package driven

// ConfigStore is the flat key/value view of the bridge configuration.
// Nested tables are addressed with dot keys such as "rule_io.token" or
// "environments.NIEM3.dsn". Typed getters return the zero value for a
// missing key or a value of another type.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string

	// GetInt accepts any integer or float value.
	GetInt(key string) int

	// GetFloat accepts any integer or float value.
	GetFloat(key string) float64

	GetBool(key string) bool

	// GetStringSlice drops non-string items.
	GetStringSlice(key string) []string

	// Keys returns the keys starting with prefix, sorted.
	Keys(prefix string) []string

	// Set stores value under key and persists it.
	Set(key string, value any) error

	// Load replaces every value with the stored configuration. On error
	// the previous values are kept.
	Load() error

	// Path locates the backing file. Relative data paths resolve against it.
	Path() string
}
