// Package cli implements the infoflex-bridge command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driven"
	"github.com/niemi-bil/infoflex-bridge/internal/core/ports/driving"
	"github.com/niemi-bil/infoflex-bridge/internal/logger"
)

// version is overridden at build time.
var version = "dev"

// skipServices marks commands that run without configuration.
const skipServices = "skip-services"

// Services holds the ports commands call. It is built once per invocation.
type Services struct {
	Registry    driving.EnvironmentRegistry
	Classifier  driving.Classifier
	Orders      driving.OrderQuery
	Phones      driving.PhoneLookup
	Pusher      driving.Pusher
	Subscribers driving.SubscriberForwarder
	Receipts    driving.GoodsReceipts
	Scheduler   driving.Scheduler
	Settings    driving.SettingsService
	Config      driven.ConfigStore

	// DailyPush decides whether serve starts the scheduler.
	DailyPush domain.DailyPushConfig

	// HTTPAddr is the default serve address.
	HTTPAddr string

	// Location interprets date-only flags. Nil means time.Local.
	Location *time.Location

	// Watch reloads configuration until ctx is done. Optional.
	Watch func(ctx context.Context) error

	// Close releases connections. Optional.
	Close func() error
}

func (s *Services) location() *time.Location {
	if s.Location == nil {
		return time.Local
	}
	return s.Location
}

// Bootstrap builds the services from the config file at path. An empty
// path selects the default location.
type Bootstrap func(configPath string) (*Services, error)

var (
	bootstrap Bootstrap
	active    *Services

	configPath string
	verbose    bool
)

// errNotConfigured is returned when a command runs without services.
var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "infoflex-bridge",
	Short: "Query and push orders from the Infoflex workshop databases",
	Long: `infoflex-bridge queries every Niemi Bil workshop database in parallel,
enriches orders with customers, vehicles, invoices and repair categories,
and pushes contactable customers to Rule.io.

Configuration is read from ~/.infoflex-bridge/config.toml unless --config
is given.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.infoflex-bridge/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetBootstrap sets the function that builds services for each command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command and releases the services it built.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if cerr := teardown(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)
	if cmd.Annotations[skipServices] == "true" || active != nil {
		return nil
	}
	if bootstrap == nil {
		return errNotConfigured
	}
	s, err := bootstrap(configPath)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	active = s
	return nil
}

func teardown() error {
	s := active
	active = nil
	if s == nil || s.Close == nil {
		return nil
	}
	return s.Close()
}

// current returns the services for the running command.
func current() (*Services, error) {
	if active == nil {
		return nil, errNotConfigured
	}
	return active, nil
}
