package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change configuration",
	Long: `Show the effective configuration or change single keys in the config
file. Keys use dot notation, e.g. rule_io.base_url or
environments.NIEM3.dsn.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> [value]",
	Short: "Set a configuration key",
	Long: `Set a configuration key and save the config file.

Values are stored as booleans, integers or floats when they parse as one,
and as string lists when written as [a, b]. Secret keys prompt for the
value when it is omitted.

Examples:
  infoflex-bridge config set environments.NIEM3.dsn "sysdba:secret@db3/infoflex.fdb"
  infoflex-bridge config set environments.enabled "[NIE2V, NIEM3]"
  infoflex-bridge config set scheduler.enabled true
  infoflex-bridge config set rule_io.token`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := current()
	if err != nil {
		return err
	}
	if s.Settings == nil {
		return errors.New("settings service not configured")
	}

	settings, err := s.Settings.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	w := cmd.OutOrStdout()
	if s.Config != nil {
		fmt.Fprintf(w, "Config file: %s\n", s.Config.Path())
	}
	fmt.Fprintf(w, "Data dir:    %s\n\n", settings.DataDir)

	fmt.Fprintln(w, headerStyle.Render("[Environments]"))
	fmt.Fprintf(w, "  Default: %s\n", settings.DefaultEnvironment)
	rows := make([][]string, 0, len(settings.Environments))
	for _, env := range settings.Environments {
		dsn := "(not set)"
		if env.DSN != "" {
			dsn = maskDSN(env.DSN)
		}
		rows = append(rows, []string{env.ID, env.Facility.Name, strconv.FormatBool(env.Enabled), dsn})
	}
	renderTable(w, []string{"ID", "FACILITY", "ENABLED", "DSN"}, rows)
	fmt.Fprintln(w)

	q := settings.Query
	fmt.Fprintln(w, headerStyle.Render("[Query]"))
	fmt.Fprintf(w, "  Driver: %s\n", q.Driver)
	fmt.Fprintf(w, "  Concurrency: %d\n", q.Concurrency)
	fmt.Fprintf(w, "  Batch size: %d\n", q.BatchSize)
	fmt.Fprintf(w, "  Phone priority: %s\n", q.PhonePriority)
	fmt.Fprintf(w, "  Labor type: %s\n", q.LaborType)
	fmt.Fprintf(w, "  Sentinel: %s -> %s\n", q.MaterialSentinelCode, q.MaterialSentinelCategory)
	fmt.Fprintf(w, "  Default category: %s\n", q.DefaultCategory)
	fmt.Fprintf(w, "  Keyword categories: %d (%d keywords)\n", len(settings.Keywords.Categories()), settings.Keywords.Len())
	fmt.Fprintln(w)

	sink := settings.Sink
	fmt.Fprintln(w, headerStyle.Render("[Rule.io]"))
	if sink.BaseURL != "" {
		fmt.Fprintf(w, "  Base URL: %s\n", sink.BaseURL)
	} else {
		fmt.Fprintln(w, "  Base URL: (not set)")
	}
	if sink.Token != "" {
		fmt.Fprintf(w, "  Token: %s\n", maskSecret(sink.Token))
	} else {
		fmt.Fprintln(w, "  Token: (not set)")
	}
	fmt.Fprintf(w, "  Tags: %s\n", strings.Join(sink.Tags, ", "))
	fmt.Fprintf(w, "  Language: %s\n", sink.Language)
	fmt.Fprintf(w, "  Rate: %g requests/s, timeout %s\n", sink.RequestsPerSecond, sink.Timeout)
	state := "configured"
	if !sink.Configured() {
		state = "not configured"
	}
	fmt.Fprintf(w, "  Status: %s\n", state)
	fmt.Fprintln(w)

	d := settings.DailyPush
	fmt.Fprintln(w, headerStyle.Render("[Scheduler]"))
	fmt.Fprintf(w, "  Enabled: %s\n", yesNo(d.Enabled))
	fmt.Fprintf(w, "  Runs at: %02d:00 %s\n", d.Hour, d.Location)
	fmt.Fprintf(w, "  Filter: status %s, customer type %s\n", d.Status, customerTypeLabel(d.CustomerType))
	fmt.Fprintf(w, "  History kept: %d runs\n", d.HistoryKeep)
	fmt.Fprintln(w)

	fmt.Fprintln(w, headerStyle.Render("[HTTP]"))
	fmt.Fprintf(w, "  Address: %s\n", settings.HTTPAddr)
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	s, err := current()
	if err != nil {
		return err
	}
	if s.Settings == nil {
		return errors.New("settings service not configured")
	}

	key := args[0]
	var raw string
	if len(args) == 2 {
		raw = args[1]
	} else {
		if !isSecretKey(key) {
			return fmt.Errorf("missing value for %s", key)
		}
		cmd.Printf("Enter %s: ", key)
		raw = readPassword(cmd.InOrStdin())
		cmd.Println()
		if raw == "" {
			return fmt.Errorf("%s cannot be empty", key)
		}
	}

	if err := s.Settings.Set(key, parseValue(key, raw)); err != nil {
		return err
	}
	if isSecretKey(key) {
		cmd.Printf("Set %s = %s\n", key, maskSecret(raw))
	} else {
		cmd.Printf("Set %s = %s\n", key, raw)
	}

	if _, err := s.Settings.Get(); err != nil {
		cmd.Printf("Warning: configuration is now invalid: %v\n", err)
	}
	return nil
}

// Helper functions.

// textKeys are key suffixes that always hold strings, even when the value
// looks like a number.
var textKeys = []string{".dsn", ".name", ".email", ".phone", "token", "base_url", ".status", ".labor_type"}

// parseValue converts a command line value to the type stored in the
// config file under key.
func parseValue(key, raw string) any {
	s := strings.TrimSpace(raw)
	for _, suffix := range textKeys {
		if strings.HasSuffix(strings.ToLower(key), suffix) && !strings.HasPrefix(s, "[") {
			return raw
		}
	}
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		inner := strings.TrimSpace(s[1 : len(s)-1])
		if inner == "" {
			return []string{}
		}
		parts := strings.Split(inner, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			list = append(list, strings.Trim(strings.TrimSpace(p), `"'`))
		}
		return list
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return raw
}

func isSecretKey(key string) bool {
	k := strings.ToLower(key)
	return strings.HasSuffix(k, "token") || strings.HasSuffix(k, ".dsn")
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword(in io.Reader) string {
	// Try to read without echo
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(in)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskSecret(secret string) string {
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

// maskDSN hides the password of a "user:password@host/path" DSN.
func maskDSN(dsn string) string {
	at := strings.LastIndex(dsn, "@")
	if at < 0 {
		return dsn
	}
	creds := dsn[:at]
	colon := strings.Index(creds, ":")
	if colon < 0 {
		return dsn
	}
	return creds[:colon+1] + "****" + dsn[at:]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func customerTypeLabel(t domain.CustomerType) string {
	if t == "" {
		return "any"
	}
	return t.String()
}
