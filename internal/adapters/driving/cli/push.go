package cli

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
	"github.com/niemi-bil/infoflex-bridge/internal/core/services"
)

func init() {
	rootCmd.AddCommand(newPushCmd())
}

func newPushCmd() *cobra.Command {
	var (
		flags  filterFlags
		dryRun bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Push contactable customers to Rule.io",
		Long: `Query orders like the orders command and send every customer with an
email address or a mobile number to Rule.io as one batch.

Without a date range or plates the previous day is pushed.

Examples:
  # Preview yesterday's finished private orders without sending
  infoflex-bridge push --status KON --customer-type private --dry-run --json

  # Push one week
  infoflex-bridge push --from 2025-10-06 --to 2025-10-12 --status KON`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			if s.Pusher == nil {
				return errors.New("push is not configured")
			}
			if flags.from == "" && flags.to == "" && len(flags.plates) == 0 {
				from, to := domain.PreviousDay(time.Now(), s.location())
				flags.from, flags.to = from.Format(time.RFC3339), to.Format(time.RFC3339)
			}
			filter, err := flags.filter(s.location())
			if err != nil {
				return err
			}

			result, err := s.Pusher.Push(cmd.Context(), filter, dryRun)
			if result != nil {
				if asJSON {
					if jerr := writeJSON(cmd.OutOrStdout(), result); jerr != nil {
						return jerr
					}
				} else {
					printPush(cmd.OutOrStdout(), result)
				}
			}
			return err
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "build the batch without sending it")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func printPush(w io.Writer, r *domain.PushResult) {
	fmt.Fprintf(w, "Run:      %s\n", r.RunID)
	fmt.Fprintf(w, "Fetched:  %d orders\n", r.Fetched)
	fmt.Fprintf(w, "Eligible: %d subscribers\n", r.Eligible)
	if r.DryRun {
		fmt.Fprintln(w, "Dry run, nothing sent.")
		if r.Batch != nil && len(r.Batch.Subscribers) > 0 {
			rows := make([][]string, 0, len(r.Batch.Subscribers))
			for _, sub := range r.Batch.Subscribers {
				rows = append(rows, []string{sub.Email, sub.PhoneNumber, fieldText(&sub, services.FieldPlate), fieldText(&sub, services.FieldFacility)})
			}
			renderTable(w, []string{"EMAIL", "PHONE", "PLATE", "FACILITY"}, rows)
		}
		return
	}
	fmt.Fprintf(w, "Sent:     %d subscribers\n", r.Sent)
	fmt.Fprintf(w, "Status:   %s\n", status(w, r.Success))
	if r.Message != "" {
		fmt.Fprintf(w, "Message:  %s\n", r.Message)
	}
}

func fieldText(sub *domain.Subscriber, key string) string {
	f, ok := sub.Field(key)
	if !ok {
		return ""
	}
	s, _ := f.Value.(string)
	return s
}
