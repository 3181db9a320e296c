package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// defaultHistoryLimit is the number of runs shown by schedule history.
const defaultHistoryLimit = 10

var errNoScheduler = errors.New("scheduler is not configured")

func init() {
	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Daily push commands",
		Long: `Commands for the daily Rule.io push. The push runs from 'serve' when
scheduler.enabled is true.`,
	}
	scheduleCmd.AddCommand(newScheduleRunCmd(), newScheduleHistoryCmd())
	rootCmd.AddCommand(scheduleCmd)
}

func newScheduleRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the daily push now for the previous day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			if s.Scheduler == nil {
				return errNoScheduler
			}

			result, err := s.Scheduler.RunNow(cmd.Context())
			if result == nil {
				return err
			}
			printTaskResult(cmd.OutOrStdout(), result)
			if err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("run %s failed: %s", result.RunID, result.Error)
			}
			return nil
		},
	}
}

func newScheduleHistoryCmd() *cobra.Command {
	var (
		limit  int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent daily push runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			if s.Scheduler == nil {
				return errNoScheduler
			}

			runs, err := s.Scheduler.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if asJSON {
				if runs == nil {
					runs = []domain.TaskResult{}
				}
				return writeJSON(w, runs)
			}

			if s.DailyPush.Enabled {
				fmt.Fprintf(w, "Next run: %s\n", formatTime(s.Scheduler.NextRun()))
			} else {
				fmt.Fprintln(w, "Daily push is disabled.")
			}
			if len(runs) == 0 {
				fmt.Fprintln(w, "No runs recorded.")
				return nil
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				trigger := "scheduled"
				if r.Manual {
					trigger = "manual"
				}
				rows = append(rows, []string{
					r.RunID,
					windowDay(r),
					formatTime(r.StartedAt),
					r.Duration().Round(time.Millisecond).String(),
					trigger,
					status(w, r.Success),
					strconv.Itoa(r.Sent),
					r.Error,
				})
			}
			renderTable(w, []string{"RUN", "ORDERS OF", "STARTED", "DURATION", "TRIGGER", "STATUS", "SENT", "ERROR"}, rows)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of runs to show")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print runs as JSON")
	return cmd
}

func printTaskResult(w io.Writer, r *domain.TaskResult) {
	fmt.Fprintf(w, "Run:      %s\n", r.RunID)
	fmt.Fprintf(w, "Started:  %s\n", formatTime(r.StartedAt))
	fmt.Fprintf(w, "Orders:   %s\n", windowDay(*r))
	fmt.Fprintf(w, "Fetched:  %d orders, %d eligible\n", r.Fetched, r.Eligible)
	fmt.Fprintf(w, "Sent:     %d subscribers\n", r.Sent)
	fmt.Fprintf(w, "Status:   %s\n", status(w, r.Success))
	if r.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", r.Error)
	}
}

// windowDay shows the pushed window as a day when it covers exactly one.
func windowDay(r domain.TaskResult) string {
	if r.WindowFrom.IsZero() {
		return "-"
	}
	from, to := domain.DayRange(r.WindowFrom)
	if from.Equal(r.WindowFrom) && to.Equal(r.WindowTo) {
		return r.WindowFrom.Format(time.DateOnly)
	}
	return r.WindowFrom.Format(time.DateOnly) + ".." + r.WindowTo.Format(time.DateOnly)
}
