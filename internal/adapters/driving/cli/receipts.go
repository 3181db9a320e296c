package cli

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

var errNoReceipts = errors.New("goods receipts are not available")

func init() {
	rootCmd.AddCommand(newReceiptsCmd())
}

func newReceiptsCmd() *cobra.Command {
	var (
		from, to, env string
		skip, take    int
		asJSON        bool
	)
	cmd := &cobra.Command{
		Use:   "receipts",
		Short: "List goods receipts from one environment",
		Long: `List supplier deliveries whose delivery date falls in --from..--to, with
their article rows. Pages count receipts; use --skip and --take to walk
a long range. Without --env the default environment is read.

Examples:
  infoflex-bridge receipts --from 2025-10-01 --to 2025-10-15
  infoflex-bridge receipts --env NIEM4 --from 2025-10-01 --to 2025-10-31 --skip 100 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			if s.Receipts == nil {
				return errNoReceipts
			}
			q, err := domain.ReceiptParams{
				From:        from,
				To:          to,
				Environment: env,
				Skip:        strconv.Itoa(skip),
				Take:        strconv.Itoa(take),
			}.Query(s.location())
			if err != nil {
				return err
			}

			receipts, err := s.Receipts.Receipts(cmd.Context(), q)
			if err != nil {
				return err
			}
			if asJSON {
				if receipts == nil {
					receipts = []domain.GoodsReceipt{}
				}
				return writeJSON(cmd.OutOrStdout(), receipts)
			}
			printReceipts(cmd.OutOrStdout(), receipts)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "first delivery date (yyyy-MM-dd)")
	cmd.Flags().StringVar(&to, "to", "", "last delivery date, inclusive")
	cmd.Flags().StringVar(&env, "env", "", "environment id (default: the configured default)")
	cmd.Flags().IntVar(&skip, "skip", 0, "receipts to skip")
	cmd.Flags().IntVar(&take, "take", domain.DefaultReceiptTake, "receipts to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print receipts as JSON")
	return cmd
}

func printReceipts(w io.Writer, receipts []domain.GoodsReceipt) {
	if len(receipts) == 0 {
		fmt.Fprintln(w, "No goods receipts found.")
		return
	}

	rows := make([][]string, 0, len(receipts))
	for i := range receipts {
		r := &receipts[i]
		rows = append(rows, []string{
			r.Environment,
			strconv.Itoa(r.Number),
			formatDate(r.DeliveredAt),
			r.Supplier,
			r.SupplierRef,
			strconv.Itoa(len(r.Rows)),
			strconv.FormatFloat(r.Total, 'f', 2, 64),
		})
	}
	renderTable(w, []string{"ENV", "RECEIPT", "DELIVERED", "SUPPLIER", "REF", "ROWS", "TOTAL"}, rows)
	fmt.Fprintf(w, "%d receipts\n", len(receipts))
}
