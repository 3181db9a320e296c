package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

func init() {
	rootCmd.AddCommand(newOrdersCmd())
}

func newOrdersCmd() *cobra.Command {
	var (
		flags  filterFlags
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "orders",
		Short: "Query orders across environments",
		Long: `Query orders from every enabled environment, or the ones selected with
--env or --envs. Orders are selected by date range, license plates or
phone numbers.

Examples:
  # Invoiced orders of one day in all environments
  infoflex-bridge orders --from 2025-10-15 --to 2025-10-15

  # Orders for two plates in Umeå, invoiced or not
  infoflex-bridge orders --env NIEM3 --plate ABC123 --plate XYZ789 --invoiced=false

  # Private customers matching a phone number, as JSON
  infoflex-bridge orders --from 2025-10-01 --to 2025-10-31 \
    --phone 070-383 35 67 --customer-type private --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			filter, err := flags.filter(s.location())
			if err != nil {
				return err
			}
			orders, err := s.Orders.Aggregate(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if asJSON {
				if orders == nil {
					orders = []domain.Order{}
				}
				return writeJSON(cmd.OutOrStdout(), orders)
			}
			printOrders(cmd.OutOrStdout(), orders)
			return nil
		},
	}
	flags.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print orders as JSON")
	return cmd
}

func printOrders(w io.Writer, orders []domain.Order) {
	if len(orders) == 0 {
		fmt.Fprintln(w, "No orders found.")
		return
	}

	rows := make([][]string, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		rows = append(rows, []string{
			o.Environment,
			strconv.Itoa(o.Number),
			formatDate(o.Date),
			o.Plate,
			o.Status,
			customerName(o),
			strconv.FormatFloat(o.TotalInclVAT, 'f', 2, 64),
			strings.Join(o.Categories, ", "),
		})
	}
	renderTable(w, []string{"ENV", "ORDER", "DATE", "PLATE", "STATUS", "CUSTOMER", "TOTAL", "CATEGORIES"}, rows)
	fmt.Fprintf(w, "%d orders\n", len(orders))
}

func customerName(o *domain.Order) string {
	c := o.Customer
	if c == nil {
		return o.Name
	}
	if c.CompanyName != "" {
		return c.CompanyName
	}
	if name := strings.TrimSpace(c.FirstName + " " + c.LastName); name != "" {
		return name
	}
	return c.Name
}
