package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/niemi-bil/infoflex-bridge/internal/core/domain"
)

// filterFlags binds the order filter flags shared by orders and push.
type filterFlags struct {
	from         string
	to           string
	env          string
	envs         []string
	plates       []string
	phones       []string
	status       string
	customerType string
	invoiced     string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.from, "from", "", "start date (YYYY-MM-DD) or timestamp")
	fs.StringVar(&f.to, "to", "", "end date (YYYY-MM-DD, inclusive) or timestamp")
	fs.StringVar(&f.env, "env", "", "query a single environment")
	fs.StringSliceVar(&f.envs, "envs", nil, "environments to query (default all enabled)")
	fs.StringSliceVar(&f.plates, "plate", nil, "license plate, repeatable")
	fs.StringSliceVar(&f.phones, "phone", nil, "phone number, repeatable")
	fs.StringVar(&f.status, "status", "", "order status code, e.g. KON")
	fs.StringVar(&f.customerType, "customer-type", "", "Private or Company")
	fs.StringVar(&f.invoiced, "invoiced", "", "require invoice log entries in range (default true)")
}

func (f *filterFlags) filter(loc *time.Location) (domain.OrderFilter, error) {
	return domain.FilterParams{
		From:         f.from,
		To:           f.to,
		Environment:  f.env,
		Environments: f.envs,
		Plates:       f.plates,
		Phones:       f.phones,
		Status:       f.status,
		CustomerType: f.customerType,
		Invoiced:     f.invoiced,
	}.Filter(loc)
}
