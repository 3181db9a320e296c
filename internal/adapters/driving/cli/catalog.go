package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newEnvironmentsCmd(), newCategoriesCmd(), newClassifyCmd())
}

func newEnvironmentsCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "environments",
		Short: "List configured environments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			envs := s.Registry.Environments()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), envs)
			}

			rows := make([][]string, 0, len(envs))
			for _, env := range envs {
				connected := "no"
				if _, err := s.Registry.ConnectionFor(env.ID); err == nil {
					connected = "yes"
				}
				rows = append(rows, []string{
					env.ID,
					env.Facility.Name,
					env.Facility.Email,
					env.Facility.Phone,
					strconv.FormatBool(env.Enabled),
					connected,
				})
			}
			renderTable(cmd.OutOrStdout(), []string{"ID", "FACILITY", "EMAIL", "PHONE", "ENABLED", "DSN"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print environments as JSON")
	return cmd
}

func newCategoriesCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List repair categories and their keywords",
		Long: `List the keyword table used to classify labor lines. Categories are
tested in order and the first matching keyword wins.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			categories := s.Classifier.Categories()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), categories)
			}

			rows := make([][]string, 0, len(categories))
			for _, c := range categories {
				keywords := make([]string, len(c.Entries))
				for i, e := range c.Entries {
					keywords[i] = strconv.Quote(e.Keyword)
				}
				rows = append(rows, []string{c.Category, strings.Join(keywords, " ")})
			}
			renderTable(cmd.OutOrStdout(), []string{"CATEGORY", "KEYWORDS"}, rows)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print categories as JSON")
	return cmd
}

func newClassifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "classify <text>",
		Short:   "Classify a line item text",
		Example: `  infoflex-bridge classify "Byte bromsklossar fram"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := current()
			if err != nil {
				return err
			}
			c := s.Classifier.Classify(strings.Join(args, " "))
			if !c.Matched() {
				fmt.Fprintln(cmd.OutOrStdout(), "No category matched.")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (keyword %q)\n", c.Category, c.Keyword)
			return nil
		},
	}
}
