package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/chart"
	"github.com/cleared-dev/hgb/internal/model"
	"github.com/cleared-dev/hgb/internal/render"
)

// The chart commands read the built-in catalog only and work outside a
// books directory.
func newChartCommand(_ *string) *cobra.Command {
	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Browse the standard chart of accounts",
	}
	chartCmd.AddCommand(
		newChartListCommand(),
		newChartSearchCommand(),
		newChartShowCommand(),
		newChartCategoriesCommand(),
	)
	return chartCmd
}

func newChartListCommand() *cobra.Command {
	var accountType string
	var category string
	var numberRange string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog entries, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := chart.All()
			switch {
			case accountType != "":
				t, err := model.ParseAccountType(accountType)
				if err != nil {
					return err
				}
				entries = chart.ByType(t)
			case category != "":
				entries = chart.ByCategory(category)
			case numberRange != "":
				start, end, ok := strings.Cut(numberRange, "-")
				if !ok {
					return fmt.Errorf("--range must look like 1000-1999, got %q", numberRange)
				}
				entries = chart.InRange(start, end)
			}
			return render.Catalog(cmd.OutOrStdout(), entries, nil)
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "only entries of this account type")
	cmd.Flags().StringVar(&category, "category", "", "only entries of this category")
	cmd.Flags().StringVar(&numberRange, "range", "", "only numbers in START-END")
	cmd.MarkFlagsMutuallyExclusive("type", "category", "range")
	return cmd
}

func newChartSearchCommand() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog by number or name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			matches := chart.Search(args[0])
			if limit > 0 && len(matches) > limit {
				matches = matches[:limit]
			}
			if len(matches) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No accounts match %q\n", args[0])
				return nil
			}
			return render.Catalog(cmd.OutOrStdout(), matches, nil)
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results, 0 for all")
	return cmd
}

func newChartShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Show a catalog entry and its Bilanz category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entry, ok := chart.Lookup(args[0])
			if !ok {
				return fmt.Errorf("%w: %s", accounts.ErrUnknownStandardAccount, args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", entry.Number, entry.Name)
			fmt.Fprintf(out, "  type:     %s\n", entry.Type)
			fmt.Fprintf(out, "  category: %s\n", entry.Category)
			if c, ok := chart.CategoryForNumber(entry.Number); ok {
				names := make([]string, 0, 2)
				for _, p := range chart.Path(c.Key) {
					names = append(names, p.Name)
				}
				fmt.Fprintf(out, "  bilanz:   %s / %s\n", c.Section, strings.Join(names, " / "))
			}
			return nil
		},
	}
}

func newChartCategoriesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "Print the Bilanz category hierarchy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, section := range []model.BilanzSide{model.BilanzSideAktiva, model.BilanzSidePassiva} {
				fmt.Fprintln(out, strings.ToUpper(string(section)))
				for _, c := range chart.MainCategories(section) {
					fmt.Fprintf(out, "  %s\n", c.Name)
					for _, sub := range chart.Subcategories(c.Key) {
						fmt.Fprintf(out, "    %s\n", sub.Name)
					}
				}
			}
			return nil
		},
	}
}
