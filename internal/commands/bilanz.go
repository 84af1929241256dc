package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/model"
	"github.com/cleared-dev/hgb/internal/render"
)

var errUnbalanced = errors.New("bilanz is not balanced")

func newBilanzCommand(repoDir *string) *cobra.Command {
	bilanzCmd := &cobra.Command{
		Use:   "bilanz",
		Short: "Show and check the balance sheet",
	}
	bilanzCmd.AddCommand(
		newBilanzShowCommand(repoDir),
		newBilanzValidateCommand(repoDir),
		newBilanzResolveCommand(repoDir),
	)
	return bilanzCmd
}

func newBilanzShowCommand(repoDir *string) *cobra.Command {
	var periodEnd string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the Bilanz with Aktiva and Passiva side by side",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var end time.Time
			if periodEnd != "" {
				t, err := time.Parse(time.DateOnly, periodEnd)
				if err != nil {
					return fmt.Errorf("--period-end must be YYYY-MM-DD: %w", err)
				}
				end = t
			}

			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				agg, err := ws.aggregator(nil)
				if err != nil {
					return err
				}
				b, err := agg.ComputeAt(cmd.Context(), end)
				if err != nil {
					return err
				}
				return render.Bilanz(cmd.OutOrStdout(), b, ws.cfg.Bilanz.Currency)
			})
		},
	}

	cmd.Flags().StringVar(&periodEnd, "period-end", "", "Stichtag label, YYYY-MM-DD (default today)")
	return cmd
}

func newBilanzValidateCommand(repoDir *string) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check that Aktiva equal Passiva",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				agg, err := ws.aggregator(nil)
				if err != nil {
					return err
				}
				v, err := agg.Validate(cmd.Context())
				if err != nil {
					return err
				}

				cur := ws.cfg.Bilanz.Currency
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Aktiva:  %s\n", render.Money(v.AktivaTotal, cur))
				fmt.Fprintf(out, "Passiva: %s\n", render.Money(v.PassivaTotal, cur))
				fmt.Fprintln(out, render.Check(v.IsBalanced, v.Difference, cur))

				if strict && !v.IsBalanced {
					return errUnbalanced
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when the sheet does not balance")
	return cmd
}

func newBilanzResolveCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <number>",
		Short: "Show where an account lands on the Bilanz",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				agg, err := ws.aggregator(nil)
				if err != nil {
					return err
				}
				res, err := agg.ResolveAccount(cmd.Context(), args[0])
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s %s (%s)\n", res.Number, res.Name, res.Type)
				fmt.Fprintf(out, "  side:     %s\n", res.Side)
				if res.Side != model.BilanzSideErfolgsrechnung {
					fmt.Fprintf(out, "  category: %s\n", res.Category)
				}
				fmt.Fprintf(out, "  amount:   %s\n", render.Money(res.Contribution, ws.cfg.Bilanz.Currency))
				return nil
			})
		},
	}
}
