package commands

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/accounts"
	"github.com/cleared-dev/hgb/internal/chart"
	"github.com/cleared-dev/hgb/internal/model"
	"github.com/cleared-dev/hgb/internal/render"
)

func newAccountCommand(repoDir *string) *cobra.Command {
	accountCmd := &cobra.Command{
		Use:   "account",
		Short: "Create, inspect and post to accounts",
	}
	accountCmd.AddCommand(
		newAccountCreateCommand(repoDir),
		newAccountStandardCommand(repoDir),
		newAccountStarterCommand(repoDir),
		newAccountListCommand(repoDir),
		newAccountShowCommand(repoDir),
		newAccountPostCommand(repoDir, model.SideSoll),
		newAccountPostCommand(repoDir, model.SideHaben),
		newAccountSuggestCommand(repoDir),
	)
	return accountCmd
}

// withWorkspace opens the books directory, runs fn and closes it again.
func withWorkspace(ctx context.Context, dir string, fn func(ws *workspace) error) (err error) {
	ws, err := openWorkspace(ctx, dir)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := ws.Close(); err == nil {
			err = cerr
		}
	}()
	return fn(ws)
}

func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", accounts.ErrInvalidAmount, s)
	}
	return d, nil
}

func parseBalance(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing balance %q: %w", s, err)
	}
	return d, nil
}

func newAccountCreateCommand(repoDir *string) *cobra.Command {
	var accountType string
	var balance string
	var category string

	cmd := &cobra.Command{
		Use:   "create <number> <name>",
		Short: "Create a custom account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := model.ParseAccountType(accountType)
			if err != nil {
				return fmt.Errorf("%w: %w", accounts.ErrInvalidAccountType, err)
			}
			bal, err := parseBalance(balance)
			if err != nil {
				return err
			}

			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				acct, err := ws.accounts.Create(cmd.Context(), accounts.CreateParams{
					Number:   args[0],
					Name:     args[1],
					Type:     t,
					Balance:  bal,
					Category: category,
				})
				if err != nil {
					return err
				}
				if w := model.NumberRangeWarning(acct.Number, acct.Type); w != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w)
				}
				if err := ws.commit(cmd.Context(), fmt.Sprintf("account: create %s %s", acct.Number, acct.Name)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", acct.Number, acct.Name, acct.Type)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&accountType, "type", "", "aktivkonto, passivkonto, aufwandskonto or ertragskonto (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&balance, "balance", "", "initial balance")
	cmd.Flags().StringVar(&category, "category", "", "category label")
	return cmd
}

func newAccountStandardCommand(repoDir *string) *cobra.Command {
	var balance string

	cmd := &cobra.Command{
		Use:   "standard <number>",
		Short: "Create an account from the standard chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bal, err := parseBalance(balance)
			if err != nil {
				return err
			}
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				acct, err := ws.accounts.CreateFromStandard(cmd.Context(), args[0], bal)
				if err != nil {
					return err
				}
				if err := ws.commit(cmd.Context(), fmt.Sprintf("account: create %s %s", acct.Number, acct.Name)); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %s %s (%s)\n", acct.Number, acct.Name, acct.Type)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&balance, "balance", "", "initial balance")
	return cmd
}

func newAccountStarterCommand(repoDir *string) *cobra.Command {
	var balances map[string]string

	cmd := &cobra.Command{
		Use:   "starter",
		Short: "Create the recommended starter accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			initial := make(map[string]decimal.Decimal, len(balances))
			for n, v := range balances {
				d, err := parseBalance(v)
				if err != nil {
					return fmt.Errorf("account %s: %w", n, err)
				}
				initial[n] = d
			}

			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				res := ws.accounts.CreateStarterAccounts(cmd.Context(), initial)
				for _, e := range res.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", e)
				}
				if len(res.Created) > 0 {
					if err := ws.commit(cmd.Context(), fmt.Sprintf("account: create %d starter accounts", len(res.Created))); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Created %d of %d starter accounts\n", len(res.Created), len(res.Created)+len(res.Errors))
				return nil
			})
		},
	}

	cmd.Flags().StringToStringVar(&balances, "balance", nil, "initial balances as number=amount, e.g. 1200=5000")
	return cmd
}

func newAccountListCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				accts, err := ws.accounts.List(cmd.Context())
				if err != nil {
					return err
				}
				return render.Accounts(cmd.OutOrStdout(), accts, ws.cfg.Bilanz.Currency)
			})
		},
	}
}

func newAccountShowCommand(repoDir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "show <number>",
		Short: "Show one account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				acct, err := ws.accounts.Get(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return render.Accounts(cmd.OutOrStdout(), []model.Account{acct}, ws.cfg.Bilanz.Currency)
			})
		},
	}
}

// newAccountPostCommand builds "debit" (Soll) or "credit" (Haben).
func newAccountPostCommand(repoDir *string, side model.Side) *cobra.Command {
	use, short := "debit", "Post an amount on the Soll side"
	if side == model.SideHaben {
		use, short = "credit", "Post an amount on the Haben side"
	}

	return &cobra.Command{
		Use:   use + " <number> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[1])
			if err != nil {
				return err
			}
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				apply := ws.accounts.Debit
				if side == model.SideHaben {
					apply = ws.accounts.Credit
				}
				acct, err := apply(cmd.Context(), args[0], amount)
				if err != nil {
					return err
				}
				if err := ws.commit(cmd.Context(), fmt.Sprintf("%s: %s %s", use, acct.Number, amount.StringFixed(2))); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s: new balance %s\n", acct.Number, acct.Name, render.Money(acct.Balance, ws.cfg.Bilanz.Currency))
				return nil
			})
		},
	}
}

func newAccountSuggestCommand(repoDir *string) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "suggest <query>",
		Short: "Search the standard chart and show which accounts exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				sugs, err := ws.accounts.Suggest(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				entries := make([]chart.Entry, 0, len(sugs))
				existing := make(map[string]bool)
				for _, s := range sugs {
					entries = append(entries, s.Entry)
					if s.AlreadyExists {
						existing[s.Number] = true
					}
				}
				return render.Catalog(cmd.OutOrStdout(), entries, existing)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}
