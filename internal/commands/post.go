package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/hgb/internal/model"
	"github.com/cleared-dev/hgb/internal/posting"
	"github.com/cleared-dev/hgb/internal/render"
)

func newPostCommand(repoDir *string) *cobra.Command {
	var description string
	var preview bool

	cmd := &cobra.Command{
		Use:   "post <from> <to> <amount>",
		Short: "Post a transfer: credit <from>, debit <to>",
		Long: `Post a double-entry transfer of <amount> from one account to another.

The source account is credited (Haben) and the destination debited (Soll),
so "hgb post 1200 1000 500" moves 500 from the bank to the cash box.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := parseAmount(args[2])
			if err != nil {
				return err
			}
			req := posting.Request{
				From:        args[0],
				To:          args[1],
				Amount:      amount,
				Description: description,
			}

			return withWorkspace(cmd.Context(), *repoDir, func(ws *workspace) error {
				proc := ws.processor(nil)
				cur := ws.cfg.Bilanz.Currency

				if preview {
					pv, err := proc.Preview(cmd.Context(), req)
					if err != nil {
						return err
					}
					return render.Transaction(cmd.OutOrStdout(), pv, cur)
				}

				txn, err := proc.Process(cmd.Context(), req)
				if err != nil {
					return err
				}
				if err := ws.commit(cmd.Context(), fmt.Sprintf("post: %s an %s %s %s", txn.ToAccount, txn.FromAccount, txn.Amount.StringFixed(2), txn.Description)); err != nil {
					return err
				}
				if err := render.Transaction(cmd.OutOrStdout(), previewOf(txn), cur); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  id %s\n", txn.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&description, "description", "d", "", "posting text")
	cmd.Flags().BoolVar(&preview, "preview", false, "show the outcome without posting")
	return cmd
}

// previewOf recovers the before/after view of a processed transaction.
func previewOf(txn model.Transaction) posting.Preview {
	return posting.Preview{
		FromAccount:       txn.FromAccount,
		ToAccount:         txn.ToAccount,
		Amount:            txn.Amount,
		DebitEntry:        txn.DebitEntry,
		CreditEntry:       txn.CreditEntry,
		FromBalanceBefore: txn.FromBalance.Sub(txn.CreditEntry.Effect),
		FromBalance:       txn.FromBalance,
		ToBalanceBefore:   txn.ToBalance.Sub(txn.DebitEntry.Effect),
		ToBalance:         txn.ToBalance,
		Classification:    txn.Classification,
	}
}
