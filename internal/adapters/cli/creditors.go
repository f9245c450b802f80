package cli

import (
	"fmt"

	"recon-engine/internal/app"

	"github.com/spf13/cobra"
)

func newResolveCreditorCmd(r *runner) *cobra.Command {
	var account int

	cmd := &cobra.Command{
		Use:   "resolve-creditor <invoice-id>",
		Short: "Link a purchase invoice to a creditor",
		Long: `Fuzzy-matches the supplier name of a purchase invoice against the creditor
registry. With --account the reviewer's choice is stored and the supplier name
is learned as an alias of that creditor.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			req := app.ResolveCreditorRequest{InvoiceID: args[0]}
			if cmd.Flags().Changed("account") {
				req.CreditorAccount = &account
			}

			res, err := svc.ResolveCreditor(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("resolve creditor: %w", err)
			}
			if r.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			out := cmd.OutOrStdout()
			if res.CreditorAccount == nil {
				fmt.Fprintf(out, "Invoice %s: %s (best score %.2f)\n", res.InvoiceID, res.Status, res.Score)
				return nil
			}
			fmt.Fprintf(out, "Invoice %s: %s creditor %d %s (score %.2f)\n",
				res.InvoiceID, res.Status, *res.CreditorAccount, res.MatchedName, res.Score)
			return nil
		},
	}
	cmd.Flags().IntVar(&account, "account", 0, "Assign this creditor account manually")
	return cmd
}

func newResolveCreditorsCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve-creditors",
		Short: "Resolve creditors for all unlinked purchase invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			s, err := svc.ResolveCreditors(cmd.Context())
			if err != nil {
				return fmt.Errorf("creditor resolution failed: %w", err)
			}
			if r.asJSON {
				return writeJSON(cmd.OutOrStdout(), s)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Checked %d, auto-assigned %d, queued %d, errors %d\n",
				s.Checked, s.AutoAssigned, len(s.Queued), len(s.Errors))
			for _, id := range s.Queued {
				fmt.Fprintf(out, "  ? %s needs a manual creditor\n", id)
			}
			printErrors(out, s.Errors)
			return nil
		},
	}
}
