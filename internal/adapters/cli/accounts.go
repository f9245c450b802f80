package cli

import (
	"fmt"
	"io"
	"strings"

	"recon-engine/internal/app"
	"recon-engine/internal/core"

	"github.com/spf13/cobra"
)

func newAssignAccountsCmd(r *runner) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "assign-accounts [invoice-id...]",
		Short: "Assign debtor accounts to sales invoices",
		Long: `Applies the debtor rules to sales invoices: intra-EU reverse charge invoices
get the customer's dedicated account (allocated on first use), all others the
collective account of their payment method or the configured fallback.

Without invoice IDs every sales invoice without an account is processed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			summary, err := svc.AssignAccounts(cmd.Context(), app.AssignAccountsRequest{InvoiceIDs: args, Force: force})
			if err != nil {
				return fmt.Errorf("account assignment failed: %w", err)
			}
			if r.asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			printAssignmentSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Replace existing assignments")
	return cmd
}

func printAssignmentSummary(w io.Writer, s *core.AssignmentSummary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintln(w, "  ACCOUNT ASSIGNMENT")
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  Checked  : %d\n", s.Checked)
	fmt.Fprintf(w, "  Assigned : %d\n", s.Assigned)
	fmt.Fprintf(w, "  Skipped  : %d\n", s.Skipped)
	fmt.Fprintf(w, "  Review   : %d\n", len(s.FlaggedForReview))
	fmt.Fprintf(w, "  Errors   : %d\n", len(s.Errors))

	if len(s.Preview) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 72))
		fmt.Fprintf(w, "  %-20s %8s  %s\n", "INVOICE", "ACCOUNT", "REASON")
		for _, a := range s.Preview {
			fmt.Fprintf(w, "  %-20s %8d  %s\n", a.InvoiceID, a.AccountNumber, a.ReasonCode)
		}
	}
	for _, id := range s.FlaggedForReview {
		fmt.Fprintf(w, "  ? %-20s flagged for review\n", id)
	}
	printErrors(w, s.Errors)
	fmt.Fprintln(w, strings.Repeat("=", 72))
}
