package cli

import (
	"fmt"
	"io"
	"strings"

	"recon-engine/internal/app"
	"recon-engine/internal/core"
	"recon-engine/internal/logger"

	"github.com/spf13/cobra"
)

func newReconcileCmd(r *runner) *cobra.Command {
	var req app.ReconcileRequest

	cmd := &cobra.Command{
		Use:   "reconcile [payment-id...]",
		Short: "Match unmatched payments to open invoices",
		Long: `Scores every unmatched payment against the open invoices of its direction
and persists one decision per payment: auto_matched, suggested (queued for
review) or rejected. Repeated runs over unchanged data change nothing.

Auto-matched payments are only re-evaluated with --force or when named explicitly.`,
		Example: `  # All open payments
  recon reconcile

  # Incoming payments booked in October
  recon reconcile --direction incoming --from 2025-10-01 --to 2025-10-31

  # Re-evaluate one payment including an existing auto match
  recon reconcile PAY-1 --force`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.WithComponent("reconcile")
			req.PaymentIDs = args

			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			log.Info().
				Str("direction", req.Direction).
				Str("from", req.From).
				Str("to", req.To).
				Int("payments", len(req.PaymentIDs)).
				Bool("force", req.Force).
				Msg("Starting reconciliation")

			summary, err := svc.RunReconciliation(cmd.Context(), req)
			if err != nil {
				return fmt.Errorf("reconciliation failed: %w", err)
			}
			if r.asJSON {
				return writeJSON(cmd.OutOrStdout(), summary)
			}
			printSummary(cmd.OutOrStdout(), summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Direction, "direction", "all", "Payment direction: incoming, outgoing or all")
	cmd.Flags().StringVar(&req.From, "from", "", "Earliest payment date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.To, "to", "", "Latest payment date (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&req.Force, "force", false, "Re-evaluate auto-matched payments")
	return cmd
}

func printSummary(w io.Writer, s *core.Summary) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  RECONCILIATION RUN %s\n", s.RunID)
	fmt.Fprintln(w, strings.Repeat("=", 72))
	fmt.Fprintf(w, "  Checked      : %d\n", s.Checked)
	fmt.Fprintf(w, "  Auto-matched : %d\n", s.AutoMatched)
	fmt.Fprintf(w, "  Suggested    : %d\n", s.Suggested)
	fmt.Fprintf(w, "  Rejected     : %d\n", s.Rejected)
	fmt.Fprintf(w, "  Skipped      : %d\n", s.Skipped)
	fmt.Fprintf(w, "  Errors       : %d\n", len(s.Errors))

	if len(s.Preview) > 0 {
		fmt.Fprintln(w, strings.Repeat("-", 72))
		fmt.Fprintf(w, "  %-16s %-16s %7s  %-13s %s\n", "PAYMENT", "INVOICE", "SCORE", "OUTCOME", "A/D/R/N")
		for _, d := range s.Preview {
			fmt.Fprintf(w, "  %-16s %-16s %7.2f  %-13s %.0f/%.0f/%.0f/%.0f\n",
				d.PaymentID, orDash(d.InvoiceID), d.Score, d.Outcome,
				d.Signals.AmountScore, d.Signals.DateScore, d.Signals.ReferenceScore, d.Signals.NameScore)
		}
	}
	printErrors(w, s.Errors)
	fmt.Fprintln(w, strings.Repeat("=", 72))
}

func printErrors(w io.Writer, errs []core.ItemError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintln(w, strings.Repeat("-", 72))
	for _, e := range errs {
		fmt.Fprintf(w, "  ! %-16s %s\n", e.ID, e.Err)
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
