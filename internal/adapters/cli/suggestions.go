package cli

import (
	"fmt"
	"io"
	"strings"

	"recon-engine/internal/app"

	"github.com/spf13/cobra"
)

func newSuggestionsCmd(r *runner) *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "suggestions",
		Short: "List review queue entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}
			res, err := svc.ListSuggestions(cmd.Context(), status)
			if err != nil {
				return fmt.Errorf("list suggestions: %w", err)
			}
			if r.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			printSuggestions(cmd.OutOrStdout(), res)
			return nil
		},
	}
	cmd.Flags().StringVar(&status, "status", "pending", "Filter by status: pending, approved, rejected (empty for all)")
	return cmd
}

// newResolveSuggestionCmd builds approve and reject, which differ only in the transition.
func newResolveSuggestionCmd(r *runner, use, short string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <suggestion-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := r.service(cmd.Context())
			if err != nil {
				return err
			}

			var res *app.DecisionResult
			if use == "approve" {
				res, err = svc.ApproveSuggestion(cmd.Context(), args[0])
			} else {
				res, err = svc.RejectSuggestion(cmd.Context(), args[0])
			}
			if err != nil {
				return fmt.Errorf("%s failed: %w", use, err)
			}
			if r.asJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}
			d := res.Decision
			fmt.Fprintf(cmd.OutOrStdout(), "Suggestion %s: payment %s -> invoice %s (%s, score %.2f)\n",
				res.SuggestionID, d.PaymentID, orDash(d.InvoiceID), d.Outcome, d.Score)
			return nil
		},
	}
}

func printSuggestions(w io.Writer, res *app.SuggestionListResult) {
	if len(res.Suggestions) == 0 {
		fmt.Fprintln(w, "No suggestions.")
		return
	}
	fmt.Fprintf(w, "%-36s %-16s %-16s %7s  %-9s %s\n", "ID", "PAYMENT", "INVOICE", "SCORE", "STATUS", "CREATED")
	fmt.Fprintln(w, strings.Repeat("-", 104))
	for _, s := range res.Suggestions {
		fmt.Fprintf(w, "%-36s %-16s %-16s %7.2f  %-9s %s\n",
			s.ID, s.PaymentID, s.CandidateID, s.Score, s.Status, s.CreatedAt.Format("2006-01-02 15:04"))
	}
}
