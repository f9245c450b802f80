package cli

import (
	"context"
	"encoding/json"
	"io"

	"recon-engine/internal/app"

	"github.com/spf13/cobra"
)

var version = "1.0.0"

// ServiceFactory opens the application service on first use. The caller of
// NewRootCommand owns whatever the factory opens.
type ServiceFactory func(ctx context.Context) (app.ApplicationService, error)

type runner struct {
	open   ServiceFactory
	svc    app.ApplicationService
	asJSON bool
}

// service opens the application service once per process.
func (r *runner) service(ctx context.Context) (app.ApplicationService, error) {
	if r.svc != nil {
		return r.svc, nil
	}
	svc, err := r.open(ctx)
	if err != nil {
		return nil, err
	}
	r.svc = svc
	return svc, nil
}

// NewRootCommand builds the recon command tree.
func NewRootCommand(open ServiceFactory) *cobra.Command {
	r := &runner{open: open}

	root := &cobra.Command{
		Use:   "recon",
		Short: "Payment to invoice reconciliation engine",
		Long: `recon matches bank and marketplace payments to open invoices, keeps a
review queue for uncertain matches, assigns debtor accounts to sales invoices
and links purchase invoices to the creditor registry.

Required environment variables for every command except schema:
  DATABASE_URL - PostgreSQL connection string`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVar(&r.asJSON, "json", false, "Print results as JSON")

	root.AddCommand(
		newReconcileCmd(r),
		newSuggestionsCmd(r),
		newResolveSuggestionCmd(r, "approve", "Approve a pending suggestion and match the payment"),
		newResolveSuggestionCmd(r, "reject", "Reject a pending suggestion"),
		newAssignAccountsCmd(r),
		newResolveCreditorCmd(r),
		newResolveCreditorsCmd(r),
		newSchemaCmd(),
	)
	return root
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
