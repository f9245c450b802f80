package app

// ReconcileRequest is the input for a reconciliation run.
type ReconcileRequest struct {
	Direction  string   `json:"direction"` // "incoming", "outgoing", or "all"/empty for both
	From       string   `json:"from"`      // YYYY-MM-DD, optional
	To         string   `json:"to"`        // YYYY-MM-DD, optional
	PaymentIDs []string `json:"payment_ids"`
	Force      bool     `json:"force"`
}

// AssignAccountsRequest is the input for debtor account assignment.
type AssignAccountsRequest struct {
	InvoiceIDs []string `json:"invoice_ids"`
	Force      bool     `json:"force"`
}

// ResolveCreditorRequest is the input for resolving one purchase invoice's creditor.
type ResolveCreditorRequest struct {
	InvoiceID       string `json:"invoice_id"`
	CreditorAccount *int   `json:"creditor_account,omitempty"` // set for a manual assignment
}
