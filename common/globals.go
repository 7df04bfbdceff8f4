package common

const (
	InvoiceStatePending = "pending"
	InvoiceStatePaid    = "paid"
	InvoiceStateExpired = "expired"

	// Pubsub topic for invoices that reached the paid state. Per-invoice
	// topics use the stringified invoice id.
	TopicInvoiceSettled = "invoice_settled"

	// XRP amounts are stored in drops, the ledger's minor unit.
	DropsPerXRP = 1_000_000
)
