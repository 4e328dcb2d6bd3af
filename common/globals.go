package common

const (
	ZapStatePending = "pending"
	ZapStatePaid    = "paid"
	ZapStateExpired = "expired"
	ZapStateError   = "error"

	PostSortNew = "new"
	PostSortTop = "top"

	// Fabricated payment hashes in demo mode carry this prefix so no
	// caller can mistake them for payable invoices.
	DemoPaymentHashPrefix = "demo_"
)
