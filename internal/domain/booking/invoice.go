package booking

import (
	"context"
	"fmt"
)

// InvoiceSequence mints the numeric suffix of invoice numbers. The counter
// is durable and atomically incremented by the storage layer; values are
// never reused, even when the owning booking is later cancelled, so a
// rolled-back confirmation simply burns a number.
type InvoiceSequence interface {
	// Next returns the next value of the counter scoped to the given year.
	Next(ctx context.Context, year int) (int64, error)
}

// FormatInvoiceNumber renders a counter value as the human-readable invoice
// identifier, e.g. INV-2025-000042.
func FormatInvoiceNumber(year int, seq int64) string {
	return fmt.Sprintf("INV-%d-%06d", year, seq)
}
