package billing

import "fmt"

// InvoiceNumber formats a human-readable invoice number from the owner's
// prefix and running counter. The counter is zero-padded to at least four
// digits; larger numbers keep all their digits.
func InvoiceNumber(prefix string, number int) string {
	return fmt.Sprintf("%s%04d", prefix, number)
}
