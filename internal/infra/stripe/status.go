package stripe

import (
	"strings"

	stripego "github.com/stripe/stripe-go/v75"
)

// NormalizePaymentStatus folds a checkout session's payment_status into paid | pending | none.
func NormalizePaymentStatus(s stripego.CheckoutSessionPaymentStatus) string {
	switch strings.TrimSpace(string(s)) {
	case string(stripego.CheckoutSessionPaymentStatusPaid),
		string(stripego.CheckoutSessionPaymentStatusNoPaymentRequired):
		return "paid"
	case string(stripego.CheckoutSessionPaymentStatusUnpaid):
		return "pending"
	default:
		return "none"
	}
}

// IsPaid reports whether a session's money has actually arrived.
func IsPaid(s stripego.CheckoutSessionPaymentStatus) bool {
	return NormalizePaymentStatus(s) == "paid"
}
