package stripe

import (
	"testing"

	stripego "github.com/stripe/stripe-go/v75"
	"github.com/stretchr/testify/assert"
)

func TestNormalizePaymentStatus(t *testing.T) {
	assert.Equal(t, "paid", NormalizePaymentStatus(stripego.CheckoutSessionPaymentStatusPaid))
	assert.Equal(t, "paid", NormalizePaymentStatus(stripego.CheckoutSessionPaymentStatusNoPaymentRequired))
	assert.Equal(t, "paid", NormalizePaymentStatus(" paid "))
	assert.Equal(t, "pending", NormalizePaymentStatus(stripego.CheckoutSessionPaymentStatusUnpaid))
	assert.Equal(t, "none", NormalizePaymentStatus(""))
	assert.Equal(t, "none", NormalizePaymentStatus("refunded"))
}

func TestIsPaid(t *testing.T) {
	assert.True(t, IsPaid(stripego.CheckoutSessionPaymentStatusPaid))
	assert.False(t, IsPaid(stripego.CheckoutSessionPaymentStatusUnpaid))
}
