package stripewebhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"learning-platform/internal/repository"
	"learning-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
)

const maxBodyBytes = 65536

// Handler turns paid Stripe checkouts into access grants. Grants are applied
// as the configured billing admin, so they pass the same admin check as the
// admin endpoints.
type Handler struct {
	access         *service.AccessService
	users          repository.UserRepository
	endpointSecret string
	billingAdminID uint
}

func NewHandler(access *service.AccessService, users repository.UserRepository, endpointSecret string, billingAdminID uint) *Handler {
	return &Handler{access: access, users: users, endpointSecret: endpointSecret, billingAdminID: billingAdminID}
}

func (h *Handler) StripeWebhook(c *gin.Context) {
	if h.endpointSecret == "" || h.billingAdminID == 0 {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Stripe webhook not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.endpointSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		log.Warn().Err(err).Msg("stripe signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.async_payment_succeeded":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		status, err := h.handleCheckoutSessionCompleted(c, &session)
		if err != nil {
			if isPermanent(err) {
				// Stripe would retry forever; log and acknowledge.
				log.Error().Err(err).Str("event_id", event.ID).Str("session_id", session.ID).Msg("checkout not applied")
				c.JSON(http.StatusOK, gin.H{"status": "rejected", "error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": status})

	default:
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
	}
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
