package stripewebhooks

import (
	"errors"
	"fmt"
	"strconv"

	stripeinfra "learning-platform/internal/infra/stripe"
	"learning-platform/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/stripe/stripe-go/v75"
)

const scopeGlobal = "global"

var errBadMetadata = errors.New("invalid checkout metadata")

func isPermanent(err error) bool {
	return errors.Is(err, errBadMetadata) ||
		errors.Is(err, service.ErrNotFound) ||
		errors.Is(err, service.ErrAccessDenied)
}

// handleCheckoutSessionCompleted grants what the session paid for:
// metadata.scope=global buys lifetime premium, otherwise metadata.course_id names the course.
func (h *Handler) handleCheckoutSessionCompleted(c *gin.Context, session *stripe.CheckoutSession) (string, error) {
	if !stripeinfra.IsPaid(session.PaymentStatus) {
		return "pending", nil
	}

	userID, err := userIDFromSessionOrRef(session)
	if err != nil {
		return "", err
	}

	ctx := c.Request.Context()
	actor, err := h.users.FindByID(ctx, h.billingAdminID)
	if err != nil {
		return "", fmt.Errorf("billing admin %d: %w", h.billingAdminID, err)
	}

	if session.Metadata["scope"] == scopeGlobal {
		notes := fmt.Sprintf("Stripe checkout %s", session.ID)
		if _, err := h.access.GrantGlobalPremiumOnce(ctx, actor, userID, notes); err != nil {
			return "", err
		}
		log.Info().Uint("user_id", userID).Str("session_id", session.ID).Msg("lifetime access purchased")
		return "granted", nil
	}

	courseID, err := parseID(session.Metadata["course_id"], "course_id")
	if err != nil {
		return "", err
	}
	if _, err := h.access.GrantCourseAccess(ctx, actor, userID, courseID); err != nil {
		return "", err
	}
	log.Info().Uint("user_id", userID).Uint("course_id", courseID).Str("session_id", session.ID).Msg("course purchased")
	return "granted", nil
}

func userIDFromSessionOrRef(session *stripe.CheckoutSession) (uint, error) {
	userIDStr := ""
	if session.Metadata != nil {
		userIDStr = session.Metadata["user_id"]
	}
	if userIDStr == "" {
		userIDStr = session.ClientReferenceID
	}
	return parseID(userIDStr, "user_id")
}

func parseID(raw, field string) (uint, error) {
	if raw == "" {
		return 0, fmt.Errorf("%w: missing %s", errBadMetadata, field)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadMetadata, field, raw)
	}
	return uint(id), nil
}
