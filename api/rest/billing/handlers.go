package billing

import (
	stderrors "errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"codeberg.org/promptfotos/server/internal/auth"
	"codeberg.org/promptfotos/server/internal/billing"
	"codeberg.org/promptfotos/server/internal/errors"
	"codeberg.org/promptfotos/server/internal/logger"
)

// starts a pro checkout for the signed-in user
// @Summary Start a pro subscription checkout
// @Tags billing
// @Accept json
// @Produce json
// @Param request body SubscribeRequest false "Plan, monthly when omitted"
// @Success 200 {object} SubscribeResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /api/subscribe [post]
// @Security BearerAuth
func Subscribe(checkout CheckoutCreator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		var req SubscribeRequest

		// an empty body means the monthly plan
		if c.Request.ContentLength != 0 {
			if err := c.ShouldBindJSON(&req); err != nil {
				errors.ValidationError(c, "invalid request body", err)
				return
			}
		}

		plan, ok := billing.ParsePlanType(req.PlanType)
		if !ok {
			errors.ValidationError(c, "invalid plan type", nil)
			return
		}

		session, err := checkout.CreateCheckout(c.Request.Context(), userID, auth.GetEmail(c), req.Name, plan)
		if err != nil {
			errors.UpstreamFailure(c, "failed to create subscription", err)
			return
		}

		c.JSON(http.StatusOK, SubscribeResponse{
			Success:     true,
			CheckoutURL: session.CheckoutURL,
			SessionID:   session.SessionID,
		})
	}
}

// stops renewal of the signed-in user's subscription
func Cancel(canceler SubscriptionCanceler) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := auth.GetUserID(c)
		if !ok {
			errors.Unauthorized(c, "")
			return
		}

		sub, err := canceler.CancelSubscription(c.Request.Context(), userID)
		if stderrors.Is(err, billing.ErrNoActiveSubscription) {
			errors.NotFound(c, "active subscription")
			return
		}

		if err != nil {
			errors.UpstreamFailure(c, "failed to cancel subscription", err)
			return
		}

		c.JSON(http.StatusOK, CancelResponse{
			Success:           true,
			Status:            sub.Status,
			CancelAtPeriodEnd: sub.CancelAtPeriodEnd,
			CurrentPeriodEnd:  sub.CurrentPeriodEnd,
		})
	}
}

// receives Creem webhooks. the signature is checked against the raw body before anything
// is decoded; a failed state change answers 500 so the provider redelivers
func Webhook(processor WebhookProcessor) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
		if err != nil {
			errors.BadRequest(c, "failed to read body", err)
			return
		}

		event, err := processor.ParseEvent(payload, c.GetHeader(billing.SignatureHeader))
		switch {
		case stderrors.Is(err, billing.ErrMissingSignature):
			errors.BadRequest(c, "missing signature", nil)
			return
		case stderrors.Is(err, billing.ErrInvalidSignature):
			logger.FromContext(c.Request.Context()).Warn("rejected webhook with invalid signature",
				"client_ip", c.ClientIP(),
			)
			errors.InvalidSignature(c)
			return
		case err != nil:
			errors.BadRequest(c, "malformed event", nil)
			return
		}

		outcome, err := processor.HandleEvent(c.Request.Context(), event)
		if stderrors.Is(err, billing.ErrMalformedEvent) {
			errors.BadRequest(c, "malformed event", nil)
			return
		}

		if err != nil {
			errors.InternalError(c, "failed to process webhook", err)
			return
		}

		c.JSON(http.StatusOK, WebhookResponse{Received: true, Outcome: outcome})
	}
}
