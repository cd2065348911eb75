package handlers

import (
	"io"
	"net/http"

	"vendinghive_backend/internal/config"
	"vendinghive_backend/internal/logger"
	"vendinghive_backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v79/webhook"
)

type WebhookHandler struct {
	*BaseHandler
	webhookService services.WebhookService
}

func NewWebhookHandler(base *BaseHandler, webhookService services.WebhookService) *WebhookHandler {
	return &WebhookHandler{
		BaseHandler:    base,
		webhookService: webhookService,
	}
}

func (h *WebhookHandler) RegisterRoutes(rg *gin.RouterGroup) {
	// No auth middleware: Stripe signs the payload instead.
	rg.POST("/webhooks/stripe", h.HandleStripeWebhook)
}

func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	const maxBodyBytes = 65536
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "stripe webhook body read failed", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	secret := config.GetConfig().Stripe.WebhookSecret
	if secret == "" {
		logger.CtxError(c.Request.Context(), "stripe webhook secret not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "webhook not configured"})
		return
	}

	event, err := webhook.ConstructEventWithOptions(
		body,
		c.GetHeader("Stripe-Signature"),
		secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		logger.CtxWithError(c.Request.Context(), "stripe webhook signature verification failed", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	if err := h.webhookService.HandleStripeEvent(event); err != nil {
		logger.CtxWithError(c.Request.Context(), "stripe webhook processing failed", err,
			"event_type", string(event.Type))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "processing failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
