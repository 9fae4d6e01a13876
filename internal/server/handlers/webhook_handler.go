package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/dashboard"
	service "github.com/mamadbah2/harvestguard/internal/service/whatsapp"
)

const whatsappObject = "whatsapp_business_account"

// WebhookHandler exposes the WhatsApp webhook and the manual send endpoint.
type WebhookHandler struct {
	svc    service.MessagingService
	logger *zap.Logger
}

// NewWebhookHandler constructs the HTTP handler adapter.
func NewWebhookHandler(svc service.MessagingService, logger *zap.Logger) *WebhookHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookHandler{svc: svc, logger: logger}
}

// Verify answers Meta's subscription challenge.
func (h *WebhookHandler) Verify(c *gin.Context) {
	resp, err := h.svc.VerifyWebhookToken(
		c.Query("hub.mode"),
		c.Query("hub.verify_token"),
		c.Query("hub.challenge"),
	)
	if err != nil {
		h.logger.Warn("webhook verification rejected", zap.Error(err))
		c.String(http.StatusForbidden, "verification failed")
		return
	}
	c.String(http.StatusOK, resp)
}

// Receive routes farmer commands. Meta redelivers on non-2xx, so failures
// after decoding are logged and acknowledged.
func (h *WebhookHandler) Receive(c *gin.Context) {
	var payload models.WebhookPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Warn("undecodable webhook payload", zap.Error(err))
		badRequest(c, err)
		return
	}

	if payload.Object != whatsappObject {
		h.logger.Debug("ignoring webhook object", zap.String("object", payload.Object))
		c.Status(http.StatusOK)
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), payload); err != nil {
		h.logger.Error("farmer command processing failed",
			zap.Int("messages", inboundCount(payload)),
			zap.Error(err))
	}
	c.Status(http.StatusOK)
}

// SendMessage pushes a manual text, e.g. from an extension officer.
func (h *WebhookHandler) SendMessage(c *gin.Context) {
	var req models.OutboundMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": dashboard.CodeInvalidInput, "message": "message is blank"})
		return
	}

	if err := h.svc.SendOutbound(c.Request.Context(), req); err != nil {
		h.logger.Error("manual message not delivered", zap.String("to", req.To), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": dashboard.CodeUnavailable})
		return
	}
	c.Status(http.StatusAccepted)
}

func inboundCount(payload models.WebhookPayload) int {
	n := 0
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			n += len(change.Value.Messages)
		}
	}
	return n
}
