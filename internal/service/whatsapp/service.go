package whatsapp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/config"
	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/commands"
	"github.com/mamadbah2/harvestguard/internal/service/presenter"
	client "github.com/mamadbah2/harvestguard/pkg/clients/whatsapp"
)

const replyTimeout = 10 * time.Second

// MessagingService describes the operations the HTTP layer can perform.
type MessagingService interface {
	VerifyWebhookToken(mode, verifyToken, challenge string) (string, error)
	HandleWebhook(ctx context.Context, payload models.WebhookPayload) error
	SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error
}

// FarmerDirectory resolves an inbound phone number to a farmer.
type FarmerDirectory interface {
	FindFarmerByPhone(ctx context.Context, phone string) (models.Farmer, error)
}

// MetaWhatsAppService is the production implementation backed by WhatsApp Cloud API.
type MetaWhatsAppService struct {
	cfg        config.WhatsAppConfig
	client     client.Client
	farmers    FarmerDirectory
	dispatcher commands.Dispatcher
	logger     *zap.Logger
}

// NewMetaWhatsAppService wires a new service instance.
func NewMetaWhatsAppService(
	cfg config.WhatsAppConfig,
	client client.Client,
	farmers FarmerDirectory,
	dispatcher commands.Dispatcher,
	logger *zap.Logger,
) *MetaWhatsAppService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MetaWhatsAppService{
		cfg:        cfg,
		client:     client,
		farmers:    farmers,
		dispatcher: dispatcher,
		logger:     logger.Named("svc.whatsapp"),
	}
}

// VerifyWebhookToken validates the callback verification token.
func (s *MetaWhatsAppService) VerifyWebhookToken(mode, verifyToken, challenge string) (string, error) {
	if mode == "" || verifyToken == "" {
		return "", errors.New("missing mode or verify token")
	}

	if !strings.EqualFold(mode, "subscribe") {
		return "", fmt.Errorf("unsupported hub.mode %s", mode)
	}

	if verifyToken != s.cfg.VerifyToken {
		return "", errors.New("invalid verify token")
	}

	return challenge, nil
}

// HandleWebhook processes inbound messages and logs delivery receipts.
// Processing continues past a failed message; the first error is returned.
func (s *MetaWhatsAppService) HandleWebhook(ctx context.Context, payload models.WebhookPayload) error {
	var firstErr error

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, st := range change.Value.Statuses {
				s.logger.Debug("delivery status",
					zap.String("message_id", st.ID),
					zap.String("status", st.Status),
					zap.String("recipient", st.RecipientID))
			}

			for _, msg := range change.Value.Messages {
				if err := s.handleInboundMessage(ctx, msg); err != nil {
					s.logger.Error("failed to handle inbound message", zap.Error(err), zap.String("message_id", msg.ID))
					if firstErr == nil {
						firstErr = err
					}
				}
			}
		}
	}

	return firstErr
}

func (s *MetaWhatsAppService) handleInboundMessage(ctx context.Context, msg models.InboundMessage) error {
	text := extractMessageText(msg)
	if text == "" {
		s.logger.Debug("ignoring message without text", zap.String("type", msg.Type))
		return nil
	}

	from := client.NormalizePhone(msg.From)
	farmer, err := s.farmers.FindFarmerByPhone(ctx, from)
	if errors.Is(err, models.ErrNotFound) {
		return s.reply(ctx, from, presenter.Text(presenter.LangEnglish, "not_registered"))
	}
	if err != nil {
		return fmt.Errorf("lookup sender: %w", err)
	}

	cmd := models.ParseCommand(text)
	s.logger.Info("parsed inbound command",
		zap.String("farmer_id", farmer.ID),
		zap.String("command", string(cmd.Type)),
		zap.Strings("args", cmd.Args))

	body, err := s.dispatcher.HandleCommand(ctx, cmd, farmer)
	switch {
	case errors.Is(err, commands.ErrInvalidArguments), errors.Is(err, models.ErrInvalidInput):
		body = commands.HelpText(farmer.Language)
	case err != nil:
		_ = s.reply(ctx, from, presenter.Text(farmer.Language, "unavailable"))
		return fmt.Errorf("handle %s from %s: %w", cmd.Type, farmer.ID, err)
	}

	return s.reply(ctx, from, body)
}

func (s *MetaWhatsAppService) reply(ctx context.Context, to, body string) error {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctx, client.SendTextMessageRequest{To: to, Body: body})
	return err
}

// SendOutbound lets extension officers push a one-off message via HTTP.
func (s *MetaWhatsAppService) SendOutbound(ctx context.Context, req models.OutboundMessageRequest) error {
	ctx, cancel := context.WithTimeout(ctx, replyTimeout)
	defer cancel()

	_, err := s.client.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:         client.NormalizePhone(req.To),
		Body:       req.Message,
		PreviewURL: req.PreviewURL,
	})
	return err
}

func extractMessageText(msg models.InboundMessage) string {
	if msg.Text != nil {
		return msg.Text.Body
	}
	if msg.Interactive != nil && msg.Interactive.ButtonReply != nil {
		return msg.Interactive.ButtonReply.ID
	}
	return ""
}
