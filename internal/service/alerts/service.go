package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/metrics"
	"github.com/mamadbah2/harvestguard/internal/service/advisory"
	"github.com/mamadbah2/harvestguard/internal/service/presenter"
	client "github.com/mamadbah2/harvestguard/pkg/clients/whatsapp"
)

// ErrNoRecipient is returned when a farmer has no deliverable phone number.
var ErrNoRecipient = errors.New("farmer has no registered phone")

const sendTimeout = 10 * time.Second

// Service turns advisories into at most one critical alert per session and
// pushes them to the farmer's phone.
type Service struct {
	sessions *SessionStore
	sender   client.Client
	logger   *zap.Logger
	now      func() time.Time
}

// NewService wires the alert service. A nil sender disables delivery.
func NewService(sessions *SessionStore, sender client.Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sessions == nil {
		sessions = NewSessionStore()
	}
	return &Service{
		sessions: sessions,
		sender:   sender,
		logger:   logger.Named("svc.alerts"),
		now:      time.Now,
	}
}

// StartSession resets suppression for the farmer.
func (s *Service) StartSession(farmerID string) advisory.Session {
	return s.sessions.Start(farmerID, s.now().UTC())
}

// Session returns the farmer's current session.
func (s *Service) Session(farmerID string) advisory.Session {
	return s.sessions.Get(farmerID, s.now().UTC())
}

// Observe records the advisory and returns an event only on a transition
// into critical.
func (s *Service) Observe(farmerID string, adv models.Advisory) *models.AlertEvent {
	event := s.sessions.Observe(farmerID, adv, s.now().UTC())
	if event != nil {
		s.logger.Info("critical transition",
			zap.String("farmer_id", farmerID),
			zap.String("advice", string(event.AdviceKey)),
			zap.Float64(event.Context.Metric, event.Context.Value))
	}
	return event
}

// Deliver sends the alert text in the farmer's language.
func (s *Service) Deliver(ctx context.Context, event models.AlertEvent, farmer models.Farmer) error {
	if s.sender == nil {
		metrics.IncCriticalAlert(metrics.ResultSkipped)
		s.logger.Debug("alert delivery disabled", zap.String("farmer_id", event.FarmerID))
		return nil
	}

	to := client.NormalizePhone(farmer.Phone)
	if to == "" {
		metrics.IncCriticalAlert(metrics.ResultSkipped)
		return fmt.Errorf("deliver alert to %s: %w", farmer.ID, ErrNoRecipient)
	}

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	resp, err := s.sender.SendTextMessage(ctx, client.SendTextMessageRequest{
		To:   to,
		Body: presenter.Alert(farmer.Language, event),
	})
	if err != nil {
		metrics.IncCriticalAlert(metrics.ResultFailed)
		return fmt.Errorf("deliver alert to %s: %w", farmer.ID, err)
	}

	metrics.IncCriticalAlert(metrics.ResultSent)
	s.logger.Info("critical alert sent",
		zap.String("farmer_id", farmer.ID),
		zap.String("message_id", resp.MessageID()))
	return nil
}
