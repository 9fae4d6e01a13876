package advisory

import (
	"time"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

// Session is the caller-owned state used to suppress duplicate critical
// alerts. An empty LastLevel means nothing was observed since session start.
type Session struct {
	FarmerID  string               `json:"farmer_id"`
	LastLevel models.AdvisoryLevel `json:"last_level,omitempty"`
	StartedAt time.Time            `json:"started_at"`
}

// NewSession starts a fresh session with no observed level.
func NewSession(farmerID string, now time.Time) Session {
	return Session{FarmerID: farmerID, StartedAt: now}
}

// Decide records the advisory in the session and returns an alert event only
// when the level transitions into critical.
func Decide(s Session, adv models.Advisory, now time.Time) (Session, *models.AlertEvent) {
	previous := s.LastLevel
	s.LastLevel = adv.Level

	if adv.Level != models.LevelCritical || previous == models.LevelCritical {
		return s, nil
	}

	return s, &models.AlertEvent{
		FarmerID:    s.FarmerID,
		TriggeredAt: now,
		AdviceKey:   adv.MessageKey,
		Context:     adv.NumericContext,
	}
}
