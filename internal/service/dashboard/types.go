package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/service/progression"
	"github.com/mamadbah2/harvestguard/pkg/clients/weather"
)

// WidgetStatus tells the client whether a widget holds computed data.
type WidgetStatus string

const (
	StatusOK          WidgetStatus = "ok"
	StatusUnavailable WidgetStatus = "unavailable"
)

// Error codes surfaced on unavailable widgets.
const (
	CodeInvalidInput    = "invalid_input"
	CodeUnknownProfile  = "unknown_profile"
	CodeNotFound        = "not_found"
	CodeUnknownLocation = "unknown_location"
	CodeTimeout         = "timeout"
	CodeUnavailable     = "upstream_unavailable"
)

// Widget wraps one dashboard section. Data is nil whenever Status is
// unavailable; a failed evaluator never falls back to a default value.
type Widget[T any] struct {
	Status    WidgetStatus `json:"status"`
	ErrorCode string       `json:"error_code,omitempty"`
	Data      *T           `json:"data,omitempty"`
}

func okWidget[T any](v T) Widget[T] {
	return Widget[T]{Status: StatusOK, Data: &v}
}

func failedWidget[T any](err error) Widget[T] {
	return Widget[T]{Status: StatusUnavailable, ErrorCode: ErrorCode(err)}
}

// AdvisoryView is an advisory with its rendered text.
type AdvisoryView struct {
	models.Advisory
	Text string `json:"text"`
}

// LedgerView pairs the ledger summary with the derived tier.
type LedgerView struct {
	Summary   models.LedgerSummary `json:"summary"`
	Tier      models.TierStatus    `json:"tier"`
	TierLabel string               `json:"tier_label"`
}

// BatchView is one batch and its current estimate, if it could be computed.
type BatchView struct {
	Batch    models.CropBatch            `json:"batch"`
	Estimate Widget[models.LossEstimate] `json:"estimate"`
}

// BadgeView is a badge with its display label.
type BadgeView struct {
	Badge progression.Badge `json:"badge"`
	Label string            `json:"label"`
}

// Dashboard is the farmer-facing aggregate.
type Dashboard struct {
	FarmerID    string                         `json:"farmer_id"`
	LocationID  string                         `json:"location_id"`
	Language    string                         `json:"language"`
	GeneratedAt time.Time                      `json:"generated_at"`
	Weather     Widget[models.WeatherSnapshot] `json:"weather"`
	Advisory    Widget[AdvisoryView]           `json:"advisory"`
	Ledger      Widget[LedgerView]             `json:"ledger"`
	Batches     Widget[[]BatchView]            `json:"batches"`
	Badges      []BadgeView                    `json:"badges"`
	Alert       *models.AlertEvent             `json:"alert,omitempty"`
}

// TransactionInput is a ledger entry as submitted by a farmer.
type TransactionInput struct {
	Date     time.Time              `json:"date"`
	Kind     models.TransactionKind `json:"kind" binding:"required"`
	Category models.Category        `json:"category" binding:"required"`
	Amount   decimal.Decimal        `json:"amount"`
	Label    string                 `json:"label"`
}

// BatchInput registers a stored harvest. LocationID defaults to the
// farmer's district.
type BatchInput struct {
	CropType    models.CropType    `json:"crop_type" binding:"required"`
	StorageType models.StorageType `json:"storage_type" binding:"required"`
	WeightKg    float64            `json:"weight_kg"`
	LocationID  string             `json:"location_id"`
}

// RiskPin is one anonymized batch on the regional map.
type RiskPin struct {
	CropType            models.CropType    `json:"crop_type"`
	StorageType         models.StorageType `json:"storage_type"`
	RiskLevel           models.RiskLevel   `json:"risk_level"`
	HoursToCriticalLoss float64            `json:"hours_to_critical_loss"`
}

// RegionalRisk aggregates every batch stored in one district.
type RegionalRisk struct {
	LocationID    string               `json:"location_id"`
	AdvisoryLevel models.AdvisoryLevel `json:"advisory_level"`
	Pins          []RiskPin            `json:"pins"`
	Skipped       int                  `json:"skipped"`
}

// ErrorCode maps an evaluator or collaborator error to a stable code.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, models.ErrInvalidInput):
		return CodeInvalidInput
	case errors.Is(err, models.ErrUnknownProfile):
		return CodeUnknownProfile
	case errors.Is(err, models.ErrNotFound):
		return CodeNotFound
	case errors.Is(err, weather.ErrUnknownLocation):
		return CodeUnknownLocation
	case errors.Is(err, context.DeadlineExceeded):
		return CodeTimeout
	default:
		return CodeUnavailable
	}
}
