package spoilage

import (
	"errors"
	"fmt"
	"math"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

const (
	criticalBelowHours = 24.0
	highBelowHours     = 72.0
	mediumBelowHours   = 168.0
)

// PenaltyConfig controls how humidity and rain degrade shelf life. For each
// whole StepPoints above a threshold the remaining hours are multiplied by
// (1 - FractionPerStep).
type PenaltyConfig struct {
	HumidityThresholdPct float64
	RainThresholdPct     float64
	StepPoints           float64
	FractionPerStep      float64
}

// DefaultPenaltyConfig is 8% per 10 points above 60% humidity or 50% rain chance.
func DefaultPenaltyConfig() PenaltyConfig {
	return PenaltyConfig{
		HumidityThresholdPct: 60,
		RainThresholdPct:     50,
		StepPoints:           10,
		FractionPerStep:      0.08,
	}
}

// Validate rejects configurations that would make the estimate undefined.
func (p PenaltyConfig) Validate() error {
	switch {
	case p.StepPoints <= 0:
		return errors.New("penalty step points must be positive")
	case p.FractionPerStep < 0 || p.FractionPerStep > 1:
		return errors.New("penalty fraction must be within [0, 1]")
	case p.HumidityThresholdPct < 0 || p.HumidityThresholdPct > 100:
		return errors.New("humidity threshold must be within [0, 100]")
	case p.RainThresholdPct < 0 || p.RainThresholdPct > 100:
		return errors.New("rain threshold must be within [0, 100]")
	}
	return nil
}

// Estimator scores stored batches for spoilage urgency. It holds only
// read-only configuration and is safe for concurrent use.
type Estimator struct {
	table   ShelfLifeTable
	penalty PenaltyConfig
}

// NewEstimator builds an estimator over the given table and penalty settings.
func NewEstimator(table ShelfLifeTable, penalty PenaltyConfig) (*Estimator, error) {
	if table.Len() == 0 {
		return nil, errors.New("shelf-life table is empty")
	}
	if err := penalty.Validate(); err != nil {
		return nil, fmt.Errorf("invalid penalty config: %w", err)
	}
	return &Estimator{table: table, penalty: penalty}, nil
}

// HasProfile reports whether the crop/storage pair can be estimated.
func (e *Estimator) HasProfile(crop models.CropType, storage models.StorageType) bool {
	_, ok := e.table.BaseHours(crop, storage)
	return ok
}

// Estimate returns the hours until critical loss for the batch under the
// given weather, and the matching risk bucket.
func (e *Estimator) Estimate(batch models.CropBatch, weather models.WeatherSnapshot) (models.LossEstimate, error) {
	if err := batch.Validate(); err != nil {
		return models.LossEstimate{}, fmt.Errorf("estimate batch %s: %w", batch.ID, err)
	}
	if err := weather.Validate(); err != nil {
		return models.LossEstimate{}, fmt.Errorf("estimate batch %s: %w", batch.ID, err)
	}
	if weather.LocationID != "" && weather.LocationID != batch.LocationID {
		return models.LossEstimate{}, fmt.Errorf("estimate batch %s: %w: weather for %q, batch stored in %q",
			batch.ID, models.ErrInvalidInput, weather.LocationID, batch.LocationID)
	}

	base, ok := e.table.BaseHours(batch.CropType, batch.StorageType)
	if !ok {
		return models.LossEstimate{}, fmt.Errorf("estimate batch %s: %w: %s/%s",
			batch.ID, models.ErrUnknownProfile, batch.CropType, batch.StorageType)
	}

	hours := base *
		e.factor(weather.HumidityPct, e.penalty.HumidityThresholdPct) *
		e.factor(weather.RainChancePct, e.penalty.RainThresholdPct)
	hours = math.Max(0, hours)

	return models.LossEstimate{
		BatchID:             batch.ID,
		BaseHours:           base,
		HoursToCriticalLoss: hours,
		RiskLevel:           RiskLevelFor(hours),
	}, nil
}

// factor compounds the per-step penalty for every whole step above threshold.
func (e *Estimator) factor(value, threshold float64) float64 {
	if value <= threshold {
		return 1
	}
	steps := math.Floor((value - threshold) / e.penalty.StepPoints)
	return math.Pow(1-e.penalty.FractionPerStep, steps)
}

// RiskLevelFor maps hours to a bucket. Each bucket includes its lower bound.
func RiskLevelFor(hours float64) models.RiskLevel {
	switch {
	case hours < criticalBelowHours:
		return models.RiskCritical
	case hours < highBelowHours:
		return models.RiskHigh
	case hours < mediumBelowHours:
		return models.RiskMedium
	default:
		return models.RiskLow
	}
}
