package models

import (
	"time"

	"github.com/google/uuid"
)

// CropType names a harvested crop.
type CropType string

const (
	CropPaddy  CropType = "paddy"
	CropRice   CropType = "rice"
	CropPotato CropType = "potato"
	CropOnion  CropType = "onion"
	CropWheat  CropType = "wheat"
)

// StorageType names how a batch is stored.
type StorageType string

const (
	StorageJuteBagStack StorageType = "jute_bag_stack"
	StorageSilo         StorageType = "silo"
	StorageOpenArea     StorageType = "open_area"
	StorageHermeticBag  StorageType = "hermetic_bag"
)

// CropBatch describes one stored harvest. It is read-only after registration.
type CropBatch struct {
	ID           uuid.UUID   `json:"id"`
	FarmerID     string      `json:"farmer_id"`
	CropType     CropType    `json:"crop_type" validate:"required"`
	WeightKg     float64     `json:"weight_kg" validate:"gte=0"`
	StorageType  StorageType `json:"storage_type" validate:"required"`
	RegisteredAt time.Time   `json:"registered_at"`
	LocationID   string      `json:"location_id" validate:"required"`
}

// Validate rejects negative weights and missing crop, storage or location.
func (b CropBatch) Validate() error {
	return validateStruct(b)
}

// RiskLevel buckets the remaining shelf life of a batch.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// LossEstimate is never cached: a new weather snapshot invalidates it.
type LossEstimate struct {
	BatchID             uuid.UUID `json:"batch_id"`
	BaseHours           float64   `json:"base_hours"`
	HoursToCriticalLoss float64   `json:"hours_to_critical_loss"`
	RiskLevel           RiskLevel `json:"risk_level"`
}
