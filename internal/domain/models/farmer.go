package models

import "time"

// Farmer is the owner of a ledger and crop batches. Phone is the registered
// contact channel for critical alerts.
type Farmer struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name" validate:"required,max=120"`
	Phone      string    `json:"phone" bson:"phone" validate:"required,numeric,min=8,max=15"`
	LocationID string    `json:"location_id" bson:"location_id" validate:"required"`
	Language   string    `json:"language" bson:"language" validate:"omitempty,oneof=en bn"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

// Validate checks contact and location fields.
func (f Farmer) Validate() error {
	return validateStruct(f)
}
