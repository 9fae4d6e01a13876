package models

import (
	"fmt"
	"math"
	"time"
)

// WeatherSnapshot is the current conditions for one location as reported by
// the weather collaborator. Evaluators read it and never mutate it.
type WeatherSnapshot struct {
	TemperatureC  float64   `json:"temperature_c" bson:"temperature_c"`
	HumidityPct   float64   `json:"humidity_pct" bson:"humidity_pct" validate:"gte=0,lte=100"`
	RainChancePct float64   `json:"rain_chance_pct" bson:"rain_chance_pct" validate:"gte=0,lte=100"`
	LocationID    string    `json:"location_id" bson:"location_id"`
	ObservedAt    time.Time `json:"observed_at,omitempty" bson:"observed_at"`
}

// Validate rejects humidity or rain chance outside 0-100 and non-finite temperatures.
func (w WeatherSnapshot) Validate() error {
	if math.IsNaN(w.TemperatureC) || math.IsInf(w.TemperatureC, 0) {
		return fmt.Errorf("%w: temperature must be finite", ErrInvalidInput)
	}
	return validateStruct(w)
}
