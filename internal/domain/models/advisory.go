package models

import "time"

// AdvisoryLevel is the severity of the current weather advisory.
type AdvisoryLevel string

const (
	LevelGood     AdvisoryLevel = "good"
	LevelWarning  AdvisoryLevel = "warning"
	LevelCritical AdvisoryLevel = "critical"
)

// MessageKey selects a pre-authored advisory string in the presentation layer.
type MessageKey string

const (
	MessageConditionsOptimal MessageKey = "alert_good"
	MessageHeatIrrigate      MessageKey = "advisory_heat"
	MessageRainCoverCrops    MessageKey = "advisory_rain"
)

// NumericContext carries the value a message interpolates, e.g. the rain chance.
type NumericContext struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
}

// Advisory is the single active verdict for a weather snapshot.
type Advisory struct {
	Level          AdvisoryLevel  `json:"level"`
	MessageKey     MessageKey     `json:"message_key"`
	NumericContext NumericContext `json:"numeric_context"`
	LocationID     string         `json:"location_id"`
}

// AlertEvent is emitted once when a farmer's advisory transitions into critical.
type AlertEvent struct {
	FarmerID    string         `json:"farmer_id"`
	TriggeredAt time.Time      `json:"triggered_at"`
	AdviceKey   MessageKey     `json:"advice_key"`
	Context     NumericContext `json:"context"`
}
