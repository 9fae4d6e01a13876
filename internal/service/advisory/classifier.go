package advisory

import (
	"fmt"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

const (
	criticalRainPct     = 50.0
	criticalHumidityPct = 80.0
	heatStressC         = 35.0
)

// rule pairs a predicate with the advisory it produces. Rules are evaluated
// top-down and the first match wins, so the slice order is the severity order.
type rule struct {
	level   models.AdvisoryLevel
	key     models.MessageKey
	matches func(models.WeatherSnapshot) bool
	context func(models.WeatherSnapshot) models.NumericContext
}

var rules = []rule{
	{
		level: models.LevelCritical,
		key:   models.MessageRainCoverCrops,
		matches: func(w models.WeatherSnapshot) bool {
			return w.RainChancePct > criticalRainPct && w.HumidityPct > criticalHumidityPct
		},
		context: rainContext,
	},
	{
		level: models.LevelWarning,
		key:   models.MessageHeatIrrigate,
		matches: func(w models.WeatherSnapshot) bool {
			return w.TemperatureC > heatStressC
		},
		context: temperatureContext,
	},
	{
		level:   models.LevelGood,
		key:     models.MessageConditionsOptimal,
		matches: func(models.WeatherSnapshot) bool { return true },
		context: temperatureContext,
	},
}

// Classify returns the single advisory active for the snapshot. Boundary
// values fall to the lower severity because every comparison is strict.
func Classify(w models.WeatherSnapshot) (models.Advisory, error) {
	if err := w.Validate(); err != nil {
		return models.Advisory{}, fmt.Errorf("classify weather for %q: %w", w.LocationID, err)
	}

	for _, r := range rules {
		if !r.matches(w) {
			continue
		}
		return models.Advisory{
			Level:          r.level,
			MessageKey:     r.key,
			NumericContext: r.context(w),
			LocationID:     w.LocationID,
		}, nil
	}

	// unreachable: the last rule always matches
	return models.Advisory{}, fmt.Errorf("classify weather for %q: no rule matched", w.LocationID)
}

func rainContext(w models.WeatherSnapshot) models.NumericContext {
	return models.NumericContext{Metric: "rain_chance_pct", Value: w.RainChancePct}
}

func temperatureContext(w models.WeatherSnapshot) models.NumericContext {
	return models.NumericContext{Metric: "temperature_c", Value: w.TemperatureC}
}
