package advisory

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

func snapshot(temp, humidity, rain float64) models.WeatherSnapshot {
	return models.WeatherSnapshot{TemperatureC: temp, HumidityPct: humidity, RainChancePct: rain, LocationID: "bogura"}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		weather models.WeatherSnapshot
		level   models.AdvisoryLevel
		key     models.MessageKey
		metric  string
	}{
		{"rain and humidity is critical", snapshot(25, 85, 85), models.LevelCritical, models.MessageRainCoverCrops, "rain_chance_pct"},
		{"critical dominates heat", snapshot(40, 81, 51), models.LevelCritical, models.MessageRainCoverCrops, "rain_chance_pct"},
		{"heat alone is warning", snapshot(36, 40, 10), models.LevelWarning, models.MessageHeatIrrigate, "temperature_c"},
		{"heat with humid but dry forecast is warning", snapshot(36, 95, 50), models.LevelWarning, models.MessageHeatIrrigate, "temperature_c"},
		{"temperature at 35 is good", snapshot(35, 50, 20), models.LevelGood, models.MessageConditionsOptimal, "temperature_c"},
		{"rain at 50 is not critical", snapshot(30, 90, 50), models.LevelGood, models.MessageConditionsOptimal, "temperature_c"},
		{"humidity at 80 is not critical", snapshot(30, 80, 90), models.LevelGood, models.MessageConditionsOptimal, "temperature_c"},
		{"mild weather is good", snapshot(24, 60, 10), models.LevelGood, models.MessageConditionsOptimal, "temperature_c"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			adv, err := Classify(tc.weather)
			require.NoError(t, err)
			assert.Equal(t, tc.level, adv.Level)
			assert.Equal(t, tc.key, adv.MessageKey)
			assert.Equal(t, tc.metric, adv.NumericContext.Metric)
			assert.Equal(t, "bogura", adv.LocationID)
		})
	}
}

func TestClassify_CriticalRegardlessOfTemperature(t *testing.T) {
	for temp := -10.0; temp <= 50; temp += 2.5 {
		adv, err := Classify(snapshot(temp, 81, 51))
		require.NoError(t, err)
		assert.Equal(t, models.LevelCritical, adv.Level, "temp %.1f", temp)
		assert.Equal(t, 51.0, adv.NumericContext.Value)
	}
}

func TestClassify_WarningAboveHeatThreshold(t *testing.T) {
	for _, w := range []models.WeatherSnapshot{
		snapshot(35.01, 0, 0),
		snapshot(42, 100, 50),
		snapshot(38, 80, 100),
	} {
		adv, err := Classify(w)
		require.NoError(t, err)
		assert.Equal(t, models.LevelWarning, adv.Level)
		assert.Equal(t, w.TemperatureC, adv.NumericContext.Value)
	}
}

func TestClassify_InvalidInput(t *testing.T) {
	for _, w := range []models.WeatherSnapshot{
		snapshot(30, -1, 10),
		snapshot(30, 101, 10),
		snapshot(30, 50, -0.5),
		snapshot(30, 50, 100.5),
		snapshot(30, math.NaN(), 10),
		snapshot(math.NaN(), 50, 10),
		snapshot(math.Inf(1), 50, 10),
	} {
		_, err := Classify(w)
		require.Error(t, err)
		assert.ErrorIs(t, err, models.ErrInvalidInput)
	}
}

func TestClassify_AcceptsRangeEdges(t *testing.T) {
	_, err := Classify(snapshot(30, 0, 100))
	require.NoError(t, err)
	_, err = Classify(snapshot(30, 100, 0))
	require.NoError(t, err)
}
