package weather

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker/v2"

	"github.com/mamadbah2/harvestguard/internal/config"
	"github.com/mamadbah2/harvestguard/internal/domain/models"
	"github.com/mamadbah2/harvestguard/internal/metrics"
)

// ErrUnknownLocation is returned for location IDs without coordinates.
var ErrUnknownLocation = errors.New("unknown location")

const currentVariables = "temperature_2m,relative_humidity_2m,precipitation_probability"

// Coordinates locate a district on the forecast grid.
type Coordinates struct {
	Latitude  float64
	Longitude float64
}

// Districts are the supported location IDs.
var Districts = map[string]Coordinates{
	"dhaka":      {Latitude: 23.8103, Longitude: 90.4125},
	"cumilla":    {Latitude: 23.4607, Longitude: 91.1809},
	"bogura":     {Latitude: 24.8465, Longitude: 89.3773},
	"rangpur":    {Latitude: 25.7439, Longitude: 89.2752},
	"mymensingh": {Latitude: 24.7471, Longitude: 90.4203},
}

// Client fetches the current weather snapshot for a location.
type Client interface {
	Current(ctx context.Context, locationID string) (models.WeatherSnapshot, error)
}

// APIClient is a resty-backed Open-Meteo client guarded by a circuit breaker.
// It does not retry; callers render the weather widget unavailable instead.
type APIClient struct {
	httpClient *resty.Client
	breaker    *gobreaker.CircuitBreaker[models.WeatherSnapshot]
	locations  map[string]Coordinates
}

// NewClient builds a weather client from configuration.
func NewClient(cfg config.WeatherConfig) *APIClient {
	restyClient := resty.New().
		SetBaseURL(strings.TrimSuffix(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetTimeout(cfg.Timeout)

	cb := gobreaker.NewCircuitBreaker[models.WeatherSnapshot](gobreaker.Settings{
		Name:        "weather",
		MaxRequests: 1,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrUnknownLocation) || errors.Is(err, models.ErrInvalidInput)
		},
	})

	return &APIClient{
		httpClient: restyClient,
		breaker:    cb,
		locations:  Districts,
	}
}

type forecastResponse struct {
	Current struct {
		Time                     string   `json:"time"`
		Temperature              *float64 `json:"temperature_2m"`
		Humidity                 *float64 `json:"relative_humidity_2m"`
		PrecipitationProbability *float64 `json:"precipitation_probability"`
	} `json:"current"`
}

type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}

// Current returns the validated snapshot for locationID.
func (c *APIClient) Current(ctx context.Context, locationID string) (models.WeatherSnapshot, error) {
	id := NormalizeLocation(locationID)
	coords, ok := c.locations[id]
	if !ok {
		return models.WeatherSnapshot{}, fmt.Errorf("%w: %q", ErrUnknownLocation, locationID)
	}

	start := time.Now()
	snapshot, err := c.breaker.Execute(func() (models.WeatherSnapshot, error) {
		return c.fetch(ctx, id, coords)
	})

	result := "success"
	if err != nil {
		result = "error"
	}
	metrics.ObserveWeatherFetch(result, time.Since(start).Seconds())

	return snapshot, err
}

func (c *APIClient) fetch(ctx context.Context, id string, coords Coordinates) (models.WeatherSnapshot, error) {
	result := new(forecastResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"latitude":  fmt.Sprintf("%.4f", coords.Latitude),
			"longitude": fmt.Sprintf("%.4f", coords.Longitude),
			"current":   currentVariables,
			"timezone":  "UTC",
		}).
		SetResult(result).
		SetError(apiErr).
		Get("/forecast")
	if err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("fetch weather for %s: %w", id, err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return models.WeatherSnapshot{}, fmt.Errorf("weather api error: code=%d, reason=%s", resp.StatusCode(), apiErr.Reason)
	}

	cur := result.Current
	if cur.Temperature == nil || cur.Humidity == nil || cur.PrecipitationProbability == nil {
		return models.WeatherSnapshot{}, fmt.Errorf("weather for %s: %w: incomplete current conditions", id, models.ErrInvalidInput)
	}

	observedAt, err := time.Parse("2006-01-02T15:04", cur.Time)
	if err != nil {
		observedAt = time.Now().UTC()
	}

	snapshot := models.WeatherSnapshot{
		TemperatureC:  *cur.Temperature,
		HumidityPct:   *cur.Humidity,
		RainChancePct: *cur.PrecipitationProbability,
		LocationID:    id,
		ObservedAt:    observedAt,
	}
	if err := snapshot.Validate(); err != nil {
		return models.WeatherSnapshot{}, fmt.Errorf("weather for %s: %w", id, err)
	}

	return snapshot, nil
}

// NormalizeLocation folds a district ID to the form used as a key in
// Districts and in stored batches.
func NormalizeLocation(locationID string) string {
	return strings.ToLower(strings.TrimSpace(locationID))
}
