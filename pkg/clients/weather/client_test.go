package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/harvestguard/internal/config"
	"github.com/mamadbah2/harvestguard/internal/domain/models"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(config.WeatherConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

func TestCurrent_ParsesSnapshot(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/forecast", r.URL.Path)
		assert.Equal(t, "24.8465", r.URL.Query().Get("latitude"))
		assert.Equal(t, currentVariables, r.URL.Query().Get("current"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"time":"2026-07-01T09:00","temperature_2m":36.2,"relative_humidity_2m":85,"precipitation_probability":85}}`))
	})

	got, err := client.Current(context.Background(), "Bogura")
	require.NoError(t, err)
	assert.Equal(t, 36.2, got.TemperatureC)
	assert.Equal(t, 85.0, got.HumidityPct)
	assert.Equal(t, 85.0, got.RainChancePct)
	assert.Equal(t, "bogura", got.LocationID)
	assert.Equal(t, time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC), got.ObservedAt)
}

func TestCurrent_UnknownLocation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})

	_, err := client.Current(context.Background(), "atlantis")
	assert.ErrorIs(t, err, ErrUnknownLocation)
}

func TestCurrent_UpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":true,"reason":"bad latitude"}`))
	})

	_, err := client.Current(context.Background(), "dhaka")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad latitude")
}

func TestCurrent_RejectsIncompleteOrInvalidData(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"time":"2026-07-01T09:00","temperature_2m":30,"relative_humidity_2m":140,"precipitation_probability":10}}`))
	})
	_, err := client.Current(context.Background(), "dhaka")
	assert.ErrorIs(t, err, models.ErrInvalidInput)

	client = newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"current":{"time":"2026-07-01T09:00","temperature_2m":30}}`))
	})
	_, err = client.Current(context.Background(), "dhaka")
	assert.ErrorIs(t, err, models.ErrInvalidInput)
}
