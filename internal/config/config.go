package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	MongoDB   MongoDBConfig
	Weather   WeatherConfig
	Spoilage  SpoilageConfig
	Log       LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port string
}

// WhatsAppConfig contains credentials for the Meta WhatsApp Cloud API, used
// for critical alerts, weekly reports and farmer commands.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
}

// SheetsConfig enables the optional Google Sheets ledger mirror.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
}

// Enabled reports whether both sheet settings are present.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" && s.SpreadsheetID != ""
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule    string
	WeatherPollCron string
	SnapshotCron    string
	Timezone        string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// WeatherConfig points at an Open-Meteo compatible forecast API.
type WeatherConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SpoilageConfig exposes the loss-estimator penalty constants. They are
// placeholders to be tuned, not derived values.
type SpoilageConfig struct {
	HumidityThresholdPct float64
	RainThresholdPct     float64
	PenaltyStepPoints    float64
	PenaltyPerStep       float64
	ShelfLifePath        string
}

// LogConfig selects the zap level.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are acceptable when configuration comes from
		// the environment directly.
		_ = godotenv.Load()
	}

	weatherTimeout, err := getenvDuration("WEATHER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}

	spoilage := SpoilageConfig{ShelfLifePath: os.Getenv("SHELF_LIFE_TABLE_PATH")}
	for _, f := range []struct {
		key      string
		fallback float64
		dst      *float64
	}{
		{"SPOILAGE_HUMIDITY_THRESHOLD_PCT", 60, &spoilage.HumidityThresholdPct},
		{"SPOILAGE_RAIN_THRESHOLD_PCT", 50, &spoilage.RainThresholdPct},
		{"SPOILAGE_PENALTY_STEP_POINTS", 10, &spoilage.PenaltyStepPoints},
		{"SPOILAGE_PENALTY_PER_STEP", 0.08, &spoilage.PenaltyPerStep},
	} {
		v, err := getenvFloat(f.key, f.fallback)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:   os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID: os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:   os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:       getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:    getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_LEDGER_ID"),
		},
		Reporting: ReportingConfig{
			CronSchedule:    getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * 5"),
			WeatherPollCron: getenvWithDefault("WEATHER_POLL_CRON", "*/30 * * * *"),
			SnapshotCron:    getenvWithDefault("SNAPSHOT_CRON", "55 23 * * *"),
			Timezone:        getenvWithDefault("TIMEZONE", "Asia/Dhaka"),
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "harvestguard"),
		},
		Weather: WeatherConfig{
			BaseURL: getenvWithDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1"),
			Timeout: weatherTimeout,
		},
		Spoilage: spoilage,
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.WhatsApp.AccessToken == "":
		return errors.New("WHATSAPP_TOKEN must be provided")
	case c.WhatsApp.PhoneNumberID == "":
		return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
	case c.WhatsApp.VerifyToken == "":
		return errors.New("META_VERIFY_TOKEN must be provided")
	case c.WhatsApp.BaseURL == "":
		return errors.New("WHATSAPP_BASE_URL must not be empty")
	case c.WhatsApp.APIVersion == "":
		return errors.New("WHATSAPP_API_VERSION must not be empty")
	}

	if (c.Sheets.CredentialsPath == "") != (c.Sheets.SpreadsheetID == "") {
		return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH and GOOGLE_SHEET_LEDGER_ID must be provided together")
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}
	if c.Reporting.WeatherPollCron == "" {
		return errors.New("WEATHER_POLL_CRON must be provided")
	}
	if _, err := time.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE is invalid: %w", err)
	}

	if c.MongoDB.URI == "" || c.MongoDB.DBName == "" {
		return errors.New("MONGODB_URI and MONGODB_DB_NAME must be provided")
	}

	if c.Weather.BaseURL == "" {
		return errors.New("WEATHER_BASE_URL must not be empty")
	}
	if c.Weather.Timeout <= 0 {
		return errors.New("WEATHER_TIMEOUT must be positive")
	}

	if c.Spoilage.PenaltyStepPoints <= 0 {
		return errors.New("SPOILAGE_PENALTY_STEP_POINTS must be positive")
	}
	if c.Spoilage.PenaltyPerStep < 0 || c.Spoilage.PenaltyPerStep > 1 {
		return errors.New("SPOILAGE_PENALTY_PER_STEP must be within [0, 1]")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func getenvDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
