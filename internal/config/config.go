package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/aqi-display/internal/aqi"
	"github.com/i474232898/aqi-display/internal/aqi/providers"
)

type AppConfig struct {
	Token                   string
	City                    string `validate:"required"`
	IAQI                    bool
	UpdateInterval          time.Duration `validate:"gt=0"`
	OverrideCityDisplayName string
	InitialLoadDelay        time.Duration `validate:"gte=0"`
	Debug                   bool
	APIBase                 string `validate:"required,url"`

	// Retry behaviour of a fetch sequence, from RETRY_PRESET with per-field
	// overrides.
	Preset  string
	Retry   providers.RetryPolicy
	Headers providers.Headers

	HTTPTimeout time.Duration `validate:"gt=0"`
	// ResponseTimeout of 0 in the environment means the retry worst case.
	ResponseTimeout time.Duration `validate:"gt=0"`

	Location  *time.Location
	Partition aqi.DayPartition

	BreakerThreshold uint32
	BreakerCooldown  time.Duration `validate:"gte=0"`

	AppEnv   string `validate:"oneof=dev prod"`
	LogLevel slog.Level

	Port string `validate:"required,numeric"`

	MQTTBroker   string
	MQTTPort     int `validate:"gte=1,lte=65535"`
	MQTTClientID string
	MQTTTopic    string
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	cfg := &AppConfig{}
	var err error

	cfg.Token = os.Getenv("AQI_TOKEN")
	cfg.City = getenvDefault("AQI_CITY", "here")
	if cfg.IAQI, err = getenvBool("AQI_IAQI", true); err != nil {
		return nil, err
	}
	if cfg.UpdateInterval, err = getenvDuration("UPDATE_INTERVAL", 30*time.Minute); err != nil {
		return nil, err
	}
	cfg.OverrideCityDisplayName = os.Getenv("OVERRIDE_CITY_DISPLAY_NAME")
	if cfg.InitialLoadDelay, err = getenvDuration("INITIAL_LOAD_DELAY", 0); err != nil {
		return nil, err
	}
	if cfg.Debug, err = getenvBool("DEBUG", false); err != nil {
		return nil, err
	}
	cfg.APIBase = getenvDefault("AQI_API_BASE", providers.DefaultAPIBase)

	if err := loadRetry(cfg); err != nil {
		return nil, err
	}

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.ResponseTimeout, err = getenvDuration("RESPONSE_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.ResponseTimeout == 0 {
		cfg.ResponseTimeout = cfg.Retry.WorstCase(cfg.HTTPTimeout)
	}

	if err := loadDayPartition(cfg); err != nil {
		return nil, err
	}

	threshold := getenvInt("BREAKER_THRESHOLD", 3)
	if threshold < 0 {
		return nil, fmt.Errorf("invalid BREAKER_THRESHOLD: must not be negative")
	}
	cfg.BreakerThreshold = uint32(threshold)
	if cfg.BreakerCooldown, err = getenvDuration("BREAKER_COOLDOWN", 10*time.Minute); err != nil {
		return nil, err
	}

	cfg.AppEnv = strings.ToLower(getenvDefault("APP_ENV", "dev"))
	level := getenvDefault("LOG_LEVEL", "info")
	if cfg.Debug {
		level = "debug"
	}
	if cfg.LogLevel, err = parseLogLevel(level); err != nil {
		return nil, err
	}

	cfg.Port = getenvDefault("PORT", "8080")

	cfg.MQTTBroker = os.Getenv("MQTT_BROKER")
	cfg.MQTTPort = getenvInt("MQTT_PORT", 1883)
	cfg.MQTTClientID = getenvDefault("MQTT_CLIENT_ID", "aqi-display")
	cfg.MQTTTopic = getenvDefault("MQTT_TOPIC", "aqi/readings")

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// MQTTEnabled reports whether readings should be published to a broker.
func (c *AppConfig) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func loadRetry(cfg *AppConfig) error {
	preset, err := providers.LookupPreset(os.Getenv("RETRY_PRESET"))
	if err != nil {
		return err
	}
	cfg.Preset = preset.Name
	cfg.Retry = preset.Policy
	cfg.Headers = preset.Headers

	cfg.Retry.MaxAttempts = getenvInt("MAX_ATTEMPTS", cfg.Retry.MaxAttempts)
	if cfg.Retry.InitialDelay, err = getenvDuration("INITIAL_DELAY", cfg.Retry.InitialDelay); err != nil {
		return err
	}
	if cfg.Retry.PostResponsePause, err = getenvBool("POST_RESPONSE_PAUSE", cfg.Retry.PostResponsePause); err != nil {
		return err
	}
	cfg.Headers.UserAgent = getenvDefault("USER_AGENT", cfg.Headers.UserAgent)
	return nil
}

func loadDayPartition(cfg *AppConfig) error {
	tz := getenvDefault("UV_TIMEZONE", "Europe/London")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid UV_TIMEZONE: %w", err)
	}
	cfg.Location = loc

	p := aqi.DefaultDayPartition
	p.Dawn = getenvInt("DAWN_HOUR", p.Dawn)
	p.Dusk = getenvInt("DUSK_HOUR", p.Dusk)
	if p.Dawn < 0 || p.Dawn > p.PeakStart || p.Dusk < p.PeakEnd || p.Dusk > 24 {
		return fmt.Errorf("invalid DAWN_HOUR/DUSK_HOUR: need 0 <= dawn <= %d and %d <= dusk <= 24", p.PeakStart, p.PeakEnd)
	}
	cfg.Partition = p
	return nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
