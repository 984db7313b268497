package config

import (
	"errors"
	"fmt"
	"reflect"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
)

// Geocoding and weather providers selectable at startup.
const (
	GeocoderGoogle = "google"
	GeocoderMapbox = "mapbox"

	WeatherDarkSky        = "darksky"
	WeatherOpenWeatherMap = "openweathermap"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string        `envconfig:"HTTP_ADDR" default:":9000" validate:"required"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`
	LogFormat       string        `envconfig:"LOG_FORMAT" default:"json" validate:"oneof=json text"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s" validate:"gt=0"`
	CORSOrigins     []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://hipmunk.github.io" validate:"min=1"`

	// Geocoding configuration.
	GeocoderProvider  string        `envconfig:"GEOCODER_PROVIDER" default:"google" validate:"oneof=google mapbox"`
	GeocoderAPIKey    string        `envconfig:"GEOCODER_API_KEY" validate:"required"`
	GeocoderBaseURL   string        `envconfig:"GEOCODER_BASE_URL" validate:"omitempty,url"`
	GeocoderTimeout   time.Duration `envconfig:"GEOCODER_TIMEOUT" default:"5s" validate:"gt=0"`
	GeocoderCacheSize int           `envconfig:"GEOCODER_CACHE_SIZE" default:"1000" validate:"gte=0"`
	GeocoderCacheTTL  time.Duration `envconfig:"GEOCODER_CACHE_TTL" default:"24h" validate:"gt=0"`
	GeocoderRPS       float64       `envconfig:"GEOCODER_RPS" default:"10" validate:"gt=0"`

	// Weather configuration.
	WeatherProvider string        `envconfig:"WEATHER_PROVIDER" default:"darksky" validate:"oneof=darksky openweathermap"`
	WeatherAPIKey   string        `envconfig:"WEATHER_API_KEY" validate:"required"`
	WeatherBaseURL  string        `envconfig:"WEATHER_BASE_URL" validate:"omitempty,url"`
	WeatherTimeout  time.Duration `envconfig:"WEATHER_TIMEOUT" default:"5s" validate:"gt=0"`
	WeatherRPS      float64       `envconfig:"WEATHER_RPS" default:"5" validate:"gt=0"`

	// Chat event stream. Disabled when no brokers are set.
	KafkaBrokers []string `envconfig:"KAFKA_BROKERS"`
	KafkaTopic   string   `envconfig:"KAFKA_TOPIC" default:"chat-events" validate:"required"`

	// SecretKey, when set, means the API keys are SecretBox ciphertext.
	SecretKey string `envconfig:"SECRET_KEY" validate:"omitempty,len=32"`
}

// EventsEnabled reports whether chat events should be published.
func (c *Config) EventsEnabled() bool { return len(c.KafkaBrokers) > 0 }

// Load reads configuration from environment variables, applying defaults
// where unset, and decrypts the API keys when SECRET_KEY is present.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, describeValidation(err)
	}

	if cfg.SecretKey != "" {
		var err error
		if cfg.GeocoderAPIKey, err = DecryptKey(cfg.SecretKey, cfg.GeocoderAPIKey); err != nil {
			return nil, fmt.Errorf("GEOCODER_API_KEY: %w", err)
		}
		if cfg.WeatherAPIKey, err = DecryptKey(cfg.SecretKey, cfg.WeatherAPIKey); err != nil {
			return nil, fmt.Errorf("WEATHER_API_KEY: %w", err)
		}
	}

	return &cfg, nil
}

// describeValidation rewrites validator errors in terms of environment
// variable names.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	t := reflect.TypeOf(Config{})
	msgs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if f, ok := t.FieldByName(fe.StructField()); ok {
			name = f.Tag.Get("envconfig")
		}
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Errorf("%s is required", name))
		case "oneof":
			msgs = append(msgs, fmt.Errorf("%s must be one of [%s], got %q", name, fe.Param(), fe.Value()))
		default:
			msgs = append(msgs, fmt.Errorf("invalid %s: failed %q check", name, fe.Tag()))
		}
	}
	return errors.Join(msgs...)
}
