package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/weather-chat-service/internal/adapter/darksky"
	"github.com/couchcryptid/weather-chat-service/internal/adapter/geocache"
	"github.com/couchcryptid/weather-chat-service/internal/adapter/googlemaps"
	httpadapter "github.com/couchcryptid/weather-chat-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/weather-chat-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-chat-service/internal/adapter/mapbox"
	"github.com/couchcryptid/weather-chat-service/internal/adapter/openweathermap"
	"github.com/couchcryptid/weather-chat-service/internal/adapter/upstream"
	"github.com/couchcryptid/weather-chat-service/internal/config"
	"github.com/couchcryptid/weather-chat-service/internal/domain"
	"github.com/couchcryptid/weather-chat-service/internal/message"
	"github.com/couchcryptid/weather-chat-service/internal/observability"
	"github.com/couchcryptid/weather-chat-service/internal/pipeline"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	if err := run(cfg, logger, metrics); err != nil {
		logger.Error("service stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *slog.Logger, metrics *observability.Metrics) error {
	pools := message.DefaultPools()
	if err := message.Validate(pools, message.SampleContexts()); err != nil {
		return fmt.Errorf("reply templates: %w", err)
	}

	geoHTTP := upstream.New(upstream.Settings{
		Name:    cfg.GeocoderProvider,
		Timeout: cfg.GeocoderTimeout,
		RPS:     cfg.GeocoderRPS,
	}, metrics, logger)
	weatherHTTP := upstream.New(upstream.Settings{
		Name:    cfg.WeatherProvider,
		Timeout: cfg.WeatherTimeout,
		RPS:     cfg.WeatherRPS,
	}, metrics, logger)

	geocoder := newGeocoder(cfg, geoHTTP)
	if cfg.GeocoderCacheSize > 0 {
		geocoder = geocache.New(geocoder, cfg.GeocoderCacheSize, cfg.GeocoderCacheTTL, nil, metrics)
	}
	logger.Info("geocoder configured", "provider", cfg.GeocoderProvider,
		"cache_size", cfg.GeocoderCacheSize, "timeout", cfg.GeocoderTimeout)

	forecasts := newForecastSource(cfg, weatherHTTP)
	logger.Info("weather source configured", "provider", cfg.WeatherProvider, "timeout", cfg.WeatherTimeout)

	var events pipeline.EventPublisher = pipeline.NopPublisher{}
	var writer *kafkaadapter.Writer
	if cfg.EventsEnabled() {
		writer = kafkaadapter.NewWriter(cfg, metrics, logger)
		events = writer
		logger.Info("chat events enabled", "topic", cfg.KafkaTopic)
	} else {
		logger.Info("chat events disabled")
	}

	p := pipeline.New(domain.DefaultPhraseMatcher(), geocoder, forecasts,
		pipeline.Timeouts{Geocode: cfg.GeocoderTimeout, Weather: cfg.WeatherTimeout},
		logger, metrics)
	responder := pipeline.NewResponder(p, message.NewRenderer(nil), pools, events, logger, metrics)

	srv := httpadapter.NewServer(cfg.HTTPAddr, cfg.CORSOrigins, responder,
		upstream.Group{geoHTTP, weatherHTTP}, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gCtx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("http server shutdown error", "error", err)
		}
		if writer != nil {
			if err := writer.Close(); err != nil {
				logger.Error("kafka writer close error", "error", err)
			}
		}
		return nil
	})

	err := g.Wait()
	logger.Info("shutdown complete")
	return err
}

func newGeocoder(cfg *config.Config, client *upstream.Client) domain.Geocoder {
	if cfg.GeocoderProvider == config.GeocoderMapbox {
		return mapbox.NewClient(cfg.GeocoderAPIKey, cfg.GeocoderBaseURL, client)
	}
	return googlemaps.NewClient(cfg.GeocoderAPIKey, cfg.GeocoderBaseURL, client)
}

func newForecastSource(cfg *config.Config, client *upstream.Client) domain.ForecastSource {
	if cfg.WeatherProvider == config.WeatherOpenWeatherMap {
		return openweathermap.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, client)
	}
	return darksky.NewClient(cfg.WeatherAPIKey, cfg.WeatherBaseURL, client)
}
