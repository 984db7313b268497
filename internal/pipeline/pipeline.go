package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
	"github.com/couchcryptid/weather-chat-service/internal/observability"
)

// Stage labels used in logs and the stage duration histogram.
const (
	stageParse    = "parse"
	stageGeocode  = "geocode"
	stageForecast = "forecast"
)

// Timeouts bound each external stage. Zero leaves a stage unbounded apart
// from the caller's context.
type Timeouts struct {
	Geocode time.Duration
	Weather time.Duration
}

// Report is the trace of one pipeline run. Query is set once parsing
// succeeds and Coordinates once the location resolves, so a failed run still
// says how far it got.
type Report struct {
	Query       domain.Query
	Parsed      bool
	Coordinates *domain.Coordinates
	Summary     domain.WeatherSummary
}

// ReportPipeline runs parse, resolve and fetch in order. The first stage to
// fail ends the run with its domain.PipelineError.
type ReportPipeline struct {
	matcher  *domain.PhraseMatcher
	resolver *domain.LocationResolver
	fetcher  *domain.WeatherFetcher
	timeouts Timeouts
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// New creates a ReportPipeline with the given stages and observability.
func New(matcher *domain.PhraseMatcher, geocoder domain.Geocoder, source domain.ForecastSource, timeouts Timeouts, logger *slog.Logger, metrics *observability.Metrics) *ReportPipeline {
	return &ReportPipeline{
		matcher:  matcher,
		resolver: domain.NewLocationResolver(geocoder),
		fetcher:  domain.NewWeatherFetcher(source),
		timeouts: timeouts,
		logger:   logger,
		metrics:  metrics,
	}
}

// Run produces a weather summary for free-form text, or the typed error of
// the stage that failed.
func (p *ReportPipeline) Run(ctx context.Context, text string) (domain.WeatherSummary, error) {
	r, err := p.Trace(ctx, text)
	if err != nil {
		return domain.WeatherSummary{}, err
	}
	return r.Summary, nil
}

// Trace is Run that also reports the intermediate results.
func (p *ReportPipeline) Trace(ctx context.Context, text string) (Report, error) {
	var r Report

	start := time.Now()
	q, err := p.matcher.Extract(text)
	p.observe(stageParse, start, err)
	if err != nil {
		return r, err
	}
	r.Query, r.Parsed = q, true

	coords, err := p.resolve(ctx, q.Location)
	if err != nil {
		return r, err
	}
	r.Coordinates = &coords

	summary, err := p.fetch(ctx, coords, q.When)
	if err != nil {
		return r, err
	}
	r.Summary = summary
	return r, nil
}

func (p *ReportPipeline) resolve(ctx context.Context, query string) (domain.Coordinates, error) {
	ctx, cancel := withStageTimeout(ctx, p.timeouts.Geocode)
	defer cancel()

	start := time.Now()
	coords, err := p.resolver.Resolve(ctx, query)
	p.observe(stageGeocode, start, err)
	return coords, err
}

func (p *ReportPipeline) fetch(ctx context.Context, coords domain.Coordinates, when domain.TimeQualifier) (domain.WeatherSummary, error) {
	ctx, cancel := withStageTimeout(ctx, p.timeouts.Weather)
	defer cancel()

	start := time.Now()
	summary, err := p.fetcher.Fetch(ctx, coords, when)
	p.observe(stageForecast, start, err)
	return summary, err
}

func (p *ReportPipeline) observe(stage string, start time.Time, err error) {
	elapsed := time.Since(start)
	p.metrics.StageDuration.WithLabelValues(stage).Observe(elapsed.Seconds())
	p.logger.Debug("pipeline stage finished", "stage", stage, "duration", elapsed, "ok", err == nil)
}

func withStageTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}
