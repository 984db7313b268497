package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
	"github.com/couchcryptid/weather-chat-service/internal/message"
	"github.com/couchcryptid/weather-chat-service/internal/observability"
)

// Reporter runs the report pipeline; ReportPipeline implements it.
type Reporter interface {
	Trace(ctx context.Context, text string) (Report, error)
}

// EventPublisher emits chat events to the analytics stream.
type EventPublisher interface {
	Publish(ctx context.Context, event domain.ChatEvent) error
}

// NopPublisher discards events. It is used when no event stream is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, domain.ChatEvent) error { return nil }

var outcomeKinds = map[domain.Outcome]message.Kind{
	domain.OutcomeParseError:    message.ParseError,
	domain.OutcomeLocationError: message.LocationError,
	domain.OutcomeWeatherError:  message.WeatherError,
}

// Responder turns chat actions into reply text.
type Responder struct {
	reporter Reporter
	renderer *message.Renderer
	pools    map[message.Kind]*message.Pool
	events   EventPublisher
	logger   *slog.Logger
	metrics  *observability.Metrics
}

// NewResponder creates a Responder. A nil publisher disables events.
func NewResponder(reporter Reporter, renderer *message.Renderer, pools map[message.Kind]*message.Pool, events EventPublisher, logger *slog.Logger, metrics *observability.Metrics) *Responder {
	if events == nil {
		events = NopPublisher{}
	}
	return &Responder{
		reporter: reporter,
		renderer: renderer,
		pools:    pools,
		events:   events,
		logger:   logger,
		metrics:  metrics,
	}
}

// Greet welcomes a user who joined the chat.
func (r *Responder) Greet(ctx context.Context, name string) (string, error) {
	text, err := r.render(message.Greeting, map[string]any{"name": name})
	if err != nil {
		return "", err
	}
	r.finish(ctx, domain.NewChatEvent(domain.ActionJoin, domain.OutcomeGreeting))
	return text, nil
}

// Reply answers a chat message with a weather report, or with the message
// for whichever stage failed. Only a render failure is returned as an error.
func (r *Responder) Reply(ctx context.Context, text string) (string, error) {
	report, err := r.reporter.Trace(ctx, text)

	var (
		kind    = message.Report
		outcome = domain.OutcomeReport
		data    map[string]any
	)
	if err != nil {
		var pe domain.PipelineError
		if !errors.As(err, &pe) {
			return "", fmt.Errorf("report pipeline: %w", err)
		}
		outcome = domain.OutcomeOf(pe)
		kind, data = outcomeKinds[outcome], pe.TemplateContext()
		r.logFailure(ctx, outcome, text, pe)
	} else {
		data = report.Summary.TemplateContext()
	}

	reply, rerr := r.render(kind, data)
	if rerr != nil {
		return "", rerr
	}

	event := domain.NewChatEvent(domain.ActionMessage, outcome)
	if report.Parsed {
		event.Location = report.Query.Location
		event.Time = report.Query.When.Label()
	}
	event.Coordinates = report.Coordinates
	r.finish(ctx, event)
	return reply, nil
}

func (r *Responder) render(kind message.Kind, data map[string]any) (string, error) {
	pool, ok := r.pools[kind]
	if !ok {
		return "", fmt.Errorf("no template pool for %s", kind)
	}
	return r.renderer.Render(pool, data)
}

func (r *Responder) logFailure(ctx context.Context, outcome domain.Outcome, text string, err error) {
	level := slog.LevelWarn
	if outcome == domain.OutcomeParseError {
		level = slog.LevelInfo
	}
	r.logger.Log(ctx, level, "report failed", "outcome", outcome, "query", text, "error", err)
}

// finish counts the action and publishes its event. A publish failure is
// logged and never changes the reply.
func (r *Responder) finish(ctx context.Context, event domain.ChatEvent) {
	r.metrics.ChatRequests.WithLabelValues(event.Action, string(event.Outcome)).Inc()
	if err := r.events.Publish(context.WithoutCancel(ctx), event); err != nil {
		r.logger.Warn("publish chat event failed", "error", err, "event_id", event.ID)
	}
}
