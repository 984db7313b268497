package domain

import (
	"time"

	"github.com/google/uuid"
)

// Chat actions accepted by the webhook.
const (
	ActionJoin    = "join"
	ActionMessage = "message"
)

// Outcome labels the kind of reply produced for a chat action.
type Outcome string

const (
	OutcomeGreeting      Outcome = "greeting"
	OutcomeReport        Outcome = "report"
	OutcomeParseError    Outcome = "parse_error"
	OutcomeLocationError Outcome = "location_error"
	OutcomeWeatherError  Outcome = "weather_error"
)

// OutcomeOf classifies a pipeline result. A nil error is a report.
func OutcomeOf(err error) Outcome {
	switch err.(type) {
	case nil:
		return OutcomeReport
	case *ParseError:
		return OutcomeParseError
	case *LocationError:
		return OutcomeLocationError
	case *WeatherError:
		return OutcomeWeatherError
	}
	return ""
}

// ChatEvent records one handled chat action for the analytics stream. It
// holds no conversation state and is never read back by the service.
type ChatEvent struct {
	ID          string       `json:"id"`
	Action      string       `json:"action"`
	Outcome     Outcome      `json:"outcome"`
	Location    string       `json:"location,omitempty"`
	Coordinates *Coordinates `json:"coordinates,omitempty"`
	Time        string       `json:"time,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// NewChatEvent stamps a new event with a random id and the domain clock.
func NewChatEvent(action string, outcome Outcome) ChatEvent {
	return ChatEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Outcome:    outcome,
		OccurredAt: clock.Now().UTC(),
	}
}
