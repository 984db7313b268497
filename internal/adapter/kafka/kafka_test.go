package kafka

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
)

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	event := domain.ChatEvent{
		ID:          "evt-1",
		Action:      domain.ActionMessage,
		Outcome:     domain.OutcomeReport,
		Location:    "Boston",
		Coordinates: &domain.Coordinates{Lat: 42.36, Lng: -71.06},
		Time:        "today",
		OccurredAt:  now,
	}

	msg, err := serializeToMessage(event)
	require.NoError(t, err)

	assert.Equal(t, []byte("evt-1"), msg.Key)
	assert.Equal(t, now, msg.Time)
	assert.JSONEq(t, `{
		"id": "evt-1",
		"action": "message",
		"outcome": "report",
		"location": "Boston",
		"coordinates": {"lat": 42.36, "lng": -71.06},
		"time": "today",
		"occurred_at": "2026-03-14T09:00:00Z"
	}`, string(msg.Value))
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "action", msg.Headers[0].Key)
	assert.Equal(t, []byte("message"), msg.Headers[0].Value)
	assert.Equal(t, "outcome", msg.Headers[1].Key)
	assert.Equal(t, []byte("report"), msg.Headers[1].Value)
}

func TestSerializeToMessage_OmitsEmptyFields(t *testing.T) {
	msg, err := serializeToMessage(domain.ChatEvent{
		ID:      "evt-2",
		Action:  domain.ActionJoin,
		Outcome: domain.OutcomeGreeting,
	})
	require.NoError(t, err)

	assert.NotContains(t, string(msg.Value), "location")
	assert.NotContains(t, string(msg.Value), "coordinates")
}
