//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"strconv"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"

	"github.com/couchcryptid/weather-chat-service/internal/adapter/kafka"
	"github.com/couchcryptid/weather-chat-service/internal/config"
	"github.com/couchcryptid/weather-chat-service/internal/domain"
	"github.com/couchcryptid/weather-chat-service/internal/message"
	"github.com/couchcryptid/weather-chat-service/internal/observability"
	"github.com/couchcryptid/weather-chat-service/internal/pipeline"
)

const testEventTopic = "test-chat-events"

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// startKafka runs a single-node KRaft broker and returns its address.
func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	kc, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("chat-test"))
	testcontainers.CleanupContainer(t, kc)
	require.NoError(t, err, "start kafka container")

	brokers, err := kc.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

type publishedEvent struct {
	Event   domain.ChatEvent
	Key     string
	Headers map[string]string
}

func readEvent(ctx context.Context, t *testing.T, consumer *kafkago.Reader) publishedEvent {
	t.Helper()
	readCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	msg, err := consumer.ReadMessage(readCtx)
	require.NoError(t, err, "read from event topic")

	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	var event domain.ChatEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event), "unmarshal event")
	return publishedEvent{Event: event, Key: string(msg.Key), Headers: headers}
}

type stubReporter struct {
	mock.Mock
}

func (s *stubReporter) Trace(ctx context.Context, text string) (pipeline.Report, error) {
	args := s.Called(ctx, text)
	return args.Get(0).(pipeline.Report), args.Error(1)
}

// TestResponderPublishesChatEvents wires the Responder to a real Kafka writer
// and checks that every handled action lands on the event topic.
func TestResponderPublishesChatEvents(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testEventTopic)

	cfg := &config.Config{KafkaBrokers: []string{broker}, KafkaTopic: testEventTopic}
	metrics := observability.NewMetricsForTesting()
	writer := kafka.NewWriter(cfg, metrics, discardLogger())

	boston := domain.Coordinates{Lat: 42.36, Lng: -71.06}
	rep := new(stubReporter)
	rep.On("Trace", mock.Anything, "Boston weather tomorrow").Return(pipeline.Report{
		Query:       domain.Query{Location: "Boston", When: domain.Tomorrow},
		Parsed:      true,
		Coordinates: &boston,
		Summary:     domain.WeatherSummary{LowTemperature: 31, HighTemperature: 44, Description: "snow", TimeLabel: "tomorrow"},
	}, nil)
	rep.On("Trace", mock.Anything, "asdf").Return(pipeline.Report{}, &domain.ParseError{Query: "asdf"})

	r := pipeline.NewResponder(rep, message.NewRenderer(nil), message.DefaultPools(), writer, discardLogger(), metrics)

	_, err := r.Greet(ctx, "sam")
	require.NoError(t, err)
	_, err = r.Reply(ctx, "Boston weather tomorrow")
	require.NoError(t, err)
	_, err = r.Reply(ctx, "asdf")
	require.NoError(t, err)

	// Close flushes the async batch.
	require.NoError(t, writer.Close())
	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("success")))

	consumer := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     []string{broker},
		Topic:       testEventTopic,
		GroupID:     fmt.Sprintf("test-events-%d", time.Now().UnixNano()),
		StartOffset: kafkago.FirstOffset,
	})
	t.Cleanup(func() { _ = consumer.Close() })

	byOutcome := map[domain.Outcome]publishedEvent{}
	for range 3 {
		pe := readEvent(ctx, t, consumer)
		assert.Equal(t, pe.Event.ID, pe.Key)
		assert.Equal(t, pe.Event.Action, pe.Headers["action"])
		assert.Equal(t, string(pe.Event.Outcome), pe.Headers["outcome"])
		byOutcome[pe.Event.Outcome] = pe
	}

	require.Contains(t, byOutcome, domain.OutcomeGreeting)
	assert.Equal(t, domain.ActionJoin, byOutcome[domain.OutcomeGreeting].Event.Action)

	require.Contains(t, byOutcome, domain.OutcomeReport)
	report := byOutcome[domain.OutcomeReport].Event
	assert.Equal(t, "Boston", report.Location)
	assert.Equal(t, "tomorrow", report.Time)
	require.NotNil(t, report.Coordinates)
	assert.Equal(t, boston, *report.Coordinates)

	require.Contains(t, byOutcome, domain.OutcomeParseError)
	assert.Empty(t, byOutcome[domain.OutcomeParseError].Event.Location)
}
