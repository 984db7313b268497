package googlemaps

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/weather-chat-service/internal/adapter/upstream"
	"github.com/couchcryptid/weather-chat-service/internal/domain"
	"github.com/couchcryptid/weather-chat-service/internal/observability"
)

const testKey = "test-key"

func testClient(baseURL string) *Client {
	http := upstream.New(upstream.Settings{Name: "google", Timeout: 5 * time.Second, RPS: 1000},
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewClient(testKey, baseURL, http)
}

func serveJSON(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Geocode_Success(t *testing.T) {
	srv := serveJSON(t, `{
		"status": "OK",
		"results": [
			{"formatted_address": "San Francisco, CA, USA", "geometry": {"location": {"lat": 37.7749295, "lng": -122.4194155}}},
			{"formatted_address": "San Francisco, Córdoba, Argentina", "geometry": {"location": {"lat": -31.4282, "lng": -62.0826}}}
		]
	}`, func(r *http.Request) {
		assert.Equal(t, "San Francisco", r.URL.Query().Get("address"))
		assert.Equal(t, testKey, r.URL.Query().Get("key"))
	})

	got, err := testClient(srv.URL).Geocode(context.Background(), "San Francisco")
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, domain.Coordinates{Lat: 37.7749295, Lng: -122.4194155}, got[0].Coordinates)
	assert.Equal(t, "San Francisco, CA, USA", got[0].FormattedAddress)
	assert.Equal(t, -31.4282, got[1].Coordinates.Lat)
}

func TestClient_Geocode_ZeroResults(t *testing.T) {
	srv := serveJSON(t, `{"status": "ZERO_RESULTS", "results": []}`, nil)

	got, err := testClient(srv.URL).Geocode(context.Background(), "Atlantis")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Geocode_RequestDenied(t *testing.T) {
	srv := serveJSON(t, `{"status": "REQUEST_DENIED", "error_message": "The provided API key is invalid.", "results": []}`, nil)

	_, err := testClient(srv.URL).Geocode(context.Background(), "Boston")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REQUEST_DENIED")
	assert.Contains(t, err.Error(), "API key is invalid")
}

func TestClient_Geocode_QuotaErrorsOpenBreaker(t *testing.T) {
	srv := serveJSON(t, `{"status": "OVER_QUERY_LIMIT", "error_message": "You have exceeded your daily request quota.", "results": []}`, nil)

	client := upstream.New(upstream.Settings{Name: "google", RPS: 1000, MaxFailures: 2, OpenTimeout: time.Minute},
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c := NewClient(testKey, srv.URL, client)

	for range 2 {
		_, err := c.Geocode(context.Background(), "Boston")
		var pe *upstream.ProviderError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, "OVER_QUERY_LIMIT", pe.Status)
		assert.True(t, pe.Degraded)
	}
	assert.True(t, client.Open())
	assert.Error(t, upstream.Group{client}.CheckReadiness(context.Background()))
}

func TestClient_Geocode_InvalidRequestKeepsBreakerClosed(t *testing.T) {
	srv := serveJSON(t, `{"status": "INVALID_REQUEST", "results": []}`, nil)

	client := upstream.New(upstream.Settings{Name: "google", RPS: 1000, MaxFailures: 1},
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	c := NewClient(testKey, srv.URL, client)

	for range 3 {
		_, err := c.Geocode(context.Background(), "")
		require.Error(t, err)
	}
	assert.False(t, client.Open())
}

func TestClient_Geocode_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).Geocode(context.Background(), "Boston")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestNewClient_DefaultBaseURL(t *testing.T) {
	c := NewClient(testKey, "", nil)
	assert.Equal(t, DefaultBaseURL, c.baseURL)
}
