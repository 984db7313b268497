// Command mockapi serves deterministic stand-ins for the Google Geocoding and
// Dark Sky forecast APIs so the chat service can run locally without
// provider keys.
//
// Usage:
//
//	go run ./cmd/mockapi -addr :9100
//
//	GEOCODER_PROVIDER=google GEOCODER_API_KEY=dev \
//	GEOCODER_BASE_URL=http://localhost:9100/geocode/json \
//	WEATHER_PROVIDER=darksky WEATHER_API_KEY=dev \
//	WEATHER_BASE_URL=http://localhost:9100/forecast \
//	go run ./cmd/chat
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"hash/fnv"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// forecastDays matches the length of a Dark Sky daily block.
const forecastDays = 8

type place struct {
	address  string
	lat, lng float64
}

// places are the locations the mock geocoder knows, keyed by lower-case query.
var places = map[string]place{
	"san francisco": {"San Francisco, CA, USA", 37.7749295, -122.4194155},
	"boston":        {"Boston, MA, USA", 42.3600825, -71.0588801},
	"austin":        {"Austin, TX, USA", 30.267153, -97.7430608},
	"seattle":       {"Seattle, WA, USA", 47.6062095, -122.3320708},
	"chicago":       {"Chicago, IL, USA", 41.8781136, -87.6297982},
	"new york city": {"New York, NY, USA", 40.7127753, -74.0059728},
	"paris":         {"Paris, France", 48.856614, 2.3522219},
}

var summaries = []string{
	"clear throughout the day",
	"partly cloudy",
	"mostly sunny",
	"light rain in the afternoon",
	"foggy in the morning",
	"overcast",
}

func main() {
	addr := flag.String("addr", ":9100", "listen address")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	srv := &http.Server{
		Addr:              *addr,
		Handler:           newRouter(logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info("mock provider API listening", "addr", *addr)
	if err := srv.ListenAndServe(); err != nil {
		logger.Error("mock provider API stopped", "error", err)
		os.Exit(1)
	}
}

func newRouter(logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(logger))
	r.Get("/geocode/json", handleGeocode)
	r.Get("/forecast/{key}/{coords}", handleForecast)
	return r
}

func handleGeocode(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Get("key") == "" {
		writeJSON(w, http.StatusOK, map[string]any{
			"status":        "REQUEST_DENIED",
			"error_message": "You must use an API key to authenticate each request.",
			"results":       []any{},
		})
		return
	}

	p, ok := places[strings.ToLower(strings.TrimSpace(q.Get("address")))]
	if !ok {
		writeJSON(w, http.StatusOK, map[string]any{"status": "ZERO_RESULTS", "results": []any{}})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "OK",
		"results": []any{map[string]any{
			"formatted_address": p.address,
			"geometry": map[string]any{
				"location": map[string]float64{"lat": p.lat, "lng": p.lng},
			},
		}},
	})
}

func handleForecast(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseCoords(chi.URLParam(r, "coords"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"code": http.StatusBadRequest, "error": err.Error()})
		return
	}

	seed := coordSeed(lat, lng)
	start := time.Now().UTC().Truncate(24 * time.Hour)
	days := make([]map[string]any, 0, forecastDays)
	for i := range forecastDays {
		low := 30 + float64((seed+uint32(i)*7)%40) + 0.25
		days = append(days, map[string]any{
			"time":            start.AddDate(0, 0, i).Unix(),
			"summary":         summaries[(seed+uint32(i))%uint32(len(summaries))],
			"temperatureLow":  low,
			"temperatureHigh": low + 8 + float64(i%5),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"latitude":  lat,
		"longitude": lng,
		"daily":     map[string]any{"data": days},
	})
}

func parseCoords(s string) (lat, lng float64, err error) {
	latS, lngS, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, fmt.Errorf("coordinates %q must be lat,lng", s)
	}
	if lat, err = strconv.ParseFloat(latS, 64); err != nil {
		return 0, 0, fmt.Errorf("latitude: %w", err)
	}
	if lng, err = strconv.ParseFloat(lngS, 64); err != nil {
		return 0, 0, fmt.Errorf("longitude: %w", err)
	}
	return lat, lng, nil
}

// requestLogger logs the matched route rather than the raw path, which
// carries the API key for forecast requests.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			route := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				route = rctx.RoutePattern()
			}
			logger.Info("mock request",
				"method", r.Method,
				"route", route,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}

// coordSeed gives the same coordinates the same forecast on every run.
func coordSeed(lat, lng float64) uint32 {
	h := fnv.New32a()
	fmt.Fprintf(h, "%.4f,%.4f", lat, lng)
	return h.Sum32()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
