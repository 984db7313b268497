package domain

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubForecastSource struct {
	forecast Forecast
	err      error
	coords   []Coordinates
}

func (s *stubForecastSource) Forecast(_ context.Context, c Coordinates) (Forecast, error) {
	s.coords = append(s.coords, c)
	return s.forecast, s.err
}

func ptr[T any](v T) *T { return &v }

func day(low, high float64, summary string) DailyForecast {
	return DailyForecast{Low: ptr(low), High: ptr(high), Summary: ptr(summary)}
}

var testCoords = Coordinates{Lat: 37.77, Lng: -122.42}

func TestWeatherFetcher_Today(t *testing.T) {
	src := &stubForecastSource{forecast: Forecast{Daily: []DailyForecast{
		day(50, 65, "Sunny"),
		day(48, 60, "Fog in the morning"),
	}}}

	summary, err := NewWeatherFetcher(src).Fetch(context.Background(), testCoords, Today)
	require.NoError(t, err)

	assert.Equal(t, WeatherSummary{
		LowTemperature:  50,
		HighTemperature: 65,
		Description:     "Sunny",
		TimeLabel:       "today",
	}, summary)
	assert.Equal(t, []Coordinates{testCoords}, src.coords)
}

func TestWeatherFetcher_Tomorrow(t *testing.T) {
	src := &stubForecastSource{forecast: Forecast{Daily: []DailyForecast{
		day(50, 65, "Sunny"),
		day(48, 60, "Fog in the morning"),
	}}}

	summary, err := NewWeatherFetcher(src).Fetch(context.Background(), testCoords, Tomorrow)
	require.NoError(t, err)

	assert.Equal(t, 48.0, summary.LowTemperature)
	assert.Equal(t, 60.0, summary.HighTemperature)
	assert.Equal(t, "Fog in the morning", summary.Description)
	assert.Equal(t, "tomorrow", summary.TimeLabel)
}

func TestWeatherFetcher_ZeroReadingsAreValid(t *testing.T) {
	src := &stubForecastSource{forecast: Forecast{Daily: []DailyForecast{day(0, 0, "")}}}

	summary, err := NewWeatherFetcher(src).Fetch(context.Background(), testCoords, Today)
	require.NoError(t, err)
	assert.Equal(t, 0.0, summary.LowTemperature)
}

func TestWeatherFetcher_MissingData(t *testing.T) {
	tests := []struct {
		name     string
		forecast Forecast
		when     TimeQualifier
	}{
		{"empty daily list", Forecast{}, Today},
		{"no record for tomorrow", Forecast{Daily: []DailyForecast{day(1, 2, "x")}}, Tomorrow},
		{"missing low", Forecast{Daily: []DailyForecast{{High: ptr(2.0), Summary: ptr("x")}}}, Today},
		{"missing high", Forecast{Daily: []DailyForecast{{Low: ptr(1.0), Summary: ptr("x")}}}, Today},
		{"missing summary", Forecast{Daily: []DailyForecast{{Low: ptr(1.0), High: ptr(2.0)}}}, Today},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &stubForecastSource{forecast: tt.forecast}

			summary, err := NewWeatherFetcher(src).Fetch(context.Background(), testCoords, tt.when)
			require.Error(t, err)
			assert.Equal(t, WeatherSummary{}, summary)

			var we *WeatherError
			require.True(t, errors.As(err, &we))
			assert.Equal(t, testCoords, we.Coordinates)
			assert.NoError(t, we.Err)
		})
	}
}

func TestWeatherFetcher_SourceFailure(t *testing.T) {
	cause := errors.New("upstream returned 503")
	src := &stubForecastSource{err: cause}

	_, err := NewWeatherFetcher(src).Fetch(context.Background(), testCoords, Today)

	var we *WeatherError
	require.True(t, errors.As(err, &we))
	assert.Equal(t, testCoords, we.Coordinates)
	assert.ErrorIs(t, err, cause)
}
