package domain

import "context"

// ForecastSource returns daily forecast records for a coordinate pair.
type ForecastSource interface {
	Forecast(ctx context.Context, coords Coordinates) (Forecast, error)
}

// WeatherFetcher picks the forecast record for a time qualifier and reduces
// it to a WeatherSummary.
type WeatherFetcher struct {
	source ForecastSource
}

// NewWeatherFetcher creates a fetcher backed by the given forecast source.
func NewWeatherFetcher(s ForecastSource) *WeatherFetcher {
	return &WeatherFetcher{source: s}
}

// Fetch returns the summary for the day selected by when. A missing record,
// a record lacking low, high or summary, or a source failure all yield a
// *WeatherError for coords.
func (f *WeatherFetcher) Fetch(ctx context.Context, coords Coordinates, when TimeQualifier) (WeatherSummary, error) {
	forecast, err := f.source.Forecast(ctx, coords)
	if err != nil {
		return WeatherSummary{}, &WeatherError{Coordinates: coords, Err: err}
	}

	idx := when.DayIndex()
	if idx >= len(forecast.Daily) {
		return WeatherSummary{}, &WeatherError{Coordinates: coords}
	}
	day := forecast.Daily[idx]
	if day.Low == nil || day.High == nil || day.Summary == nil {
		return WeatherSummary{}, &WeatherError{Coordinates: coords}
	}

	return WeatherSummary{
		LowTemperature:  *day.Low,
		HighTemperature: *day.High,
		Description:     *day.Summary,
		TimeLabel:       when.Label(),
	}, nil
}
