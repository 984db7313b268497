package openweathermap

import (
	"context"
	"net/url"
	"strconv"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
)

// DefaultBaseURL is the One Call API 3.0 endpoint.
const DefaultBaseURL = "https://api.openweathermap.org/data/3.0/onecall"

// JSONGetter performs a JSON GET request; upstream.Client implements it.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// Client implements domain.ForecastSource using the OpenWeatherMap One Call API.
type Client struct {
	key     string
	baseURL string
	http    JSONGetter
}

// NewClient creates a One Call client. An empty baseURL selects DefaultBaseURL.
func NewClient(key, baseURL string, http JSONGetter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{key: key, baseURL: baseURL, http: http}
}

// Forecast returns daily records in Fahrenheit, today first.
func (c *Client) Forecast(ctx context.Context, coords domain.Coordinates) (domain.Forecast, error) {
	params := url.Values{
		"lat":     {strconv.FormatFloat(coords.Lat, 'f', -1, 64)},
		"lon":     {strconv.FormatFloat(coords.Lng, 'f', -1, 64)},
		"appid":   {c.key},
		"units":   {"imperial"},
		"exclude": {"current,minutely,hourly,alerts"},
	}

	var resp response
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return domain.Forecast{}, err
	}

	daily := make([]domain.DailyForecast, 0, len(resp.Daily))
	for _, d := range resp.Daily {
		daily = append(daily, domain.DailyForecast{
			Low:     d.Temp.Min,
			High:    d.Temp.Max,
			Summary: d.summary(),
		})
	}
	return domain.Forecast{Daily: daily}, nil
}

// OpenWeatherMap API response types.

type response struct {
	Daily []day `json:"daily"`
}

type day struct {
	Dt      int64   `json:"dt"`
	Summary *string `json:"summary"`
	Temp    struct {
		Min *float64 `json:"min"`
		Max *float64 `json:"max"`
	} `json:"temp"`
	Weather []condition `json:"weather"`
}

type condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
}

// summary prefers the human-readable daily summary and falls back to the
// first weather condition.
func (d day) summary() *string {
	if d.Summary != nil && *d.Summary != "" {
		return d.Summary
	}
	if len(d.Weather) > 0 && d.Weather[0].Description != "" {
		s := d.Weather[0].Description
		return &s
	}
	return nil
}
