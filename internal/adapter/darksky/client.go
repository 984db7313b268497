package darksky

import (
	"context"
	"fmt"
	"net/url"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
)

// DefaultBaseURL is the Dark Sky forecast endpoint. Compatible services such
// as Pirate Weather accept the same path and response shape.
const DefaultBaseURL = "https://api.darksky.net/forecast"

// excludeBlocks trims the response to the daily block.
const excludeBlocks = "currently,minutely,hourly,alerts,flags"

// JSONGetter performs a JSON GET request; upstream.Client implements it.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// Client implements domain.ForecastSource against a Dark Sky compatible API.
type Client struct {
	key     string
	baseURL string
	http    JSONGetter
}

// NewClient creates a forecast client. An empty baseURL selects DefaultBaseURL.
func NewClient(key, baseURL string, http JSONGetter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{key: key, baseURL: baseURL, http: http}
}

// Forecast returns the daily records for coords, today first. Readings the
// provider omits stay nil.
func (c *Client) Forecast(ctx context.Context, coords domain.Coordinates) (domain.Forecast, error) {
	u := fmt.Sprintf("%s/%s/%s?%s", c.baseURL, url.PathEscape(c.key), coords,
		url.Values{"exclude": {excludeBlocks}}.Encode())

	var resp response
	if err := c.http.GetJSON(ctx, u, &resp); err != nil {
		return domain.Forecast{}, err
	}

	daily := make([]domain.DailyForecast, 0, len(resp.Daily.Data))
	for _, d := range resp.Daily.Data {
		daily = append(daily, domain.DailyForecast{
			Low:     d.TemperatureLow,
			High:    d.TemperatureHigh,
			Summary: d.Summary,
		})
	}
	return domain.Forecast{Daily: daily}, nil
}

// Dark Sky API response types.

type response struct {
	Daily struct {
		Data []dataPoint `json:"data"`
	} `json:"daily"`
}

type dataPoint struct {
	Time            int64    `json:"time"`
	Summary         *string  `json:"summary"`
	TemperatureLow  *float64 `json:"temperatureLow"`
	TemperatureHigh *float64 `json:"temperatureHigh"`
}
