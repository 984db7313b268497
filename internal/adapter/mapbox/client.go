package mapbox

import (
	"context"
	"fmt"
	"net/url"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
)

// DefaultBaseURL is the Mapbox forward geocoding endpoint.
const DefaultBaseURL = "https://api.mapbox.com/geocoding/v5/mapbox.places"

// candidateLimit caps how many features Mapbox returns per query.
const candidateLimit = "5"

// JSONGetter performs a JSON GET request; upstream.Client implements it.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// Client implements domain.Geocoder using the Mapbox Geocoding API.
type Client struct {
	token   string
	baseURL string
	http    JSONGetter
}

// NewClient creates a Mapbox geocoding client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(token, baseURL string, http JSONGetter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{token: token, baseURL: baseURL, http: http}
}

// Geocode converts a free-form place name to candidates, most relevant first.
func (c *Client) Geocode(ctx context.Context, query string) ([]domain.GeocodeCandidate, error) {
	u := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(query))
	params := url.Values{
		"access_token": {c.token},
		"limit":        {candidateLimit},
	}

	var resp response
	if err := c.http.GetJSON(ctx, u+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(resp.Features))
	for _, f := range resp.Features {
		// Mapbox uses lon,lat order.
		if len(f.Center) != 2 {
			continue
		}
		candidates = append(candidates, domain.GeocodeCandidate{
			Coordinates:      domain.Coordinates{Lat: f.Center[1], Lng: f.Center[0]},
			FormattedAddress: f.PlaceName,
		})
	}
	return candidates, nil
}

// Mapbox API response types.

type response struct {
	Features []feature `json:"features"`
}

type feature struct {
	Center    []float64 `json:"center"` // [lon, lat]
	PlaceName string    `json:"place_name"`
	Text      string    `json:"text"`
	Relevance float64   `json:"relevance"`
}
