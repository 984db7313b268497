package googlemaps

import (
	"context"
	"net/url"

	"github.com/couchcryptid/weather-chat-service/internal/adapter/upstream"
	"github.com/couchcryptid/weather-chat-service/internal/domain"
)

// DefaultBaseURL is the Google Geocoding API JSON endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Status values returned in the response body.
const (
	statusOK             = "OK"
	statusZeroResults    = "ZERO_RESULTS"
	statusInvalidRequest = "INVALID_REQUEST"
)

// JSONGetter performs a JSON GET request; upstream.Client implements it.
type JSONGetter interface {
	GetJSON(ctx context.Context, rawURL string, v any) error
}

// Client implements domain.Geocoder using the Google Geocoding API.
type Client struct {
	key     string
	baseURL string
	http    JSONGetter
}

// NewClient creates a Google geocoding client. An empty baseURL selects
// DefaultBaseURL.
func NewClient(key, baseURL string, http JSONGetter) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{key: key, baseURL: baseURL, http: http}
}

// Geocode returns every candidate in provider order. ZERO_RESULTS is an
// empty slice, not an error. Any other non-OK status is an
// *upstream.ProviderError.
func (c *Client) Geocode(ctx context.Context, query string) ([]domain.GeocodeCandidate, error) {
	params := url.Values{
		"address": {query},
		"key":     {c.key},
	}

	var resp response
	if err := c.http.GetJSON(ctx, c.baseURL+"?"+params.Encode(), &resp); err != nil {
		return nil, err
	}

	candidates := make([]domain.GeocodeCandidate, 0, len(resp.Results))
	for _, r := range resp.Results {
		candidates = append(candidates, domain.GeocodeCandidate{
			Coordinates: domain.Coordinates{
				Lat: r.Geometry.Location.Lat,
				Lng: r.Geometry.Location.Lng,
			},
			FormattedAddress: r.FormattedAddress,
		})
	}
	return candidates, nil
}

// Google Geocoding API response types.

type response struct {
	Results      []result `json:"results"`
	Status       string   `json:"status"`
	ErrorMessage string   `json:"error_message"`
}

// Check reports statuses Google returns with HTTP 200. Everything but a
// malformed request means the key or quota is unusable for all queries.
func (r *response) Check(name string) error {
	switch r.Status {
	case statusOK, statusZeroResults:
		return nil
	}
	return &upstream.ProviderError{
		Upstream: name,
		Status:   r.Status,
		Message:  r.ErrorMessage,
		Degraded: r.Status != statusInvalidRequest,
	}
}

type result struct {
	FormattedAddress string `json:"formatted_address"`
	Geometry         struct {
		Location struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"geometry"`
}
