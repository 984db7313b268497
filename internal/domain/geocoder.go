package domain

import "context"

// Geocoder turns a free-form location string into candidate coordinates.
// An empty slice with a nil error means the provider found nothing.
type Geocoder interface {
	Geocode(ctx context.Context, query string) ([]GeocodeCandidate, error)
}

// LocationResolver resolves a parsed location to coordinates.
type LocationResolver struct {
	geocoder Geocoder
}

// NewLocationResolver creates a resolver backed by the given geocoder.
func NewLocationResolver(g Geocoder) *LocationResolver {
	return &LocationResolver{geocoder: g}
}

// Resolve makes a single geocoding call and takes the first candidate.
// Zero candidates and provider failures both yield a *LocationError for the
// query; the provider error, if any, is kept as its cause.
func (r *LocationResolver) Resolve(ctx context.Context, query string) (Coordinates, error) {
	candidates, err := r.geocoder.Geocode(ctx, query)
	if err != nil {
		return Coordinates{}, &LocationError{Query: query, Err: err}
	}
	if len(candidates) == 0 {
		return Coordinates{}, &LocationError{Query: query}
	}
	return candidates[0].Coordinates, nil
}
