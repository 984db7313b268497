package domain

import "fmt"

// PipelineError is the closed set of failures a report pipeline run can
// produce: *ParseError, *LocationError or *WeatherError. Each carries only the
// data its user-facing message needs.
type PipelineError interface {
	error
	TemplateContext() map[string]any
	pipelineError()
}

// ParseError means no phrase rule matched the query text.
type ParseError struct {
	Query string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("could not parse query %q", e.Query)
}

func (e *ParseError) TemplateContext() map[string]any {
	return map[string]any{"query": e.Query}
}

func (*ParseError) pipelineError() {}

// LocationError means the extracted location could not be geocoded. Err is
// set when the geocoder itself failed rather than returning no candidates.
type LocationError struct {
	Query string
	Err   error
}

func (e *LocationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("could not resolve location %q: %v", e.Query, e.Err)
	}
	return fmt.Sprintf("could not resolve location %q", e.Query)
}

func (e *LocationError) Unwrap() error { return e.Err }

func (e *LocationError) TemplateContext() map[string]any {
	return map[string]any{"query": e.Query}
}

func (*LocationError) pipelineError() {}

// WeatherError means no usable forecast exists for the coordinates. Err is
// set when the forecast source itself failed.
type WeatherError struct {
	Coordinates Coordinates
	Err         error
}

func (e *WeatherError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no weather for %s: %v", e.Coordinates, e.Err)
	}
	return fmt.Sprintf("no weather for %s", e.Coordinates)
}

func (e *WeatherError) Unwrap() error { return e.Err }

func (e *WeatherError) TemplateContext() map[string]any {
	return map[string]any{
		"lat": formatCoord(e.Coordinates.Lat),
		"lng": formatCoord(e.Coordinates.Lng),
	}
}

func (*WeatherError) pipelineError() {}

var (
	_ PipelineError = (*ParseError)(nil)
	_ PipelineError = (*LocationError)(nil)
	_ PipelineError = (*WeatherError)(nil)
)
