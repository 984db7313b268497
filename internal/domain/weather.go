package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Coordinates is a WGS-84 latitude/longitude pair.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (c Coordinates) String() string {
	return fmt.Sprintf("%s,%s", formatCoord(c.Lat), formatCoord(c.Lng))
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// TimeQualifier selects which daily forecast record a query refers to.
// The zero value is Today.
type TimeQualifier int

const (
	Today TimeQualifier = iota
	Tomorrow
)

// ParseTimeQualifier maps a relative-day token to a qualifier. Unknown or
// empty tokens fall back to Today.
func ParseTimeQualifier(token string) TimeQualifier {
	if strings.EqualFold(strings.TrimSpace(token), "tomorrow") {
		return Tomorrow
	}
	return Today
}

// Label is the human-readable form used in rendered messages.
func (t TimeQualifier) Label() string {
	if t == Tomorrow {
		return "tomorrow"
	}
	return "today"
}

// DayIndex is the offset into a daily forecast list.
func (t TimeQualifier) DayIndex() int {
	if t == Tomorrow {
		return 1
	}
	return 0
}

func (t TimeQualifier) String() string { return t.Label() }

// WeatherSummary is the result of a successful pipeline run.
type WeatherSummary struct {
	LowTemperature  float64 `json:"low_temperature"`
	HighTemperature float64 `json:"high_temperature"`
	Description     string  `json:"description"`
	TimeLabel       string  `json:"time"`
}

// TemplateContext exposes the summary under the variable names used by
// report templates.
func (s WeatherSummary) TemplateContext() map[string]any {
	return map[string]any{
		"time":             s.TimeLabel,
		"low_temperature":  s.LowTemperature,
		"high_temperature": s.HighTemperature,
		"description":      s.Description,
	}
}

// GeocodeCandidate is one match returned by a geocoding provider.
type GeocodeCandidate struct {
	Coordinates      Coordinates
	FormattedAddress string
}

// DailyForecast is one day of provider forecast data. Fields are pointers
// so that absent values can be told apart from zero readings.
type DailyForecast struct {
	Low     *float64
	High    *float64
	Summary *string
}

// Forecast holds daily records ordered by day offset, today first.
type Forecast struct {
	Daily []DailyForecast
}
