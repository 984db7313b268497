// Package domain models the chat weather pipeline: phrase parsing, location
// resolution and forecast selection.
//
// # Phrases
//
// Chat text is matched against an ordered list of regular expressions. Each
// rule captures a "location" group and optionally a "time" group:
//
//	"what's the weather in San Francisco"  →  San Francisco, today
//	"weather tomorrow in Boston"           →  Boston, tomorrow
//	"Boston weather tomorrow"              →  Boston, tomorrow
//
// Only the leading word is case-insensitive ("What's", "Weather"); the day
// tokens "today" and "tomorrow" match in any case. The first matching rule
// wins. Nothing checks that the captured location is a real place; that is
// left to the geocoder.
//
// # Forecast records
//
// Providers return daily records ordered by day offset. Today reads index 0
// and Tomorrow index 1. A record must carry a low, a high and a summary to be
// usable; partial records are treated as missing.
//
// # Failures
//
// A pipeline run ends in exactly one of a WeatherSummary or a PipelineError:
//
//	ParseError     no rule matched           carries the raw text
//	LocationError  no geocoding candidate    carries the location query
//	WeatherError   no usable forecast        carries the coordinates
//
// Provider failures (network errors, timeouts, bad status codes, an open
// circuit breaker) are folded into LocationError and WeatherError with the
// underlying cause kept in Err, so the chat client always gets a message.
package domain
