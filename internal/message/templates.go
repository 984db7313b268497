package message

// DefaultPools returns the reply templates, one pool per Kind.
func DefaultPools() map[Kind]*Pool {
	return map[Kind]*Pool{
		Greeting: MustPool(Greeting,
			`Hi {{ .name | title }}!`,
			`Howdy {{ .name | title }}!`,
			`Welcome {{ .name | title }}.`,
		),
		Report: MustPool(Report,
			`{{ .time | title }} the low is {{ .low_temperature | degrees }}F and the high is {{ .high_temperature | degrees }}F. {{ .description | title }}`,
		),
		ParseError: MustPool(ParseError,
			`Sorry, I didn't understand that`,
			`Huh?`,
		),
		LocationError: MustPool(LocationError,
			`Hmmm, I couldn't find {{ .query }} on the map`,
			`Sorry, I don't know where {{ .query }} is`,
		),
		WeatherError: MustPool(WeatherError,
			`Sorry, I couldn't find weather for coordinates {{ .lat }}, {{ .lng }}`,
			`No weather available for coordinates {{ .lat }}, {{ .lng }}`,
		),
	}
}

// SampleContexts returns one context per Kind with the shape the responder
// produces, for Validate.
func SampleContexts() map[Kind]map[string]any {
	return map[Kind]map[string]any{
		Greeting: {"name": "sam"},
		Report: {
			"time":             "today",
			"low_temperature":  50.0,
			"high_temperature": 65.0,
			"description":      "sunny",
		},
		ParseError:    {"query": "asdf"},
		LocationError: {"query": "Atlantis"},
		WeatherError:  {"lat": "37.77", "lng": "-122.42"},
	}
}
