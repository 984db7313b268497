// Command validate checks the chat service's reply templates and phrase
// rules offline. It renders every template of every pool against the context
// the responder builds for that pool, and runs the phrase matcher over a set
// of sample phrases with known answers.
//
// Usage:
//
//	go run ./cmd/validate [-phrases phrases.txt] [-patterns patterns.txt]
//
// A phrases file holds one case per line: `text | location | today|tomorrow`,
// or `text | -` for text that must not parse. Blank lines and lines starting
// with # are ignored. A patterns file holds one regular expression per line
// and replaces the built-in rules.
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/couchcryptid/weather-chat-service/internal/domain"
	"github.com/couchcryptid/weather-chat-service/internal/message"
)

// phraseCase is one sample phrase and its expected parse.
type phraseCase struct {
	line     int
	text     string
	location string
	when     domain.TimeQualifier
	fails    bool
}

var builtinPhrases = []phraseCase{
	{text: "what's the weather in San Francisco", location: "San Francisco"},
	{text: "What is the weather in Boston, tomorrow?", location: "Boston", when: domain.Tomorrow},
	{text: "what's the weather tomorrow in New York City?", location: "New York City", when: domain.Tomorrow},
	{text: "weather tomorrow in Boston", location: "Boston", when: domain.Tomorrow},
	{text: "weather in Paris TODAY", location: "Paris"},
	{text: "tell me the weather in Chicago", location: "Chicago"},
	{text: "Seattle weather tomorrow", location: "Seattle", when: domain.Tomorrow},
	{text: "austin weather", location: "austin"},
	{text: "weather in Boston tomorrow?", location: "Boston", when: domain.Tomorrow},
	{text: "Weather tomorrow in Boston?", location: "Boston", when: domain.Tomorrow},
	{text: "Boston weather?", location: "Boston"},
	{text: "Boston weather tomorrow?", location: "Boston", when: domain.Tomorrow},
	{text: "asdf", fails: true},
	{text: "how are you?", fails: true},
}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	phrasesPath := flag.String("phrases", "", "file of sample phrases with expected results")
	patternsPath := flag.String("patterns", "", "file of phrase patterns to check instead of the built-in rules")
	flag.Parse()

	os.Exit(run(*phrasesPath, *patternsPath))
}

func run(phrasesPath, patternsPath string) int {
	fmt.Println("=== Weather Chat Validation ===")
	fmt.Println()

	cases := builtinPhrases
	if phrasesPath != "" {
		var err error
		if cases, err = loadPhrases(phrasesPath); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load phrases: %v\n", err)
			return 1
		}
	}

	matcher := domain.DefaultPhraseMatcher()
	if patternsPath != "" {
		patterns, err := loadLines(patternsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load patterns: %v\n", err)
			return 1
		}
		if matcher, err = domain.NewPhraseMatcher(patterns...); err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
			return 1
		}
	}

	pools := message.DefaultPools()
	phases := []*phase{
		validateTemplates(pools),
		validateErrorContexts(pools),
		validatePhrases(matcher, cases),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Checked: %d pools, %d phrase rules, %d sample phrases\n",
		len(pools), len(matcher.Rules()), len(cases))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Phase 1: Templates ──
// Every template in every pool renders against its canonical context.

func validateTemplates(pools map[message.Kind]*message.Pool) *phase {
	p := &phase{name: "Phase 1: Templates (sample contexts)"}
	if err := message.Validate(pools, message.SampleContexts()); err != nil {
		for _, e := range unjoin(err) {
			p.errorf("%v", e)
		}
	}
	return p
}

// ── Phase 2: Error contexts ──
// The contexts carried by real pipeline errors satisfy their pools.

func validateErrorContexts(pools map[message.Kind]*message.Pool) *phase {
	p := &phase{name: "Phase 2: Error contexts (pipeline errors)"}

	summary := domain.WeatherSummary{LowTemperature: 50, HighTemperature: 65, Description: "sunny", TimeLabel: "today"}
	samples := map[message.Kind]map[string]any{
		message.Greeting:      {"name": "sam"},
		message.Report:        summary.TemplateContext(),
		message.ParseError:    (&domain.ParseError{Query: "asdf"}).TemplateContext(),
		message.LocationError: (&domain.LocationError{Query: "Atlantis"}).TemplateContext(),
		message.WeatherError:  (&domain.WeatherError{Coordinates: domain.Coordinates{Lat: 37.77, Lng: -122.42}}).TemplateContext(),
	}
	if err := message.Validate(pools, samples); err != nil {
		for _, e := range unjoin(err) {
			p.errorf("%v", e)
		}
	}
	return p
}

// ── Phase 3: Phrases ──
// Sample phrases parse to their expected location and day.

func validatePhrases(m *domain.PhraseMatcher, cases []phraseCase) *phase {
	p := &phase{name: "Phase 3: Phrases (extraction)"}
	for _, c := range cases {
		label := fmt.Sprintf("%q", c.text)
		if c.line > 0 {
			label = fmt.Sprintf("line %d %s", c.line, label)
		}

		q, err := m.Extract(c.text)
		switch {
		case c.fails && err == nil:
			p.errorf("%s: expected no match, got location %q", label, q.Location)
		case c.fails:
		case err != nil:
			p.errorf("%s: %v", label, err)
		case q.Location != c.location:
			p.errorf("%s: location: expected %q, got %q", label, c.location, q.Location)
		case q.When != c.when:
			p.errorf("%s: time: expected %s, got %s", label, c.when, q.When)
		}
	}
	return p
}

// ── Loading ──

func loadPhrases(path string) ([]phraseCase, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cases []phraseCase
	sc := bufio.NewScanner(f)
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		c, err := parsePhraseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n, err)
		}
		c.line = n
		cases = append(cases, c)
	}
	return cases, sc.Err()
}

func parsePhraseLine(line string) (phraseCase, error) {
	parts := strings.Split(line, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	switch {
	case len(parts) == 2 && parts[1] == "-":
		return phraseCase{text: parts[0], fails: true}, nil
	case len(parts) == 2:
		return phraseCase{text: parts[0], location: parts[1]}, nil
	case len(parts) == 3:
		if parts[2] != "today" && parts[2] != "tomorrow" {
			return phraseCase{}, fmt.Errorf("time must be today or tomorrow, got %q", parts[2])
		}
		return phraseCase{text: parts[0], location: parts[1], when: domain.ParseTimeQualifier(parts[2])}, nil
	}
	return phraseCase{}, errors.New("expected `text | location [| time]` or `text | -`")
}

func loadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var lines []string
	for _, l := range strings.Split(string(data), "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) == "" || strings.HasPrefix(l, "#") {
			continue
		}
		lines = append(lines, l)
	}
	return lines, nil
}

func unjoin(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}
