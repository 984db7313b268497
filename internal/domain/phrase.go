package domain

import (
	"errors"
	"fmt"
	"regexp"
)

const (
	locationGroup = "location"
	timeGroup     = "time"
)

// defaultPhrasePatterns are tried in order; earlier rules win. The rules with
// a trailing day token come before their plain variants so the token is not
// swallowed into the location.
var defaultPhrasePatterns = []string{
	`^[Ww]hat(?:['’]?s| is) the weather in (?P<location>.+?),? (?P<time>(?i:today|tomorrow))\??$`,
	`^[Ww]hat(?:['’]?s| is) the weather (?:(?P<time>(?i:today|tomorrow)) )?in (?P<location>.+?)\??$`,
	`[Ww]eather in (?P<location>.+?),? (?P<time>(?i:today|tomorrow))\??$`,
	`[Ww]eather (?:(?P<time>(?i:today|tomorrow)) )?in (?P<location>.+?)\??$`,
	`^(?P<location>.+?) weather(?: (?P<time>(?i:today|tomorrow)))?\??$`,
}

// Query is the structured result of parsing chat text.
type Query struct {
	Location string
	When     TimeQualifier
}

// PhraseRule is one compiled pattern with the indexes of its capture groups.
type PhraseRule struct {
	re       *regexp.Regexp
	location int
	time     int // -1 when the pattern has no time group
}

// Pattern returns the source regular expression.
func (r PhraseRule) Pattern() string { return r.re.String() }

// PhraseMatcher extracts a location and relative day from free text using
// an ordered list of rules.
type PhraseMatcher struct {
	rules []PhraseRule
}

// NewPhraseMatcher compiles the given patterns in order. Every pattern must
// declare a "location" group; a "time" group is optional.
func NewPhraseMatcher(patterns ...string) (*PhraseMatcher, error) {
	if len(patterns) == 0 {
		return nil, errors.New("phrase matcher needs at least one pattern")
	}
	rules := make([]PhraseRule, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile phrase pattern %q: %w", p, err)
		}
		loc := re.SubexpIndex(locationGroup)
		if loc < 0 {
			return nil, fmt.Errorf("phrase pattern %q has no %q group", p, locationGroup)
		}
		rules = append(rules, PhraseRule{re: re, location: loc, time: re.SubexpIndex(timeGroup)})
	}
	return &PhraseMatcher{rules: rules}, nil
}

// DefaultPhraseMatcher returns the matcher used by the chat service.
func DefaultPhraseMatcher() *PhraseMatcher {
	m, err := NewPhraseMatcher(defaultPhrasePatterns...)
	if err != nil {
		panic(err)
	}
	return m
}

// Rules returns the compiled rules in match order.
func (m *PhraseMatcher) Rules() []PhraseRule {
	return append([]PhraseRule(nil), m.rules...)
}

// Extract returns the location and time qualifier of the first matching
// rule, or a *ParseError carrying the original text. The captured location is
// returned verbatim.
func (m *PhraseMatcher) Extract(text string) (Query, error) {
	for _, r := range m.rules {
		groups := r.re.FindStringSubmatch(text)
		if groups == nil {
			continue
		}
		q := Query{Location: groups[r.location]}
		if r.time >= 0 {
			q.When = ParseTimeQualifier(groups[r.time])
		}
		return q, nil
	}
	return Query{}, &ParseError{Query: text}
}
