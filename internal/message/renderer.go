// Package message renders chat replies from pools of interchangeable
// templates.
package message

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind names the semantic message a pool conveys.
type Kind string

const (
	Greeting      Kind = "greeting"
	Report        Kind = "report"
	ParseError    Kind = "parse_error"
	LocationError Kind = "location_error"
	WeatherError  Kind = "weather_error"
)

// Pool is an ordered set of parsed templates for one Kind.
type Pool struct {
	Kind      Kind
	templates []*template.Template
}

// NewPool parses each source string. Templates fail on missing keys rather
// than rendering "<no value>".
func NewPool(kind Kind, sources ...string) (*Pool, error) {
	if len(sources) == 0 {
		return nil, fmt.Errorf("%s pool is empty", kind)
	}
	p := &Pool{Kind: kind, templates: make([]*template.Template, 0, len(sources))}
	for i, src := range sources {
		tmpl, err := template.New(fmt.Sprintf("%s/%d", kind, i)).
			Funcs(funcs).
			Option("missingkey=error").
			Parse(src)
		if err != nil {
			return nil, fmt.Errorf("parse %s template %d: %w", kind, i, err)
		}
		p.templates = append(p.templates, tmpl)
	}
	return p, nil
}

// MustPool is NewPool for package-level pool literals.
func MustPool(kind Kind, sources ...string) *Pool {
	p, err := NewPool(kind, sources...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len is the number of templates in the pool.
func (p *Pool) Len() int { return len(p.templates) }

// Picker returns an index in [0, n).
type Picker func(n int) int

// Renderer picks a template from a pool and executes it.
type Renderer struct {
	pick Picker
}

// NewRenderer creates a Renderer. A nil picker selects uniformly at random.
func NewRenderer(pick Picker) *Renderer {
	if pick == nil {
		pick = rand.IntN
	}
	return &Renderer{pick: pick}
}

// Render executes one template chosen by the picker. Every placeholder must
// be present in data; a missing one is an error, never an empty string.
func (r *Renderer) Render(p *Pool, data map[string]any) (string, error) {
	return renderTemplate(p.templates[r.pick(len(p.templates))], data)
}

func renderTemplate(tmpl *template.Template, data map[string]any) (string, error) {
	var b strings.Builder
	if err := tmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s: %w", tmpl.Name(), err)
	}
	return b.String(), nil
}

// Validate renders every template in each pool against the sample context
// for its kind, so a template and its context shape cannot drift apart
// unnoticed.
func Validate(pools map[Kind]*Pool, samples map[Kind]map[string]any) error {
	var errs []error
	for kind, p := range pools {
		sample, ok := samples[kind]
		if !ok {
			errs = append(errs, fmt.Errorf("no sample context for %s", kind))
			continue
		}
		for _, tmpl := range p.templates {
			if _, err := renderTemplate(tmpl, sample); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

var funcs = template.FuncMap{
	"title":   title,
	"degrees": degrees,
}

// title upper-cases the first letter of each word. A Caser is not safe for
// concurrent use, so each call builds its own.
func title(s string) string {
	return cases.Title(language.English).String(s)
}

// degrees renders a temperature as a whole number.
func degrees(v float64) string {
	r := math.Round(v)
	if r == 0 {
		r = 0 // avoid "-0"
	}
	return strconv.FormatFloat(r, 'f', 0, 64)
}
