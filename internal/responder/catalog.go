// Package responder selects and shapes simulated assistant replies.
package responder

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
)

const (
	defaultWeight  = 1.0
	defaultDelayMs = 1000
	minDelayMs     = 100
	jitterSpanMs   = 500
)

// ErrNoFallbackTemplate is returned when the last template of a catalog
// does not match every input.
var ErrNoFallbackTemplate = errors.New("catalog must end with a fallback template matching the empty pattern")

// Template is a pattern-weighted group of canned response candidates.
type Template struct {
	Patterns  []string
	Responses []model.Content
	// Weight defaults to 1 when zero.
	Weight float64
	// DelayMs defaults to 1000 when zero.
	DelayMs int
}

func (t *Template) weight() float64 {
	if t.Weight <= 0 {
		return defaultWeight
	}
	return t.Weight
}

func (t *Template) delayMs() int {
	if t.DelayMs <= 0 {
		return defaultDelayMs
	}
	return t.DelayMs
}

// IsFallback reports whether the template matches every input.
func (t *Template) IsFallback() bool {
	for _, p := range t.Patterns {
		if p == "" {
			return true
		}
	}
	return false
}

// Matches reports whether any pattern is empty or a substring of the
// lower-cased input.
func (t *Template) Matches(lowerInput string) bool {
	for _, p := range t.Patterns {
		if p == "" || strings.Contains(lowerInput, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// Exchange is one user turn and its scripted reply.
type Exchange struct {
	UserInput         string        `json:"userInput"`
	AssistantResponse model.Content `json:"assistantResponse"`
}

// Scenario is a static multi-turn example conversation.
type Scenario struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Exchanges   []Exchange `json:"exchanges"`
}

// Catalog is the read-only set of templates and scenarios.
type Catalog struct {
	templates []Template
	scenarios []Scenario
}

// NewCatalog validates and wraps templates and scenarios. The final template
// must be a fallback so matching always yields a candidate.
func NewCatalog(templates []Template, scenarios []Scenario) (*Catalog, error) {
	if len(templates) == 0 || !templates[len(templates)-1].IsFallback() {
		return nil, ErrNoFallbackTemplate
	}
	for i, t := range templates {
		if len(t.Responses) == 0 {
			return nil, fmt.Errorf("template %d has no responses", i)
		}
	}
	seen := make(map[string]bool, len(scenarios))
	for _, s := range scenarios {
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate scenario %q", s.Name)
		}
		seen[s.Name] = true
	}
	return &Catalog{templates: templates, scenarios: scenarios}, nil
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(defaultTemplates(), defaultScenarios())
	if err != nil {
		panic(err)
	}
	return c
}

// Templates returns the templates in declaration order.
func (c *Catalog) Templates() []Template {
	return c.templates
}

// Fallback returns the last template of the catalog.
func (c *Catalog) Fallback() *Template {
	return &c.templates[len(c.templates)-1]
}

// FindMatchingTemplate picks one of the templates matching input. Every
// matching template competes by weight, not only the most specific one.
func (c *Catalog) FindMatchingTemplate(input string, rng Rand) *Template {
	lower := strings.ToLower(input)

	var candidates []*Template
	total := 0.0
	for i := range c.templates {
		if c.templates[i].Matches(lower) {
			candidates = append(candidates, &c.templates[i])
			total += c.templates[i].weight()
		}
	}

	draw := rng.Float64() * total
	for _, t := range candidates {
		draw -= t.weight()
		if draw <= 0 {
			return t
		}
	}

	return c.Fallback()
}

// GenerateMockResponse selects a template, one of its candidates uniformly,
// and a jittered delay of base±250ms floored at 100ms.
func (c *Catalog) GenerateMockResponse(input string, rng Rand) (model.Content, int) {
	t := c.FindMatchingTemplate(input, rng)
	content := t.Responses[rng.IntN(len(t.Responses))].Clone()

	jitter := rng.Float64() * jitterSpanMs
	delay := int(math.Floor(float64(t.delayMs()) + jitter - jitterSpanMs/2))

	return content, max(minDelayMs, delay)
}

// Scenarios returns copies of all scenarios in declaration order.
func (c *Catalog) Scenarios() []Scenario {
	out := make([]Scenario, len(c.scenarios))
	for i := range c.scenarios {
		out[i] = c.scenarios[i].clone()
	}
	return out
}

// Scenario returns a copy of the named scenario.
func (c *Catalog) Scenario(name string) (Scenario, bool) {
	for i := range c.scenarios {
		if c.scenarios[i].Name == name {
			return c.scenarios[i].clone(), true
		}
	}
	return Scenario{}, false
}

func (s Scenario) clone() Scenario {
	out := Scenario{Name: s.Name, Description: s.Description}
	if s.Exchanges != nil {
		out.Exchanges = make([]Exchange, len(s.Exchanges))
		for i, e := range s.Exchanges {
			out.Exchanges[i] = Exchange{UserInput: e.UserInput, AssistantResponse: e.AssistantResponse.Clone()}
		}
	}
	return out
}

// GetScenarioResponse returns the scripted reply for an exchange of a
// scenario, or false when the name or index is unknown.
func (c *Catalog) GetScenarioResponse(name string, index int) (model.Content, bool) {
	for i := range c.scenarios {
		s := &c.scenarios[i]
		if s.Name != name {
			continue
		}
		if index < 0 || index >= len(s.Exchanges) {
			return model.Content{}, false
		}
		return s.Exchanges[index].AssistantResponse.Clone(), true
	}
	return model.Content{}, false
}
