package responder

import (
	"fmt"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
)

var randomReplies = []string{
	"This is a random mock response for testing purposes.",
	"Here's another simulated response to demonstrate variability.",
	"Random response generation helps test different scenarios.",
	"Mock data provides consistent testing environments.",
	"Simulated responses enable comprehensive API testing.",
}

const (
	randomDelayMinMs  = 500
	randomDelaySpanMs = 2000
	randomRichSource  = "https://example.com/random-source"
)

// Options are the generation switches read from configuration.
type Options struct {
	Mode                 model.Mode
	EnableSmartResponses bool
	EnableDelayVariation bool
	EnableRichContent    bool
	EnableContextHints   bool
	DefaultDelayMs       int
	MaxDelayMs           int
}

// Generator turns a user message into a simulated assistant reply.
type Generator struct {
	catalog *Catalog
	opts    Options
	rng     Rand
}

// NewGenerator creates a generator. A nil rng uses NewRand.
func NewGenerator(catalog *Catalog, opts Options, rng Rand) *Generator {
	if rng == nil {
		rng = NewRand()
	}
	return &Generator{
		catalog: catalog,
		opts:    opts,
		rng:     rng,
	}
}

// Catalog returns the catalog backing the generator.
func (g *Generator) Catalog() *Catalog {
	return g.catalog
}

// Options returns the generation switches.
func (g *Generator) Options() Options {
	return g.opts
}

// CreateAssistantResponse dispatches on the configured mode. Unknown modes
// behave like smart. With smart responses disabled, smart degrades to echo.
func (g *Generator) CreateAssistantResponse(msg model.Message, threadID string, history []model.Message) model.GeneratedResponse {
	userText := msg.Content.Text

	switch g.opts.Mode {
	case model.ModeEcho:
		return g.echo(userText)
	case model.ModeRandom:
		return g.random()
	default:
		if !g.opts.EnableSmartResponses {
			return g.echo(userText)
		}
		return g.smart(userText, history)
	}
}

func (g *Generator) smart(userText string, history []model.Message) model.GeneratedResponse {
	content, delayMs := g.catalog.GenerateMockResponse(userText, g.rng)

	if !g.opts.EnableRichContent {
		content = model.Content{
			Text:    content.Text,
			Visual:  map[string]any{},
			Sources: []string{},
		}
	}

	if !g.opts.EnableDelayVariation {
		delayMs = g.opts.DefaultDelayMs
	}

	if g.opts.EnableContextHints {
		content = EnhanceResponseWithContext(content, ResponseContext{ThreadLength: len(history)})
	}

	return model.GeneratedResponse{
		Content: content,
		DelayMs: delayMs,
		Mode:    model.ModeSmart,
	}
}

func (g *Generator) echo(userText string) model.GeneratedResponse {
	if userText == "" {
		userText = "(no text)"
	}
	return model.GeneratedResponse{
		Content: model.Content{
			Text:    fmt.Sprintf("Mock response to: %s", userText),
			Visual:  map[string]any{},
			Sources: []string{},
		},
		DelayMs: g.opts.DefaultDelayMs,
		Mode:    model.ModeEcho,
	}
}

func (g *Generator) random() model.GeneratedResponse {
	reply := randomReplies[g.rng.IntN(len(randomReplies))]
	delayMs := g.rng.IntN(randomDelaySpanMs) + randomDelayMinMs

	content := model.Content{
		Text:    reply,
		Visual:  map[string]any{},
		Sources: []string{},
	}

	// The roll happens regardless of the rich content switch.
	roll := g.rng.Float64() > 0.5
	if roll && g.opts.EnableRichContent {
		content.Visual = map[string]any{
			"type":    "info",
			"message": "This is randomly generated rich content",
		}
		content.Sources = []string{randomRichSource}
	}

	if !g.opts.EnableDelayVariation {
		delayMs = g.opts.DefaultDelayMs
	}

	return model.GeneratedResponse{
		Content: content,
		DelayMs: delayMs,
		Mode:    model.ModeRandom,
	}
}

// GetScenarioResponse looks up a scripted reply in the generator's catalog.
func (g *Generator) GetScenarioResponse(name string, index int) (model.Content, bool) {
	return g.catalog.GetScenarioResponse(name, index)
}

// ResponseContext carries conversation facts used to decorate a reply.
type ResponseContext struct {
	UserID         string
	ThreadLength   int
	PreviousTopics []string
}

const (
	startOfConversationHint = "\n\nI see this is the start of our conversation."
	detailedDiscussionHint  = "\n\nWe've been having quite a detailed discussion!"
)

// EnhanceResponseWithContext appends a sentence when the thread has exactly
// two entries or more than five. Other fields are returned unchanged.
func EnhanceResponseWithContext(base model.Content, rc ResponseContext) model.Content {
	out := base
	switch {
	case rc.ThreadLength == 2:
		out.Text += startOfConversationHint
	case rc.ThreadLength > 5:
		out.Text += detailedDiscussionHint
	}
	return out
}
