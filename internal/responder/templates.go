package responder

import (
	"github.com/capitalize-ai/mock-thread-api/internal/model"
)

func text(s string, sources ...string) model.Content {
	if sources == nil {
		sources = []string{}
	}
	return model.Content{Text: s, Visual: map[string]any{}, Sources: sources}
}

func rich(s string, visual map[string]any, sources ...string) model.Content {
	c := text(s, sources...)
	c.Visual = visual
	return c
}

func defaultTemplates() []Template {
	return []Template{
		// Greetings
		{
			Patterns: []string{"hello", "hi", "hey", "greetings"},
			Responses: []model.Content{
				text("Hello! I'm a mock assistant. How can I help you today?"),
				text("Hi there! I'm here to assist you. What would you like to know?"),
				text("Greetings! I'm a simulated AI assistant ready to help."),
			},
			Weight:  2,
			DelayMs: 500,
		},

		// Questions
		{
			Patterns: []string{"what", "how", "why", "when", "where", "?"},
			Responses: []model.Content{
				text("That's an interesting question! As a mock assistant, I can provide simulated responses to help with testing and development.",
					"https://example.com/mock-source"),
				text("I'd be happy to help with that inquiry. In a real system, I would analyze your question and provide detailed information."),
				rich("Great question! Let me provide you with a comprehensive mock response that demonstrates various content types.",
					map[string]any{
						"type": "chart",
						"data": map[string]any{"example": "mock data"},
					},
					"https://example.com/documentation"),
			},
			Weight:  3,
			DelayMs: 1200,
		},

		// Code
		{
			Patterns: []string{"code", "function", "api", "programming", "debug", "error"},
			Responses: []model.Content{
				text("Here's a mock code example:\n\n```javascript\nfunction mockExample() {\n  return 'This is simulated code';\n}\n```\n\nThis demonstrates how code responses might be formatted.",
					"https://developer.example.com/docs"),
				rich("For programming questions, I would typically analyze the code context and provide specific guidance. This is a simulated response for testing purposes.",
					map[string]any{
						"type":     "code_block",
						"language": "javascript",
						"content":  "// Mock code snippet\nconsole.log('Hello, mock world!');",
					}),
			},
			Weight:  2,
			DelayMs: 800,
		},

		// Help
		{
			Patterns: []string{"help", "assist", "support", "guide"},
			Responses: []model.Content{
				text("I'm here to help! As a mock assistant, I can simulate various types of responses including text, structured data, and source references."),
				rich("I'd be glad to assist you. Here are some things I can help simulate:\n\n• Answering questions\n• Providing code examples\n• Explaining concepts\n• Troubleshooting issues",
					map[string]any{
						"type":  "list",
						"items": []any{"Mock assistance", "Simulated responses", "Test scenarios"},
					},
					"https://help.example.com"),
			},
			Weight:  2,
			DelayMs: 600,
		},

		// Thanks
		{
			Patterns: []string{"thank", "thanks", "appreciate", "great", "awesome", "perfect"},
			Responses: []model.Content{
				text("You're welcome! I'm glad I could help with your testing needs."),
				text("Happy to assist! This mock service is designed to provide realistic response patterns for development and testing."),
			},
			Weight:  1,
			DelayMs: 400,
		},

		// Fallback, must stay last.
		{
			Patterns: []string{""},
			Responses: []model.Content{
				text("I understand you're looking for information. As a mock assistant, I'm designed to provide simulated responses for testing purposes."),
				text("This is a mock response generated based on your input. In a real system, I would provide more specific and helpful information."),
				rich("Thank you for your message. I'm simulating how an AI assistant might respond to help with development and testing scenarios.",
					map[string]any{
						"type":    "info",
						"message": "This is a simulated response",
					}),
			},
			Weight:  1,
			DelayMs: 1000,
		},
	}
}

func defaultScenarios() []Scenario {
	return []Scenario{
		{
			Name:        "customer_support",
			Description: "A typical customer support conversation flow",
			Exchanges: []Exchange{
				{
					UserInput: "I'm having trouble with my account",
					AssistantResponse: text("I'm sorry to hear you're experiencing account issues. I'd be happy to help you resolve this. Can you please tell me more about the specific problem you're encountering?"),
				},
				{
					UserInput: "I can't log in to my dashboard",
					AssistantResponse: rich("I understand you're having trouble logging into your dashboard. Let me guide you through some troubleshooting steps:\n\n1. Verify your email and password\n2. Clear your browser cache\n3. Try using an incognito window\n\nHave you tried any of these steps already?",
						map[string]any{
							"type":  "troubleshooting_steps",
							"steps": []any{"Verify credentials", "Clear cache", "Try incognito mode"},
						},
						"https://support.example.com/login-issues"),
				},
			},
		},
		{
			Name:        "technical_discussion",
			Description: "A technical discussion about APIs and development",
			Exchanges: []Exchange{
				{
					UserInput: "How do I implement rate limiting in my API?",
					AssistantResponse: rich("Rate limiting is crucial for API stability. Here are the main approaches:\n\n**Token Bucket**: Allows bursts but controls long-term rate\n**Fixed Window**: Simple but can allow bursts at window boundaries\n**Sliding Window**: More accurate but complex to implement\n\nWhich approach fits your use case best?",
						map[string]any{
							"type": "comparison_table",
							"data": map[string]any{
								"Token Bucket":   "Flexible, allows bursts",
								"Fixed Window":   "Simple, predictable",
								"Sliding Window": "Accurate, complex",
							},
						},
						"https://example.com/rate-limiting-guide",
						"https://developer.example.com/api-best-practices"),
				},
			},
		},
	}
}
