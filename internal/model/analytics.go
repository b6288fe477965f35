package model

// ResponseAnalytics is a running aggregate over generated responses.
type ResponseAnalytics struct {
	TotalResponses   int            `json:"totalResponses"`
	ResponsesByMode  map[string]int `json:"responsesByMode"`
	AverageDelayMs   float64        `json:"averageDelayMs"`
	RichContentUsage int            `json:"richContentUsage"`
}

// MockConfig is the generation configuration exposed by GET /api/mock/config.
type MockConfig struct {
	MockResponseMode     Mode `json:"mockResponseMode"`
	EnableSmartResponses bool `json:"enableSmartResponses"`
	EnableDelayVariation bool `json:"enableDelayVariation"`
	EnableRichContent    bool `json:"enableRichContent"`
	DefaultDelayMs       int  `json:"defaultDelayMs"`
	MaxDelayMs           int  `json:"maxDelayMs"`
}

// ScenarioSummary is a scenario listing item.
type ScenarioSummary struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	ExchangeCount int    `json:"exchangeCount"`
}

// ListScenariosResponse is the body of GET /api/mock/scenarios.
type ListScenariosResponse struct {
	Scenarios []ScenarioSummary `json:"scenarios"`
	Total     int               `json:"total"`
}
