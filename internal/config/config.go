// Package config provides environment configuration for the API server.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/capitalize-ai/mock-thread-api/internal/model"
	"github.com/capitalize-ai/mock-thread-api/internal/responder"
)

// Persistence backend names.
const (
	PersistenceFile   = "file"
	PersistenceMemory = "memory"
	PersistenceRedis  = "redis"
	PersistenceNATS   = "nats"
)

// Config holds all configuration for the application.
type Config struct {
	// Server settings
	ServerPort         string        `validate:"required,numeric"`
	Env                string        `validate:"oneof=development production test"`
	ServerReadTimeout  time.Duration `validate:"gt=0"`
	ServerWriteTimeout time.Duration `validate:"gt=0"`

	// Mock response settings
	DefaultDelayMs       int        `validate:"gte=0"`
	MaxDelayMs           int        `validate:"gte=0,gtefield=DefaultDelayMs"`
	EnableSmartResponses bool
	EnableDelayVariation bool
	EnableRichContent    bool
	EnableContextHints   bool
	MockResponseMode     model.Mode `validate:"oneof=smart echo random"`

	// Persistence
	EnablePersistence bool
	PersistenceType   string `validate:"oneof=file memory redis nats"`
	DataDirectory     string `validate:"required_if=PersistenceType file"`

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int `validate:"gte=0"`

	// NATS settings
	NATSEnabled  bool
	NATSURL      string `validate:"required_if=NATSEnabled true"`
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// CORS
	CORSEnabled bool
	CORSOrigins []string

	// Rate limiting
	RateLimitRPM int `validate:"gte=0"`

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables and, when CONFIG_FILE
// is set, from that file. Environment variables win over file values.
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	// Server
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("SERVER_READ_TIMEOUT", 30*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 120*time.Second)

	// Mock service
	v.SetDefault("DEFAULT_DELAY_MS", 0)
	v.SetDefault("MAX_DELAY_MS", 5000)
	v.SetDefault("ENABLE_SMART_RESPONSES", true)
	v.SetDefault("ENABLE_DELAY_VARIATION", true)
	v.SetDefault("ENABLE_RICH_CONTENT", true)
	v.SetDefault("ENABLE_CONTEXT_HINTS", false)
	v.SetDefault("MOCK_RESPONSE_MODE", string(model.ModeSmart))

	// Persistence
	v.SetDefault("ENABLE_PERSISTENCE", false)
	v.SetDefault("PERSISTENCE_TYPE", PersistenceFile)
	v.SetDefault("DATA_DIRECTORY", "./data")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	// NATS
	v.SetDefault("NATS_ENABLED", false)
	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("NATS_CA_FILE", "")
	v.SetDefault("NATS_CERT_FILE", "")
	v.SetDefault("NATS_KEY_FILE", "")
	v.SetDefault("NATS_TOKEN", "")

	// CORS
	v.SetDefault("CORS_ENABLED", true)
	v.SetDefault("CORS_ORIGINS", "*")

	// Rate limiting
	v.SetDefault("RATE_LIMIT_RPM", 100)

	// Logging
	v.SetDefault("LOG_LEVEL", "info")

	// Tracing
	v.SetDefault("TRACING_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_ENABLED", false)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		ServerPort:         v.GetString("PORT"),
		Env:                v.GetString("ENV"),
		ServerReadTimeout:  v.GetDuration("SERVER_READ_TIMEOUT"),
		ServerWriteTimeout: v.GetDuration("SERVER_WRITE_TIMEOUT"),

		DefaultDelayMs:       v.GetInt("DEFAULT_DELAY_MS"),
		MaxDelayMs:           v.GetInt("MAX_DELAY_MS"),
		EnableSmartResponses: v.GetBool("ENABLE_SMART_RESPONSES"),
		EnableDelayVariation: v.GetBool("ENABLE_DELAY_VARIATION"),
		EnableRichContent:    v.GetBool("ENABLE_RICH_CONTENT"),
		EnableContextHints:   v.GetBool("ENABLE_CONTEXT_HINTS"),
		MockResponseMode:     model.Mode(strings.ToLower(v.GetString("MOCK_RESPONSE_MODE"))),

		EnablePersistence: v.GetBool("ENABLE_PERSISTENCE"),
		PersistenceType:   strings.ToLower(v.GetString("PERSISTENCE_TYPE")),
		DataDirectory:     v.GetString("DATA_DIRECTORY"),

		RedisAddr:     v.GetString("REDIS_ADDR"),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),

		NATSEnabled:  v.GetBool("NATS_ENABLED"),
		NATSURL:      v.GetString("NATS_URL"),
		NATSCAFile:   v.GetString("NATS_CA_FILE"),
		NATSCertFile: v.GetString("NATS_CERT_FILE"),
		NATSKeyFile:  v.GetString("NATS_KEY_FILE"),
		NATSToken:    v.GetString("NATS_TOKEN"),

		CORSEnabled: v.GetBool("CORS_ENABLED"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),

		RateLimitRPM: v.GetInt("RATE_LIMIT_RPM"),

		LogLevel: normalizeLogLevel(v.GetString("LOG_LEVEL")),

		TracingEndpoint: v.GetString("TRACING_ENDPOINT"),
		TracingEnabled:  v.GetBool("TRACING_ENABLED"),
	}
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Responder projects the generation options.
func (c *Config) Responder() responder.Options {
	return responder.Options{
		Mode:                 c.MockResponseMode,
		EnableSmartResponses: c.EnableSmartResponses,
		EnableDelayVariation: c.EnableDelayVariation,
		EnableRichContent:    c.EnableRichContent,
		EnableContextHints:   c.EnableContextHints,
		DefaultDelayMs:       c.DefaultDelayMs,
		MaxDelayMs:           c.MaxDelayMs,
	}
}

// MockConfig is the public view of the generation options.
func (c *Config) MockConfig() model.MockConfig {
	return model.MockConfig{
		MockResponseMode:     c.MockResponseMode,
		EnableSmartResponses: c.EnableSmartResponses,
		EnableDelayVariation: c.EnableDelayVariation,
		EnableRichContent:    c.EnableRichContent,
		DefaultDelayMs:       c.DefaultDelayMs,
		MaxDelayMs:           c.MaxDelayMs,
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// normalizeLogLevel accepts the none/basic/detailed vocabulary as well as
// zap level names.
func normalizeLogLevel(level string) string {
	switch strings.ToLower(level) {
	case "none":
		return "error"
	case "basic":
		return "info"
	case "detailed":
		return "debug"
	default:
		return strings.ToLower(level)
	}
}
