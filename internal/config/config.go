// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds all application configuration.
type Config struct {
	Port        string
	DBPath      string
	CORSOrigins []string

	// AI model settings. Any OpenAI-compatible endpoint works; the default
	// targets Groq's chat completions API.
	LLMAPIKey  string
	LLMBaseURL string
	LLMModel   string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DBPath:      getEnv("DB_PATH", "./data/wellness.db"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
		LLMAPIKey:   getEnv("LLM_API_KEY", ""),
		LLMBaseURL:  getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:    getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH cannot be empty")
	}
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY must be set")
	}
	if c.LLMModel == "" {
		return fmt.Errorf("LLM_MODEL cannot be empty")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
