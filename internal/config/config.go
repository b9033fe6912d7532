package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	env "github.com/netflix/go-env"
	"golang.org/x/text/language"

	"github.com/ben-bakker/searchai/internal/types"
)

// Type alias for Config
type Config = types.Config

var defaultCORSAllowedOrigins = []string{"http://localhost:3000", "http://localhost:3001"}

// Load reads an optional .env file and then loads configuration from
// environment variables. Variables already present in the environment win
// over values from the file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read .env file: %w", err)
	}
	return LoadFromEnv()
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	// Parse CORSAllowedOrigins from comma-separated string
	config.CORSAllowedOrigins = splitList(config.CORSAllowedOriginsStr)
	if len(config.CORSAllowedOrigins) == 0 {
		config.CORSAllowedOrigins = append([]string(nil), defaultCORSAllowedOrigins...)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values and adjusts them to safe ranges
func validateConfig(config *Config) error {
	config.TavilyAPIKey = strings.TrimSpace(config.TavilyAPIKey)
	if config.TavilyAPIKey == "" {
		return fmt.Errorf("TAVILY_API_KEY is required")
	}
	config.GroqAPIKey = strings.TrimSpace(config.GroqAPIKey)

	if err := validateBaseURL("TAVILY_BASE_URL", config.TavilyBaseURL); err != nil {
		return err
	}
	if err := validateBaseURL("GROQ_BASE_URL", config.GroqBaseURL); err != nil {
		return err
	}

	if err := validateAnswerConfig(config); err != nil {
		return fmt.Errorf("answer configuration validation failed: %w", err)
	}

	if config.UpstreamTimeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be greater than 0")
	}
	if config.UpstreamTimeout > 5*time.Minute {
		return fmt.Errorf("UPSTREAM_TIMEOUT cannot exceed 5m")
	}

	if err := validateServerConfig(config); err != nil {
		return fmt.Errorf("server configuration validation failed: %w", err)
	}

	return nil
}

// validateAnswerConfig validates answer generation settings
func validateAnswerConfig(config *Config) error {
	if strings.TrimSpace(config.GroqModel) == "" {
		return fmt.Errorf("GROQ_MODEL cannot be empty")
	}

	if _, err := language.Parse(config.AnswerLanguage); err != nil {
		return fmt.Errorf("ANSWER_LANGUAGE must be a BCP 47 language tag: %w", err)
	}

	if config.AnswerTemperature < 0 || config.AnswerTemperature > 2 {
		return fmt.Errorf("ANSWER_TEMPERATURE must be between 0.0 and 2.0")
	}

	// Clamp token budget to a safe range
	if config.AnswerMaxTokens < 1 {
		config.AnswerMaxTokens = 1
	}
	if config.AnswerMaxTokens > 32768 {
		config.AnswerMaxTokens = 32768
	}

	return nil
}

// validateServerConfig validates HTTP server settings
func validateServerConfig(config *Config) error {
	if config.ServerPort < 1 || config.ServerPort > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if config.ServerHost == "" {
		return fmt.Errorf("SERVER_HOST cannot be empty")
	}
	if net.ParseIP(config.ServerHost) == nil && !isValidHostname(config.ServerHost) {
		return fmt.Errorf("SERVER_HOST must be a valid IP address or hostname: %s", config.ServerHost)
	}

	timeoutChecks := []struct {
		name  string
		value time.Duration
	}{
		{"SERVER_READ_TIMEOUT", config.ServerReadTimeout},
		{"SERVER_WRITE_TIMEOUT", config.ServerWriteTimeout},
		{"SERVER_IDLE_TIMEOUT", config.ServerIdleTimeout},
		{"SERVER_SHUTDOWN_TIMEOUT", config.ServerShutdownTimeout},
	}
	for _, check := range timeoutChecks {
		if check.value <= 0 {
			return fmt.Errorf("%s must be greater than 0", check.name)
		}
	}

	if config.MaxRequestBytes <= 0 {
		return fmt.Errorf("MAX_REQUEST_BYTES must be greater than 0")
	}
	if config.MaxRequestBytes > 10<<20 { // 10MB limit
		return fmt.Errorf("MAX_REQUEST_BYTES cannot exceed 10MB")
	}

	for i, origin := range config.CORSAllowedOrigins {
		if origin == "*" {
			continue
		}
		parsed, err := url.Parse(origin)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("invalid origin in CORS_ALLOWED_ORIGINS at index %d: %s", i, origin)
		}
	}

	return nil
}

func validateBaseURL(name, raw string) error {
	parsedURL, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid %s URL format: %w", name, err)
	}
	if !strings.HasPrefix(parsedURL.Scheme, "http") {
		return fmt.Errorf("%s scheme must be http or https", name)
	}
	if parsedURL.Host == "" {
		return fmt.Errorf("%s must include a valid host", name)
	}
	return nil
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// isValidHostname checks if a string is a valid hostname
func isValidHostname(hostname string) bool {
	if len(hostname) == 0 || len(hostname) > 253 {
		return false
	}

	// Check for invalid characters
	for _, char := range hostname {
		if !((char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') || char == '-' || char == '.') {
			return false
		}
	}

	// Cannot start or end with hyphen
	if strings.HasPrefix(hostname, "-") || strings.HasSuffix(hostname, "-") {
		return false
	}

	return true
}
