// Package config provides configuration management for the application.
// It supports YAML configuration files with ${VAR} environment variable expansion.
package config

import (
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verustcode/verustcode/consts"
	"github.com/verustcode/verustcode/pkg/logger"
	"github.com/verustcode/verustcode/pkg/telemetry"
)

// Default configuration values
const (
	defaultOTLPEndpoint   = "localhost:4317"
	defaultPrometheusPort = 9090
	defaultRedisAddr      = "localhost:6379"
	defaultQueueNamespace = "verustcode:review"
	defaultConcurrency    = 1
	defaultLLMTimeout     = 120 // seconds, spec §4.4's 120s hard timeout
	defaultLLMMaxRetries  = 3
	defaultLLMRetryDelay  = 2 // seconds
	defaultMaxSuggestions = 10
	defaultMaxPromptChars = 12000
)

// Config represents the complete application configuration
type Config struct {
	Server       ServerConfig       `yaml:"server"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	Git          GitConfig          `yaml:"git"`
	Redis        RedisConfig        `yaml:"redis"`
	Orchestrator OrchestratorConfig `yaml:"orchestrator"`
	LLM          LLMConfig          `yaml:"llm"`
	Logging      logger.Config      `yaml:"logging"`
	Telemetry    telemetry.Config   `yaml:"telemetry"`
}

// RedisConfig holds connection settings for the review queue's Redis backend
// (spec §4.6).
type RedisConfig struct {
	Addr      string `yaml:"addr"`      // host:port
	Password  string `yaml:"password"`  // optional
	DB        int    `yaml:"db"`        // logical database index
	Namespace string `yaml:"namespace"` // queue key prefix
}

// OrchestratorConfig holds review-worker process settings (spec §4.8).
type OrchestratorConfig struct {
	Concurrency    int `yaml:"concurrency"`      // number of Worker loops to run, default 1
	MaxSuggestions int `yaml:"max_suggestions"`  // cap on AI suggestions per run (spec §4.8 step 10)
	MaxPromptChars int `yaml:"max_prompt_chars"` // redacted-snippet byte budget handed to the LLM (C3/C4)
}

// LLMConfig holds settings for the C4 suggestion-generation client.
type LLMConfig struct {
	Enabled      bool   `yaml:"enabled"`       // process-wide AI augmentation gate (spec §4.8 step 10)
	Provider     string `yaml:"provider"`      // llmreview.Client registry name, e.g. "anthropic"
	APIKey       string `yaml:"api_key"`       // provider access token
	DefaultModel string `yaml:"default_model"` // model id passed to the client
	TimeoutSecs    int    `yaml:"timeout_secs"`
	MaxRetries     int    `yaml:"max_retries"`
	RetryDelay     int    `yaml:"retry_delay"`     // seconds
	OutputLanguage string `yaml:"output_language"` // ISO tag for review comment language, defaults to English
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host        string   `yaml:"host"`
	Port        int      `yaml:"port"`
	Debug       bool     `yaml:"debug"`
	CORSOrigins []string `yaml:"cors_origins"` // Allowed CORS origins whitelist
}

// DatabaseConfig holds database configuration
// Note: Database path is now hardcoded in the database package to prevent data loss from configuration errors
type DatabaseConfig struct {
	// Reserved for future database configuration options
}

// GitConfig holds Git provider configuration
type GitConfig struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// ProviderConfig holds individual Git provider settings
type ProviderConfig struct {
	Type               string `yaml:"type"`                 // github, gitlab
	URL                string `yaml:"url"`                  // for self-hosted instances (supports both http:// and https://)
	Token              string `yaml:"token"`                // access token
	WebhookSecret      string `yaml:"webhook_secret"`       // webhook secret for validation
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"` // skip SSL certificate verification (for self-signed certs)
}

// AuthConfig holds the control API's tenant bearer-token settings (spec
// §4.10). Tokens are minted by an external collaborator; this service only
// verifies them against JWTSecret.
type AuthConfig struct {
	JWTSecret    string `yaml:"jwt_secret"`    // JWT signing secret key
	TokenExpiry  int    `yaml:"token_expiry"`  // Normal token expiry in hours (default: 24)
	RememberDays int    `yaml:"remember_days"` // Remember me token expiry in days (default: 7)
}

// Default returns a default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:  "0.0.0.0",
			Port:  8080,
			Debug: false,
			CORSOrigins: []string{
				"http://localhost:8091",
				"http://localhost:8092",
			},
		},
		Database: DatabaseConfig{},
		Auth: AuthConfig{
			JWTSecret:    "", // Should be set via config file or environment variable
			TokenExpiry:  24, // 24 hours
			RememberDays: 7,  // 7 days
		},
		Git: GitConfig{
			Providers: []ProviderConfig{},
		},
		Redis: RedisConfig{
			Addr:      defaultRedisAddr,
			Namespace: defaultQueueNamespace,
		},
		Orchestrator: OrchestratorConfig{
			Concurrency:    defaultConcurrency,
			MaxSuggestions: defaultMaxSuggestions,
			MaxPromptChars: defaultMaxPromptChars,
		},
		LLM: LLMConfig{
			Enabled:        false,
			Provider:       "anthropic",
			TimeoutSecs:    defaultLLMTimeout,
			MaxRetries:     defaultLLMMaxRetries,
			RetryDelay:     defaultLLMRetryDelay,
			DefaultModel:   "",
			OutputLanguage: "en",
		},
		Logging: logger.Config{
			Level:      "info",
			Format:     "text", // Default to human-readable text format instead of JSON
			File:       "",
			MaxSize:    100, // Max 100MB per log file
			MaxAge:     7,   // Retain logs for 7 days
			MaxBackups: 5,   // Keep 5 backup files
			Compress:   false,
		},
		Telemetry: telemetry.Config{
			Enabled:     false,
			ServiceName: consts.ServiceName,
			OTLP: telemetry.OTLPConfig{
				Enabled:  false,
				Endpoint: defaultOTLPEndpoint,
				Insecure: true,
			},
			Prometheus: telemetry.PrometheusConfig{
				Enabled: false,
				Port:    defaultPrometheusPort,
			},
		},
	}
}

// Load loads configuration from a YAML file with environment variable expansion
func Load(path string) (*Config, error) {
	cfg := Default()

	// Read configuration file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables in the configuration
	expanded := expandEnvVars(string(data))

	// Parse YAML
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values
// Only matches ${VAR_NAME} format (not $VAR_NAME) to avoid conflicts with tokens/secrets containing a literal "$"
func expandEnvVars(content string) string {
	// Match ${VAR_NAME} patterns only (not bare $VAR_NAME)
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(content, func(match string) string {
		// Extract variable name from ${VAR_NAME}
		varName := match[2 : len(match)-1]

		// Support default values: ${VAR_NAME:-default}
		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]

		if value := os.Getenv(varName); value != "" {
			return value
		}

		// Return default value if provided
		if len(parts) > 1 {
			return parts[1]
		}

		return ""
	})
}

// Address returns the server address string
func (c *ServerConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// GetProvider returns provider configuration by type
func (c *GitConfig) GetProvider(providerType string) *ProviderConfig {
	for i := range c.Providers {
		if c.Providers[i].Type == providerType {
			return &c.Providers[i]
		}
	}
	return nil
}

