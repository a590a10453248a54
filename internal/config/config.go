// Package config loads application configuration from environment variables
// with an optional YAML override file.
package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// Config holds all configuration for the application
type Config struct {
	// HTTP Server Configuration
	HTTPPort int `yaml:"http_port"`

	// Database Configuration
	DatabaseURL string `yaml:"database_url"`

	// Authentication Configuration
	AdminUsername  string `yaml:"admin_username"`
	AdminPassword  string `yaml:"admin_password"`
	JWTSecret      string `yaml:"jwt_secret"`
	JWTExpiryHours int    `yaml:"jwt_expiry_hours"`

	// Correlation engine tunables
	IncidentWindowMinutes int     `yaml:"incident_window_minutes"`
	DedupeWindowSeconds   int     `yaml:"dedupe_window_seconds"`
	MaxSignalHistory      int     `yaml:"max_signal_history"`
	SaturationWarnRatio   float64 `yaml:"saturation_warn_ratio"`
	GenericWarnRatio      float64 `yaml:"generic_warn_ratio"`

	// Slack escalation notifications
	SlackBotToken string `yaml:"slack_bot_token"`
	SlackChannel  string `yaml:"slack_channel"`

	// Generative report writer
	LLMMode         string `yaml:"llm_mode"`
	OpenAIAPIKey    string `yaml:"openai_api_key"`
	OpenAIModel     string `yaml:"openai_model"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	AnthropicModel  string `yaml:"anthropic_model"`

	// LLM report rate limit, per client IP
	ReportRatePerHour int `yaml:"report_rate_per_hour"`
}

// Load reads configuration from environment variables, then applies the
// optional YAML file named by AITRIAGE_CONFIG on top.
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.HTTPPort = getEnvAsIntOrDefault("HTTP_PORT", 8000)
	cfg.DatabaseURL = getEnvOrDefault("DATABASE_URL", "aitriage.db")

	cfg.AdminUsername = getEnvOrDefault("ADMIN_USERNAME", "admin")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD") // No default - must be set
	cfg.JWTExpiryHours = getEnvAsIntOrDefault("JWT_EXPIRY_HOURS", 24)

	cfg.IncidentWindowMinutes = getEnvAsIntOrDefault("INCIDENT_WINDOW_MINUTES", 60)
	cfg.DedupeWindowSeconds = getEnvAsIntOrDefault("DEDUPE_WINDOW_SECONDS", 120)
	cfg.MaxSignalHistory = getEnvAsIntOrDefault("MAX_SIGNAL_HISTORY", 12)
	cfg.SaturationWarnRatio = getEnvAsFloatOrDefault("SATURATION_WARN_RATIO", 0.90)
	cfg.GenericWarnRatio = getEnvAsFloatOrDefault("GENERIC_WARN_RATIO", 0.95)

	cfg.SlackBotToken = os.Getenv("SLACK_BOT_TOKEN")
	cfg.SlackChannel = os.Getenv("SLACK_CHANNEL")

	cfg.LLMMode = getEnvOrDefault("LLM_MODE", "auto")
	cfg.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	cfg.OpenAIModel = os.Getenv("OPENAI_MODEL")
	cfg.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	cfg.AnthropicModel = os.Getenv("ANTHROPIC_MODEL")

	cfg.ReportRatePerHour = getEnvAsIntOrDefault("REPORT_RATE_PER_HOUR", 3)

	if path := os.Getenv("AITRIAGE_CONFIG"); path != "" {
		if err := cfg.applyYAMLFile(path); err != nil {
			return nil, err
		}
		log.Printf("Applied configuration overrides from %s", path)
	}

	// JWT Secret: auto-generate and persist if not provided via env var
	if cfg.JWTSecret == "" {
		dataDir := getEnvOrDefault("AITRIAGE_DATA", ".")
		cfg.JWTSecret = loadOrGenerateJWTSecret(filepath.Join(dataDir, ".jwt_secret"))
	}

	return cfg, nil
}

// Triage converts the engine tunables into an engine configuration.
func (c *Config) Triage() triage.Config {
	return triage.Config{
		IncidentWindow:      time.Duration(c.IncidentWindowMinutes) * time.Minute,
		DedupeWindow:        time.Duration(c.DedupeWindowSeconds) * time.Second,
		MaxSignalHistory:    c.MaxSignalHistory,
		SaturationWarnRatio: c.SaturationWarnRatio,
		GenericWarnRatio:    c.GenericWarnRatio,
	}
}

func (c *Config) applyYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// loadOrGenerateJWTSecret loads JWT secret from file or generates a new one
func loadOrGenerateJWTSecret(secretPath string) string {
	// First check if JWT_SECRET env var is set (allows override)
	if envSecret := os.Getenv("JWT_SECRET"); envSecret != "" {
		log.Printf("Using JWT secret from environment variable")
		return envSecret
	}

	// Try to load existing secret from file
	if data, err := os.ReadFile(secretPath); err == nil {
		secret := strings.TrimSpace(string(data))
		if secret != "" {
			log.Printf("Loaded JWT secret from %s", secretPath)
			return secret
		}
	}

	// Generate new secret
	secret := generateSecureSecret(32) // 256 bits

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(secretPath), 0755); err != nil {
		log.Printf("Warning: Could not create directory for JWT secret: %v", err)
		return secret
	}

	// Save secret to file
	if err := os.WriteFile(secretPath, []byte(secret), 0600); err != nil {
		log.Printf("Warning: Could not save JWT secret to file: %v", err)
	} else {
		log.Printf("Generated and saved new JWT secret to %s", secretPath)
	}

	return secret
}

// generateSecureSecret generates a cryptographically secure random string
func generateSecureSecret(bytes int) string {
	b := make([]byte, bytes)
	if _, err := rand.Read(b); err != nil {
		// Fallback to a less secure but functional default (should never happen)
		log.Printf("Warning: Could not generate secure random bytes: %v", err)
		return "fallback-insecure-secret-please-set-jwt-secret-env"
	}
	return hex.EncodeToString(b)
}

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsIntOrDefault returns the value of an environment variable as an integer or a default value
func getEnvAsIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvAsFloatOrDefault returns the value of an environment variable as a float or a default value
func getEnvAsFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
