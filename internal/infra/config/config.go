// Package config provides application-wide configuration loaded from env vars.
// All fields have safe defaults so the binary runs locally without any env setup,
// except for secrets (JWT, admin credential, Anthropic API key) which stay empty
// when unset. An optional .env file is honored when present.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds runtime configuration for sqlpilot.
type Config struct {
	// Target database (the database the query_executor tool runs against)
	DBDialect  string // SQLPILOT_DB_DIALECT — "mysql", "postgres" or "sqlite"; default: "mysql"
	DBHost     string // SQLPILOT_DB_HOST — default: "127.0.0.1"
	DBPort     int    // SQLPILOT_DB_PORT — default: 3306
	DBUser     string // SQLPILOT_DB_USER — default: "root"
	DBPassword string // SQLPILOT_DB_PASSWORD — default: ""
	DBName     string // SQLPILOT_DB_NAME — default: "employees"

	// Local store for query history and audit events
	StorePath string // SQLPILOT_STORE_PATH — default: "sqlpilot.db"

	// Query execution
	QueryTimeout time.Duration // SQLPILOT_QUERY_TIMEOUT — default: 30s

	// LLM
	LLMProvider     string // LLM_PROVIDER — "ollama" or "anthropic"; default: "ollama"
	OllamaBaseURL   string // OLLAMA_BASE_URL — default: "http://localhost:11434"
	OllamaChatModel string // OLLAMA_CHAT_MODEL — default: "llama3.2:3b"
	AnthropicAPIKey string // ANTHROPIC_API_KEY — no default
	AnthropicModel  string // ANTHROPIC_MODEL — default: "claude-sonnet-4-5"

	// Agent
	AgentProfilePath string // SQLPILOT_AGENT_PROFILE — optional path to a YAML agent profile

	// HTTP API
	HTTPHost string // SQLPILOT_HTTP_HOST — default: "0.0.0.0"
	HTTPPort int    // SQLPILOT_HTTP_PORT — default: 8080

	// Operator credential for POST /auth/login
	AdminUser         string // SQLPILOT_ADMIN_USER — default: "admin"
	AdminPasswordHash string // SQLPILOT_ADMIN_PASSWORD_HASH — bcrypt hash, no default
}

const (
	envKeyDBDialect  = "SQLPILOT_DB_DIALECT"
	envKeyDBHost     = "SQLPILOT_DB_HOST"
	envKeyDBPort     = "SQLPILOT_DB_PORT"
	envKeyDBUser     = "SQLPILOT_DB_USER"
	envKeyDBPassword = "SQLPILOT_DB_PASSWORD"
	envKeyDBName     = "SQLPILOT_DB_NAME"

	envKeyStorePath    = "SQLPILOT_STORE_PATH"
	envKeyQueryTimeout = "SQLPILOT_QUERY_TIMEOUT"

	envKeyLLMProvider     = "LLM_PROVIDER"
	envKeyOllamaBaseURL   = "OLLAMA_BASE_URL"
	envKeyOllamaChatModel = "OLLAMA_CHAT_MODEL"
	envKeyAnthropicAPIKey = "ANTHROPIC_API_KEY"
	envKeyAnthropicModel  = "ANTHROPIC_MODEL"

	envKeyAgentProfile = "SQLPILOT_AGENT_PROFILE"

	envKeyHTTPHost = "SQLPILOT_HTTP_HOST"
	envKeyHTTPPort = "SQLPILOT_HTTP_PORT"

	envKeyAdminUser         = "SQLPILOT_ADMIN_USER"
	envKeyAdminPasswordHash = "SQLPILOT_ADMIN_PASSWORD_HASH"
)

// Load reads configuration from environment variables, applying defaults for
// missing values. A .env file in the working directory is loaded first when
// present; real env vars win over .env entries.
func Load() Config {
	// godotenv.Load does not override variables already set in the environment.
	_ = godotenv.Load()

	return Config{
		DBDialect:  envOr(envKeyDBDialect, "mysql"),
		DBHost:     envOr(envKeyDBHost, "127.0.0.1"),
		DBPort:     envIntOr(envKeyDBPort, 3306),
		DBUser:     envOr(envKeyDBUser, "root"),
		DBPassword: os.Getenv(envKeyDBPassword),
		DBName:     envOr(envKeyDBName, "employees"),

		StorePath:    envOr(envKeyStorePath, "sqlpilot.db"),
		QueryTimeout: envDurationOr(envKeyQueryTimeout, 30*time.Second),

		LLMProvider:     envOr(envKeyLLMProvider, "ollama"),
		OllamaBaseURL:   envOr(envKeyOllamaBaseURL, "http://localhost:11434"),
		OllamaChatModel: envOr(envKeyOllamaChatModel, "llama3.2:3b"),
		AnthropicAPIKey: os.Getenv(envKeyAnthropicAPIKey),
		AnthropicModel:  envOr(envKeyAnthropicModel, "claude-sonnet-4-5"),

		AgentProfilePath: os.Getenv(envKeyAgentProfile),

		HTTPHost: envOr(envKeyHTTPHost, "0.0.0.0"),
		HTTPPort: envIntOr(envKeyHTTPPort, 8080),

		AdminUser:         envOr(envKeyAdminUser, "admin"),
		AdminPasswordHash: os.Getenv(envKeyAdminPasswordHash),
	}
}

// envOr returns the value of the environment variable key, or fallback if not set.
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// envIntOr parses the environment variable key as an int, or returns fallback
// if unset or invalid.
func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// envDurationOr parses the environment variable key as a time.Duration
// ("30s", "2m"), or returns fallback if unset or invalid.
func envDurationOr(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
