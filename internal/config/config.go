// Package config provides configuration for the chatbot service.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the service configuration.
type Config struct {
	// Server settings
	HTTPPort int
	APIToken string

	// Model backend (Azure OpenAI)
	AzureEndpoint   string
	AzureAPIKey     string
	AzureDeployment string
	AzureAPIVersion string

	// Conversation limits
	TokenCeiling int
	SessionCap   int

	// Default user identity scope when the caller sends none
	DefaultVhost string

	// Timeouts
	LLMTimeout  time.Duration
	ToolTimeout time.Duration

	// Transcript (audit) database; empty disables it
	TranscriptDSN string

	// RabbitMQ management API
	RabbitURL      string
	RabbitUser     string
	RabbitPassword string

	// MongoDB
	MongoURLPrd string
	MongoURLHml string

	// GitHub
	GithubToken string
	GithubOwner string

	// Pulpo knowledge base
	PulpoURL       string
	PulpoSearchURL string
	PulpoBearer    string

	// Trello
	TrelloKey   string
	TrelloToken string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		HTTPPort: getEnvInt("HTTP_PORT", 8000),
		APIToken: getEnv("API_TOKEN", ""),

		AzureEndpoint:   getEnv("AZURE_OPENAI_ENDPOINT", ""),
		AzureAPIKey:     getEnv("AZURE_OPENAI_API_KEY", ""),
		AzureDeployment: getEnv("AZURE_DEPLOYMENT_ID", "gpt-4o-2024-11-20"),
		AzureAPIVersion: getEnv("AZURE_API_VERSION", "2024-06-01"),

		TokenCeiling: getEnvInt("TOKEN_CEILING", 4096),
		SessionCap:   getEnvInt("SESSION_TURN_CAP", 10),

		DefaultVhost: getEnv("DEFAULT_VHOST", "aqila"),

		LLMTimeout:  time.Duration(getEnvInt("LLM_TIMEOUT_MS", 60000)) * time.Millisecond,
		ToolTimeout: time.Duration(getEnvInt("TOOL_TIMEOUT_MS", 30000)) * time.Millisecond,

		TranscriptDSN: getEnv("TRANSCRIPT_DSN", "file:alfredo.db?cache=shared&mode=rwc"),

		RabbitURL:      getEnv("RABBITMQ_HOST", ""),
		RabbitUser:     getEnv("RABBITMQ_USERNAME", ""),
		RabbitPassword: getEnv("RABBITMQ_PASSWORD", ""),

		MongoURLPrd: getEnv("MONGO_AQILA_URL_PRD", ""),
		MongoURLHml: getEnv("MONGO_AQILA_URL_HML", ""),

		GithubToken: getEnv("GITHUB_TOKEN", ""),
		GithubOwner: getEnv("REPO_OWNER", ""),

		PulpoURL:       getEnv("PULPO_URL", ""),
		PulpoSearchURL: getEnv("PULPO_SEARCH_URL", ""),
		PulpoBearer:    getEnv("PULPO_BEARER", ""),

		TrelloKey:   getEnv("TRELLO_API_KEY", ""),
		TrelloToken: getEnv("TRELLO_API_SECRET", ""),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
