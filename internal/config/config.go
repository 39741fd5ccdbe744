// Package config loads the assistant configuration from the environment,
// layered over built-in defaults.
package config

import (
	"errors"
	"fmt"

	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// GitHubModelsBaseURL is the inference endpoint used when authenticating
// with a GitHub token.
const GitHubModelsBaseURL = "https://models.github.ai/inference"

// envKeys maps recognized environment variables to config keys. Variables
// not listed here are ignored.
var envKeys = map[string]string{
	"GITHUB_TOKEN":                 "github_token",
	"AZURE_OPENAI_API_KEY":         "azure_openai_api_key",
	"AZURE_OPENAI_ENDPOINT":        "azure_openai_endpoint",
	"COMPLETION_DEPLOYMENT_NAME":   "completion_model",
	"MEDIUM_DEPLOYMENT_MODEL_NAME": "medium_model",
	"SMALL_DEPLOYMENT_MODEL_NAME":  "small_model",
	"USER_MCP_URL":                 "user_mcp_url",
	"WEATHER_MCP_URL":              "weather_mcp_url",
	"LOG_LEVEL":                    "log_level",
}

// Config is the assistant configuration.
type Config struct {
	GitHubToken         string `koanf:"github_token"`
	AzureOpenAIAPIKey   string `koanf:"azure_openai_api_key"`
	AzureOpenAIEndpoint string `koanf:"azure_openai_endpoint"`

	// Deployment names for the three model sizes. The agent runs on the
	// medium model.
	CompletionModel string `koanf:"completion_model"`
	MediumModel     string `koanf:"medium_model"`
	SmallModel      string `koanf:"small_model"`

	UserMCPURL    string `koanf:"user_mcp_url"`
	WeatherMCPURL string `koanf:"weather_mcp_url"`

	LogLevel string `koanf:"log_level"`
}

// Load reads configuration from the environment over defaults and validates
// it.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"user_mcp_url":    "http://localhost:8002/mcp",
		"weather_mcp_url": "http://localhost:8003/mcp",
		"log_level":       "info",
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("error loading default config: %w", err)
	}

	// Empty variables are skipped so they never blank out a default.
	if err := k.Load(env.ProviderWithValue("", ".", func(name, value string) (string, interface{}) {
		key := envKeys[name]
		if key == "" || value == "" {
			return "", nil
		}
		return key, value
	}), nil); err != nil {
		return nil, fmt.Errorf("error loading environment config: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.GitHubToken == "" && c.AzureOpenAIAPIKey == "" {
		return errors.New("no API key found: set GITHUB_TOKEN or AZURE_OPENAI_API_KEY")
	}
	if c.GitHubToken == "" && c.AzureOpenAIEndpoint == "" {
		return errors.New("AZURE_OPENAI_ENDPOINT must be set when using AZURE_OPENAI_API_KEY")
	}
	if c.MediumModel == "" {
		return errors.New("MEDIUM_DEPLOYMENT_MODEL_NAME must be set")
	}
	return nil
}

// Credentials returns the API key and base URL for the selected backend.
// A GitHub token takes precedence over Azure OpenAI credentials.
func (c *Config) Credentials() (apiKey, baseURL string) {
	if c.GitHubToken != "" {
		return c.GitHubToken, GitHubModelsBaseURL
	}
	return c.AzureOpenAIAPIKey, c.AzureOpenAIEndpoint
}
