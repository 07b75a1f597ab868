package config

import (
	"fmt"
	"strings"

	env "github.com/netflix/go-env"
)

// Config holds all settings for a slack-analyzer run. Values come from the
// environment (optionally a .env file); the Slack token and OpenAI key can be
// overridden by command-line flags before Validate is called.
type Config struct {
	SlackToken          string  `env:"SLACK_TOKEN"`
	OpenAIKey           string  `env:"OPENAI_API_KEY"`
	OpenAIModel         string  `env:"OPENAI_MODEL,default=gpt-4o"`
	MaxCompletionTokens int     `env:"ANALYSIS_MAX_TOKENS,default=2048"`
	Temperature         float64 `env:"ANALYSIS_TEMPERATURE,default=0.7"`
	FetchPageSize       int     `env:"SLACK_FETCH_PAGE_SIZE,default=200"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var config Config

	_, err := env.UnmarshalFromEnviron(&config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment variables: %w", err)
	}

	// Clamp tuning values to safe ranges rather than failing.
	if config.FetchPageSize < 1 {
		config.FetchPageSize = 1
	}
	if config.FetchPageSize > 1000 {
		config.FetchPageSize = 1000
	}
	if config.MaxCompletionTokens < 1 {
		config.MaxCompletionTokens = 2048
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		config.Temperature = 0.7
	}

	return &config, nil
}

// Validate checks the credentials after flag overrides have been applied.
// A malformed token is rejected here, before any network call is made.
func (c *Config) Validate() error {
	if c.SlackToken == "" {
		return fmt.Errorf("Slack token is required: set --token or SLACK_TOKEN")
	}
	if !strings.HasPrefix(c.SlackToken, "xox") {
		return fmt.Errorf("Slack token has unexpected format: expected an xoxb-/xoxp- token")
	}
	if c.OpenAIKey == "" {
		return fmt.Errorf("OpenAI API key is required: set --openai-key or OPENAI_API_KEY")
	}
	if c.OpenAIModel == "" {
		return fmt.Errorf("OpenAI model cannot be empty")
	}
	return nil
}
