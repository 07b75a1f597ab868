package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 2048, cfg.MaxCompletionTokens)
	assert.InDelta(t, 0.7, cfg.Temperature, 0.001)
	assert.Equal(t, 200, cfg.FetchPageSize)
}

func TestLoad_ClampsPageSize(t *testing.T) {
	t.Setenv("SLACK_FETCH_PAGE_SIZE", "100000")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.FetchPageSize)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name:    "missing slack token",
			cfg:     Config{OpenAIKey: "sk-test", OpenAIModel: "gpt-4o"},
			wantErr: "Slack token is required",
		},
		{
			name:    "malformed slack token",
			cfg:     Config{SlackToken: "not-a-token", OpenAIKey: "sk-test", OpenAIModel: "gpt-4o"},
			wantErr: "unexpected format",
		},
		{
			name:    "missing openai key",
			cfg:     Config{SlackToken: "xoxb-123", OpenAIModel: "gpt-4o"},
			wantErr: "OpenAI API key is required",
		},
		{
			name: "valid",
			cfg:  Config{SlackToken: "xoxb-123", OpenAIKey: "sk-test", OpenAIModel: "gpt-4o"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
