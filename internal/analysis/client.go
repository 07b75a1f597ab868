// Package analysis sends a conversation transcript plus a user instruction
// to the OpenAI chat completions API and returns the generated analysis.
package analysis

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrAnalysis wraps any transport or service error from the completion
// backend. The request is never retried.
var ErrAnalysis = errors.New("analysis failed")

const systemPrompt = `You are analyzing a Slack conversation transcript.
Each message line has the form "[YYYY-MM-DD HH:MM:SS] author: text".
Thread replies appear indented beneath their parent message, prefixed with "└─".
Author names are resolved display names where known and raw user IDs otherwise.
Answer the user's instruction using only the transcript provided.`

// Config holds the settings for the analysis client. Model, token budget
// and temperature are fixed per run; they are not exposed on the CLI.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float64
}

// Client calls the OpenAI chat completions endpoint.
type Client struct {
	openai      openai.Client
	model       string
	maxTokens   int
	temperature float64
}

// New creates an analysis client. The API key is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		// Single attempt: a failed analysis call aborts the run.
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	temperature := cfg.Temperature
	if temperature <= 0 {
		temperature = 0.7
	}

	return &Client{
		openai:      openai.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Analyze submits the transcript and instruction as a system/user message
// pair and returns the generated text. Single attempt, no retry.
func (c *Client) Analyze(ctx context.Context, instruction, transcript string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: c.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage(instruction, transcript)),
		},
		MaxCompletionTokens: openai.Int(int64(c.maxTokens)),
		Temperature:         openai.Float(c.temperature),
	}

	resp, err := c.openai.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAnalysis, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrAnalysis)
	}
	return resp.Choices[0].Message.Content, nil
}

// Model returns the model identifier in use.
func (c *Client) Model() string {
	return c.model
}

func userMessage(instruction, transcript string) string {
	return instruction + "\n\n=== CONVERSATION DATA ===\n" + transcript
}
