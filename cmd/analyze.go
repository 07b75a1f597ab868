package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/slack-go/slack"
	"github.com/spf13/cobra"

	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/analysis"
	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/analyzer"
	appconfig "github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/config"
	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/slackhistory"
)

var (
	analyzeChannel   string
	analyzeSince     string
	analyzePrompt    string
	analyzeToken     string
	analyzeOpenAIKey string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Fetch channel history and analyze it with an LLM",
	Long: `
Fetch all messages (and thread replies) posted to a channel since the given
start time, flatten them into a transcript and send it to the OpenAI API
together with your prompt.

The channel may be given as a name (with or without the leading '#') or as a
channel ID. The start time is either relative ("2 days ago", "3 hours ago")
or an absolute timestamp ("2024-01-15 09:00:00").

Examples:
  slack-analyzer analyze -c general -s "1 day ago" -p "Summarize the discussion"
  slack-analyzer analyze -c C0123456789 -s 2024-01-01 -p "List open questions"
`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeChannel, "channel", "c", "", "Channel name or ID (required)")
	analyzeCmd.Flags().StringVarP(&analyzeSince, "since", "s", "", "Start time, relative or absolute (required)")
	analyzeCmd.Flags().StringVarP(&analyzePrompt, "prompt", "p", "", "Analysis instruction for the LLM (required)")
	analyzeCmd.Flags().StringVarP(&analyzeToken, "token", "t", "", "Slack token (falls back to SLACK_TOKEN)")
	analyzeCmd.Flags().StringVar(&analyzeOpenAIKey, "openai-key", "", "OpenAI API key (falls back to OPENAI_API_KEY)")

	_ = analyzeCmd.MarkFlagRequired("channel")
	_ = analyzeCmd.MarkFlagRequired("since")
	_ = analyzeCmd.MarkFlagRequired("prompt")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Load .env file if present; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if analyzeToken != "" {
		cfg.SlackToken = analyzeToken
	}
	if analyzeOpenAIKey != "" {
		cfg.OpenAIKey = analyzeOpenAIKey
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := log.New(os.Stderr, "slack-analyzer ", log.LstdFlags)

	client := slack.New(cfg.SlackToken)
	fetcher := slackhistory.NewFetcher(client,
		slackhistory.WithPageSize(cfg.FetchPageSize),
		slackhistory.WithLogger(logger),
	)

	analysisClient, err := analysis.New(analysis.Config{
		APIKey:      cfg.OpenAIKey,
		Model:       cfg.OpenAIModel,
		MaxTokens:   cfg.MaxCompletionTokens,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		return fmt.Errorf("failed to create analysis client: %w", err)
	}

	svc := analyzer.New(fetcher, analysisClient, analyzer.WithLogger(logger))
	return svc.Run(cmd.Context(), analyzer.Request{
		Channel: analyzeChannel,
		Since:   analyzeSince,
		Prompt:  analyzePrompt,
	}, os.Stdout)
}
