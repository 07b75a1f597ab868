package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "slack-analyzer",
	Short: "Analyze Slack channel conversations with an LLM",
	Long: `slack-analyzer fetches the recent history of a Slack channel (including
thread replies), flattens it into a single transcript and asks an LLM
to analyze it according to your prompt.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}
