// Package analyzer sequences the analysis pipeline: resolve the start time
// and channel, build the user directory, fetch history, format the
// transcript and request the LLM analysis.
package analyzer

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/slackhistory"
	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/timeparse"
	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/transcript"
)

// SlackSource provides channel resolution, the user directory and message
// history. Implemented by slackhistory.Fetcher.
type SlackSource interface {
	ResolveChannel(ctx context.Context, nameOrID string) (string, error)
	BuildUserDirectory(ctx context.Context) slackhistory.UserDirectory
	FetchHistory(ctx context.Context, channelID string, oldest time.Time, users slackhistory.UserDirectory) ([]slackhistory.Message, error)
}

// AnalysisClient generates an analysis of a transcript. Implemented by
// analysis.Client.
type AnalysisClient interface {
	Analyze(ctx context.Context, instruction, transcript string) (string, error)
}

// Request carries the user-supplied inputs for one run.
type Request struct {
	Channel string
	Since   string
	Prompt  string
}

// Service runs the pipeline end to end. Stages execute strictly
// sequentially; the first fatal error aborts the run.
type Service struct {
	source   SlackSource
	analysis AnalysisClient
	logger   *log.Logger
	nowFunc  func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the default progress logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNowFunc overrides the clock used to resolve relative start times.
func WithNowFunc(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.nowFunc = now
		}
	}
}

// New constructs a Service.
func New(source SlackSource, analysis AnalysisClient, opts ...Option) *Service {
	svc := &Service{
		source:   source,
		analysis: analysis,
		logger:   log.New(os.Stderr, "analyzer ", log.LstdFlags),
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Run executes the pipeline and writes the result to out. An empty message
// list is a normal terminal outcome, not an error; the analysis stage is
// skipped entirely in that case.
func (s *Service) Run(ctx context.Context, req Request, out io.Writer) error {
	oldest, err := timeparse.Resolve(req.Since, s.nowFunc())
	if err != nil {
		return fmt.Errorf("resolve start time: %w", err)
	}
	s.logger.Printf("analyzing %s since %s", req.Channel, oldest.Format(time.RFC3339))

	channelID, err := s.source.ResolveChannel(ctx, req.Channel)
	if err != nil {
		return err
	}
	s.logger.Printf("resolved channel %q to %s", req.Channel, channelID)

	users := s.source.BuildUserDirectory(ctx)
	s.logger.Printf("loaded %d user names", len(users))

	messages, err := s.source.FetchHistory(ctx, channelID, oldest, users)
	if err != nil {
		return err
	}
	if len(messages) == 0 {
		fmt.Fprintln(out, "No messages found in the given time range.")
		return nil
	}

	text := transcript.Format(channelID, messages)
	s.logger.Printf("requesting analysis of %d messages (%d bytes)", len(messages), len(text))

	result, err := s.analysis.Analyze(ctx, req.Prompt, text)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, result)
	return nil
}
