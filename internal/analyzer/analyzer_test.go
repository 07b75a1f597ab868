package analyzer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/slackhistory"
	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/timeparse"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func newTestService(source *mockSource, client *mockAnalysis) *Service {
	return New(source, client,
		WithLogger(log.New(io.Discard, "", 0)),
		WithNowFunc(func() time.Time { return testNow }),
	)
}

func TestRun_HappyPath(t *testing.T) {
	source := &mockSource{
		resolveFunc: func(nameOrID string) (string, error) {
			assert.Equal(t, "general", nameOrID)
			return "C123", nil
		},
		usersFunc: func() slackhistory.UserDirectory {
			return slackhistory.UserDirectory{"U1": "Alice"}
		},
		historyFunc: func(channelID string, oldest time.Time, users slackhistory.UserDirectory) ([]slackhistory.Message, error) {
			assert.Equal(t, "C123", channelID)
			assert.True(t, oldest.Equal(testNow.AddDate(0, 0, -1)))
			return []slackhistory.Message{
				{Timestamp: testNow.Add(-time.Hour), Author: "Alice", Text: "deploy went fine"},
			}, nil
		},
	}
	client := &mockAnalysis{
		analyzeFunc: func(instruction, transcript string) (string, error) {
			assert.Equal(t, "Summarize", instruction)
			assert.Contains(t, transcript, "Alice: deploy went fine")
			return "All good.", nil
		},
	}

	var out bytes.Buffer
	err := newTestService(source, client).Run(context.Background(), Request{
		Channel: "general",
		Since:   "1 day ago",
		Prompt:  "Summarize",
	}, &out)
	require.NoError(t, err)
	assert.Equal(t, "All good.\n", out.String())
	assert.Equal(t, 1, client.calls)
}

func TestRun_NoMessagesSkipsAnalysis(t *testing.T) {
	source := &mockSource{
		resolveFunc: func(nameOrID string) (string, error) { return "C123", nil },
		usersFunc:   func() slackhistory.UserDirectory { return nil },
		historyFunc: func(string, time.Time, slackhistory.UserDirectory) ([]slackhistory.Message, error) {
			return nil, nil
		},
	}
	client := &mockAnalysis{}

	var out bytes.Buffer
	err := newTestService(source, client).Run(context.Background(), Request{
		Channel: "general",
		Since:   "1 day ago",
		Prompt:  "Summarize",
	}, &out)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No messages found")
	assert.Equal(t, 0, client.calls)
}

func TestRun_InvalidSinceFailsBeforeAnyCall(t *testing.T) {
	source := &mockSource{}
	client := &mockAnalysis{}

	err := newTestService(source, client).Run(context.Background(), Request{
		Channel: "general",
		Since:   "yesterday-ish",
		Prompt:  "Summarize",
	}, io.Discard)
	assert.ErrorIs(t, err, timeparse.ErrInvalidTimeExpr)
	assert.Equal(t, 0, source.resolveCalls)
	assert.Equal(t, 0, client.calls)
}

func TestRun_FetchErrorAbortsBeforeAnalysis(t *testing.T) {
	source := &mockSource{
		resolveFunc: func(nameOrID string) (string, error) { return "C123", nil },
		usersFunc:   func() slackhistory.UserDirectory { return nil },
		historyFunc: func(string, time.Time, slackhistory.UserDirectory) ([]slackhistory.Message, error) {
			return nil, slackhistory.ErrHistoryFetch
		},
	}
	client := &mockAnalysis{}

	err := newTestService(source, client).Run(context.Background(), Request{
		Channel: "general",
		Since:   "1 day ago",
		Prompt:  "Summarize",
	}, io.Discard)
	assert.ErrorIs(t, err, slackhistory.ErrHistoryFetch)
	assert.Equal(t, 0, client.calls)
}

func TestRun_ResolveErrorAborts(t *testing.T) {
	source := &mockSource{
		resolveFunc: func(nameOrID string) (string, error) {
			return "", slackhistory.ErrChannelNotFound
		},
	}
	client := &mockAnalysis{}

	err := newTestService(source, client).Run(context.Background(), Request{
		Channel: "missing",
		Since:   "1 day ago",
		Prompt:  "Summarize",
	}, io.Discard)
	assert.ErrorIs(t, err, slackhistory.ErrChannelNotFound)
	assert.Equal(t, 0, source.historyCalls)
	assert.Equal(t, 0, client.calls)
}

func TestRun_AnalysisErrorPropagates(t *testing.T) {
	analysisErr := errors.New("service unavailable")
	source := &mockSource{
		resolveFunc: func(nameOrID string) (string, error) { return "C123", nil },
		usersFunc:   func() slackhistory.UserDirectory { return nil },
		historyFunc: func(string, time.Time, slackhistory.UserDirectory) ([]slackhistory.Message, error) {
			return []slackhistory.Message{{Timestamp: testNow, Author: "Alice", Text: "hi"}}, nil
		},
	}
	client := &mockAnalysis{
		analyzeFunc: func(string, string) (string, error) {
			return "", analysisErr
		},
	}

	var out bytes.Buffer
	err := newTestService(source, client).Run(context.Background(), Request{
		Channel: "general",
		Since:   "1 day ago",
		Prompt:  "Summarize",
	}, &out)
	assert.ErrorIs(t, err, analysisErr)
	assert.Empty(t, out.String())
}

type mockSource struct {
	resolveFunc func(nameOrID string) (string, error)
	usersFunc   func() slackhistory.UserDirectory
	historyFunc func(channelID string, oldest time.Time, users slackhistory.UserDirectory) ([]slackhistory.Message, error)

	resolveCalls int
	historyCalls int
}

func (m *mockSource) ResolveChannel(ctx context.Context, nameOrID string) (string, error) {
	m.resolveCalls++
	if m.resolveFunc != nil {
		return m.resolveFunc(nameOrID)
	}
	return "", errors.New("not implemented")
}

func (m *mockSource) BuildUserDirectory(ctx context.Context) slackhistory.UserDirectory {
	if m.usersFunc != nil {
		return m.usersFunc()
	}
	return nil
}

func (m *mockSource) FetchHistory(ctx context.Context, channelID string, oldest time.Time, users slackhistory.UserDirectory) ([]slackhistory.Message, error) {
	m.historyCalls++
	if m.historyFunc != nil {
		return m.historyFunc(channelID, oldest, users)
	}
	return nil, errors.New("not implemented")
}

type mockAnalysis struct {
	analyzeFunc func(instruction, transcript string) (string, error)
	calls       int
}

func (m *mockAnalysis) Analyze(ctx context.Context, instruction, transcript string) (string, error) {
	m.calls++
	if m.analyzeFunc != nil {
		return m.analyzeFunc(instruction, transcript)
	}
	return "", errors.New("not implemented")
}
