// Package slackhistory retrieves channel history from the Slack Web API:
// channel resolution, the workspace user directory, and paginated message
// history including thread replies.
package slackhistory

import (
	"context"
	"fmt"
	"log"
	"os"
	"regexp"
	"sort"
	"time"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// SlackAPI is the subset of the Slack Web API used by the Fetcher.
type SlackAPI interface {
	GetConversationsContext(ctx context.Context, params *slack.GetConversationsParameters) ([]slack.Channel, string, error)
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
	GetConversationHistoryContext(ctx context.Context, params *slack.GetConversationHistoryParameters) (*slack.GetConversationHistoryResponse, error)
	GetConversationRepliesContext(ctx context.Context, params *slack.GetConversationRepliesParameters) ([]slack.Message, bool, string, error)
}

// channelIDPattern matches native Slack channel IDs (C..., G..., D...).
var channelIDPattern = regexp.MustCompile(`^[CDG][A-Z0-9]{7,}$`)

// Fetcher retrieves Slack channel history. All requests are issued
// sequentially; a client-side limiter paces them. Failed requests are not
// retried.
type Fetcher struct {
	client   SlackAPI
	limiter  *rate.Limiter
	pageSize int
	logger   *log.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithRateLimiter overrides the default request pacing.
func WithRateLimiter(l *rate.Limiter) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = l
	}
}

// WithPageSize overrides the history page size.
func WithPageSize(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.pageSize = n
		}
	}
}

// WithLogger overrides the default logger.
func WithLogger(l *log.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher constructs a Fetcher with sensible defaults.
func NewFetcher(client SlackAPI, opts ...FetcherOption) *Fetcher {
	fetcher := &Fetcher{
		client:   client,
		limiter:  rate.NewLimiter(rate.Every(time.Second), 3),
		pageSize: 200,
		logger:   log.New(os.Stderr, "slack-fetcher ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// ResolveChannel turns a channel name into a channel ID. Input that already
// has the native ID shape is returned unchanged without a network call. A
// leading '#' is stripped before matching against the full channel listing.
func (f *Fetcher) ResolveChannel(ctx context.Context, nameOrID string) (string, error) {
	if channelIDPattern.MatchString(nameOrID) {
		return nameOrID, nil
	}

	name := nameOrID
	if len(name) > 0 && name[0] == '#' {
		name = name[1:]
	}

	var cursor string
	for {
		params := &slack.GetConversationsParameters{
			Cursor:          cursor,
			ExcludeArchived: true,
			Limit:           f.pageSize,
			Types:           []string{"public_channel", "private_channel"},
		}
		if err := f.waitRate(ctx); err != nil {
			return "", fmt.Errorf("%w: %w", ErrChannelResolution, err)
		}
		channels, nextCursor, err := f.client.GetConversationsContext(ctx, params)
		if err != nil {
			return "", fmt.Errorf("%w: list conversations: %w", ErrChannelResolution, err)
		}
		for _, ch := range channels {
			if ch.Name == name || ch.NameNormalized == name {
				return ch.ID, nil
			}
		}
		if nextCursor == "" {
			break
		}
		cursor = nextCursor
	}

	return "", fmt.Errorf("%w: %q", ErrChannelNotFound, nameOrID)
}

// BuildUserDirectory lists all workspace members and maps their IDs to
// display names. A transport failure is non-fatal: it is logged and the
// partial (possibly empty) directory is returned so the pipeline can keep
// going with raw user IDs.
func (f *Fetcher) BuildUserDirectory(ctx context.Context) UserDirectory {
	directory := make(UserDirectory)

	if err := f.waitRate(ctx); err != nil {
		f.logger.Printf("warning: user listing aborted: %v", err)
		return directory
	}
	users, err := f.client.GetUsersContext(ctx)
	if err != nil {
		f.logger.Printf("warning: could not list users, falling back to raw IDs: %v", err)
		return directory
	}

	for _, user := range users {
		directory[user.ID] = selectDisplayName(user)
	}
	return directory
}

// FetchHistory retrieves all channel messages at or after oldest, following
// the continuation cursor until the backend reports no more pages, and
// fetches the replies of every thread root. The result is sorted ascending
// by timestamp regardless of the order pages arrive in.
func (f *Fetcher) FetchHistory(ctx context.Context, channelID string, oldest time.Time, users UserDirectory) ([]Message, error) {
	var (
		messages []Message
		cursor   string
		pages    int
	)

	for {
		params := &slack.GetConversationHistoryParameters{
			ChannelID: channelID,
			Cursor:    cursor,
			Limit:     f.pageSize,
			Oldest:    toSlackTimestamp(oldest),
			Inclusive: true,
		}
		if err := f.waitRate(ctx); err != nil {
			return nil, fmt.Errorf("%w: channel=%s: %w", ErrHistoryFetch, channelID, err)
		}
		resp, err := f.client.GetConversationHistoryContext(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%w: channel=%s: %w", ErrHistoryFetch, channelID, err)
		}
		pages++

		for _, msg := range resp.Messages {
			if !includeMessage(msg) {
				continue
			}
			messages = append(messages, f.buildMessage(ctx, channelID, msg, users))
		}

		if !resp.HasMore || resp.ResponseMetaData.NextCursor == "" {
			break
		}
		cursor = resp.ResponseMetaData.NextCursor
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})

	f.logger.Printf("fetched %d messages from %s in %d pages", len(messages), channelID, pages)
	return messages, nil
}

func (f *Fetcher) buildMessage(ctx context.Context, channelID string, msg slack.Message, users UserDirectory) Message {
	message := Message{
		Timestamp: parseSlackTimestamp(msg.Timestamp),
		Author:    users.DisplayName(msg.User),
		Text:      msg.Text,
		Subtype:   msg.SubType,
	}

	// Only thread roots carry replies; replies themselves point at the root
	// timestamp, so this also prevents fetching the same thread once per reply.
	if msg.ThreadTimestamp != "" && msg.ThreadTimestamp == msg.Timestamp {
		message.Replies = f.fetchReplies(ctx, channelID, msg, users)
	}
	return message
}

// fetchReplies loads the replies of a single thread. A transport error here
// is non-fatal: the thread is logged and treated as having no replies.
func (f *Fetcher) fetchReplies(ctx context.Context, channelID string, parent slack.Message, users UserDirectory) []Reply {
	params := &slack.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: parent.ThreadTimestamp,
	}
	if err := f.waitRate(ctx); err != nil {
		f.logger.Printf("warning: skipping thread %s: %v", parent.ThreadTimestamp, err)
		return nil
	}
	replies, _, _, err := f.client.GetConversationRepliesContext(ctx, params)
	if err != nil {
		f.logger.Printf("warning: could not fetch thread %s replies: %v", parent.ThreadTimestamp, err)
		return nil
	}

	result := make([]Reply, 0, len(replies))
	for _, msg := range replies {
		// The root message is echoed back as the first entry; skip it.
		if msg.Timestamp == parent.Timestamp {
			continue
		}
		result = append(result, Reply{
			Timestamp: parseSlackTimestamp(msg.Timestamp),
			Author:    users.DisplayName(msg.User),
			Text:      msg.Text,
			Subtype:   msg.SubType,
		})
	}
	return result
}

func (f *Fetcher) waitRate(ctx context.Context) error {
	if f.limiter == nil {
		return nil
	}
	return f.limiter.Wait(ctx)
}

// includeMessage drops channel lifecycle noise (joins, topic changes) while
// keeping regular messages and file shares.
func includeMessage(msg slack.Message) bool {
	return msg.SubType == "" || msg.SubType == slack.MsgSubTypeFileShare
}

// selectDisplayName picks the first available of real name, handle, and
// profile display name.
func selectDisplayName(u slack.User) string {
	if u.RealName != "" {
		return u.RealName
	}
	if u.Name != "" {
		return u.Name
	}
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	return UnknownUser
}
