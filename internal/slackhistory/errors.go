package slackhistory

import "errors"

var (
	// ErrChannelNotFound indicates no channel with the given name exists.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrChannelResolution wraps a transport error during channel lookup.
	ErrChannelResolution = errors.New("channel resolution failed")

	// ErrHistoryFetch wraps a transport error during history paging. It is
	// fatal: the run aborts rather than returning a partial message list.
	ErrHistoryFetch = errors.New("history fetch failed")
)
