package slackhistory

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// UnknownUser is the display name used when no better name is available.
const UnknownUser = "Unknown User"

// Message is a channel message together with the replies of the thread it
// roots, ordered as returned by the API. Immutable once constructed.
type Message struct {
	Timestamp time.Time
	Author    string
	Text      string
	Subtype   string
	Replies   []Reply
}

// Reply is a threaded reply to a Message. Threads are only one level deep,
// so a reply carries no reply list of its own.
type Reply struct {
	Timestamp time.Time
	Author    string
	Text      string
	Subtype   string
}

// UserDirectory maps Slack user IDs to display names. It is built once per
// run and read-only afterward.
type UserDirectory map[string]string

// DisplayName resolves a user ID to a display name. A lookup miss falls back
// to the raw ID; an empty ID yields UnknownUser. Never fails, even on a nil
// directory.
func (d UserDirectory) DisplayName(userID string) string {
	if userID == "" {
		return UnknownUser
	}
	if name, ok := d[userID]; ok && name != "" {
		return name
	}
	return userID
}

// parseSlackTimestamp converts a Slack "seconds.microseconds" timestamp into
// time.Time. Invalid timestamps return the zero time.
func parseSlackTimestamp(ts string) time.Time {
	parts := strings.Split(ts, ".")
	seconds, err := strconv.ParseInt(strings.TrimSpace(parts[0]), 10, 64)
	if err != nil {
		return time.Time{}
	}
	var nanos int64
	if len(parts) > 1 {
		frac := parts[1]
		if len(frac) > 9 {
			frac = frac[:9]
		}
		for len(frac) < 9 {
			frac += "0"
		}
		nanos, err = strconv.ParseInt(frac, 10, 64)
		if err != nil {
			nanos = 0
		}
	}
	return time.Unix(seconds, nanos).UTC()
}

// toSlackTimestamp formats a time for use as the Oldest history bound.
func toSlackTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fmt.Sprintf("%d.%06d", t.Unix(), t.Nanosecond()/1000)
}
