// Package timeparse resolves user-supplied start-time expressions, either
// relative ("2 days ago") or absolute ("2024-01-15 09:00:00"), into a point
// in time usable as a history lower bound.
package timeparse

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidTimeExpr indicates the expression matched neither the relative
// nor any supported absolute form.
var ErrInvalidTimeExpr = errors.New("invalid time expression")

// Absolute layouts tried in order. Timezone-less layouts are parsed in the
// local zone; ambiguous input is a documented limitation.
var absoluteLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

// Resolve turns expr into a point in time relative to now.
func Resolve(expr string, now time.Time) (time.Time, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty expression", ErrInvalidTimeExpr)
	}

	if t, ok := resolveRelative(trimmed, now); ok {
		return t, nil
	}

	for _, layout := range absoluteLayouts {
		if t, err := time.ParseInLocation(layout, trimmed, time.Local); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimeExpr, expr)
}

func resolveRelative(expr string, now time.Time) (time.Time, bool) {
	fields := strings.Fields(strings.ToLower(expr))
	if len(fields) != 3 || fields[2] != "ago" {
		return time.Time{}, false
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return time.Time{}, false
	}

	switch strings.TrimSuffix(fields[1], "s") {
	case "minute":
		return now.Add(-time.Duration(n) * time.Minute), true
	case "hour":
		return now.Add(-time.Duration(n) * time.Hour), true
	case "day":
		return now.AddDate(0, 0, -n), true
	case "week":
		return now.AddDate(0, 0, -7*n), true
	}
	return time.Time{}, false
}
