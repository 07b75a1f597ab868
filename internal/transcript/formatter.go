// Package transcript renders fetched messages into the flat text form that
// is handed to the LLM.
package transcript

import (
	"fmt"
	"strings"

	"github.com/jimmyjacobson/Slack-Channel-Analyzer/internal/slackhistory"
)

// TimeLayout is the timestamp format used for every transcript line.
const TimeLayout = "2006-01-02 15:04:05"

// Format renders the ordered message list into a single text block:
// a header naming the channel, then one line per message, one indented
// line per thread reply and a blank separator line. Pure function;
// identical input produces byte-identical output.
func Format(channel string, messages []slackhistory.Message) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "=== Messages from %s ===\n\n", channel)
	for _, msg := range messages {
		fmt.Fprintf(&sb, "[%s] %s: %s\n", msg.Timestamp.Format(TimeLayout), msg.Author, msg.Text)
		for _, reply := range msg.Replies {
			fmt.Fprintf(&sb, "    └─ [%s] %s: %s\n", reply.Timestamp.Format(TimeLayout), reply.Author, reply.Text)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}
