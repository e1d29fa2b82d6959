// Package notify defines the best-effort notification side channel.
package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/project"
)

// Notifier dispatches a message about a recorded event to the project's
// configured destination. Implementations are best-effort; callers isolate
// failures from the response path.
type Notifier interface {
	Notify(ctx context.Context, dest project.Notification, evt event.AccessEvent) error
}

// BuildMessage formats the MarkdownV2 notification text for one event.
// Field values are wrapped in code spans with the span-special characters
// escaped.
func BuildMessage(evt event.AccessEvent) string {
	at := time.UnixMilli(evt.RequestedAt).UTC().Format("2006-01-02 15:04:05")
	lines := []string{
		"ID: `" + escapeCode(evt.ID) + "`",
		"URL: `" + escapeCode(evt.Referer) + "`",
		"IP: `" + escapeCode(evt.IP) + "`",
		"UserAgent: `" + escapeCode(evt.UserAgent) + "`",
		"Country: `" + escapeCode(evt.Country) + "`",
		"Region: `" + escapeCode(evt.Region) + "`",
		fmt.Sprintf("Time: `%s`", at),
	}
	return strings.Join(lines, "\n")
}

// escapeCode escapes the characters MarkdownV2 treats specially inside a
// code span.
func escapeCode(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "`", "\\`")
}
