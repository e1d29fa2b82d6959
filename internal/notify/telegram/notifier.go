// Package telegram implements the notification side channel on the
// Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/cdoyle/beacon/internal/event"
	"github.com/cdoyle/beacon/internal/notify"
	"github.com/cdoyle/beacon/internal/project"
)

const defaultTimeout = 10 * time.Second

// Notifier sends MarkdownV2 messages through per-project bot tokens.
type Notifier struct {
	client   *http.Client
	endpoint string
}

// Option customizes a Notifier.
type Option func(*Notifier)

// WithEndpoint overrides the Bot API endpoint template (used by tests).
func WithEndpoint(endpoint string) Option {
	return func(n *Notifier) {
		n.endpoint = endpoint
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(n *Notifier) {
		n.client = client
	}
}

// New constructs a Notifier.
func New(opts ...Option) *Notifier {
	n := &Notifier{
		client:   &http.Client{Timeout: defaultTimeout},
		endpoint: tgbotapi.APIEndpoint,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Notify formats and sends the event message to the destination chat. The
// bot client is built per call because tokens are per-project; the getMe
// handshake is skipped to keep the send a single round-trip.
func (n *Notifier) Notify(_ context.Context, dest project.Notification, evt event.AccessEvent) error {
	if dest.Token == "" {
		return fmt.Errorf("notification token is empty")
	}
	chatID, err := strconv.ParseInt(dest.ChatID, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id %q: %w", dest.ChatID, err)
	}

	bot := &tgbotapi.BotAPI{Token: dest.Token, Client: n.client, Buffer: 100}
	bot.SetAPIEndpoint(n.endpoint)

	msg := tgbotapi.NewMessage(chatID, notify.BuildMessage(evt))
	msg.ParseMode = tgbotapi.ModeMarkdownV2
	if _, err := bot.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}
