// ABOUTME: Slack implementation of the Sink interface via chat.postMessage.
// ABOUTME: Applies a token-bucket rate limit matching Slack's posting tier.

package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/slack-go/slack"
	"golang.org/x/time/rate"
)

// slackAPI is the slice of the Slack client the sink uses, extracted
// for testability.
type slackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackSink posts notifications to Slack channels with a bearer bot
// token. A shared limiter throttles posts across all channels; Slack's
// chat.postMessage tier allows roughly one message per second.
type SlackSink struct {
	api     slackAPI
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewSlackSink creates a sink for the given bot token.
func NewSlackSink(botToken string, logger *slog.Logger) *SlackSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlackSink{
		api:     slack.New(botToken),
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
		logger:  logger.With("component", "notify"),
	}
}

// Post delivers one message. It blocks on the rate limiter first, then
// makes a single chat.postMessage call.
func (s *SlackSink) Post(ctx context.Context, msg Message) error {
	if msg.Channel == "" {
		return fmt.Errorf("posting message: empty channel")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for post slot: %w", err)
	}

	text := msg.Text
	if msg.MentionUser != "" {
		text = fmt.Sprintf("<@%s> %s", msg.MentionUser, msg.Text)
	}

	opts := []slack.MsgOption{
		slack.MsgOptionText(text, false),
	}
	if msg.ThreadTS != "" {
		opts = append(opts, slack.MsgOptionTS(msg.ThreadTS))
	}

	_, ts, err := s.api.PostMessageContext(ctx, msg.Channel, opts...)
	if err != nil {
		return fmt.Errorf("posting to channel %s: %w", msg.Channel, err)
	}

	s.logger.Debug("posted notification", "channel", msg.Channel, "ts", ts)
	return nil
}
