// ABOUTME: Slack Events API callback envelope parsing for the trigger boundary.
// ABOUTME: Extracts the event identifier and inner message fields the relay needs.

package event

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Envelope types delivered by the Slack Events API.
const (
	TypeURLVerification = "url_verification"
	TypeEventCallback   = "event_callback"
)

// ErrMissingEventID is returned when an event_callback envelope carries
// no event identifier. The identifier is the dedup key; without it the
// event cannot be processed safely.
var ErrMissingEventID = errors.New("event callback missing event_id")

// Envelope is the outer Slack Events API payload.
type Envelope struct {
	Type      string `json:"type"`
	Token     string `json:"token,omitempty"`
	Challenge string `json:"challenge,omitempty"`
	EventID   string `json:"event_id,omitempty"`
	Event     Event  `json:"event"`
}

// Event is the inner message event: who said what, where. ThreadTS is
// the timestamp the response should thread under.
type Event struct {
	ID       string `json:"-"` // copied from the envelope's event_id
	Type     string `json:"type"`
	Text     string `json:"text"`
	User     string `json:"user"`
	Channel  string `json:"channel"`
	ThreadTS string `json:"ts"`
}

// ParseEnvelope decodes a raw Events API request body. For
// event_callback envelopes the inner event is stamped with the
// envelope's event_id so downstream code only handles Event values.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("parsing event envelope: %w", err)
	}

	if env.Type == TypeEventCallback {
		if env.EventID == "" {
			return nil, ErrMissingEventID
		}
		env.Event.ID = env.EventID
	}

	return &env, nil
}

// StripMention removes a leading or embedded <@botUserID> mention from
// the message text, leaving the question addressed to the bot.
func StripMention(text, botUserID string) string {
	if botUserID == "" {
		return strings.TrimSpace(text)
	}
	cleaned := strings.ReplaceAll(text, fmt.Sprintf("<@%s>", botUserID), "")
	return strings.TrimSpace(cleaned)
}
