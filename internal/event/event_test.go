// ABOUTME: Tests for Slack event envelope parsing and mention stripping.
// ABOUTME: Covers event_callback, url_verification, and malformed payloads.

package event

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnvelope_EventCallback(t *testing.T) {
	body := []byte(`{
		"type": "event_callback",
		"event_id": "Ev12345",
		"event": {
			"type": "app_mention",
			"text": "<@U999BOT> what is the deploy status?",
			"user": "U123",
			"channel": "C456",
			"ts": "1700000000.000100"
		}
	}`)

	env, err := ParseEnvelope(body)
	require.NoError(t, err)

	assert.Equal(t, TypeEventCallback, env.Type)
	assert.Equal(t, "Ev12345", env.EventID)
	assert.Equal(t, "Ev12345", env.Event.ID, "inner event should carry the envelope's event_id")
	assert.Equal(t, "U123", env.Event.User)
	assert.Equal(t, "C456", env.Event.Channel)
	assert.Equal(t, "1700000000.000100", env.Event.ThreadTS)
}

func TestParseEnvelope_URLVerification(t *testing.T) {
	body := []byte(`{"type": "url_verification", "challenge": "abc123"}`)

	env, err := ParseEnvelope(body)
	require.NoError(t, err)

	assert.Equal(t, TypeURLVerification, env.Type)
	assert.Equal(t, "abc123", env.Challenge)
}

func TestParseEnvelope_MissingEventID(t *testing.T) {
	body := []byte(`{"type": "event_callback", "event": {"text": "hi"}}`)

	_, err := ParseEnvelope(body)
	assert.ErrorIs(t, err, ErrMissingEventID)
}

func TestParseEnvelope_InvalidJSON(t *testing.T) {
	_, err := ParseEnvelope([]byte(`{not json`))
	assert.Error(t, err)
}

func TestStripMention(t *testing.T) {
	tests := []struct {
		name      string
		text      string
		botUserID string
		want      string
	}{
		{"leading mention", "<@U999BOT> deploy status?", "U999BOT", "deploy status?"},
		{"embedded mention", "hey <@U999BOT> ping", "U999BOT", "hey  ping"},
		{"no mention", "plain question", "U999BOT", "plain question"},
		{"empty bot id", "  padded  ", "", "padded"},
		{"mention only", "<@U999BOT>", "U999BOT", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMention(tt.text, tt.botUserID))
		})
	}
}
