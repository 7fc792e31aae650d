// ABOUTME: Generator interface and request type for the generative backend.
// ABOUTME: The relay depends on this interface, not on the Bedrock client.

package generate

import (
	"context"
	"errors"
)

// ErrNoContent is returned when the backend completes without producing
// any usable text. Nothing is posted downstream in that case.
var ErrNoContent = errors.New("backend returned no content")

// Request carries what the backend needs to produce a response.
// SessionID groups follow-up questions into one backend conversation;
// the relay uses the per-invocation request ID.
type Request struct {
	Input     string
	SessionID string
}

// Generator produces notification content from event input.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
