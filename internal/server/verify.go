// ABOUTME: Slack signing-secret verification for the events endpoint.
// ABOUTME: Wraps the slack-go SecretsVerifier into the server's VerifyFunc shape.

package server

import (
	"fmt"
	"net/http"

	"github.com/slack-go/slack"
)

// SlackVerifier returns a VerifyFunc that checks Slack's request
// signature headers against the signing secret. Returns nil when the
// secret is empty, which disables verification.
func SlackVerifier(signingSecret string) VerifyFunc {
	if signingSecret == "" {
		return nil
	}

	return func(header http.Header, body []byte) error {
		verifier, err := slack.NewSecretsVerifier(header, signingSecret)
		if err != nil {
			return fmt.Errorf("initializing verifier: %w", err)
		}
		if _, err := verifier.Write(body); err != nil {
			return fmt.Errorf("hashing body: %w", err)
		}
		if err := verifier.Ensure(); err != nil {
			return fmt.Errorf("checking signature: %w", err)
		}
		return nil
	}
}
