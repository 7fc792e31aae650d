// ABOUTME: Sink interface and message type for the messaging boundary.
// ABOUTME: One Post call per notification; no retry loop, no queueing.

package notify

import "context"

// Message is one notification to deliver. MentionUser, when set, is
// prefixed to the text as a <@user> tag; ThreadTS threads the reply
// under the originating message.
type Message struct {
	Channel     string
	Text        string
	ThreadTS    string
	MentionUser string
}

// Sink delivers a notification to its destination channel. Delivery is
// a single attempt; failures surface to the caller and are not retried.
type Sink interface {
	Post(ctx context.Context, msg Message) error
}
