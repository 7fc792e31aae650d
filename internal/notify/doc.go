// Package notify delivers formatted notifications to the messaging
// sink (Slack). Delivery is best-effort: one post per invocation, no
// retries.
package notify
