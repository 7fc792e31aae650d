// Package relay sequences one event through the idempotency gate, the
// generative backend, and the messaging sink.
//
// # Control Flow
//
// Event arrives -> gate claim -> [duplicate: stop] or
// [first seen: generate content -> deliver -> done].
//
// The claim happens before any side effect, which makes processing
// at-most-once per TTL window: a failure after the claim (generation or
// delivery) leaves the ID claimed and the notification permanently
// skipped until the TTL releases it. That tradeoff is deliberate and
// preferred over duplicate delivery.
//
// # Collaborators
//
// All clients (gate store, Bedrock, Slack, audit ledger) are built once
// at startup and injected; the relay holds no other state, so
// invocations may run concurrently. Correctness under concurrency rests
// on the gate store's atomic conditional set.
package relay
