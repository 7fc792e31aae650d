// Package gate implements the idempotency gate: an atomic first-seen vs.
// duplicate decision for event identifiers, backed by a shared TTL store.
package gate
