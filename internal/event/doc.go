// Package event models the inbound trigger payload: the Slack Events
// API envelope and the inner message event the relay consumes.
package event
