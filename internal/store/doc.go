// Package store persists an audit ledger of relay decisions in SQLite.
// The ledger is observational: the relay writes to it best-effort and
// never lets a ledger failure affect event processing.
package store
