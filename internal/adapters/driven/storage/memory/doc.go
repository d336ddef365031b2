// Package memory provides in-memory implementations of the driven ports.
//
// Store keeps every ledger table behind a single mutex, so each operation
// is atomic exactly like its SQLite counterpart: conditional inserts,
// write-once updates and whole-set chunk replacement. Deleting a document
// cascades to everything it owns. It is used by service tests and for
// ephemeral ledgers.
package memory
