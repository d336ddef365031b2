// Package driving defines interfaces that external actors (CLI, MCP agents,
// TUI) use to interact with the ledger. These are the "driving" ports in
// hexagonal architecture terminology - they drive the application.
//
// Request types carry `validate` tags checked by the services before any
// store is touched.
//
// Implementations of these interfaces live in internal/core/services.
package driving
