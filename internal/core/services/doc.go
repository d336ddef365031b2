// Package services implements the driving port interfaces.
// Services contain the ledger rules (state machine, idempotent creation,
// write-once completion, enrichment gating) and orchestrate calls to
// driven ports (stores).
//
// Services never lock in process. Every guarantee that must hold across
// concurrent workers is delegated to an atomic store operation.
package services
