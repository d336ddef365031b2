// Package sqlite provides a unified SQLite-based implementation of the ledger's
// driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements every ledger store
// through a single database:
//
//   - DocumentStore: documents, file variants and links
//   - ArtifactStore: extractions, chunks and provenance per pipeline version
//   - RunStore and ErrorStore: processing runs and their error ledger
//   - OcrStore: OCR runs and page consensus results
//   - EnrichmentStore: chunk enrichment proposals and their gate
//   - ReviewStore: the human review queue
//   - ProjectionStore: the derived search projection
//
// Dynamic queries are built with github.com/Masterminds/squirrel. Writes that
// must be atomic are single conditional statements (INSERT ... SELECT ... WHERE
// EXISTS, UPDATE ... WHERE status IN) whose affected row count decides the
// outcome; multi-statement writes run in one transaction that begins with a write.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files,
// and every applied version is recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.ragledger/data/ledger.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Foreign keys, WAL mode and a busy
// timeout are set on every pooled connection through the DSN.
package sqlite
