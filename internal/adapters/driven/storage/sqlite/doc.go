// Package sqlite provides a SQLite-backed implementation of the chunk store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Chunk records and whole-file summary
// records are stored in separate tables: chunks are keyed by chunk id, summaries
// by source file path, matching the dual-index retrieval model.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Embedding vectors are stored as little-endian float32 blobs; flags and control
// hints as JSON text columns.
//
// # Data Location
//
// By default, the database is stored at ~/.oscalgen/data/index.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
