// Package sqlite provides the SQLite-backed state stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several store interfaces
// through a single database connection:
//
//   - SchedulerStore: scheduled task state and execution history
//   - PassStore: reconciliation pass summaries
//   - AlertLog: alerts raised by passes
//
// The product ledger itself is not stored here; it lives in its JSON file.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.stockwatch/data/state.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
