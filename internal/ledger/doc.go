// Package ledger persists the history of dataset preparation runs in SQLite.
//
// Each run is recorded when it starts and updated when it completes or
// fails, capturing the input checksum, column names, split parameters, and
// the row counts of every split. The store uses WAL mode and retries on
// SQLITE_BUSY so concurrent CLI invocations can share one database.
//
// The schema is versioned. A database created by a different version is
// rejected with ErrSchemaMismatch rather than migrated.
package ledger
