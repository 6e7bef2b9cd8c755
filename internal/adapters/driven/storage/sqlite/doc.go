// Package sqlite stores build artifacts and resolver cache records in a
// single SQLite database.
//
// It uses modernc.org/sqlite, a pure Go driver, so the binary builds
// without CGO. Every stored file is one row of the blobs table keyed by its
// slash-separated path; directories are implicit path prefixes, which makes
// Mirror and Remove single statements.
//
// # Schema
//
// The schema is managed through numbered migrations embedded from the
// migrations/ directory and tracked in schema_migrations.
//
// # Thread Safety
//
// The database runs in WAL mode with a busy timeout, so concurrent resolver
// goroutines may write through one Storage.
package sqlite
