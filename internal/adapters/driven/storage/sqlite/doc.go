// Package sqlite persists scheduler state and push run history in SQLite.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The legacy order databases are never written to; this
// database only records what the bridge itself did.
//
// # Schema
//
// The schema is managed through versioned migrations in the migrations/
// directory. Each migration is a pair of .up.sql and .down.sql files and
// applied versions are tracked in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.infoflex-bridge/data/history.db
package sqlite
