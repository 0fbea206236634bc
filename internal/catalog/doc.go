// Package catalog persists poem fragments, their lines, narration tracks, and
// per-line timing annotations in SQLite.
//
// The Store owns the database connection, schema initialization, busy-retry
// handling, and health diagnostics. Every read and write is defined on Repo so
// the same queries run against the connection pool or inside a transaction:
// WithinTx hands a transaction-bound Repo to the caller and commits only when
// the callback returns nil.
//
// Timings are stored for every line except a fragment's last one; deleting or
// replacing a track's audio removes its timings. Schema changes bump the
// version in schema.go; users recreate the database to adopt the new schema.
package catalog
