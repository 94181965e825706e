// Package sqlite runs the SQL stores on an embedded SQLite database via the
// pure-Go modernc.org/sqlite driver. It is used for local development,
// single-node deployments and the store test suites.
package sqlite
