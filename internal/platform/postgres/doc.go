// Package postgres provides the SQL implementations of the store.UserStore
// and store.TaskStore interfaces. Queries target PostgreSQL; a Dialect lets
// the same stores run on SQLite (see internal/platform/sqlite).
package postgres
