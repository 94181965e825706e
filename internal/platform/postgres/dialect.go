package postgres

import "github.com/phrazzld/tasks-api/internal/store"

// Dialect adapts the stores in this package to a database other than
// PostgreSQL. Queries are written with $N placeholders; each placeholder is
// used once and in ascending order so that a dialect can rewrite them
// positionally.
type Dialect interface {
	// Name is the migrations dialect name.
	Name() string
	// Conn wraps a connection or transaction before a store uses it.
	Conn(db store.DBTX) store.DBTX
	// MapError translates a driver error into store sentinels.
	MapError(err error) error
}

// PostgresDialect is the default Dialect.
type PostgresDialect struct{}

// Name implements Dialect.
func (PostgresDialect) Name() string { return "postgres" }

// Conn implements Dialect.
func (PostgresDialect) Conn(db store.DBTX) store.DBTX { return db }

// MapError implements Dialect.
func (PostgresDialect) MapError(err error) error { return MapError(err) }

// Option configures a store.
type Option func(*storeOptions)

type storeOptions struct {
	dialect Dialect
}

// WithDialect runs the store's SQL through d.
func WithDialect(d Dialect) Option {
	return func(o *storeOptions) {
		if d != nil {
			o.dialect = d
		}
	}
}

func applyOptions(opts []Option) storeOptions {
	o := storeOptions{dialect: PostgresDialect{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
