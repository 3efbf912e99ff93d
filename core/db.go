package core

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor runs statements either directly on the pool or inside a transaction.
	// Repositories take a trailing optional DBExecutor so services can hand them
	// the transaction they opened.
	DBExecutor interface {
		ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
		GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
		QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error)
		QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	}

	// DB is the injected handle services hold; it demarcates transactional units.
	DB interface {
		DBExecutor

		BeginTxx(ctx context.Context, opts *sql.TxOptions) (DBTransactor, error)
	}

	// DBTransactor is a transaction-scoped session; once open it runs to
	// Commit or Rollback before control returns to the caller.
	DBTransactor interface {
		DBExecutor

		Commit() error
		Rollback() error
	}
)

var _ DBTransactor = (*sqlx.Tx)(nil) // interface compliance check

type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
