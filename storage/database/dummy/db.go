// Package dummydb is an in-memory database for DEV/TEST runs. It implements
// the domain repositories and core.DB; transactions snapshot every table on
// begin and restore the snapshot on rollback.
package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/kazi/core"
	"github.com/trezcool/kazi/core/assignment"
	"github.com/trezcool/kazi/core/submission"
	"github.com/trezcool/kazi/core/user"
)

var errNoSQL = errors.New("dummydb: raw SQL is not supported")

type (
	DB struct {
		mu sync.RWMutex

		users              map[string]user.User
		assignments        map[string]assignment.Assignment
		studentAssignments map[string]assignment.StudentAssignment
		submissions        map[string]submission.Submission
	}

	tables struct {
		users              map[string]user.User
		assignments        map[string]assignment.Assignment
		studentAssignments map[string]assignment.StudentAssignment
		submissions        map[string]submission.Submission
	}

	// Tx implements core.DBTransactor; Rollback restores the tables as they
	// were on begin.
	Tx struct {
		db   *DB
		snap tables
		done bool
	}
)

var (
	_ core.DB           = (*DB)(nil) // interface compliance checks
	_ core.DBTransactor = (*Tx)(nil)
)

func Open() (*DB, error) {
	return &DB{
		users:              make(map[string]user.User),
		assignments:        make(map[string]assignment.Assignment),
		studentAssignments: make(map[string]assignment.StudentAssignment),
		submissions:        make(map[string]submission.Submission),
	}, nil
}

func (db *DB) BeginTxx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	db.mu.Lock()
	defer db.mu.Unlock()
	return &Tx{db: db, snap: db.snapshot()}, nil
}

func (db *DB) snapshot() tables {
	snap := tables{
		users:              make(map[string]user.User, len(db.users)),
		assignments:        make(map[string]assignment.Assignment, len(db.assignments)),
		studentAssignments: make(map[string]assignment.StudentAssignment, len(db.studentAssignments)),
		submissions:        make(map[string]submission.Submission, len(db.submissions)),
	}
	for k, v := range db.users {
		snap.users[k] = v
	}
	for k, v := range db.assignments {
		snap.assignments[k] = v
	}
	for k, v := range db.studentAssignments {
		snap.studentAssignments[k] = v
	}
	for k, v := range db.submissions {
		snap.submissions[k] = v
	}
	return snap
}

func (tx *Tx) Commit() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true
	return nil
}

func (tx *Tx) Rollback() error {
	if tx.done {
		return sql.ErrTxDone
	}
	tx.done = true

	tx.db.mu.Lock()
	defer tx.db.mu.Unlock()
	tx.db.users = tx.snap.users
	tx.db.assignments = tx.snap.assignments
	tx.db.studentAssignments = tx.snap.studentAssignments
	tx.db.submissions = tx.snap.submissions
	return nil
}

// core.DBExecutor stubs; the dummy repositories work on the tables directly.

func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (db *DB) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errNoSQL
}
func (db *DB) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errNoSQL
}
func (db *DB) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (db *DB) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}

func (tx *Tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, errNoSQL
}
func (tx *Tx) GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errNoSQL
}
func (tx *Tx) SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return errNoSQL
}
func (tx *Tx) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, errNoSQL
}
func (tx *Tx) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}
