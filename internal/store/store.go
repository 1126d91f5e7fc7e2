// path: internal/store/store.go
// Package store implements the persistent Store contract (spec §4.A) for
// every domain repository: atomic status transitions, append-only revision
// numbering via read-current-max-then-insert-next, and exclusive
// "select ... for update" claim queries, all over database/sql + lib/pq the
// same way the teacher's internal/infrastructure/persistence package does.
package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"
	"github.com/techappsUT/socialqueue-ucb/internal/apperr"
)

// pqUniqueViolation and pqForeignKeyViolation are the Postgres SQLSTATE
// codes the repositories classify as apperr.ClassConflict /
// apperr.ClassIntegrity respectively.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
)

// classifyErr maps a raw database/sql or lib/pq error onto the apperr
// taxonomy every Store caller expects (spec §4.A: NotFound, Conflict,
// Transient).
func classifyErr(err error, notFound error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return notFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperr.Wrap(apperr.ClassConflict, "unique constraint violated", err)
		case pqForeignKeyViolation, pqCheckViolation:
			return apperr.Wrap(apperr.ClassIntegrity, "constraint violated", err)
		}
	}
	return apperr.Wrap(apperr.ClassTransient, "store operation failed", err)
}

// DB is the shared connection pool every *Store wraps.
type DB struct {
	*sql.DB
}

// Open wraps an already-opened *sql.DB (constructed by cmd/api/cmd/worker
// from internal/config.DatabaseConfig via "lib/pq" as the driver name).
func Open(db *sql.DB) *DB {
	return &DB{DB: db}
}

// withTx runs fn inside a transaction, rolling back on error or panic.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return apperr.Wrap(apperr.ClassTransient, "begin transaction", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
