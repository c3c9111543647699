package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// SQLSTATE codes the repositories translate into domain errors.
const (
	UniqueViolation     = pq.ErrorCode("23505")
	ForeignKeyViolation = pq.ErrorCode("23503")
	InvalidTextRepr     = pq.ErrorCode("22P02")
)

func code(err error) pq.ErrorCode {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code
	}
	return ""
}

func IsUniqueViolation(err error) bool {
	return code(err) == UniqueViolation
}

// ConstraintName returns the violated constraint, or "" for other errors.
func ConstraintName(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Constraint
	}
	return ""
}

func IsForeignKeyViolation(err error) bool {
	return code(err) == ForeignKeyViolation
}

// IsInvalidText reports a malformed literal, typically a non-uuid id.
func IsInvalidText(err error) bool {
	return code(err) == InvalidTextRepr
}

type TxFunc func(tx *sqlx.Tx) error

// WithTx runs fn inside a transaction, committing when it returns nil.
func WithTx(ctx context.Context, db *sqlx.DB, fn TxFunc) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
