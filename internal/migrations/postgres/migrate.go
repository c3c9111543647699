package postgres

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// ConfirmedSlotIndex is the partial unique index that decides booking
// admission. Repositories match violations against this name.
const ConfirmedSlotIndex = "bookings_confirmed_slot_uniq"

//go:embed schema.sql
var schema string

// Schema returns the DDL applied by RunMigration.
func Schema() string {
	return schema
}

// RunMigration applies the schema in a single transaction. Every statement is
// idempotent so the job can run on each deploy.
func RunMigration(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin migration: %w", err)
	}

	if _, err := tx.ExecContext(ctx, schema); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration: %w", err)
	}
	return nil
}
