package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	turfserrors "turfbook/internal/turfs/errors"
	"turfbook/pkg/config"
	"turfbook/pkg/db"
	"turfbook/pkg/db/postgres"
	"turfbook/pkg/model"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const turfColumns = "id, name, location, owner_id, price, is_available, image_urls, created_at"

// turfRow carries image_urls as a Postgres text[].
type turfRow struct {
	model.Turf
	Images pq.StringArray `db:"image_urls"`
}

func (r *turfRow) toModel() *model.Turf {
	t := r.Turf
	t.ImageURLs = []string(r.Images)
	if t.ImageURLs == nil {
		t.ImageURLs = []string{}
	}
	return &t
}

type postgresTurfRepository struct {
	cfg *config.Config
	db  *sqlx.DB
}

func NewPostgresTurfRepository(cfg *config.Config, conn *sqlx.DB) TurfRepository {
	return &postgresTurfRepository{cfg: cfg, db: conn}
}

func (r *postgresTurfRepository) Create(ctx context.Context, turf *model.Turf) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO turfs (id, name, location, owner_id, price, is_available, image_urls, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		turf.ID, turf.Name, turf.Location, turf.OwnerID, turf.Price, turf.IsAvailable, pq.Array(turf.ImageURLs), turf.CreatedAt,
	)
	if err != nil {
		if postgres.IsForeignKeyViolation(err) {
			return turfserrors.ErrOwnerNotFound
		}
		return fmt.Errorf("failed to create turf: %w", err)
	}
	return nil
}

func (r *postgresTurfRepository) FindByID(ctx context.Context, id string) (*model.Turf, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var row turfRow
	err := r.db.GetContext(ctx, &row, "SELECT "+turfColumns+" FROM turfs WHERE id = $1", id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
			return nil, turfserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find turf: %w", err)
	}
	return row.toModel(), nil
}

func (r *postgresTurfRepository) FindAll(ctx context.Context, limit int) ([]*model.Turf, error) {
	return r.selectMany(ctx, "SELECT "+turfColumns+" FROM turfs ORDER BY created_at DESC LIMIT $1", limit)
}

func (r *postgresTurfRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Turf, error) {
	turfs, err := r.selectMany(ctx, "SELECT "+turfColumns+" FROM turfs WHERE owner_id = $1 ORDER BY created_at DESC", ownerID)
	if err != nil && postgres.IsInvalidText(err) {
		return []*model.Turf{}, nil
	}
	return turfs, err
}

func (r *postgresTurfRepository) selectMany(ctx context.Context, query string, args ...any) ([]*model.Turf, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var rows []turfRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list turfs: %w", err)
	}

	turfs := make([]*model.Turf, 0, len(rows))
	for i := range rows {
		turfs = append(turfs, rows[i].toModel())
	}
	return turfs, nil
}

func (r *postgresTurfRepository) Delete(ctx context.Context, id string) (*model.Turf, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var row turfRow
	err := r.db.GetContext(ctx, &row, "DELETE FROM turfs WHERE id = $1 RETURNING "+turfColumns, id)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), postgres.IsInvalidText(err):
			return nil, turfserrors.ErrNotFound
		case postgres.IsForeignKeyViolation(err):
			return nil, turfserrors.ErrHasBookings
		}
		return nil, fmt.Errorf("failed to delete turf: %w", err)
	}
	return row.toModel(), nil
}
