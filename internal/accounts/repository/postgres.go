package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	accountserrors "turfbook/internal/accounts/errors"
	"turfbook/pkg/config"
	"turfbook/pkg/db"
	"turfbook/pkg/db/postgres"
	"turfbook/pkg/model"

	"github.com/jmoiron/sqlx"
)

const principalColumns = "id, full_name, username, email, phone_no, password_hash, refresh_token, created_at"

type postgresPrincipalRepository struct {
	cfg  *config.Config
	db   *sqlx.DB
	kind model.Kind

	insertQuery  string
	byIDQuery    string
	byEmailQuery string
	existsQuery  string
	updateQuery  string
	setQuery     string
	swapQuery    string
}

// NewPostgresPrincipalRepository binds the repository to the owners or users
// table. Every statement is fixed at construction; partial updates use
// COALESCE over nullable parameters.
func NewPostgresPrincipalRepository(cfg *config.Config, conn *sqlx.DB, kind model.Kind) PrincipalRepository {
	table := kind.Plural()
	return &postgresPrincipalRepository{
		cfg:  cfg,
		db:   conn,
		kind: kind,

		insertQuery: fmt.Sprintf(`INSERT INTO %s (id, full_name, username, email, phone_no, password_hash, created_at)
VALUES (:id, :full_name, :username, :email, :phone_no, :password_hash, :created_at)`, table),
		byIDQuery:    fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", principalColumns, table),
		byEmailQuery: fmt.Sprintf("SELECT %s FROM %s WHERE email = $1", principalColumns, table),
		existsQuery:  fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s WHERE username = $1 OR email = $2 OR phone_no = $3)", table),
		updateQuery: fmt.Sprintf(`UPDATE %s SET
full_name = COALESCE($2, full_name),
username = COALESCE($3, username),
phone_no = COALESCE($4, phone_no),
password_hash = COALESCE($5, password_hash)
WHERE id = $1
RETURNING %s`, table, principalColumns),
		setQuery:  fmt.Sprintf("UPDATE %s SET refresh_token = $2 WHERE id = $1", table),
		swapQuery: fmt.Sprintf("UPDATE %s SET refresh_token = $3 WHERE id = $1 AND refresh_token = $2", table),
	}
}

func (r *postgresPrincipalRepository) Create(ctx context.Context, principal *model.Principal) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	if _, err := r.db.NamedExecContext(ctx, r.insertQuery, principal); err != nil {
		if postgres.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %s", accountserrors.ErrDuplicate, postgres.ConstraintName(err))
		}
		return fmt.Errorf("failed to create %s: %w", r.kind, err)
	}
	return nil
}

func (r *postgresPrincipalRepository) FindByID(ctx context.Context, id string) (*model.Principal, error) {
	return r.findOne(ctx, r.byIDQuery, id)
}

func (r *postgresPrincipalRepository) FindByEmail(ctx context.Context, email string) (*model.Principal, error) {
	return r.findOne(ctx, r.byEmailQuery, email)
}

func (r *postgresPrincipalRepository) findOne(ctx context.Context, query string, arg string) (*model.Principal, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var principal model.Principal
	if err := r.db.GetContext(ctx, &principal, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) || postgres.IsInvalidText(err) {
			return nil, accountserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s: %w", r.kind, err)
	}
	principal.Kind = r.kind
	return &principal, nil
}

func (r *postgresPrincipalRepository) ExistsByIdentity(ctx context.Context, username, email, phoneNo string) (bool, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var exists bool
	if err := r.db.GetContext(ctx, &exists, r.existsQuery, username, email, phoneNo); err != nil {
		return false, fmt.Errorf("failed to check %s identity: %w", r.kind, err)
	}
	return exists, nil
}

func (r *postgresPrincipalRepository) Update(ctx context.Context, id string, changes *model.PrincipalChanges) (*model.Principal, error) {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	var principal model.Principal
	err := r.db.GetContext(ctx, &principal, r.updateQuery,
		id, changes.FullName, changes.Username, changes.PhoneNo, changes.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows), postgres.IsInvalidText(err):
			return nil, accountserrors.ErrNotFound
		case postgres.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: %s", accountserrors.ErrDuplicate, postgres.ConstraintName(err))
		}
		return nil, fmt.Errorf("failed to update %s: %w", r.kind, err)
	}
	principal.Kind = r.kind
	return &principal, nil
}

func (r *postgresPrincipalRepository) SetRefreshToken(ctx context.Context, id, refreshToken string) error {
	return r.exec(ctx, accountserrors.ErrNotFound, r.setQuery, id, refreshToken)
}

func (r *postgresPrincipalRepository) SwapRefreshToken(ctx context.Context, id, current, next string) error {
	return r.exec(ctx, accountserrors.ErrTokenMismatch, r.swapQuery, id, current, next)
}

func (r *postgresPrincipalRepository) ClearRefreshToken(ctx context.Context, id string) error {
	return r.exec(ctx, accountserrors.ErrNotFound, r.setQuery, id, nil)
}

// exec runs a single-row update and returns noMatch when no row changed.
func (r *postgresPrincipalRepository) exec(ctx context.Context, noMatch error, query string, args ...any) error {
	ctx, cancel := db.WithTimeout(ctx, r.cfg.DBTimeout)
	defer cancel()

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if postgres.IsInvalidText(err) {
			return noMatch
		}
		return fmt.Errorf("failed to update %s refresh token: %w", r.kind, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return noMatch
	}
	return nil
}
