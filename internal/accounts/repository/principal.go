package repository

import (
	"context"

	"turfbook/pkg/model"
)

// PrincipalRepository stores one principal kind. Owners and users each get
// their own instance backed by their own table or collection.
type PrincipalRepository interface {
	Create(ctx context.Context, principal *model.Principal) error
	FindByID(ctx context.Context, id string) (*model.Principal, error)
	FindByEmail(ctx context.Context, email string) (*model.Principal, error)
	// ExistsByIdentity reports whether any of username, email or phone is taken.
	ExistsByIdentity(ctx context.Context, username, email, phoneNo string) (bool, error)
	// Update applies the non-nil fields of changes and returns the result.
	Update(ctx context.Context, id string, changes *model.PrincipalChanges) (*model.Principal, error)
	// SetRefreshToken overwrites the stored refresh token, ending any
	// previous session.
	SetRefreshToken(ctx context.Context, id, refreshToken string) error
	// SwapRefreshToken replaces the stored token only if it still equals
	// current. Otherwise it returns ErrTokenMismatch.
	SwapRefreshToken(ctx context.Context, id, current, next string) error
	ClearRefreshToken(ctx context.Context, id string) error
}
