package repository

import (
	"context"
	"sync"

	accountserrors "turfbook/internal/accounts/errors"
	"turfbook/pkg/model"
)

// memoryPrincipalRepository enforces the same uniqueness rules as the
// database indexes. Used by the memory storage driver and tests.
type memoryPrincipalRepository struct {
	mu         sync.RWMutex
	kind       model.Kind
	principals map[string]*model.Principal
}

func NewMemoryPrincipalRepository(kind model.Kind) PrincipalRepository {
	return &memoryPrincipalRepository{
		kind:       kind,
		principals: make(map[string]*model.Principal),
	}
}

func (r *memoryPrincipalRepository) Create(_ context.Context, principal *model.Principal) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.principals[principal.ID]; ok || r.taken("", principal.Username, principal.Email, principal.PhoneNo) {
		return accountserrors.ErrDuplicate
	}
	r.principals[principal.ID] = clonePrincipal(principal, r.kind)
	return nil
}

func (r *memoryPrincipalRepository) FindByID(_ context.Context, id string) (*model.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.principals[id]
	if !ok {
		return nil, accountserrors.ErrNotFound
	}
	return clonePrincipal(p, r.kind), nil
}

func (r *memoryPrincipalRepository) FindByEmail(_ context.Context, email string) (*model.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.principals {
		if p.Email == email {
			return clonePrincipal(p, r.kind), nil
		}
	}
	return nil, accountserrors.ErrNotFound
}

func (r *memoryPrincipalRepository) ExistsByIdentity(_ context.Context, username, email, phoneNo string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.taken("", username, email, phoneNo), nil
}

func (r *memoryPrincipalRepository) Update(_ context.Context, id string, changes *model.PrincipalChanges) (*model.Principal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.principals[id]
	if !ok {
		return nil, accountserrors.ErrNotFound
	}

	updated := clonePrincipal(p, r.kind)
	if changes.FullName != nil {
		updated.FullName = *changes.FullName
	}
	if changes.Username != nil {
		updated.Username = *changes.Username
	}
	if changes.PhoneNo != nil {
		updated.PhoneNo = *changes.PhoneNo
	}
	if changes.PasswordHash != nil {
		updated.PasswordHash = *changes.PasswordHash
	}
	if r.taken(id, updated.Username, "", updated.PhoneNo) {
		return nil, accountserrors.ErrDuplicate
	}

	r.principals[id] = updated
	return clonePrincipal(updated, r.kind), nil
}

func (r *memoryPrincipalRepository) SetRefreshToken(_ context.Context, id, refreshToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.principals[id]
	if !ok {
		return accountserrors.ErrNotFound
	}
	p.RefreshToken = &refreshToken
	return nil
}

func (r *memoryPrincipalRepository) SwapRefreshToken(_ context.Context, id, current, next string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.principals[id]
	if !ok || p.RefreshToken == nil || *p.RefreshToken != current {
		return accountserrors.ErrTokenMismatch
	}
	p.RefreshToken = &next
	return nil
}

func (r *memoryPrincipalRepository) ClearRefreshToken(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.principals[id]
	if !ok {
		return accountserrors.ErrNotFound
	}
	p.RefreshToken = nil
	return nil
}

// taken reports a collision with any principal other than exceptID. Empty
// values are not compared.
func (r *memoryPrincipalRepository) taken(exceptID, username, email, phoneNo string) bool {
	for id, p := range r.principals {
		if id == exceptID {
			continue
		}
		if (username != "" && p.Username == username) ||
			(email != "" && p.Email == email) ||
			(phoneNo != "" && p.PhoneNo == phoneNo) {
			return true
		}
	}
	return false
}

func clonePrincipal(p *model.Principal, kind model.Kind) *model.Principal {
	c := *p
	c.Kind = kind
	if p.RefreshToken != nil {
		token := *p.RefreshToken
		c.RefreshToken = &token
	}
	return &c
}
