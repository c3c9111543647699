package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	accountserrors "turfbook/internal/accounts/errors"
	"turfbook/internal/accounts/repository"
	"turfbook/internal/accounts/validator"
	"turfbook/pkg/config"
	apperrors "turfbook/pkg/errors"
	"turfbook/pkg/middleware"
	"turfbook/pkg/model"
	"turfbook/pkg/sanitizer"
	"turfbook/pkg/token"
	"turfbook/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgUnauthorized       = "Unauthorized request"
	msgInvalidCredentials = "Invalid credentials"
)

// Session is what a successful login or refresh hands back.
type Session struct {
	Principal *model.Principal
	Tokens    *token.Pair
}

// PrincipalService is the account surface for one principal kind: registration,
// profile edits and the access/refresh token lifecycle.
type PrincipalService interface {
	Kind() model.Kind
	Register(ctx context.Context, req *model.RegisterRequest) (*model.Principal, error)
	Login(ctx context.Context, req *model.LoginRequest) (*Session, error)
	IssueTokens(ctx context.Context, principal *model.Principal) (*token.Pair, error)
	VerifyAccess(ctx context.Context, accessToken string) (*middleware.Identity, error)
	RotateRefresh(ctx context.Context, refreshToken string) (*Session, error)
	Logout(ctx context.Context, identity *middleware.Identity) error
	Edit(ctx context.Context, id string, patch *model.PrincipalPatch) (*model.Principal, error)
}

type Option func(*principalService)

// WithHashCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithHashCost(cost int) Option {
	return func(s *principalService) {
		s.hashCost = cost
	}
}

type principalService struct {
	kind        model.Kind
	repo        repository.PrincipalRepository
	validator   *validator.PrincipalValidator
	tokens      *token.Manager
	revocations token.RevocationStore
	cfg         *config.Config
	hashCost    int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewPrincipalService(
	kind model.Kind,
	repo repository.PrincipalRepository,
	validator *validator.PrincipalValidator,
	tokens *token.Manager,
	revocations token.RevocationStore,
	cfg *config.Config,
	opts ...Option,
) PrincipalService {
	s := &principalService{
		kind:        kind,
		repo:        repo,
		validator:   validator,
		tokens:      tokens,
		revocations: revocations,
		cfg:         cfg,
		hashCost:    bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *principalService) Kind() model.Kind {
	return s.kind
}

func (s *principalService) Register(ctx context.Context, req *model.RegisterRequest) (*model.Principal, error) {
	s.sanitizeRegister(req)
	if err := s.validator.ValidateRegister(req); err != nil {
		return nil, validationError(err)
	}

	taken, err := s.repo.ExistsByIdentity(ctx, req.Username, req.Email, req.PhoneNo)
	if err != nil {
		s.cfg.Log.Error("Failed to check existing principal", "kind", s.kind, "error", err)
		return nil, apperrors.Internal("Failed to register", err)
	}
	if taken {
		return nil, s.duplicate()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	principal := &model.Principal{
		ID:           uuid.NewString(),
		Kind:         s.kind,
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		PhoneNo:      req.PhoneNo,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC().Truncate(time.Millisecond),
	}

	// The unique constraints are authoritative; the check above only gives
	// the common case a cheap answer.
	if err := s.repo.Create(ctx, principal); err != nil {
		if errors.Is(err, accountserrors.ErrDuplicate) {
			return nil, s.duplicate()
		}
		s.cfg.Log.Error("Failed to create principal", "kind", s.kind, "error", err)
		return nil, apperrors.Internal("Failed to register", err)
	}

	s.cfg.Log.Info("Principal registered", "kind", s.kind, "id", principal.ID, "username", principal.Username)
	return principal, nil
}

func (s *principalService) Login(ctx context.Context, req *model.LoginRequest) (*Session, error) {
	req.Email = sanitizer.NormalizeEmail(req.Email)
	if req.Email == "" || req.Password == "" {
		return nil, apperrors.InvalidInput("Email and password are required")
	}

	principal, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil && !errors.Is(err, accountserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to load principal for login", "kind", s.kind, "error", err)
		return nil, apperrors.Internal("Failed to login", err)
	}

	if principal == nil {
		// Spend the same bcrypt work as a real comparison.
		_ = bcrypt.CompareHashAndPassword(s.dummyPasswordHash(), []byte(req.Password))
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(principal.PasswordHash), []byte(req.Password)); err != nil {
		s.cfg.Log.Warn("Login rejected", "kind", s.kind, "id", principal.ID)
		return nil, apperrors.Unauthorized(msgInvalidCredentials)
	}

	pair, err := s.IssueTokens(ctx, principal)
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Principal logged in", "kind", s.kind, "id", principal.ID)
	return &Session{Principal: principal, Tokens: pair}, nil
}

// IssueTokens signs a new pair and stores the refresh token, overwriting the
// previous one. That overwrite is what ends any earlier session.
func (s *principalService) IssueTokens(ctx context.Context, principal *model.Principal) (*token.Pair, error) {
	principal.Kind = s.kind
	pair, err := s.tokens.IssuePair(principal)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue tokens", err)
	}

	if err := s.repo.SetRefreshToken(ctx, principal.ID, pair.RefreshToken); err != nil {
		if errors.Is(err, accountserrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(msgUnauthorized)
		}
		s.cfg.Log.Error("Failed to store refresh token", "kind", s.kind, "id", principal.ID, "error", err)
		return nil, apperrors.Internal("Failed to issue tokens", err)
	}

	principal.RefreshToken = &pair.RefreshToken
	return pair, nil
}

// VerifyAccess never says which check failed; the reason is only logged.
func (s *principalService) VerifyAccess(ctx context.Context, accessToken string) (*middleware.Identity, error) {
	claims, err := s.tokens.ParseAccess(accessToken)
	if err != nil {
		return nil, s.unauthorized("access token rejected", err)
	}
	if claims.Kind != s.kind {
		return nil, s.unauthorized("access token issued for another kind", nil, "token_kind", claims.Kind)
	}

	if s.revocations != nil {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			s.cfg.Log.Error("Failed to check token revocation", "kind", s.kind, "error", err)
			return nil, apperrors.Unauthorized(msgUnauthorized)
		}
		if revoked {
			return nil, s.unauthorized("access token revoked", nil, "id", claims.PrincipalID)
		}
	}

	principal, err := s.repo.FindByID(ctx, claims.PrincipalID)
	if err != nil {
		return nil, s.unauthorized("principal lookup failed", err, "id", claims.PrincipalID)
	}

	return &middleware.Identity{Principal: principal, Claims: claims}, nil
}

// RotateRefresh exchanges a refresh token for a new pair. The presented token
// must be the one currently stored; a superseded token is rejected, and the
// stored value is replaced with a compare-and-swap so two concurrent
// rotations of the same token cannot both succeed.
func (s *principalService) RotateRefresh(ctx context.Context, refreshToken string) (*Session, error) {
	if refreshToken == "" {
		return nil, apperrors.Unauthorized(msgUnauthorized)
	}

	claims, err := s.tokens.ParseRefresh(refreshToken)
	if err != nil {
		return nil, s.unauthorized("refresh token rejected", err)
	}

	principal, err := s.repo.FindByID(ctx, claims.PrincipalID)
	if err != nil {
		return nil, s.unauthorized("refresh principal lookup failed", err, "id", claims.PrincipalID)
	}

	if principal.RefreshToken == nil ||
		subtle.ConstantTimeCompare([]byte(*principal.RefreshToken), []byte(refreshToken)) != 1 {
		return nil, s.unauthorized("refresh token superseded", nil, "id", principal.ID)
	}

	pair, err := s.tokens.IssuePair(principal)
	if err != nil {
		return nil, apperrors.Internal("Failed to issue tokens", err)
	}

	if err := s.repo.SwapRefreshToken(ctx, principal.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, accountserrors.ErrTokenMismatch) {
			return nil, s.unauthorized("refresh token rotated concurrently", nil, "id", principal.ID)
		}
		s.cfg.Log.Error("Failed to rotate refresh token", "kind", s.kind, "id", principal.ID, "error", err)
		return nil, apperrors.Internal("Failed to refresh tokens", err)
	}

	principal.RefreshToken = &pair.RefreshToken
	s.cfg.Log.Info("Refresh token rotated", "kind", s.kind, "id", principal.ID)
	return &Session{Principal: principal, Tokens: pair}, nil
}

// Logout ends the server-side session and revokes the presented access token
// for the rest of its lifetime.
func (s *principalService) Logout(ctx context.Context, identity *middleware.Identity) error {
	id := identity.Principal.ID
	if err := s.repo.ClearRefreshToken(ctx, id); err != nil && !errors.Is(err, accountserrors.ErrNotFound) {
		s.cfg.Log.Error("Failed to clear refresh token", "kind", s.kind, "id", id, "error", err)
		return apperrors.Internal("Failed to logout", err)
	}

	if s.revocations != nil && identity.Claims != nil && identity.Claims.ExpiresAt != nil {
		if err := s.revocations.Revoke(ctx, identity.Claims.ID, identity.Claims.ExpiresAt.Time); err != nil {
			s.cfg.Log.Error("Failed to revoke access token", "kind", s.kind, "id", id, "error", err)
			return apperrors.Internal("Failed to logout", err)
		}
	}

	s.cfg.Log.Info("Principal logged out", "kind", s.kind, "id", id)
	return nil
}

func (s *principalService) Edit(ctx context.Context, id string, patch *model.PrincipalPatch) (*model.Principal, error) {
	if patch.IsEmpty() {
		return nil, apperrors.InvalidInput("At least one field is required")
	}
	s.sanitizePatch(patch)
	if err := s.validator.ValidatePatch(patch); err != nil {
		return nil, validationError(err)
	}

	changes := &model.PrincipalChanges{
		FullName: patch.FullName,
		Username: patch.Username,
		PhoneNo:  patch.PhoneNo,
	}
	if patch.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*patch.Password), s.hashCost)
		if err != nil {
			return nil, apperrors.Internal("Failed to hash password", err)
		}
		hashed := string(hash)
		changes.PasswordHash = &hashed
	}

	principal, err := s.repo.Update(ctx, id, changes)
	if err != nil {
		switch {
		case errors.Is(err, accountserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID(s.kind.Title(), id)
		case errors.Is(err, accountserrors.ErrDuplicate):
			return nil, s.duplicate()
		}
		s.cfg.Log.Error("Failed to update principal", "kind", s.kind, "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update account", err)
	}

	s.cfg.Log.Info("Principal updated", "kind", s.kind, "id", id, "password_changed", patch.Password != nil)
	return principal, nil
}

func (s *principalService) sanitizeRegister(req *model.RegisterRequest) {
	req.FullName = sanitizer.NormalizeName(req.FullName)
	req.Username = sanitizer.NormalizeUsername(req.Username)
	req.Email = sanitizer.NormalizeEmail(req.Email)
	req.PhoneNo = sanitizer.NormalizePhone(req.PhoneNo, s.cfg.PhoneDefaultRegion)
}

func (s *principalService) sanitizePatch(patch *model.PrincipalPatch) {
	if patch.FullName != nil {
		v := sanitizer.NormalizeName(*patch.FullName)
		patch.FullName = &v
	}
	if patch.Username != nil {
		v := sanitizer.NormalizeUsername(*patch.Username)
		patch.Username = &v
	}
	if patch.PhoneNo != nil {
		v := sanitizer.NormalizePhone(*patch.PhoneNo, s.cfg.PhoneDefaultRegion)
		patch.PhoneNo = &v
	}
}

func (s *principalService) duplicate() error {
	return apperrors.Conflict(s.kind.Title() + " with this username, email or phone number already exists")
}

func (s *principalService) unauthorized(reason string, err error, args ...any) error {
	args = append(args, "kind", s.kind, "reason", reason)
	if err != nil {
		args = append(args, "error", err)
	}
	s.cfg.Log.Warn("Token verification failed", args...)
	return apperrors.Unauthorized(msgUnauthorized)
}

func (s *principalService) dummyPasswordHash() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("turfbook-no-such-account"), s.hashCost)
	})
	return s.dummyHash
}

func validationError(err error) error {
	var verrs validation.ValidationErrors
	if errors.As(err, &verrs) {
		return apperrors.Validation("Invalid input", verrs.Details())
	}
	return apperrors.InvalidInput(err.Error())
}
