package token

import (
	"errors"
	"fmt"
	"time"

	"turfbook/pkg/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"

	DefaultIssuer = "turfbook"
)

var (
	// ErrInvalidToken covers every parse failure: bad signature, wrong
	// algorithm, expiry, wrong token type. Callers must not tell them apart.
	ErrInvalidToken = errors.New("invalid token")

	ErrMissingSecret = errors.New("token secrets must be set")
	ErrSameSecret    = errors.New("access and refresh secrets must differ")
	ErrInvalidTTL    = errors.New("token lifetimes must be positive")
)

// AccessClaims identify the principal for the lifetime of an access token.
type AccessClaims struct {
	PrincipalID string     `json:"id"`
	FullName    string     `json:"full_name"`
	Username    string     `json:"username"`
	Email       string     `json:"email"`
	PhoneNo     string     `json:"phone_no"`
	Kind        model.Kind `json:"kind"`
	Type        string     `json:"typ"`
	jwt.RegisteredClaims
}

// RefreshClaims carry only the principal id. The jti makes every issued
// refresh token distinct even when two are signed within the same second.
type RefreshClaims struct {
	PrincipalID string `json:"id"`
	Type        string `json:"typ"`
	jwt.RegisteredClaims
}

type Config struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

type Pair struct {
	AccessToken      string
	RefreshToken     string
	AccessID         string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

type Option func(*Manager)

// WithClock overrides the time source used for issuing and validating.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// Manager signs and verifies HS256 access/refresh tokens. It holds no
// mutable state and is safe for concurrent use.
type Manager struct {
	cfg Config
	now func() time.Time
}

func NewManager(cfg Config, opts ...Option) (*Manager, error) {
	if len(cfg.AccessSecret) == 0 || len(cfg.RefreshSecret) == 0 {
		return nil, ErrMissingSecret
	}
	if string(cfg.AccessSecret) == string(cfg.RefreshSecret) {
		return nil, ErrSameSecret
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, ErrInvalidTTL
	}
	if cfg.Issuer == "" {
		cfg.Issuer = DefaultIssuer
	}

	m := &Manager{cfg: cfg, now: time.Now}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) IssuePair(p *model.Principal) (*Pair, error) {
	now := m.now().UTC()
	accessExp := now.Add(m.cfg.AccessTTL)
	refreshExp := now.Add(m.cfg.RefreshTTL)
	accessID := uuid.NewString()

	access := AccessClaims{
		PrincipalID:      p.ID,
		FullName:         p.FullName,
		Username:         p.Username,
		Email:            p.Email,
		PhoneNo:          p.PhoneNo,
		Kind:             p.Kind,
		Type:             TypeAccess,
		RegisteredClaims: m.registered(p.ID, accessID, now, accessExp),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, access).SignedString(m.cfg.AccessSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refresh := RefreshClaims{
		PrincipalID:      p.ID,
		Type:             TypeRefresh,
		RegisteredClaims: m.registered(p.ID, uuid.NewString(), now, refreshExp),
	}
	refreshToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, refresh).SignedString(m.cfg.RefreshSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}

	return &Pair{
		AccessToken:      accessToken,
		RefreshToken:     refreshToken,
		AccessID:         accessID,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

func (m *Manager) ParseAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(tokenString, claims, m.cfg.AccessSecret); err != nil {
		return nil, err
	}
	if claims.Type != TypeAccess || claims.PrincipalID == "" || claims.ID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) ParseRefresh(tokenString string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(tokenString, claims, m.cfg.RefreshSecret); err != nil {
		return nil, err
	}
	if claims.Type != TypeRefresh || claims.PrincipalID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (m *Manager) RefreshTTL() time.Duration {
	return m.cfg.RefreshTTL
}

func (m *Manager) AccessTTL() time.Duration {
	return m.cfg.AccessTTL
}

func (m *Manager) registered(subject, id string, now, exp time.Time) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		Issuer:    m.cfg.Issuer,
		Subject:   subject,
		ID:        id,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
}

func (m *Manager) parse(tokenString string, claims jwt.Claims, secret []byte) error {
	if tokenString == "" {
		return ErrInvalidToken
	}

	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(m.cfg.Issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return nil
}
