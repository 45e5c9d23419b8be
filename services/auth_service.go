// file: services/auth_service.go
package services

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"athmageeth-portal/logger"
)

// AdminRole is the only principal the portal knows.
const AdminRole = "admin"

// DefaultSessionTTL is how long a login stays valid.
const DefaultSessionTTL = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid password")
	ErrInvalidSession     = errors.New("invalid session")
)

// Session is a verified admin login.
type Session struct {
	Token     string
	Role      string
	ExpiresAt time.Time
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthConfig configures an Authenticator. PasswordHash, a bcrypt hash, wins
// over Password when both are set.
type AuthConfig struct {
	Password     string
	PasswordHash string
	SigningKey   []byte
	TTL          time.Duration
}

// Authenticator issues and verifies signed admin session tokens.
type Authenticator struct {
	password     []byte
	passwordHash []byte
	signingKey   []byte
	ttl          time.Duration
	now          func() time.Time
}

// NewAuthenticator fails when there is no signing key or no password to
// check against, since either would leave the gate open.
func NewAuthenticator(cfg AuthConfig) (*Authenticator, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, errors.New("session signing key is required")
	}
	if cfg.Password == "" && cfg.PasswordHash == "" {
		return nil, errors.New("admin password or password hash is required")
	}
	if cfg.PasswordHash != "" {
		if _, err := bcrypt.Cost([]byte(cfg.PasswordHash)); err != nil {
			return nil, fmt.Errorf("admin password hash: %w", err)
		}
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Authenticator{
		password:     []byte(cfg.Password),
		passwordHash: []byte(cfg.PasswordHash),
		signingKey:   cfg.SigningKey,
		ttl:          ttl,
		now:          time.Now,
	}, nil
}

// TTL is the lifetime of issued sessions.
func (a *Authenticator) TTL() time.Duration { return a.ttl }

// Login checks password and issues a session token.
func (a *Authenticator) Login(password string) (Session, error) {
	if !a.checkPassword(password) {
		logger.Warn.Printf("[Authenticator.Login] rejected admin login")
		return Session{}, ErrInvalidCredentials
	}

	now := a.now()
	claims := sessionClaims{
		Role: AdminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.signingKey)
	if err != nil {
		return Session{}, fmt.Errorf("signing session: %w", err)
	}

	logger.Info.Printf("[Authenticator.Login] admin session issued, expires %s", claims.ExpiresAt.Time.Format(time.RFC3339))
	return Session{Token: token, Role: AdminRole, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// Verify accepts only unexpired HS256 tokens signed with our key that carry
// the admin role. Anything else is ErrInvalidSession.
func (a *Authenticator) Verify(token string) (Session, error) {
	if token == "" {
		return Session{}, ErrInvalidSession
	}

	claims := &sessionClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims,
		func(*jwt.Token) (interface{}, error) { return a.signingKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || !parsed.Valid {
		logger.Debug.Printf("[Authenticator.Verify] token rejected: %v", err)
		return Session{}, ErrInvalidSession
	}
	if claims.Role != AdminRole {
		logger.Debug.Printf("[Authenticator.Verify] unexpected role %q", claims.Role)
		return Session{}, ErrInvalidSession
	}
	return Session{Token: token, Role: claims.Role, ExpiresAt: claims.ExpiresAt.Time.UTC()}, nil
}

// Logout returns the blank session that replaces the stored token.
func (a *Authenticator) Logout() Session {
	return Session{ExpiresAt: time.Unix(0, 0).UTC()}
}

func (a *Authenticator) checkPassword(password string) bool {
	if password == "" {
		return false
	}
	if len(a.passwordHash) > 0 {
		return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare(a.password, []byte(password)) == 1
}
