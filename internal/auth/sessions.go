// Package auth implements admin authentication for the dashboard endpoints:
// password login issuing short-lived session tokens, and a per-IP throttle on
// failed login attempts. State is process-wide, initialised at start, and
// swept periodically; none of it touches the ledger.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ErrBadCredentials is returned for a wrong password. The message is
// deliberately unspecific.
var ErrBadCredentials = errors.New("invalid credentials")

// Config for the session manager.
type Config struct {
	// PasswordHash is the bcrypt hash of the admin password. Preferred.
	PasswordHash string

	// Password is a plaintext fallback for development setups. Ignored when
	// PasswordHash is set.
	Password string

	// Secret signs session JWTs. When empty a random secret is generated,
	// which means sessions do not survive a restart.
	Secret string

	// TTL is the session lifetime.
	TTL time.Duration
}

// Manager issues and validates admin session tokens. Tokens are HS256 JWTs
// that are additionally tracked in a process-wide map, so logout revokes them
// before expiry.
type Manager struct {
	cfg    Config
	secret []byte
	logger *zap.Logger

	mu     sync.Mutex
	active map[string]time.Time // token id -> expiry

	now func() time.Time
}

// NewManager creates a Manager. It fails when no password is configured at
// all: an admin surface without a password is a misconfiguration, not a
// default.
func NewManager(cfg Config, logger *zap.Logger) (*Manager, error) {
	if cfg.PasswordHash == "" && cfg.Password == "" {
		return nil, fmt.Errorf("admin password not configured")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 8 * time.Hour
	}

	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("generate session secret: %w", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Warn("no admin session secret configured; sessions will not survive a restart")
	}

	return &Manager{
		cfg:    cfg,
		secret: secret,
		logger: logger,
		active: make(map[string]time.Time),
		now:    time.Now,
	}, nil
}

// SetClock overrides the time source. Test seam.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}

// Login verifies the admin password and returns a new session token.
func (m *Manager) Login(password string) (string, error) {
	if !m.verifyPassword(password) {
		return "", ErrBadCredentials
	}

	now := m.now()
	expiry := now.Add(m.cfg.TTL)
	id := uuid.NewString()

	claims := jwt.RegisteredClaims{
		ID:        id,
		Subject:   "admin",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiry),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}

	m.mu.Lock()
	m.active[id] = expiry
	m.mu.Unlock()

	return token, nil
}

// Validate reports whether the token is a live admin session.
func (m *Manager) Validate(token string) bool {
	id, ok := m.tokenID(token, true)
	if !ok {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	expiry, live := m.active[id]
	if !live {
		return false
	}
	if m.now().After(expiry) {
		delete(m.active, id)
		return false
	}
	return true
}

// Logout revokes the session behind the token. Expired or malformed tokens
// are ignored.
func (m *Manager) Logout(token string) {
	id, ok := m.tokenID(token, false)
	if !ok {
		return
	}
	m.mu.Lock()
	delete(m.active, id)
	m.mu.Unlock()
}

// Sweep drops expired sessions from the map. Called periodically from main.
func (m *Manager) Sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, expiry := range m.active {
		if now.After(expiry) {
			delete(m.active, id)
		}
	}
}

// TTL returns the configured session lifetime.
func (m *Manager) TTL() time.Duration {
	return m.cfg.TTL
}

func (m *Manager) verifyPassword(password string) bool {
	if m.cfg.PasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(m.cfg.PasswordHash), []byte(password)) == nil
	}
	return subtle.ConstantTimeCompare([]byte(m.cfg.Password), []byte(password)) == 1
}

// tokenID extracts the claim id from a session token. With checkExpiry false,
// expired-but-well-signed tokens still yield their id so logout can clean up.
func (m *Manager) tokenID(token string, checkExpiry bool) (string, bool) {
	claims := &jwt.RegisteredClaims{}
	parser := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if !checkExpiry {
		parser = append(parser, jwt.WithoutClaimsValidation())
	}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return m.secret, nil
	}, parser...)
	if err != nil || !parsed.Valid || claims.ID == "" {
		return "", false
	}
	return claims.ID, true
}
