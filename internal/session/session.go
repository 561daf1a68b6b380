// Package session issues and resolves login sessions for the single
// configured operator account.
package session

import (
	"crypto/subtle"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"adtest/internal/config/configs"
	"adtest/internal/core/domain"
)

// CookieName is the cookie carrying the session token.
const CookieName = "adtest_session"

// ErrInvalidCredentials is returned by Login for a wrong username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Manager keeps sessions in memory. Sessions do not survive a restart.
type Manager struct {
	cfg configs.Auth
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]domain.Session
}

// NewManager returns a Manager accepting the credentials in cfg.
func NewManager(cfg configs.Auth) *Manager {
	return &Manager{
		cfg:      cfg,
		now:      time.Now,
		sessions: make(map[string]domain.Session),
	}
}

// Login checks the credentials and starts a session.
func (m *Manager) Login(username, password string) (*domain.Session, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(m.cfg.Username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(m.cfg.Password)) == 1
	if !userOK || !passOK {
		return nil, ErrInvalidCredentials
	}

	s := domain.Session{
		Token:     uuid.NewString(),
		Username:  m.cfg.Username,
		Role:      m.cfg.Role,
		ExpiresAt: m.now().Add(m.cfg.SessionTTL),
	}

	m.mu.Lock()
	m.sessions[s.Token] = s
	m.mu.Unlock()

	return &s, nil
}

// Load resolves token to its session, or nil when the token is unknown or
// expired. Expired sessions are forgotten.
func (m *Manager) Load(token string) *domain.Session {
	if token == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil
	}
	if !m.now().Before(s.ExpiresAt) {
		delete(m.sessions, token)
		return nil
	}
	return &s
}

// Logout ends the session. Unknown tokens are ignored.
func (m *Manager) Logout(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
