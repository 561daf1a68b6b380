package domain

import "time"

// UnknownAuthor is recorded as the author of a test saved without a session.
const UnknownAuthor = "Unknown"

// Session describes an authenticated user. The HTTP layer resolves it from a
// request and passes it explicitly to operations that need an identity.
type Session struct {
	Token     string    `json:"-"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Author returns the identity recorded on saved tests for this session. A nil
// session yields UnknownAuthor.
func (s *Session) Author() string {
	if s == nil || s.Username == "" {
		return UnknownAuthor
	}
	return s.Username
}
