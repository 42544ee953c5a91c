package domain

import "time"

// Session is a server-side login. The token is the only thing the client holds.
type Session struct {
	ID        string
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// ValidAt reports whether the session has not yet expired at now.
func (s *Session) ValidAt(now time.Time) bool {
	return s.ExpiresAt.After(now)
}

// SessionRecord is a session joined with its owning account. Account is nil
// when the account row no longer exists.
type SessionRecord struct {
	Session Session
	Account *Account
}
