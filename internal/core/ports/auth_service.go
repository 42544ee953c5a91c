package ports

import (
	"context"
	"time"

	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// LoginInput carries credentials plus the client address used for throttling.
type LoginInput struct {
	Username string
	Password string
	ClientIP string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Account   *domain.Account
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the fields needed to provision a CMS account.
type RegisterInput struct {
	Username string
	Password string
	Role     string
}

// AuthService drives login, logout and account provisioning.
type AuthService interface {
	Login(ctx context.Context, in LoginInput) (*LoginResult, error)
	Logout(ctx context.Context, token string) error
	Register(ctx context.Context, in RegisterInput) (*domain.Account, error)
}

// SessionStore issues, validates, slides and revokes sessions.
type SessionStore interface {
	Create(ctx context.Context, userID int64) (string, time.Time, error)
	Validate(ctx context.Context, token string) (*domain.SessionRecord, error)
	Slide(ctx context.Context, sessionID string) (time.Time, error)
	Revoke(ctx context.Context, token string) error
}

// PasswordHasher hashes and verifies passwords. Verify returns false, not an
// error, for a malformed stored form.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	Verify(ctx context.Context, plaintext, stored string) (bool, error)
}

// LoginThrottle counts failed logins per client.
type LoginThrottle interface {
	// Blocked returns how long the client must wait, or zero.
	Blocked(ctx context.Context, client string) (time.Duration, error)
	RecordFailure(ctx context.Context, client string) error
	Reset(ctx context.Context, client string) error
}
