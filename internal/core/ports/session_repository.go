package ports

import (
	"context"
	"time"

	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// SessionRepository persists sessions. Every method is a single atomic
// operation on the backing store; callers never read-modify-write.
type SessionRepository interface {
	// Insert stores a new session. Returns domain.ErrDuplicateToken when the
	// token is already taken.
	Insert(ctx context.Context, session *domain.Session) error

	// FindByToken returns the session joined with its account, or
	// domain.ErrSessionNotFound.
	FindByToken(ctx context.Context, token string) (*domain.SessionRecord, error)

	// ExtendExpiry raises expires_at to at least expiresAt and returns the
	// stored value. A smaller expiresAt never overwrites a larger one.
	ExtendExpiry(ctx context.Context, id string, expiresAt time.Time) (time.Time, error)

	// DeleteByToken removes the session unconditionally.
	DeleteByToken(ctx context.Context, token string) (WriteResult, error)

	// DeleteIfExpired removes the session only if expires_at <= now.
	DeleteIfExpired(ctx context.Context, token string, now time.Time) (WriteResult, error)

	// DeleteExpired removes every session with expires_at <= now.
	DeleteExpired(ctx context.Context, now time.Time) (WriteResult, error)
}
