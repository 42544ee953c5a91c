package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

const (
	// DefaultSessionTTL is the sliding window applied on login and on every
	// gated request.
	DefaultSessionTTL = 7 * 24 * time.Hour

	tokenBytes     = 64
	createAttempts = 3
)

// SessionService implements ports.SessionStore on top of a SessionRepository.
type SessionService struct {
	repo ports.SessionRepository
	ttl  time.Duration
	now  func() time.Time
	log  zerolog.Logger
}

func NewSessionService(repo ports.SessionRepository, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionService{repo: repo, ttl: ttl, now: time.Now, log: log}
}

// WithClock replaces the time source. Used by tests to move time forward.
func (s *SessionService) WithClock(now func() time.Time) *SessionService {
	s.now = now
	return s
}

// TTL returns the configured sliding window.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// Create issues a new session for userID and returns its token and expiry.
func (s *SessionService) Create(ctx context.Context, userID int64) (string, time.Time, error) {
	for attempt := 1; attempt <= createAttempts; attempt++ {
		token, err := newToken()
		if err != nil {
			return "", time.Time{}, fmt.Errorf("create session: %w", err)
		}

		now := s.now().UTC()
		sess := &domain.Session{
			ID:        uuid.NewString(),
			Token:     token,
			UserID:    userID,
			ExpiresAt: now.Add(s.ttl),
			CreatedAt: now,
		}

		err = s.repo.Insert(ctx, sess)
		if err == nil {
			s.log.Debug().
				Int64("user_id", userID).
				Str("session", Fingerprint(token)).
				Time("expires_at", sess.ExpiresAt).
				Msg("session created")
			return token, sess.ExpiresAt, nil
		}
		if !errors.Is(err, domain.ErrDuplicateToken) {
			return "", time.Time{}, fmt.Errorf("create session: %w", err)
		}
		s.log.Warn().Int("attempt", attempt).Msg("session token collision, retrying")
	}
	return "", time.Time{}, fmt.Errorf("create session: %w", domain.ErrDuplicateToken)
}

// Validate resolves token to a live session of an active account. Sessions
// that are expired or belong to a missing or inactive account are deleted and
// reported as domain.ErrSessionInvalid.
func (s *SessionService) Validate(ctx context.Context, token string) (*domain.SessionRecord, error) {
	if token == "" {
		return nil, domain.ErrSessionInvalid
	}

	rec, err := s.repo.FindByToken(ctx, token)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, domain.ErrSessionInvalid
	}
	if err != nil {
		return nil, fmt.Errorf("validate session: %w", err)
	}

	if rec.Account == nil || !rec.Account.IsActive {
		if _, err := s.repo.DeleteByToken(ctx, token); err != nil {
			s.log.Warn().Err(err).Str("session", Fingerprint(token)).Msg("failed to delete session of inactive account")
		}
		return nil, domain.ErrSessionInvalid
	}

	now := s.now().UTC()
	if !rec.Session.ValidAt(now) {
		// conditional: a concurrent slide that already moved the expiry wins
		if _, err := s.repo.DeleteIfExpired(ctx, token, now); err != nil {
			s.log.Warn().Err(err).Str("session", Fingerprint(token)).Msg("failed to delete expired session")
		}
		return nil, domain.ErrSessionInvalid
	}

	return rec, nil
}

// Slide pushes the session expiry to now + TTL and returns the stored expiry.
func (s *SessionService) Slide(ctx context.Context, sessionID string) (time.Time, error) {
	expiresAt, err := s.repo.ExtendExpiry(ctx, sessionID, s.now().UTC().Add(s.ttl))
	if err != nil {
		return time.Time{}, fmt.Errorf("slide session: %w", err)
	}
	return expiresAt, nil
}

// Revoke deletes the session. Unknown tokens are not an error.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	res, err := s.repo.DeleteByToken(ctx, token)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	s.log.Debug().Str("session", Fingerprint(token)).Int64("deleted", res.RowsAffected).Msg("session revoked")
	return nil
}

// Sweep removes every expired session and reports how many were deleted.
func (s *SessionService) Sweep(ctx context.Context) (int64, error) {
	res, err := s.repo.DeleteExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, fmt.Errorf("sweep sessions: %w", err)
	}
	return res.RowsAffected, nil
}

// Fingerprint returns a short, non-reversible label for a token, safe to log.
func Fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

func newToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
