package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// dummyHash is a well-formed stored form that matches no password. Verifying
// against it costs a full KDF run, so unknown usernames take as long as wrong
// passwords.
var dummyHash = strings.Repeat("0", 32) + ":" + strings.Repeat("0", 128)

// AuthService implements login, logout and account provisioning.
type AuthService struct {
	accounts ports.AccountRepository
	sessions ports.SessionStore
	hasher   ports.PasswordHasher
	throttle ports.LoginThrottle
	now      func() time.Time
	log      zerolog.Logger
}

// NewAuthService wires the service. throttle may be nil to disable login
// attempt limiting.
func NewAuthService(
	accounts ports.AccountRepository,
	sessions ports.SessionStore,
	hasher ports.PasswordHasher,
	throttle ports.LoginThrottle,
	log zerolog.Logger,
) *AuthService {
	return &AuthService{
		accounts: accounts,
		sessions: sessions,
		hasher:   hasher,
		throttle: throttle,
		now:      time.Now,
		log:      log,
	}
}

// Login checks credentials and opens a session. Unknown usernames, wrong
// passwords and inactive accounts all yield domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.LoginResult, error) {
	if missing := missingCredentials(in.Username, in.Password); len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}

	if wait := s.blocked(ctx, in.ClientIP); wait > 0 {
		return nil, &domain.RateLimitError{RetryAfter: wait}
	}

	account, err := s.accounts.FindByUsername(ctx, in.Username)
	switch {
	case errors.Is(err, domain.ErrAccountNotFound):
		if _, verr := s.hasher.Verify(ctx, in.Password, dummyHash); verr != nil {
			return nil, fmt.Errorf("login: verify password: %w", verr)
		}
		s.recordFailure(ctx, in.ClientIP)
		return nil, domain.ErrInvalidCredentials
	case err != nil:
		return nil, fmt.Errorf("login: %w", err)
	}

	ok, err := s.hasher.Verify(ctx, in.Password, account.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("login: verify password: %w", err)
	}
	if !ok || !account.IsActive {
		s.recordFailure(ctx, in.ClientIP)
		s.log.Info().Str("username", account.Username).Bool("active", account.IsActive).Msg("login rejected")
		return nil, domain.ErrInvalidCredentials
	}

	s.resetAttempts(ctx, in.ClientIP)

	token, expiresAt, err := s.sessions.Create(ctx, account.ID)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	s.log.Info().Int64("user_id", account.ID).Str("role", account.Role).Msg("login succeeded")
	return &ports.LoginResult{Account: account, Token: token, ExpiresAt: expiresAt}, nil
}

// Logout revokes the session behind token, if any.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, token)
}

// Register provisions a new active CMS account.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.Account, error) {
	if missing := missingCredentials(in.Username, in.Password); len(missing) > 0 {
		return nil, &domain.ValidationError{Fields: missing}
	}
	if !domain.ValidRole(in.Role) {
		return nil, &domain.ValidationError{
			Fields: []string{"role"},
			Reason: fmt.Sprintf("role must be one of %s, %s, %s", domain.RoleOwner, domain.RoleAdmin, domain.RoleEditor),
		}
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, fmt.Errorf("register: hash password: %w", err)
	}

	now := s.now().UTC()
	account := &domain.Account{
		Username:     in.Username,
		PasswordHash: hash,
		Role:         in.Role,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	res, err := s.accounts.Create(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	account.ID = res.InsertedID

	s.log.Info().Int64("user_id", account.ID).Str("username", account.Username).Str("role", account.Role).Msg("account created")
	return account, nil
}

func (s *AuthService) blocked(ctx context.Context, client string) time.Duration {
	if s.throttle == nil || client == "" {
		return 0
	}
	wait, err := s.throttle.Blocked(ctx, client)
	if err != nil {
		s.log.Warn().Err(err).Str("client", client).Msg("login throttle check failed, allowing attempt")
		return 0
	}
	return wait
}

func (s *AuthService) recordFailure(ctx context.Context, client string) {
	if s.throttle == nil || client == "" {
		return
	}
	if err := s.throttle.RecordFailure(ctx, client); err != nil {
		s.log.Warn().Err(err).Str("client", client).Msg("failed to record login failure")
	}
}

func (s *AuthService) resetAttempts(ctx context.Context, client string) {
	if s.throttle == nil || client == "" {
		return
	}
	if err := s.throttle.Reset(ctx, client); err != nil {
		s.log.Warn().Err(err).Str("client", client).Msg("failed to reset login attempts")
	}
}

// missingCredentials names the empty credential fields.
func missingCredentials(username, password string) []string {
	var missing []string
	if username == "" {
		missing = append(missing, "username")
	}
	if password == "" {
		missing = append(missing, "password")
	}
	return missing
}
