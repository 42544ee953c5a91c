package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

// ---------------------------------------------------------------------------
// Accounts
// ---------------------------------------------------------------------------

type stubAccountRepo struct {
	mu     sync.Mutex
	byID   map[int64]*domain.Account
	nextID int64
	err    error
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{byID: make(map[int64]*domain.Account)}
}

func (r *stubAccountRepo) add(username, hash, role string, active bool) *domain.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	a := &domain.Account{ID: r.nextID, Username: username, PasswordHash: hash, Role: role, IsActive: active}
	r.byID[a.ID] = a
	clone := *a
	return &clone
}

func (r *stubAccountRepo) setActive(id int64, active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[id].IsActive = active
}

func (r *stubAccountRepo) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	for _, a := range r.byID {
		if a.Username == username {
			clone := *a
			return &clone, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

// lookup is the account side of the session join.
func (r *stubAccountRepo) lookup(id int64) (*domain.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.byID[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *stubAccountRepo) Create(_ context.Context, account *domain.Account) (ports.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.byID {
		if a.Username == account.Username {
			return ports.WriteResult{}, domain.ErrUsernameTaken
		}
	}
	r.nextID++
	clone := *account
	clone.ID = r.nextID
	r.byID[clone.ID] = &clone
	return ports.WriteResult{InsertedID: clone.ID, RowsAffected: 1}, nil
}

// ---------------------------------------------------------------------------
// Sessions: mirrors the Mongo repository semantics ($max slide, conditional delete).
// ---------------------------------------------------------------------------

type stubSessionRepo struct {
	mu         sync.Mutex
	byToken    map[string]*domain.Session
	accounts   *stubAccountRepo
	collisions int // number of Insert calls to reject as duplicates
	inserts    int
	findErr    error
}

func newStubSessionRepo(accounts *stubAccountRepo) *stubSessionRepo {
	return &stubSessionRepo{byToken: make(map[string]*domain.Session), accounts: accounts}
}

func (r *stubSessionRepo) Insert(_ context.Context, s *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if r.collisions > 0 {
		r.collisions--
		return domain.ErrDuplicateToken
	}
	if _, exists := r.byToken[s.Token]; exists {
		return domain.ErrDuplicateToken
	}
	clone := *s
	r.byToken[s.Token] = &clone
	return nil
}

func (r *stubSessionRepo) FindByToken(_ context.Context, token string) (*domain.SessionRecord, error) {
	r.mu.Lock()
	if r.findErr != nil {
		r.mu.Unlock()
		return nil, r.findErr
	}
	s, ok := r.byToken[token]
	if !ok {
		r.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	rec := &domain.SessionRecord{Session: *s}
	r.mu.Unlock()

	if acct, err := r.accounts.lookup(s.UserID); err == nil {
		rec.Account = acct
	}
	return rec, nil
}

func (r *stubSessionRepo) ExtendExpiry(_ context.Context, id string, expiresAt time.Time) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byToken {
		if s.ID == id {
			if expiresAt.After(s.ExpiresAt) {
				s.ExpiresAt = expiresAt
			}
			return s.ExpiresAt, nil
		}
	}
	return time.Time{}, domain.ErrSessionNotFound
}

func (r *stubSessionRepo) DeleteByToken(_ context.Context, token string) (ports.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byToken[token]; !ok {
		return ports.WriteResult{}, nil
	}
	delete(r.byToken, token)
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (r *stubSessionRepo) DeleteIfExpired(_ context.Context, token string, now time.Time) (ports.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byToken[token]
	if !ok || s.ExpiresAt.After(now) {
		return ports.WriteResult{}, nil
	}
	delete(r.byToken, token)
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (r *stubSessionRepo) DeleteExpired(_ context.Context, now time.Time) (ports.WriteResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, s := range r.byToken {
		if !s.ExpiresAt.After(now) {
			delete(r.byToken, token)
			n++
		}
	}
	return ports.WriteResult{RowsAffected: n}, nil
}

func (r *stubSessionRepo) has(token string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.byToken[token]
	return ok
}

func (r *stubSessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byToken)
}

// ---------------------------------------------------------------------------
// Hasher: cheap reversible scheme, counts Verify calls.
// ---------------------------------------------------------------------------

type stubHasher struct {
	mu       sync.Mutex
	verifies []string // stored forms passed to Verify
	err      error
}

func (h *stubHasher) Hash(_ context.Context, plaintext string) (string, error) {
	if h.err != nil {
		return "", h.err
	}
	return "stub:" + plaintext, nil
}

func (h *stubHasher) Verify(_ context.Context, plaintext, stored string) (bool, error) {
	h.mu.Lock()
	h.verifies = append(h.verifies, stored)
	h.mu.Unlock()
	if h.err != nil {
		return false, h.err
	}
	rest, ok := strings.CutPrefix(stored, "stub:")
	return ok && rest == plaintext, nil
}

func (h *stubHasher) verifyCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.verifies)
}

// ---------------------------------------------------------------------------
// Throttle
// ---------------------------------------------------------------------------

type stubThrottle struct {
	blockedFor time.Duration
	blockedErr error
	failures   map[string]int
	resets     []string
}

func newStubThrottle() *stubThrottle {
	return &stubThrottle{failures: make(map[string]int)}
}

func (t *stubThrottle) Blocked(_ context.Context, _ string) (time.Duration, error) {
	return t.blockedFor, t.blockedErr
}

func (t *stubThrottle) RecordFailure(_ context.Context, client string) error {
	t.failures[client]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, client string) error {
	t.resets = append(t.resets, client)
	return nil
}

// ---------------------------------------------------------------------------
// Gifts
// ---------------------------------------------------------------------------

type stubGiftRepo struct {
	gifts     map[int64]*domain.Gift
	nextID    int64
	createErr error
}

func newStubGiftRepo() *stubGiftRepo {
	return &stubGiftRepo{gifts: make(map[int64]*domain.Gift)}
}

func (r *stubGiftRepo) List(_ context.Context) ([]*domain.Gift, error) {
	out := make([]*domain.Gift, 0, len(r.gifts))
	for _, g := range r.gifts {
		clone := *g
		out = append(out, &clone)
	}
	return out, nil
}

func (r *stubGiftRepo) Create(_ context.Context, g *domain.Gift) (ports.WriteResult, error) {
	if r.createErr != nil {
		return ports.WriteResult{}, r.createErr
	}
	r.nextID++
	clone := *g
	clone.ID = r.nextID
	r.gifts[clone.ID] = &clone
	return ports.WriteResult{InsertedID: clone.ID, RowsAffected: 1}, nil
}

func (r *stubGiftRepo) SetPurchased(_ context.Context, id int64, purchased bool) (ports.WriteResult, error) {
	g, ok := r.gifts[id]
	if !ok {
		return ports.WriteResult{}, nil
	}
	g.IsPurchased = purchased
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (r *stubGiftRepo) Delete(_ context.Context, id int64) (ports.WriteResult, error) {
	if _, ok := r.gifts[id]; !ok {
		return ports.WriteResult{}, nil
	}
	delete(r.gifts, id)
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (r *stubGiftRepo) Count(_ context.Context) (int64, error) {
	return int64(len(r.gifts)), nil
}
