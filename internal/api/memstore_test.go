package api

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// memStore is an in-memory backing store for router tests.
type memStore struct {
	mu       sync.Mutex
	accounts map[int64]*domain.Account
	sessions map[string]domain.Session // by token
	gifts    map[int64]*domain.Gift
	nextID   int64
}

func newMemStore() *memStore {
	return &memStore{
		accounts: map[int64]*domain.Account{},
		sessions: map[string]domain.Session{},
		gifts:    map[int64]*domain.Gift{},
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

// --- accounts ---

type memAccounts struct{ *memStore }

var (
	_ ports.AccountRepository = memAccounts{}
	_ ports.SessionRepository = memSessions{}
	_ ports.GiftRepository    = memGifts{}
	_ ports.LoginThrottle     = (*memThrottle)(nil)
)

func (m memAccounts) FindByUsername(_ context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.accounts {
		if a.Username == username {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (m memAccounts) Create(_ context.Context, a *domain.Account) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.accounts {
		if existing.Username == a.Username {
			return ports.WriteResult{}, domain.ErrUsernameTaken
		}
	}
	cp := *a
	cp.ID = m.id()
	m.accounts[cp.ID] = &cp
	return ports.WriteResult{InsertedID: cp.ID, RowsAffected: 1}, nil
}

// --- sessions ---

type memSessions struct{ *memStore }

func (m memSessions) Insert(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[s.Token]; ok {
		return domain.ErrDuplicateToken
	}
	m.sessions[s.Token] = *s
	return nil
}

func (m memSessions) FindByToken(_ context.Context, token string) (*domain.SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	rec := &domain.SessionRecord{Session: s}
	if a, ok := m.accounts[s.UserID]; ok {
		cp := *a
		rec.Account = &cp
	}
	return rec, nil
}

func (m memSessions) ExtendExpiry(_ context.Context, id string, expiresAt time.Time) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for token, s := range m.sessions {
		if s.ID != id {
			continue
		}
		if expiresAt.After(s.ExpiresAt) {
			s.ExpiresAt = expiresAt
			m.sessions[token] = s
		}
		return s.ExpiresAt, nil
	}
	return time.Time{}, domain.ErrSessionNotFound
}

func (m memSessions) DeleteByToken(_ context.Context, token string) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[token]; !ok {
		return ports.WriteResult{}, nil
	}
	delete(m.sessions, token)
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (m memSessions) DeleteIfExpired(_ context.Context, token string, now time.Time) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[token]
	if !ok || s.ExpiresAt.After(now) {
		return ports.WriteResult{}, nil
	}
	delete(m.sessions, token)
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (m memSessions) DeleteExpired(_ context.Context, now time.Time) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for token, s := range m.sessions {
		if !s.ExpiresAt.After(now) {
			delete(m.sessions, token)
			n++
		}
	}
	return ports.WriteResult{RowsAffected: n}, nil
}

// --- gifts ---

type memGifts struct{ *memStore }

func (m memGifts) List(_ context.Context) ([]*domain.Gift, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*domain.Gift, 0, len(m.gifts))
	for _, g := range m.gifts {
		cp := *g
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m memGifts) Create(_ context.Context, g *domain.Gift) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *g
	cp.ID = m.id()
	m.gifts[cp.ID] = &cp
	return ports.WriteResult{InsertedID: cp.ID, RowsAffected: 1}, nil
}

func (m memGifts) SetPurchased(_ context.Context, id int64, purchased bool) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gifts[id]
	if !ok {
		return ports.WriteResult{}, nil
	}
	g.IsPurchased = purchased
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (m memGifts) Delete(_ context.Context, id int64) (ports.WriteResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.gifts[id]; !ok {
		return ports.WriteResult{}, nil
	}
	delete(m.gifts, id)
	return ports.WriteResult{RowsAffected: 1}, nil
}

func (m memGifts) Count(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.gifts)), nil
}

// --- login throttle ---

// memThrottle blocks a client for a minute once it has limit failures and
// remembers every key it was asked about.
type memThrottle struct {
	mu       sync.Mutex
	limit    int
	failures map[string]int
	seen     []string
}

func newMemThrottle(limit int) *memThrottle {
	return &memThrottle{limit: limit, failures: map[string]int{}}
}

func (m *memThrottle) Blocked(_ context.Context, client string) (time.Duration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seen = append(m.seen, client)
	if m.failures[client] >= m.limit {
		return time.Minute, nil
	}
	return 0, nil
}

func (m *memThrottle) RecordFailure(_ context.Context, client string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[client]++
	return nil
}

func (m *memThrottle) Reset(_ context.Context, client string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.failures, client)
	return nil
}

func (m *memThrottle) keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.seen...)
}
