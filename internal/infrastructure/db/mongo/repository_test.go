package mongo

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// These tests need a running MongoDB and are skipped unless MONGO_TEST_URI is
// set. Each test works in its own throwaway database.
func setupSessions(t *testing.T) *SessionRepository {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI not set")
	}

	ctx := context.Background()
	client, db, err := Connect(ctx, Options{URI: uri, Database: "registry_test_" + uuid.NewString()[:8]})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Drop(ctx)
		_ = client.Disconnect(ctx)
	})

	counters := NewCounters(db)
	accounts := NewAccountRepository(db, counters)
	sessions := NewSessionRepository(db)
	if err := EnsureIndexes(ctx, accounts, sessions, NewGiftRepository(db, counters)); err != nil {
		t.Fatalf("indexes: %v", err)
	}

	res, err := accounts.Create(ctx, &domain.Account{Username: "alice", PasswordHash: "x:y", Role: domain.RoleOwner, IsActive: true})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	if res.InsertedID != 1 {
		t.Fatalf("expected first account id 1, got %d", res.InsertedID)
	}
	if _, err := accounts.Create(ctx, &domain.Account{Username: "alice"}); !errors.Is(err, domain.ErrUsernameTaken) {
		t.Fatalf("expected ErrUsernameTaken, got %v", err)
	}
	return sessions
}

func TestSessionRepository_Lifecycle(t *testing.T) {
	repo := setupSessions(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	sess := &domain.Session{ID: uuid.NewString(), Token: "tok", UserID: 1, ExpiresAt: now.Add(time.Hour), CreatedAt: now}
	if err := repo.Insert(ctx, sess); err != nil {
		t.Fatalf("insert: %v", err)
	}
	dup := *sess
	dup.ID = uuid.NewString()
	if err := repo.Insert(ctx, &dup); !errors.Is(err, domain.ErrDuplicateToken) {
		t.Fatalf("expected ErrDuplicateToken, got %v", err)
	}

	rec, err := repo.FindByToken(ctx, "tok")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if rec.Account == nil || rec.Account.Username != "alice" {
		t.Fatalf("expected joined account, got %+v", rec.Account)
	}

	later := now.Add(2 * time.Hour)
	got, err := repo.ExtendExpiry(ctx, sess.ID, later)
	if err != nil || !got.Equal(later) {
		t.Fatalf("extend = %v, %v", got, err)
	}
	got, err = repo.ExtendExpiry(ctx, sess.ID, now.Add(time.Minute))
	if err != nil || !got.Equal(later) {
		t.Fatalf("extend must not move backwards: %v, %v", got, err)
	}

	res, err := repo.DeleteIfExpired(ctx, "tok", now)
	if err != nil || res.RowsAffected != 0 {
		t.Fatalf("live session must survive conditional delete: %+v %v", res, err)
	}
	res, err = repo.DeleteByToken(ctx, "tok")
	if err != nil || res.RowsAffected != 1 {
		t.Fatalf("delete = %+v, %v", res, err)
	}
	if _, err := repo.FindByToken(ctx, "tok"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
