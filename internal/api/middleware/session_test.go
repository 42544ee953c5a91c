package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ronagung/wedding-registry/internal/api/cookie"
	"github.com/ronagung/wedding-registry/internal/core/domain"
)

var gateNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type stubSessionStore struct {
	validateFn func(ctx context.Context, token string) (*domain.SessionRecord, error)
	slideFn    func(ctx context.Context, sessionID string) (time.Time, error)
	slid       []string
}

func (s *stubSessionStore) Create(ctx context.Context, userID int64) (string, time.Time, error) {
	return "", time.Time{}, errors.New("not used")
}

func (s *stubSessionStore) Validate(ctx context.Context, token string) (*domain.SessionRecord, error) {
	return s.validateFn(ctx, token)
}

func (s *stubSessionStore) Slide(ctx context.Context, sessionID string) (time.Time, error) {
	s.slid = append(s.slid, sessionID)
	return s.slideFn(ctx, sessionID)
}

func (s *stubSessionStore) Revoke(ctx context.Context, token string) error {
	return nil
}

func liveRecord() *domain.SessionRecord {
	return &domain.SessionRecord{
		Session: domain.Session{
			ID:        "sess-1",
			Token:     "good-token",
			UserID:    7,
			ExpiresAt: gateNow.Add(time.Hour),
		},
		Account: &domain.Account{ID: 7, Username: "alice", Role: domain.RoleOwner, IsActive: true},
	}
}

func newGate(store *stubSessionStore) echo.MiddlewareFunc {
	policy := cookie.NewPolicy("cms_session", "ronagung.dev", "https://cms.ronagung.dev").
		WithClock(func() time.Time { return gateNow })
	return SessionGate(SessionGateConfig{
		Sessions: store,
		Cookies:  policy,
		Logger:   zerolog.Nop(),
	})
}

func gatedRequest(cookieHeader string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	if cookieHeader != "" {
		req.Header.Set("Cookie", cookieHeader)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestSessionGate_ValidSession(t *testing.T) {
	store := &stubSessionStore{
		validateFn: func(ctx context.Context, token string) (*domain.SessionRecord, error) {
			if token != "good-token" {
				t.Fatalf("unexpected token %q", token)
			}
			return liveRecord(), nil
		},
		slideFn: func(ctx context.Context, sessionID string) (time.Time, error) {
			return gateNow.Add(7 * 24 * time.Hour), nil
		},
	}
	c, rec := gatedRequest("theme=dark; cms_session=good-token")

	called := false
	handler := newGate(store)(func(c echo.Context) error {
		called = true
		id, ok := c.Get(IdentityKey).(domain.Identity)
		if !ok {
			t.Fatalf("identity not set on echo context")
		}
		if id.UserID != 7 || id.Username != "alice" || id.Role != domain.RoleOwner {
			t.Fatalf("unexpected identity %+v", id)
		}
		if fromCtx, ok := IdentityFrom(c.Request().Context()); !ok || fromCtx != id {
			t.Fatalf("identity not set on request context")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if len(store.slid) != 1 || store.slid[0] != "sess-1" {
		t.Fatalf("expected one slide of sess-1, got %v", store.slid)
	}

	setCookie := rec.Header().Get(echo.HeaderSetCookie)
	if !strings.Contains(setCookie, "cms_session=good-token") || !strings.Contains(setCookie, "Max-Age=604800") {
		t.Fatalf("expected refreshed cookie, got %q", setCookie)
	}
}

func TestSessionGate_MissingCookie(t *testing.T) {
	store := &stubSessionStore{
		validateFn: func(ctx context.Context, token string) (*domain.SessionRecord, error) {
			t.Fatalf("store must not be called without a cookie")
			return nil, nil
		},
	}
	c, rec := gatedRequest("theme=dark")

	handler := newGate(store)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	err := handler(c)
	if !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("no cookie should be set when none was sent")
	}
}

func TestSessionGate_InvalidSessionClearsCookie(t *testing.T) {
	store := &stubSessionStore{
		validateFn: func(ctx context.Context, token string) (*domain.SessionRecord, error) {
			return nil, domain.ErrSessionInvalid
		},
	}
	c, rec := gatedRequest("cms_session=stale")

	handler := newGate(store)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	setCookie := rec.Header().Get(echo.HeaderSetCookie)
	if !strings.HasPrefix(setCookie, "cms_session=;") || !strings.Contains(setCookie, "Max-Age=0") {
		t.Fatalf("expected cleared cookie, got %q", setCookie)
	}
	if len(store.slid) != 0 {
		t.Fatalf("invalid session must not be slid")
	}
}

func TestSessionGate_StoreFailureKeepsCookie(t *testing.T) {
	store := &stubSessionStore{
		validateFn: func(ctx context.Context, token string) (*domain.SessionRecord, error) {
			return nil, errors.New("mongo down")
		},
	}
	c, rec := gatedRequest("cms_session=good-token")

	handler := newGate(store)(func(c echo.Context) error {
		t.Fatalf("should not reach next")
		return nil
	})

	if err := handler(c); !errors.Is(err, domain.ErrSessionInvalid) {
		t.Fatalf("expected ErrSessionInvalid, got %v", err)
	}
	if rec.Header().Get(echo.HeaderSetCookie) != "" {
		t.Fatalf("cookie must be kept on a store failure")
	}
}

func TestSessionGate_SlideFailureKeepsPreviousExpiry(t *testing.T) {
	store := &stubSessionStore{
		validateFn: func(ctx context.Context, token string) (*domain.SessionRecord, error) {
			return liveRecord(), nil
		},
		slideFn: func(ctx context.Context, sessionID string) (time.Time, error) {
			return time.Time{}, errors.New("write conflict")
		},
	}
	c, rec := gatedRequest("cms_session=good-token")

	called := false
	handler := newGate(store)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("request should proceed when the slide fails")
	}
	if setCookie := rec.Header().Get(echo.HeaderSetCookie); !strings.Contains(setCookie, "Max-Age=3600") {
		t.Fatalf("expected cookie with previous expiry, got %q", setCookie)
	}
}

func TestSessionGate_CMSOriginGetsCrossSiteCookie(t *testing.T) {
	store := &stubSessionStore{
		validateFn: func(ctx context.Context, token string) (*domain.SessionRecord, error) {
			return liveRecord(), nil
		},
		slideFn: func(ctx context.Context, sessionID string) (time.Time, error) {
			return gateNow.Add(time.Hour), nil
		},
	}
	c, rec := gatedRequest("cms_session=good-token")
	c.Request().Header.Set(echo.HeaderOrigin, "https://cms.ronagung.dev")

	handler := newGate(store)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	setCookie := rec.Header().Get(echo.HeaderSetCookie)
	for _, want := range []string{"SameSite=None", "Domain=ronagung.dev", "Partitioned"} {
		if !strings.Contains(setCookie, want) {
			t.Errorf("cookie %q missing %q", setCookie, want)
		}
	}
}
