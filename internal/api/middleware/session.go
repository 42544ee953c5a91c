package middleware

import (
	"context"
	"errors"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ronagung/wedding-registry/internal/api/cookie"
	"github.com/ronagung/wedding-registry/internal/api/metrics"
	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

// IdentityKey is the echo context key holding the domain.Identity of a gated
// request.
const IdentityKey = "identity"

type identityCtxKey struct{}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id domain.Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFrom returns the identity stored by SessionGate, if any.
func IdentityFrom(ctx context.Context) (domain.Identity, bool) {
	id, ok := ctx.Value(identityCtxKey{}).(domain.Identity)
	return id, ok
}

// SessionGateConfig wires the gate to its collaborators.
type SessionGateConfig struct {
	Sessions   ports.SessionStore
	Cookies    *cookie.Policy
	Production bool
	Logger     zerolog.Logger
}

// SessionGate authenticates a request by its session cookie, slides the
// session and refreshes the cookie, then injects the caller identity.
//
// A rejected request gets domain.ErrSessionInvalid. When the session itself
// was found invalid the response also carries a cleared cookie.
func SessionGate(cfg SessionGateConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			scope := cookie.ContextFromRequest(req, cfg.Production)

			token, ok := cfg.Cookies.Decode(req.Header)
			if !ok {
				metrics.SessionChecksTotal.WithLabelValues("missing").Inc()
				return domain.ErrSessionInvalid
			}

			rec, err := cfg.Sessions.Validate(req.Context(), token)
			if errors.Is(err, domain.ErrSessionInvalid) {
				metrics.SessionChecksTotal.WithLabelValues("invalid").Inc()
				c.Response().Header().Add(echo.HeaderSetCookie, cfg.Cookies.Clear(scope))
				return domain.ErrSessionInvalid
			}
			if err != nil {
				// fail closed, keep the cookie: the session may still be good
				metrics.SessionChecksTotal.WithLabelValues("error").Inc()
				cfg.Logger.Error().
					Err(err).
					Str("path", c.Path()).
					Str("request_id", c.Response().Header().Get(echo.HeaderXRequestID)).
					Msg("session lookup failed")
				return domain.ErrSessionInvalid
			}

			expiresAt, err := cfg.Sessions.Slide(req.Context(), rec.Session.ID)
			if err != nil {
				metrics.SessionSlideFailuresTotal.Inc()
				cfg.Logger.Warn().
					Err(err).
					Str("session_id", rec.Session.ID).
					Msg("session slide failed, keeping previous expiry")
				expiresAt = rec.Session.ExpiresAt
			}
			c.Response().Header().Add(echo.HeaderSetCookie, cfg.Cookies.Encode(token, expiresAt, scope))

			metrics.SessionChecksTotal.WithLabelValues("valid").Inc()
			id := rec.Account.Identity()
			c.Set(IdentityKey, id)
			c.SetRequest(req.WithContext(WithIdentity(req.Context(), id)))

			return next(c)
		}
	}
}
