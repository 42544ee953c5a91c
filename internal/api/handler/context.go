package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/ronagung/wedding-registry/internal/api/middleware"
	"github.com/ronagung/wedding-registry/internal/core/domain"
)

// ctxIdentity returns the caller injected by middleware.SessionGate. A
// missing identity means the route was mounted without the gate; it is
// reported as an invalid session rather than trusted.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := c.Get(middleware.IdentityKey).(domain.Identity)
	if !ok || id.UserID == 0 {
		return domain.Identity{}, domain.ErrSessionInvalid
	}
	return id, nil
}
