package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// OriginGuard rejects requests whose Origin header is present and not in
// allowed. Requests without an Origin (same-origin navigations, curl) pass.
func OriginGuard(allowed []string) echo.MiddlewareFunc {
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		o = strings.TrimSuffix(strings.TrimSpace(o), "/")
		if o != "" {
			set[o] = struct{}{}
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" {
				return next(c)
			}
			if _, ok := set[strings.TrimSuffix(origin, "/")]; !ok {
				return echo.NewHTTPError(http.StatusForbidden, "origin not allowed")
			}
			return next(c)
		}
	}
}
