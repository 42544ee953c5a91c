package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/ronagung/wedding-registry/internal/api/cookie"
	"github.com/ronagung/wedding-registry/internal/api/metrics"
	"github.com/ronagung/wedding-registry/internal/core/domain"
	"github.com/ronagung/wedding-registry/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	cookies     *cookie.Policy
	production  bool
	log         zerolog.Logger
}

func NewAuthHandler(authService ports.AuthService, cookies *cookie.Policy, production bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookies:     cookies,
		production:  production,
		log:         log,
	}
}

// Login verifies CMS credentials and starts a session.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Header       200   {string}  Set-Cookie  "cms_session=<token>; HttpOnly; Secure"
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_payload").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues("invalid_payload").Inc()
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.RealIP(),
	})
	if err != nil {
		metrics.LoginAttemptsTotal.WithLabelValues(loginOutcome(err)).Inc()
		return err
	}

	scope := cookie.ContextFromRequest(c.Request(), h.production)
	c.Response().Header().Add(echo.HeaderSetCookie, h.cookies.Encode(res.Token, res.ExpiresAt, scope))
	metrics.LoginAttemptsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{
		Message: "success",
		Data:    loginData{Username: res.Account.Username, Role: res.Account.Role},
	})
}

// Logout ends the current session, if any. It always succeeds.
//
// @Summary      Logout
// @Tags         auth
// @Produce      json
// @Success      200  {object}  successResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	if token, ok := h.cookies.Decode(c.Request().Header); ok {
		if err := h.authService.Logout(c.Request().Context(), token); err != nil {
			h.log.Error().Err(err).Msg("logout: failed to revoke session")
		}
	}

	scope := cookie.ContextFromRequest(c.Request(), h.production)
	c.Response().Header().Add(echo.HeaderSetCookie, h.cookies.Clear(scope))
	metrics.LogoutsTotal.Inc()

	return c.JSON(http.StatusOK, successResponse{Message: "success"})
}

// Me returns the caller resolved by the session gate.
//
// @Summary      Current CMS user
// @Tags         auth
// @Produce      json
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, meResponse{Message: "success", Data: id})
}

func loginOutcome(err error) string {
	var rle *domain.RateLimitError
	var ve *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.As(err, &rle):
		return "throttled"
	case errors.As(err, &ve):
		return "invalid_payload"
	default:
		return "error"
	}
}
