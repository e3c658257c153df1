package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/motogear/resource-api/internal/api/metrics"
	"github.com/motogear/resource-api/internal/core/domain"
	"github.com/motogear/resource-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account and signs it in.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Handle and password"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	return h.credentials(c, "register", http.StatusCreated, h.authService.Register)
}

// Login exchanges a handle and password for a bearer token. Unknown handles
// and wrong passwords get the same 401.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      credentialsRequest  true  "Handle and password"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	return h.credentials(c, "login", http.StatusOK, h.authService.Login)
}

// Me returns the caller's account.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.authService.Profile(c.Request().Context(), id.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profileResponse{
		ID:        user.ID,
		Handle:    user.Handle,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.UTC(),
	})
}

type credentialsFunc func(ctx context.Context, handle, password string) (*ports.AuthResult, error)

func (h *AuthHandler) credentials(c echo.Context, op string, status int, fn credentialsFunc) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(op, "invalid_input").Inc()
		return c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid payload"})
	}

	res, err := fn(c.Request().Context(), req.handle(), req.Password)
	if err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues(op, attemptResult(err)).Inc()
		return err
	}

	metrics.AuthAttemptsTotal.WithLabelValues(op, "success").Inc()
	return c.JSON(status, toAuthResponse(res))
}

func attemptResult(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, domain.ErrUserExists):
		return "conflict"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	default:
		return "error"
	}
}
