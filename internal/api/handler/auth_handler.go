package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/chatgrid/chat-service/internal/api/metrics"
	"github.com/chatgrid/chat-service/internal/api/middleware"
	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
)

// AuthHandler owns the account endpoints and the session cookie lifecycle:
// login issues an encrypted session token and plants it as a cookie, logout
// expires the cookie. No token material ever appears in a response body.
type AuthHandler struct {
	authService ports.AuthService
	tokens      ports.TokenService
}

func NewAuthHandler(authService ports.AuthService, tokens ports.TokenService) *AuthHandler {
	return &AuthHandler{authService: authService, tokens: tokens}
}

type loginResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /api/user/registration [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.authService.Register(c.Request().Context(), req.Username, req.Password, req.Email)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Tags         user
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /api/user/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	principal, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		}
		return err
	}

	tok, raw, err := h.tokens.Issue(principal.UserID, principal.Authorities, time.Now().UTC())
	if err != nil {
		return err
	}

	c.SetCookie(sessionCookie(raw, tok.ExpiresAt))
	metrics.LoginsTotal.WithLabelValues("success").Inc()

	return c.JSON(http.StatusOK, loginResponse{ID: principal.UserID, Username: principal.Username})
}

// Logout expires the session cookie. It succeeds regardless of whether a
// session was present, so it is safe to call repeatedly.
//
// @Summary      Logout
// @Tags         user
// @Success      204  "cookie cleared"
// @Router       /api/user/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	c.SetCookie(clearedSessionCookie())
	return c.NoContent(http.StatusNoContent)
}

// GetUser returns a user's public profile.
//
// @Summary      Get user by ID
// @Tags         user
// @Produce      json
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  userResponse
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/user/{id} [get]
func (h *AuthHandler) GetUser(c echo.Context) error {
	user, err := h.authService.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponse(user))
}

// sessionCookie builds the __Host- prefixed session cookie. The prefix
// requires Secure, Path=/ and no Domain attribute; browsers reject the
// cookie otherwise.
func sessionCookie(raw string, expiresAt time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    raw,
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(expiresAt) / time.Second),
	}
}

func clearedSessionCookie() *http.Cookie {
	return &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Secure:   true,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	}
}
