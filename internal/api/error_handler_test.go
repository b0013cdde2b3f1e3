package api

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/service"
)

func TestResolveError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unauthenticated", domain.ErrUnauthenticated, http.StatusUnauthorized},
		{"invalid credentials", domain.ErrInvalidCredentials, http.StatusUnauthorized},
		{"unknown subject", domain.ErrUnknownSubject, http.StatusUnauthorized},
		{"expired token", service.ErrTokenExpired, http.StatusUnauthorized},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"chat not found", domain.ErrChatNotFound, http.StatusNotFound},
		{"message not found", domain.ErrMessageNotFound, http.StatusNotFound},
		{"member not found", domain.ErrMemberNotFound, http.StatusNotFound},
		{"user not found", domain.ErrUserNotFound, http.StatusNotFound},
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"member exists", domain.ErrMemberExists, http.StatusConflict},
		{"last admin", domain.ErrLastAdmin, http.StatusConflict},
		{"version conflict", domain.ErrVersionConflict, http.StatusConflict},
		{"invalid role", domain.ErrInvalidRole, http.StatusUnprocessableEntity},
		{"echo error", echo.NewHTTPError(http.StatusTeapot, "kettle"), http.StatusTeapot},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError},
	}

	e := echo.New()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			code, msg := resolveError(tc.err, zerolog.Nop(), c)
			if code != tc.code {
				t.Fatalf("code = %d, want %d", code, tc.code)
			}
			if msg == "" {
				t.Fatalf("empty message")
			}
		})
	}
}

func TestResolveError_HidesInternalDetail(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	_, msg := resolveError(errors.New("mongo: connection reset by peer"), zerolog.Nop(), c)
	if msg != "internal server error" {
		t.Fatalf("internal detail leaked: %q", msg)
	}
}
