package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/api/metrics"
	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/ports"
	"github.com/chatgrid/chat-service/internal/core/service"
	"github.com/chatgrid/chat-service/internal/core/token"
)

// SessionCookieName is the cookie carrying the encrypted session token. The
// __Host- prefix binds it to the origin host, Path=/ and Secure.
const SessionCookieName = "__Host-auth-token"

// principalKey is the echo context key the resolved principal is stored under.
const principalKey = "principal"

// Session resolves the session cookie into a principal and stores it in the
// request context. The request always proceeds: any failure along the way
// (missing cookie, undecryptable or expired token, unknown subject) downgrades
// the request to anonymous rather than rejecting it. Endpoints that need a
// user gate themselves with RequireAuth.
func Session(tokens ports.TokenService, resolver ports.PrincipalResolver, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				c.Set(principalKey, domain.Anonymous)
				return next(c)
			}

			tok, err := tokens.Verify(cookie.Value, time.Now().UTC())
			if err != nil {
				metrics.TokenFailuresTotal.WithLabelValues(tokenFailureReason(err)).Inc()
				log.Debug().Err(err).Str("path", c.Path()).Msg("session token rejected")
				c.Set(principalKey, domain.Anonymous)
				return next(c)
			}

			principal, err := resolver.Resolve(c.Request().Context(), tok)
			if err != nil {
				metrics.TokenFailuresTotal.WithLabelValues(tokenFailureReason(err)).Inc()
				log.Warn().Err(err).Str("subject", tok.Subject).Msg("session subject not resolvable")
				c.Set(principalKey, domain.Anonymous)
				return next(c)
			}

			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

func tokenFailureReason(err error) string {
	switch {
	case errors.Is(err, token.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, token.ErrTokenAuthentication):
		return "authentication"
	case errors.Is(err, service.ErrTokenExpired):
		return "expired"
	case errors.Is(err, domain.ErrUnknownSubject):
		return "unknown_subject"
	default:
		return "other"
	}
}

// RequireAuth rejects anonymous requests with 401. It must run after Session.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p, _ := c.Get(principalKey).(domain.Principal)
			if !p.IsAuthenticated() {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// Principal returns the principal stored by Session, or Anonymous when the
// middleware did not run.
func Principal(c echo.Context) domain.Principal {
	p, _ := c.Get(principalKey).(domain.Principal)
	return p
}

// SetPrincipal is a test hook for handler tests that bypass the middleware.
func SetPrincipal(c echo.Context, p domain.Principal) {
	c.Set(principalKey, p)
}
