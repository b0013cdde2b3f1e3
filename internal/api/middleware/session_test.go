package middleware

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/chatgrid/chat-service/internal/core/domain"
	"github.com/chatgrid/chat-service/internal/core/service"
	"github.com/chatgrid/chat-service/internal/core/token"
)

type staticResolver struct {
	principals map[string]domain.Principal
}

func (r *staticResolver) Resolve(_ context.Context, tok domain.Token) (domain.Principal, error) {
	p, ok := r.principals[tok.Subject]
	if !ok {
		return domain.Anonymous, domain.ErrUnknownSubject
	}
	return p, nil
}

func newSessionFixture(t *testing.T) (*service.TokenService, *staticResolver, echo.MiddlewareFunc) {
	t.Helper()
	codec, err := token.NewCodec(bytes.Repeat([]byte{0x42}, token.KeySize))
	if err != nil {
		t.Fatalf("new codec: %v", err)
	}
	tokens := service.NewTokenService(codec, time.Hour)
	resolver := &staticResolver{principals: map[string]domain.Principal{
		"u1": domain.NewPrincipal("u1", "alice", []string{domain.AuthorityUser}),
	}}
	return tokens, resolver, Session(tokens, resolver, zerolog.Nop())
}

func runSession(t *testing.T, mw echo.MiddlewareFunc, cookieValue string) domain.Principal {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if cookieValue != "" {
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: cookieValue})
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var got domain.Principal
	handler := mw(func(c echo.Context) error {
		got = Principal(c)
		return c.NoContent(http.StatusOK)
	})
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	return got
}

func TestSession_ValidCookie(t *testing.T) {
	tokens, _, mw := newSessionFixture(t)
	_, raw, err := tokens.Issue("u1", []string{domain.AuthorityUser}, time.Now().UTC())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p := runSession(t, mw, raw)
	if !p.IsAuthenticated() || p.UserID != "u1" || p.Username != "alice" {
		t.Fatalf("unexpected principal: %+v", p)
	}
}

func TestSession_NoCookie(t *testing.T) {
	_, _, mw := newSessionFixture(t)

	p := runSession(t, mw, "")
	if p.IsAuthenticated() {
		t.Fatalf("expected anonymous, got %+v", p)
	}
}

func TestSession_GarbageCookie(t *testing.T) {
	_, _, mw := newSessionFixture(t)

	p := runSession(t, mw, "not-a-token")
	if p.IsAuthenticated() {
		t.Fatalf("garbage cookie must resolve to anonymous")
	}
}

func TestSession_TamperedCookie(t *testing.T) {
	tokens, _, mw := newSessionFixture(t)
	_, raw, err := tokens.Issue("u1", []string{domain.AuthorityUser}, time.Now().UTC())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	b := []byte(raw)
	b[len(b)/2] ^= 0x01
	p := runSession(t, mw, string(b))
	if p.IsAuthenticated() {
		t.Fatalf("tampered cookie must resolve to anonymous")
	}
}

func TestSession_ExpiredCookie(t *testing.T) {
	tokens, _, mw := newSessionFixture(t)
	_, raw, err := tokens.Issue("u1", []string{domain.AuthorityUser}, time.Now().UTC().Add(-2*time.Hour))
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p := runSession(t, mw, raw)
	if p.IsAuthenticated() {
		t.Fatalf("expired session must resolve to anonymous")
	}
}

func TestSession_UnknownSubject(t *testing.T) {
	tokens, _, mw := newSessionFixture(t)
	_, raw, err := tokens.Issue("deleted-user", []string{domain.AuthorityUser}, time.Now().UTC())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	p := runSession(t, mw, raw)
	if p.IsAuthenticated() {
		t.Fatalf("unknown subject must resolve to anonymous")
	}
}

func TestRequireAuth(t *testing.T) {
	e := echo.New()

	next := func(c echo.Context) error { return c.NoContent(http.StatusOK) }
	handler := RequireAuth()(next)

	// Anonymous request is rejected.
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetPrincipal(c, domain.Anonymous)
	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous, got %d", rec.Code)
	}

	// Authenticated request passes.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	SetPrincipal(c, domain.NewPrincipal("u1", "alice", []string{domain.AuthorityUser}))
	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for authenticated, got %d", rec.Code)
	}
}
