package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bizdir/bizdir/internal/biz"
	"github.com/bizdir/bizdir/internal/comments"
	"github.com/bizdir/bizdir/internal/observability"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/resource/resourcetest"
	"github.com/bizdir/bizdir/internal/shared"
)

type tokenTable map[string]*shared.Identity

func (t tokenTable) Resolve(_ context.Context, token string) (*shared.Identity, error) {
	id, ok := t[token]
	if !ok {
		return nil, shared.ErrTokenInvalid
	}
	return id, nil
}

func newTestRouter(t *testing.T, cfg *Config, checks map[string]Pinger) http.Handler {
	t.Helper()
	if cfg == nil {
		cfg = &Config{}
	}
	metrics := observability.NewMetrics()
	guard := rbac.Middleware{Registry: rbac.NewRegistry(), Recorder: metrics}
	bizStore := resourcetest.NewMemoryStore(
		func(b biz.Biz) int64 { return b.ID },
		func(b *biz.Biz, id int64) { b.ID = id },
	)
	hoursStore := resourcetest.NewMemoryStore(
		func(h biz.Hours) int64 { return h.ID },
		func(h *biz.Hours, id int64) { h.ID = id },
	)
	commentStore := resourcetest.NewMemoryStore(
		func(c comments.Comment) int64 { return c.ID },
		func(c *comments.Comment, id int64) { c.ID = id },
	)
	return NewRouter(RouterParams{
		Config: cfg,
		Resolver: tokenTable{
			"member-token": {ID: 1, Username: "ana", Groups: []string{rbac.GroupMember}},
			"plain-token":  {ID: 2, Username: "bob"},
		},
		BizHandler:      biz.NewHandler(biz.Params{Biz: bizStore, Hours: hoursStore, Guard: guard}),
		CommentsHandler: comments.NewHandler(nil, commentStore, guard, nil, nil),
		Metrics:         metrics,
		HealthChecks:    checks,
	})
}

func request(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.RemoteAddr = "192.0.2.10:5555"
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const bizPayload = `{"title":"Cafe Lale","address":"12 Valiasr St","city":"Tehran","phone":"+989123456789"}`

func TestRouterAuthorizationOutcomes(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodPost, "/api/biz", bizPayload, "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(h, http.MethodPost, "/api/biz", bizPayload, "stale-token").Code)
	assert.Equal(t, http.StatusForbidden, request(h, http.MethodPost, "/api/biz", bizPayload, "plain-token").Code)

	rr := request(h, http.MethodPost, "/api/biz", bizPayload, "member-token")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	rr = request(h, http.MethodPost, "/api/comments", `{"biz":1,"body":"lovely","user":2}`, "member-token")
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"user":1`)

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/biz/", "", "").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/biz/1", "", "").Code)
}

func TestRouterSecurityHeaders(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := request(h, http.MethodGet, "/api/hours", "", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "nosniff", rr.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestRouterNotFoundIsProblem(t *testing.T) {
	h := newTestRouter(t, nil, nil)

	rr := request(h, http.MethodGet, "/api/nothing", "", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
}

func TestRouterHealthz(t *testing.T) {
	ok := PingFunc(func(context.Context) error { return nil })
	down := PingFunc(func(context.Context) error { return errors.New("refused") })

	rr := request(newTestRouter(t, nil, map[string]Pinger{"postgres": ok}), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok","postgres":"ok"}`, rr.Body.String())

	rr = request(newTestRouter(t, nil, map[string]Pinger{"postgres": ok, "redis": down}), http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.JSONEq(t, `{"status":"degraded","postgres":"ok","redis":"unavailable"}`, rr.Body.String())
}

func TestRouterMetricsExposeDecisions(t *testing.T) {
	h := newTestRouter(t, nil, nil)
	request(h, http.MethodPost, "/api/biz", bizPayload, "plain-token")

	rr := request(h, http.MethodGet, "/metrics", "", "")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `bizdir_authz_decisions_total{action="create",outcome="deny",resource="biz"} 1`)
}

func TestRouterRateLimit(t *testing.T) {
	h := newTestRouter(t, &Config{RateLimitPerMinute: 2}, nil)

	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/biz", "", "").Code)
	assert.Equal(t, http.StatusOK, request(h, http.MethodGet, "/api/biz", "", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, request(h, http.MethodGet, "/api/biz", "", "").Code)
}
