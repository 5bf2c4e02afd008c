package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bizdir/bizdir/internal/shared"
)

type resolverFunc func(ctx context.Context, token string) (*shared.Identity, error)

func (f resolverFunc) Resolve(ctx context.Context, token string) (*shared.Identity, error) {
	return f(ctx, token)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Token abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer ", "", false},
		{"Bearer a b", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func serveAuthenticated(resolver Resolver, header string) (*httptest.ResponseRecorder, *shared.Identity, bool) {
	var seen *shared.Identity
	reached := false
	h := Authenticate(resolver, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		seen = shared.IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr, seen, reached
}

func TestAuthenticateAnonymous(t *testing.T) {
	resolver := resolverFunc(func(context.Context, string) (*shared.Identity, error) {
		t.Fatal("resolver must not be called")
		return nil, nil
	})

	rr, seen, reached := serveAuthenticated(resolver, "")

	assert.True(t, reached)
	assert.Nil(t, seen)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAuthenticateValidToken(t *testing.T) {
	want := &shared.Identity{ID: 9, Groups: []string{"member"}}
	resolver := resolverFunc(func(_ context.Context, token string) (*shared.Identity, error) {
		assert.Equal(t, "good", token)
		return want, nil
	})

	_, seen, reached := serveAuthenticated(resolver, "Token good")

	assert.True(t, reached)
	assert.Equal(t, want, seen)
}

func TestAuthenticateRejects(t *testing.T) {
	invalid := resolverFunc(func(context.Context, string) (*shared.Identity, error) {
		return nil, shared.ErrTokenInvalid
	})
	broken := resolverFunc(func(context.Context, string) (*shared.Identity, error) {
		return nil, errors.New("redis unavailable")
	})

	rr, _, reached := serveAuthenticated(invalid, "Bearer stale")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _, reached = serveAuthenticated(invalid, "Basic abc")
	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _, reached = serveAuthenticated(broken, "Bearer any")
	assert.False(t, reached)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
