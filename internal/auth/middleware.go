package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/shared"
)

// Resolver turns bearer tokens into identities.
type Resolver interface {
	Resolve(ctx context.Context, token string) (*shared.Identity, error)
}

// Authenticate resolves the Authorization header into a caller identity.
// Requests without credentials continue anonymously; invalid credentials
// are rejected with 401 before any handler runs.
func Authenticate(resolver Resolver, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := strings.TrimSpace(r.Header.Get("Authorization"))
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := bearerToken(header)
			if !ok {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			id, err := resolver.Resolve(r.Context(), token)
			if err != nil {
				if errors.Is(err, shared.ErrTokenInvalid) {
					httpx.RespondError(w, httpx.ErrUnauthorized)
					return
				}
				if logger != nil {
					logger.Error("resolve identity", slog.Any("error", err))
				}
				httpx.RespondError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), id)))
		})
	}
}

// bearerToken accepts the "Bearer" and "Token" schemes.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return token, true
	default:
		return "", false
	}
}

// TokenFromRequest extracts the presented token, if any.
func TokenFromRequest(r *http.Request) string {
	token, _ := bearerToken(strings.TrimSpace(r.Header.Get("Authorization")))
	return token
}
