package rbac

import (
	"log/slog"
	"net/http"

	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/shared"
)

// DecisionRecorder observes authorization outcomes.
type DecisionRecorder interface {
	ObserveDecision(resource, action string, allowed bool)
}

// Middleware wires the authorization policy into HTTP handlers.
type Middleware struct {
	Registry Registry
	Logger   *slog.Logger
	Recorder DecisionRecorder
}

// Require lets the request through only when the caller may perform action
// on res. Denied anonymous callers get 401, denied authenticated callers 403.
func (m Middleware) Require(res Resource, action Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller := shared.IdentityFromContext(r.Context())
			allowed := m.Registry.Authorize(shared.GroupsOf(caller), res, action)
			if m.Recorder != nil {
				m.Recorder.ObserveDecision(string(res), string(action), allowed)
			}
			if allowed {
				next.ServeHTTP(w, r)
				return
			}
			if caller == nil {
				httpx.RespondError(w, httpx.ErrUnauthorized)
				return
			}
			if m.Logger != nil {
				m.Logger.Info("rbac denied",
					slog.Int64("user_id", caller.ID),
					slog.String("resource", string(res)),
					slog.String("action", string(action)),
				)
			}
			httpx.RespondError(w, httpx.ErrForbidden)
		})
	}
}
