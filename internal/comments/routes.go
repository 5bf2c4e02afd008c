package comments

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/resource"
	"github.com/bizdir/bizdir/internal/shared"
)

// Handler mounts the comment endpoint.
type Handler struct {
	endpoint *resource.Endpoint[Comment]
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store resource.Store[Comment], guard rbac.Middleware, v *validator.Validate, audit shared.AuditRecorder) *Handler {
	return &Handler{endpoint: resource.New(resource.Config[Comment]{
		Resource:  rbac.ResourceComment,
		Store:     store,
		Guard:     guard,
		Validator: v,
		Logger:    logger,
		Audit:     audit,
		ID:        commentID,
		Stamp:     stampOwner,
		Preserve:  preserveComment,
	})}
}

// MountRoutes registers comment routes.
func (h *Handler) MountRoutes(r chi.Router) {
	h.endpoint.MountRoutes(r)
}
