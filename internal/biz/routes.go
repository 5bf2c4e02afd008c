// Package biz exposes businesses and their opening hours.
package biz

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/resource"
	"github.com/bizdir/bizdir/internal/shared"
)

// Handler mounts the biz and hours endpoints.
type Handler struct {
	biz   *resource.Endpoint[Biz]
	hours *resource.Endpoint[Hours]
}

// Params groups Handler dependencies.
type Params struct {
	Biz       resource.Store[Biz]
	Hours     resource.Store[Hours]
	Guard     rbac.Middleware
	Validator *validator.Validate
	Logger    *slog.Logger
	Audit     shared.AuditRecorder
}

// NewHandler builds Handler instance.
func NewHandler(p Params) *Handler {
	return &Handler{
		biz: resource.New(resource.Config[Biz]{
			Resource:  rbac.ResourceBiz,
			Store:     p.Biz,
			Guard:     p.Guard,
			Validator: p.Validator,
			Logger:    p.Logger,
			Audit:     p.Audit,
			ID:        bizID,
			Preserve:  preserveBiz,
		}),
		hours: resource.New(resource.Config[Hours]{
			Resource:  rbac.ResourceHours,
			Store:     p.Hours,
			Guard:     p.Guard,
			Validator: p.Validator,
			Logger:    p.Logger,
			Audit:     p.Audit,
			ID:        hoursID,
			Preserve:  preserveHours,
		}),
	}
}

// MountBiz registers the business routes.
func (h *Handler) MountBiz(r chi.Router) {
	h.biz.MountRoutes(r)
}

// MountHours registers the opening hours routes.
func (h *Handler) MountHours(r chi.Router) {
	h.hours.MountRoutes(r)
}
