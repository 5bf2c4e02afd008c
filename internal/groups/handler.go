package groups

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/resource"
	"github.com/bizdir/bizdir/internal/shared"
)

// Handler manages group membership endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	rbac      rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, v *validator.Validate, guard rbac.Middleware) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if v == nil {
		v = resource.NewValidator()
	}
	return &Handler{logger: logger, service: service, validator: v, rbac: guard}
}

// MountRoutes registers group routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(h.rbac.Require(rbac.ResourceGroup, rbac.ActionList)).Get("/", h.listGroups)
	r.With(h.rbac.Require(rbac.ResourceGroup, rbac.ActionCreate)).Post("/{name}/members", h.grant)
	r.With(h.rbac.Require(rbac.ResourceGroup, rbac.ActionDestroy)).Delete("/{name}/members/{user}", h.revoke)
}

func (h *Handler) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListGroups(r.Context())
	if err != nil {
		h.fail(w, "list groups", err)
		return
	}
	httpx.JSON(w, http.StatusOK, groups)
}

func (h *Handler) grant(w http.ResponseWriter, r *http.Request) {
	var m Membership
	if err := httpx.DecodeJSON(w, r, &m); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := resource.Validate(h.validator, m); err != nil {
		httpx.RespondError(w, err)
		return
	}
	caller := shared.IdentityFromContext(r.Context())
	if err := h.service.Grant(r.Context(), caller, chi.URLParam(r, "name"), m.UserID); err != nil {
		h.fail(w, "grant membership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) revoke(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user"), 10, 64)
	if err != nil || userID <= 0 {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	caller := shared.IdentityFromContext(r.Context())
	if err := h.service.Revoke(r.Context(), caller, chi.URLParam(r, "name"), userID); err != nil {
		h.fail(w, "revoke membership", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if !httpx.IsClientError(err) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}
