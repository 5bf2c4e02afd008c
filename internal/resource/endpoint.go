package resource

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bizdir/bizdir/internal/platform/httpx"
	"github.com/bizdir/bizdir/internal/rbac"
	"github.com/bizdir/bizdir/internal/shared"
)

// Config describes one resource type exposed through an Endpoint.
type Config[T any] struct {
	Resource  rbac.Resource
	Store     Store[T]
	Guard     rbac.Middleware
	Validator *validator.Validate
	Logger    *slog.Logger
	Audit     shared.AuditRecorder

	// ID returns the primary key of a stored record.
	ID func(T) int64
	// Stamp sets server-owned fields on a record about to be created.
	Stamp func(caller *shared.Identity, item *T)
	// Preserve copies fields callers may not change from the stored record
	// into its replacement.
	Preserve func(prev T, next *T)
}

// Endpoint serves list, create, retrieve, update, partial_update and destroy
// for one resource type.
type Endpoint[T any] struct {
	cfg Config[T]
}

// New builds an Endpoint. A nil Validator gets the package default and a
// nil Logger discards output.
func New[T any](cfg Config[T]) *Endpoint[T] {
	if cfg.Validator == nil {
		cfg.Validator = NewValidator()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &Endpoint[T]{cfg: cfg}
}

// MountRoutes registers the CRUD routes, each behind its policy entry.
func (e *Endpoint[T]) MountRoutes(r chi.Router) {
	guard := e.cfg.Guard
	res := e.cfg.Resource
	r.With(guard.Require(res, rbac.ActionList)).Get("/", e.list)
	r.With(guard.Require(res, rbac.ActionCreate)).Post("/", e.create)
	r.With(guard.Require(res, rbac.ActionRetrieve)).Get("/{id}", e.retrieve)
	r.With(guard.Require(res, rbac.ActionUpdate)).Put("/{id}", e.update)
	r.With(guard.Require(res, rbac.ActionPartialUpdate)).Patch("/{id}", e.partialUpdate)
	r.With(guard.Require(res, rbac.ActionDestroy)).Delete("/{id}", e.destroy)
}

func (e *Endpoint[T]) list(w http.ResponseWriter, r *http.Request) {
	items, err := e.cfg.Store.List(r.Context())
	if err != nil {
		e.fail(w, r, "list", err)
		return
	}
	if items == nil {
		items = []T{}
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (e *Endpoint[T]) create(w http.ResponseWriter, r *http.Request) {
	body, err := httpx.ReadJSONBody(w, r)
	if err != nil {
		e.fail(w, r, "create", err)
		return
	}
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		e.fail(w, r, "create", httpx.ErrMalformedBody)
		return
	}
	caller := shared.IdentityFromContext(r.Context())
	if e.cfg.Stamp != nil {
		e.cfg.Stamp(caller, &item)
	}
	if err := Validate(e.cfg.Validator, item); err != nil {
		e.fail(w, r, "create", err)
		return
	}
	created, err := e.cfg.Store.Create(r.Context(), item)
	if err != nil {
		e.fail(w, r, "create", err)
		return
	}
	e.audit(r.Context(), caller, rbac.ActionCreate, created)
	httpx.JSON(w, http.StatusCreated, created)
}

func (e *Endpoint[T]) retrieve(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	item, err := e.cfg.Store.Get(r.Context(), id)
	if err != nil {
		e.fail(w, r, "retrieve", err)
		return
	}
	httpx.JSON(w, http.StatusOK, item)
}

func (e *Endpoint[T]) update(w http.ResponseWriter, r *http.Request) {
	e.save(w, r, false)
}

// partialUpdate is update in partial mode: fields absent from the payload
// keep their stored values.
func (e *Endpoint[T]) partialUpdate(w http.ResponseWriter, r *http.Request) {
	e.save(w, r, true)
}

func (e *Endpoint[T]) save(w http.ResponseWriter, r *http.Request, partial bool) {
	op, action := "update", rbac.ActionUpdate
	if partial {
		op, action = "partial_update", rbac.ActionPartialUpdate
	}
	id, ok := parseID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	body, err := httpx.ReadJSONBody(w, r)
	if err != nil {
		e.fail(w, r, op, err)
		return
	}
	updated, err := e.cfg.Store.Update(r.Context(), id, func(current *T) error {
		prev := *current
		var next T
		if partial {
			next = prev
		}
		if err := json.Unmarshal(body, &next); err != nil {
			return httpx.ErrMalformedBody
		}
		if e.cfg.Preserve != nil {
			e.cfg.Preserve(prev, &next)
		}
		if err := Validate(e.cfg.Validator, next); err != nil {
			return err
		}
		*current = next
		return nil
	})
	if err != nil {
		e.fail(w, r, op, err)
		return
	}
	e.audit(r.Context(), shared.IdentityFromContext(r.Context()), action, updated)
	httpx.JSON(w, http.StatusOK, updated)
}

func (e *Endpoint[T]) destroy(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	if err := e.cfg.Store.Delete(r.Context(), id); err != nil {
		e.fail(w, r, "destroy", err)
		return
	}
	e.auditID(r.Context(), shared.IdentityFromContext(r.Context()), rbac.ActionDestroy, id)
	w.WriteHeader(http.StatusNoContent)
}

func (e *Endpoint[T]) audit(ctx context.Context, caller *shared.Identity, action rbac.Action, item T) {
	if e.cfg.ID == nil {
		return
	}
	e.auditID(ctx, caller, action, e.cfg.ID(item))
}

func (e *Endpoint[T]) auditID(ctx context.Context, caller *shared.Identity, action rbac.Action, id int64) {
	if e.cfg.Audit == nil {
		return
	}
	var actor int64
	if caller != nil {
		actor = caller.ID
	}
	err := e.cfg.Audit.Record(ctx, shared.AuditLog{
		ActorID:  actor,
		Action:   string(action),
		Entity:   string(e.cfg.Resource),
		EntityID: shared.EntityID(id),
	})
	if err != nil {
		e.cfg.Logger.Warn("audit record failed",
			slog.String("resource", string(e.cfg.Resource)),
			slog.String("action", string(action)),
			slog.Any("error", err),
		)
	}
}

func (e *Endpoint[T]) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	if !httpx.IsClientError(err) {
		e.cfg.Logger.Error("resource "+op+" failed",
			slog.String("resource", string(e.cfg.Resource)),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
	}
	httpx.RespondError(w, err)
}

func parseID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
