// internal/themeapi/handler.go
//
// Theme management HTTP surface.
//
// Context
// -------
// Mounted under /api/themes behind the tenant middleware, so every route
// is scoped to the business already resolved into the request context.  A
// request with no tenant context gets a plain 404—indistinguishable from
// an unknown id, so the API never confirms which tenants exist.
//
// Routes map 1:1 onto the theme mutator and resolver:
//
//	GET    /            list this business's themes
//	POST   /            create (optionally activate / set default)
//	GET    /effective   the single theme in force (always 200)
//	PATCH  /{id}        partial update
//	DELETE /{id}        delete (409 for the current default)
//	POST   /{id}/activate
//	POST   /{id}/default
//
// Errors are structured JSON: {"error": "...", "code": "..."}.
package themeapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/yanizio/atrium/internal/tenant"
	"github.com/yanizio/atrium/internal/theme"
)

var validate = validator.New()

// Handler serves the management routes.
type Handler struct {
	store    theme.Store
	mutator  *theme.Mutator
	resolver *theme.Resolver
}

// New wires the theme engine into an HTTP handler.
func New(store theme.Store, mutator *theme.Mutator, resolver *theme.Resolver) *Handler {
	return &Handler{store: store, mutator: mutator, resolver: resolver}
}

// Routes returns the chi router for mounting.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/effective", h.effective)
	r.Patch("/{id}", h.update)
	r.Delete("/{id}", h.remove)
	r.Post("/{id}/activate", h.activate)
	r.Post("/{id}/default", h.setDefault)
	return r
}

//
// Request / response shapes
//

type createRequest struct {
	Name        string          `json:"name" validate:"required,max=120"`
	Tokens      theme.Canonical `json:"tokens"`
	MakeActive  bool            `json:"makeActive"`
	MakeDefault bool            `json:"makeDefault"`
}

type updateRequest struct {
	Name      *string          `json:"name" validate:"omitempty,max=120"`
	Tokens    *theme.Canonical `json:"tokens"`
	IsActive  *bool            `json:"isActive"`
	IsDefault *bool            `json:"isDefault"`
}

type themeResponse struct {
	ID        uint64          `json:"id"`
	Name      string          `json:"name"`
	IsActive  bool            `json:"isActive"`
	IsDefault bool            `json:"isDefault"`
	Tokens    theme.Canonical `json:"tokens"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

func toResponse(row *theme.Row) themeResponse {
	return themeResponse{
		ID:        row.ID,
		Name:      row.Name,
		IsActive:  row.IsActive,
		IsDefault: row.IsDefault,
		Tokens:    row.Canonical(),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}
}

//
// Handlers
//

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	biz, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such resource")
		return
	}

	rows, err := h.store.ByBusiness(r.Context(), biz.ID)
	if err != nil {
		writeMutationError(w, err)
		return
	}

	out := make([]themeResponse, 0, len(rows))
	for i := range rows {
		out = append(out, toResponse(&rows[i]))
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	biz, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such resource")
		return
	}

	var req createRequest
	if !decode(w, r, &req) {
		return
	}

	row, err := h.mutator.Create(r.Context(), biz.ID, req.Name, req.Tokens,
		req.MakeActive, req.MakeDefault)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toResponse(row))
}

// effective is the one public read: it always answers 200 with the theme
// in force, falling through to the global fallback for a bare business.
func (h *Handler) effective(w http.ResponseWriter, r *http.Request) {
	biz, ok := tenant.FromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusOK, theme.Fallback())
		return
	}
	writeJSON(w, http.StatusOK, h.resolver.Effective(r.Context(), biz.ID))
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	row, ok := h.owned(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if !decode(w, r, &req) {
		return
	}

	updated, err := h.mutator.Update(r.Context(), row.ID, theme.Patch{
		Name:      req.Name,
		Tokens:    req.Tokens,
		IsActive:  req.IsActive,
		IsDefault: req.IsDefault,
	})
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	row, ok := h.owned(w, r)
	if !ok {
		return
	}
	if err := h.mutator.Delete(r.Context(), row.ID); err != nil {
		writeMutationError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	row, ok := h.owned(w, r)
	if !ok {
		return
	}
	updated, err := h.mutator.Activate(r.Context(), row.ID)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(updated))
}

func (h *Handler) setDefault(w http.ResponseWriter, r *http.Request) {
	row, ok := h.owned(w, r)
	if !ok {
		return
	}
	updated, err := h.mutator.SetDefault(r.Context(), row.ID)
	if err != nil {
		writeMutationError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toResponse(updated))
}

//
// Helpers
//

// owned loads the {id} theme and checks it belongs to the context
// business.  A foreign or absent id both answer 404.
func (h *Handler) owned(w http.ResponseWriter, r *http.Request) (*theme.Row, bool) {
	biz, ok := tenant.FromContext(r.Context())
	if !ok {
		writeError(w, http.StatusNotFound, "not_found", "no such resource")
		return nil, false
	}

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", "no such theme")
		return nil, false
	}

	row, err := h.store.ByID(r.Context(), id)
	if err != nil {
		writeMutationError(w, err)
		return nil, false
	}
	if row.BusinessID != biz.ID {
		writeError(w, http.StatusNotFound, "not_found", "no such theme")
		return nil, false
	}
	return row, true
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed JSON body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err.Error())
		return false
	}
	return true
}

// writeMutationError maps engine errors onto the wire taxonomy.
func writeMutationError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, theme.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "no such theme")
	case errors.Is(err, theme.ErrDefaultTheme):
		writeError(w, http.StatusConflict, "invalid_operation", "cannot delete default theme")
	default:
		zap.L().Error("theme mutation failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, "upstream_unavailable", "store unavailable")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, map[string]string{"error": msg, "code": code})
}
