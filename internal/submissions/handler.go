package submissions

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/numeral/pkg/handlers"
	"github.com/JaimeStill/numeral/pkg/pagination"
	"github.com/JaimeStill/numeral/pkg/routes"
)

// Handler provides HTTP endpoints for submission recall.
type Handler struct {
	sys    System
	logger *slog.Logger
	limits pagination.Config
}

// NewHandler creates a Handler with the given system, logger, and count limits.
func NewHandler(sys System, logger *slog.Logger, limits pagination.Config) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "submissions"),
		limits: limits,
	}
}

// Routes returns the route group definition for submission endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Routes: []routes.Route{
			{Method: "GET", Path: "/recent-submissions", Handler: h.Recent, OpenAPI: h.recentOp()},
		},
		Children: []routes.Group{{
			Prefix: "/submissions",
			Routes: []routes.Route{
				{Method: "GET", Path: "/{id}", Handler: h.Find, OpenAPI: opFind},
				{Method: "GET", Path: "/{id}/image", Handler: h.Image, OpenAPI: opImage},
			},
		}},
	}
}

// Recent returns the newest submissions, optionally filtered by label.
func (h *Handler) Recent(w http.ResponseWriter, r *http.Request) {
	count, err := pagination.CountFromQuery(r.URL.Query(), h.limits)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	filters, err := FiltersFromQuery(r.URL.Query())
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	subs, err := h.sys.Recent(r.Context(), count, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, subs)
}

// Find returns a single submission by its UUID path parameter.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.lookup(w, r)
	if !ok {
		return
	}
	handlers.RespondJSON(w, http.StatusOK, sub)
}

// Image returns the stored PNG of a submission.
func (h *Handler) Image(w http.ResponseWriter, r *http.Request) {
	sub, ok := h.lookup(w, r)
	if !ok {
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	handlers.RespondBytes(w, http.StatusOK, "image/png", sub.Image)
}

func (h *Handler) lookup(w http.ResponseWriter, r *http.Request) (*Submission, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("invalid submission id: %w", err))
		return nil, false
	}

	sub, err := h.sys.Find(r.Context(), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return nil, false
	}
	return sub, true
}
