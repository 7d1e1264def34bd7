package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stac-utils/stac-go/internal/config"
	"github.com/stac-utils/stac-go/internal/stac"
)

func decodeJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// Handlers wires an Api onto net/http handler methods. Grounded on the
// teacher's internal/api/handlers.go shape (a struct of collaborators
// wired by NewHandlers), with the ASF/CMR-specific SearchBackend and
// translator collaborators replaced by the new Api/backend.Backend pair.
type Handlers struct {
	cfg    *config.Config
	api    *Api
	logger *slog.Logger
}

// NewHandlers constructs Handlers around an already-built Api.
func NewHandlers(cfg *config.Config, a *Api, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handlers{cfg: cfg, api: a, logger: logger}
}

// Health is a liveness probe independent of the backend.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LandingPage serves GET /.
func (h *Handlers) LandingPage(w http.ResponseWriter, r *http.Request) {
	root, err := h.api.RootDocument(r.Context())
	if err != nil {
		h.logError(r, "landing page", err)
		WriteInternalErrorWithRequestID(w, "failed to build landing page", GetRequestID(r.Context()))
		return
	}
	WriteJSON(w, http.StatusOK, root)
}

// Conformance serves GET /conformance.
func (h *Handlers) Conformance(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.api.Conformance())
}

// Collections serves GET /collections.
func (h *Handlers) Collections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.api.Collections(r.Context())
	if err != nil {
		h.logError(r, "list collections", err)
		WriteInternalErrorWithRequestID(w, "failed to list collections", GetRequestID(r.Context()))
		return
	}
	WriteJSON(w, http.StatusOK, collections)
}

// Collection serves GET /collections/{collectionId}.
func (h *Handlers) Collection(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "collectionId")
	c, err := h.api.Collection(r.Context(), id)
	if err != nil {
		h.logError(r, "get collection", err)
		WriteInternalErrorWithRequestID(w, "failed to get collection", GetRequestID(r.Context()))
		return
	}
	if c == nil {
		WriteNotFound(w, "collection not found: "+id)
		return
	}
	WriteJSON(w, http.StatusOK, c)
}

// Items serves GET /collections/{collectionId}/items.
func (h *Handlers) Items(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionId")

	req, err := stac.ItemsFromValues(r.URL.Query())
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if err := req.Valid(); err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}
	h.clampLimit(&req)

	ic, err := h.api.Items(r.Context(), collectionID, req)
	if err != nil {
		if errors.Is(err, stac.ErrUnimplemented) {
			WriteInvalidParameter(w, err.Error())
			return
		}
		h.logError(r, "list items", err)
		WriteInternalErrorWithRequestID(w, "failed to list items", GetRequestID(r.Context()))
		return
	}
	if ic == nil {
		WriteNotFound(w, "collection not found: "+collectionID)
		return
	}
	WriteGeoJSON(w, http.StatusOK, ic)
}

// Item serves GET /collections/{collectionId}/items/{itemId}.
func (h *Handlers) Item(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionId")
	itemID := chi.URLParam(r, "itemId")

	item, err := h.api.Item(r.Context(), collectionID, itemID)
	if err != nil {
		h.logError(r, "get item", err)
		WriteInternalErrorWithRequestID(w, "failed to get item", GetRequestID(r.Context()))
		return
	}
	if item == nil {
		WriteNotFound(w, "item not found: "+itemID)
		return
	}
	WriteGeoJSON(w, http.StatusOK, item)
}

// Search serves GET and POST /search.
func (h *Handlers) Search(w http.ResponseWriter, r *http.Request) {
	if !h.cfg.Features.EnableSearch {
		WriteError(w, http.StatusNotImplemented, "search is disabled")
		return
	}

	var req stac.Search
	var err error
	switch r.Method {
	case http.MethodGet:
		req, err = stac.SearchFromValues(r.URL.Query())
	case http.MethodPost:
		err = decodeJSONBody(r, &req)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err != nil {
		WriteBadRequest(w, err.Error())
		return
	}
	if err := req.Valid(); err != nil {
		WriteInvalidParameter(w, err.Error())
		return
	}
	h.clampLimit(&req.Items)

	ic, err := h.api.Search(r.Context(), req, r.Method)
	if err != nil {
		if errors.Is(err, stac.ErrUnimplemented) {
			WriteInvalidParameter(w, err.Error())
			return
		}
		h.logError(r, "search", err)
		WriteInternalErrorWithRequestID(w, "search failed", GetRequestID(r.Context()))
		return
	}
	WriteGeoJSON(w, http.StatusOK, ic)
}

// Queryables serves GET /queryables and GET /collections/{collectionId}/queryables.
func (h *Handlers) Queryables(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionId")
	if collectionID != "" {
		c, err := h.api.Collection(r.Context(), collectionID)
		if err != nil {
			h.logError(r, "queryables", err)
			WriteInternalErrorWithRequestID(w, "failed to get collection", GetRequestID(r.Context()))
			return
		}
		if c == nil {
			WriteNotFound(w, "collection not found: "+collectionID)
			return
		}
	}
	WriteJSON(w, http.StatusOK, h.api.Queryables(collectionID))
}

// clampLimit applies the configured default/max page size, per
// spec.md's feature-flag limits (the backend itself has no opinion on
// these; they are an API-layer policy).
func (h *Handlers) clampLimit(req *stac.Items) {
	if req.Limit == nil {
		limit := h.cfg.Features.DefaultLimit
		req.Limit = &limit
		return
	}
	if *req.Limit > h.cfg.Features.MaxLimit {
		limit := h.cfg.Features.MaxLimit
		req.Limit = &limit
	}
}

func (h *Handlers) logError(r *http.Request, op string, err error) {
	h.logger.Error(op+" failed",
		slog.String("request_id", GetRequestID(r.Context())),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
}
