package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/darkodi/url-alias/internal/errors"
	"github.com/darkodi/url-alias/internal/logger"
	"github.com/darkodi/url-alias/internal/model"
	"github.com/darkodi/url-alias/internal/service"
	"github.com/darkodi/url-alias/internal/validator"
)

// ResolvePrefix is where public alias paths are served
const ResolvePrefix = "/r"

// AliasHandler handles HTTP requests for alias operations
type AliasHandler struct {
	service       *service.AliasService
	validator     *validator.AliasValidator
	log           *logger.Logger
	allowRollback bool
}

// NewAliasHandler creates a new handler instance. allowRollback exposes
// POST /api/rollback and is meant for development only.
func NewAliasHandler(svc *service.AliasService, log *logger.Logger, allowRollback bool) *AliasHandler {
	return &AliasHandler{
		service:       svc,
		validator:     validator.NewAliasValidator(),
		log:           log.With("handler", "AliasHandler"),
		allowRollback: allowRollback,
	}
}

// ============ ROUTER SETUP ============

// SetupRoutes configures all HTTP routes
func (h *AliasHandler) SetupRoutes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", h.HandleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/aliases", func(r chi.Router) {
			r.Get("/", h.HandleListGlobal)
			r.Post("/", h.HandleCreate)
			r.Get("/lookup", h.HandleLookUp)
			r.Get("/{id}", h.HandleLoad)
			r.Delete("/{id}", h.HandleRemove)
		})

		r.Post("/contents", h.HandleCreateContent)
		r.Post("/contents/{id}/publish", h.HandlePublishContent)

		r.Post("/locations", h.HandleCreateLocation)
		r.Put("/locations/{id}/parent", h.HandleMoveLocation)
		r.Get("/locations/{id}/aliases", h.HandleListLocation)
		r.Delete("/locations/{id}/aliases", h.HandleRemoveLocation)
		r.Get("/locations/{id}/alias", h.HandleReverseLookup)

		if h.allowRollback {
			r.Post("/rollback", h.HandleRollback)
		}
	})

	r.Get(ResolvePrefix+"/*", h.HandleResolve)

	return r
}

// ============ ALIAS HANDLERS ============

// HandleCreate creates a custom location alias or a global resource alias
// POST /api/aliases
func (h *AliasHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateAliasRequest
	if !h.decode(w, r, &req) {
		return
	}
	if appErr := h.validator.ValidatePath(req.Path); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	created, err := h.service.CreateAlias(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// HandleListGlobal lists resource aliases
// GET /api/aliases?lang=&offset=&limit=
func (h *AliasHandler) HandleListGlobal(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("lang")
	if appErr := h.validator.ValidateLanguageCode(lang); appErr != nil {
		appErr.WriteJSON(w)
		return
	}
	offset, appErr := intQuery(r, "offset", 0)
	if appErr != nil {
		appErr.WriteJSON(w)
		return
	}
	limit, appErr := intQuery(r, "limit", -1)
	if appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	writeList(w, h.service.ListGlobalAliases(lang, offset, limit))
}

// HandleLookUp returns the alias record for a path
// GET /api/aliases/lookup?url=&lang=
func (h *AliasHandler) HandleLookUp(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		errors.MissingField("url").WriteJSON(w)
		return
	}
	lang := r.URL.Query().Get("lang")
	if appErr := h.validator.ValidateLanguageCode(lang); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	found, err := h.service.LookUp(r.Context(), url, lang)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// HandleLoad returns an alias by id
// GET /api/aliases/{id}
func (h *AliasHandler) HandleLoad(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.Load(id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// HandleRemove removes a custom alias
// DELETE /api/aliases/{id}
func (h *AliasHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveAlias(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ============ LOCATION HANDLERS ============

// HandleCreateLocation places content under a parent location
// POST /api/locations
func (h *AliasHandler) HandleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req model.CreateLocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	location, err := h.service.CreateLocation(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, location)
}

// HandleMoveLocation moves a location and regenerates its subtree's aliases
// PUT /api/locations/{id}/parent
func (h *AliasHandler) HandleMoveLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req model.MoveLocationRequest
	if !h.decode(w, r, &req) {
		return
	}

	moved, err := h.service.MoveLocation(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, moved)
}

// HandleListLocation lists the aliases of a location
// GET /api/locations/{id}/aliases?custom=&lang=
func (h *AliasHandler) HandleListLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	custom := false
	if raw := r.URL.Query().Get("custom"); raw != "" {
		var err error
		if custom, err = strconv.ParseBool(raw); err != nil {
			errors.BadRequest("custom must be true or false").WriteJSON(w)
			return
		}
	}
	lang := r.URL.Query().Get("lang")
	if appErr := h.validator.ValidateLanguageCode(lang); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	aliases, err := h.service.ListLocationAliases(r.Context(), id, custom, lang)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeList(w, aliases)
}

// HandleRemoveLocation removes the custom aliases of a location
// DELETE /api/locations/{id}/aliases
func (h *AliasHandler) HandleRemoveLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.service.RemoveLocationAliases(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleReverseLookup finds the alias of a location
// GET /api/locations/{id}/alias?lang=
func (h *AliasHandler) HandleReverseLookup(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	found, err := h.service.ReverseLookup(r.Context(), id, r.URL.Query().Get("lang"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, found)
}

// ============ CONTENT HANDLERS ============

// HandleCreateContent creates draft content
// POST /api/contents
func (h *AliasHandler) HandleCreateContent(w http.ResponseWriter, r *http.Request) {
	var req model.CreateContentRequest
	if !h.decode(w, r, &req) {
		return
	}

	content, err := h.service.CreateContent(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, content)
}

// HandlePublishContent publishes content and regenerates its aliases
// POST /api/contents/{id}/publish
func (h *AliasHandler) HandlePublishContent(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req model.PublishContentRequest
	if r.ContentLength != 0 && !h.decode(w, r, &req) {
		return
	}

	content, err := h.service.PublishContent(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, content)
}

// ============ PUBLIC HANDLERS ============

// HandleResolve resolves a public path. History and forwarding aliases
// redirect to the current path.
// GET /r/*
func (h *AliasHandler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	path := service.NormalizePath(chi.URLParam(r, "*"))
	lang := r.URL.Query().Get("lang")
	if appErr := h.validator.ValidateLanguageCode(lang); appErr != nil {
		appErr.WriteJSON(w)
		return
	}

	res, err := h.service.Resolve(r.Context(), path, lang)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	if res.RedirectTo != "" {
		target := ResolvePrefix + res.RedirectTo
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		http.Redirect(w, r, target, http.StatusMovedPermanently)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleRollback restores the alias index snapshot
// POST /api/rollback
func (h *AliasHandler) HandleRollback(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Rollback(r.Context()); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"aliases": h.service.Count()})
}

// HandleHealth returns service health status
// GET /health
func (h *AliasHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"aliases": h.service.Count(),
	})
}

// ============ HELPERS ============

// decode parses and validates a JSON body, writing the error response on failure
func (h *AliasHandler) decode(w http.ResponseWriter, r *http.Request, req any) bool {
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.InvalidJSON(err.Error()).WriteJSON(w)
		return false
	}
	if appErr := h.validator.ValidateRequest(req); appErr != nil {
		appErr.WriteJSON(w)
		return false
	}
	return true
}

func (h *AliasHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := errors.FromError(err)
	if appErr.StatusCode >= http.StatusInternalServerError && appErr.StatusCode != http.StatusNotImplemented {
		h.log.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"error", err,
		)
	}
	appErr.WriteJSON(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeList(w http.ResponseWriter, aliases []model.URLAlias) {
	if aliases == nil {
		aliases = []model.URLAlias{}
	}
	writeJSON(w, http.StatusOK, model.AliasListResponse{Aliases: aliases, Count: len(aliases)})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		errors.BadRequest("id must be a positive integer").WriteJSON(w)
		return 0, false
	}
	return id, true
}

func intQuery(r *http.Request, name string, def int) (int, *errors.AppError) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.BadRequest(name + " must be an integer")
	}
	return n, nil
}
