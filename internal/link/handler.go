package link

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/validation"
)

// Handler contains HTTP handlers for the authenticated caller's own
// links. Every operation is scoped to the principal resolved from the
// bearer token.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// LinkResponse is the wire shape of an owned link
type LinkResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// CreateLinkRequest represents the link creation body
type CreateLinkRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// UpdateLinkRequest represents a partial link update body
type UpdateLinkRequest struct {
	Name *string `json:"name"`
	URL  *string `json:"url"`
}

// List returns the caller's links
// @Summary      List own links
// @Tags         links
// @Produce      json
// @Security     BearerAuth
// @Success      200 {array} link.LinkResponse
// @Router       /api/users/me/links [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := httputil.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	links, err := h.service.ListByUser(r.Context(), principal.UserID)
	if err != nil {
		logger.Error("failed to list links", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list links", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, serializeLinks(links), http.StatusOK)
}

// Create adds a link to the caller's profile
// @Summary      Add a link
// @Description  Create a link on the caller's profile. A blank name is derived from the URL's domain.
// @Tags         links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body link.CreateLinkRequest true "Link fields"
// @Success      201 {object} link.LinkResponse
// @Failure      400 {object} validation.Errors "Field errors"
// @Router       /api/users/me/links [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := httputil.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req CreateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid link create body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	created, err := h.service.Create(r.Context(), principal.UserID, req.Name, req.URL)
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		logger.Error("failed to create link", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("link created", "link_id", created.ID, "user_id", principal.UserID)

	httputil.RespondJSON(w, serializeLink(created), http.StatusCreated)
}

// Update modifies one of the caller's links
// @Summary      Update a link
// @Tags         links
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Link ID"
// @Param        request body link.UpdateLinkRequest true "Link fields"
// @Success      200 {object} link.LinkResponse
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/users/me/links/{id} [patch]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := httputil.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	linkID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "link not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	var req UpdateLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid link update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	updated, err := h.service.UpdateOwned(r.Context(), principal.UserID, linkID, UpdateInput{
		Name: req.Name,
		URL:  req.URL,
	})
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "link not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to update link", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, serializeLink(updated), http.StatusOK)
}

// Delete removes one of the caller's links
// @Summary      Delete a link
// @Tags         links
// @Security     BearerAuth
// @Param        id path int true "Link ID"
// @Success      204 "No Content"
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/users/me/links/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := httputil.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	linkID, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "link not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	if err := h.service.DeleteOwned(r.Context(), principal.UserID, linkID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "link not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to delete link", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to delete link", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("link deleted", "link_id", linkID, "user_id", principal.UserID)

	w.WriteHeader(http.StatusNoContent)
}

func serializeLink(l *Link) LinkResponse {
	return LinkResponse{ID: l.ID, Name: l.Name, URL: l.URL}
}

func serializeLinks(links []Link) []LinkResponse {
	out := make([]LinkResponse, 0, len(links))
	for i := range links {
		out = append(out, serializeLink(&links[i]))
	}
	return out
}
