package user

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/link"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/ratelimit"
	"github.com/alu-network/backend/internal/validation"
)

// Handler contains HTTP handlers for the public user endpoints
type Handler struct {
	service     *Service
	links       *link.Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, links *link.Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		links:       links,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// CreateRequest represents the registration request body
type CreateRequest struct {
	Email            string `json:"email"`
	Password         string `json:"password"`
	FirstName        string `json:"first_name"`
	LastName         string `json:"last_name"`
	ShortBio         string `json:"short_bio"`
	AboutMe          string `json:"about_me"`
	UserRole         string `json:"user_role"`
	Intake           string `json:"intake"`
	ProfessionalRole string `json:"professional_role"`
	CurrentCompany   string `json:"current_company"`
}

// UpdateRequest represents a profile update body. Pointer fields
// distinguish "absent" from "empty" so PATCH can be partial.
type UpdateRequest struct {
	Password         *string `json:"password"`
	FirstName        *string `json:"first_name"`
	LastName         *string `json:"last_name"`
	ShortBio         *string `json:"short_bio"`
	AboutMe          *string `json:"about_me"`
	UserRole         *string `json:"user_role"`
	Intake           *string `json:"intake"`
	ProfessionalRole *string `json:"professional_role"`
	CurrentCompany   *string `json:"current_company"`
}

// List handles the public user listing
// @Summary      List users
// @Description  Return all user profiles with their links
// @Tags         users
// @Produce      json
// @Success      200 {array} user.UserJSON
// @Router       /api/users [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	users, err := h.service.List(r.Context())
	if err != nil {
		logger.Error("failed to list users", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	// One query for all links, grouped by owner
	allLinks, err := h.links.List(r.Context())
	if err != nil {
		logger.Error("failed to list links", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to list users", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}
	linksByUser := make(map[int64][]link.Link, len(users))
	for _, l := range allLinks {
		linksByUser[l.UserID] = append(linksByUser[l.UserID], l)
	}

	response := make([]UserJSON, 0, len(users))
	for i := range users {
		response = append(response, Serialize(&users[i], linksByUser[users[i].ID]))
	}

	httputil.RespondJSON(w, response, http.StatusOK)
}

// Create handles account registration
// @Summary      Register a user
// @Description  Create a new account. The password is write-only and stored hashed.
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        request body user.CreateRequest true "Profile fields"
// @Success      201 {object} user.UserJSON
// @Failure      400 {object} validation.Errors "Field errors"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /api/users [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, "register")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for register", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid registration request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, "register"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	if verrs := validateRegistration(&req); len(verrs) > 0 {
		logger.Warn("registration failed: validation error")
		httputil.RespondFieldErrors(w, verrs)
		return
	}

	created, err := h.service.Create(r.Context(), CreateInput{
		Email:            req.Email,
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		ShortBio:         req.ShortBio,
		AboutMe:          req.AboutMe,
		UserRole:         req.UserRole,
		Intake:           req.Intake,
		ProfessionalRole: req.ProfessionalRole,
		CurrentCompany:   req.CurrentCompany,
	})
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			logger.Warn("registration failed: validation error", "error", err.Error())
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		logger.Error("registration failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to register user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("user registered successfully", "user_id", created.ID)

	httputil.RespondJSON(w, Serialize(created, nil), http.StatusCreated)
}

// Get handles single-profile retrieval by id
// @Summary      Retrieve a user
// @Tags         users
// @Produce      json
// @Param        id path int true "User ID"
// @Success      200 {object} user.UserJSON
// @Failure      404 {object} httputil.ErrorResponse
// @Router       /api/users/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		return
	}

	h.respondProfile(w, r, id, logger)
}

// Me handles retrieval of the caller's own profile
// @Summary      Retrieve own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} user.UserJSON
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /api/users/me [get]
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := httputil.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	h.respondProfile(w, r, principal.UserID, logger)
}

// UpdateMe handles profile updates for the authenticated caller. The
// target is always the principal from the token, never a client-supplied
// identifier. PUT requires the writable field set, PATCH is partial.
// @Summary      Update own profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body user.UpdateRequest true "Profile fields"
// @Success      200 {object} user.UserJSON
// @Failure      400 {object} validation.Errors "Field errors"
// @Failure      401 {object} httputil.ErrorResponse
// @Router       /api/users/me [put]
func (h *Handler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	principal, ok := httputil.PrincipalFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid profile update body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if r.Method == http.MethodPut {
		if verrs := validateFullUpdate(&req); len(verrs) > 0 {
			logger.Warn("profile update failed: validation error")
			httputil.RespondFieldErrors(w, verrs)
			return
		}
	}

	updated, err := h.service.Update(r.Context(), principal.UserID, UpdateInput{
		Password:         req.Password,
		FirstName:        req.FirstName,
		LastName:         req.LastName,
		ShortBio:         req.ShortBio,
		AboutMe:          req.AboutMe,
		UserRole:         req.UserRole,
		Intake:           req.Intake,
		ProfessionalRole: req.ProfessionalRole,
		CurrentCompany:   req.CurrentCompany,
	})
	if err != nil {
		var verrs validation.Errors
		if errors.As(err, &verrs) {
			logger.Warn("profile update failed: validation error", "error", err.Error())
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("profile update failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("profile updated", "user_id", principal.UserID)

	links, err := h.links.ListByUser(r.Context(), updated.ID)
	if err != nil {
		logger.Error("failed to list links for user", "user_id", updated.ID, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to update profile", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, Serialize(updated, links), http.StatusOK)
}

func (h *Handler) respondProfile(w http.ResponseWriter, r *http.Request, id int64, logger *logging.Logger) {
	profile, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
			return
		}
		logger.Error("failed to get user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	links, err := h.links.ListByUser(r.Context(), id)
	if err != nil {
		logger.Error("failed to list links for user", "user_id", id, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to get user", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, Serialize(profile, links), http.StatusOK)
}

func validateRegistration(req *CreateRequest) validation.Errors {
	verrs := validation.Errors{}
	if strings.TrimSpace(req.Email) == "" {
		verrs.Add("email", "this field is required")
	}
	if req.Password == "" {
		verrs.Add("password", "this field is required")
	} else if len(req.Password) < PasswordMinLength {
		verrs.Add("password", fmt.Sprintf("ensure this field has at least %d characters", PasswordMinLength))
	}
	if req.FirstName == "" {
		verrs.Add("first_name", "this field is required")
	}
	if req.LastName == "" {
		verrs.Add("last_name", "this field is required")
	}
	if req.UserRole == "" {
		verrs.Add("user_role", "this field is required")
	}
	return verrs
}

func validateFullUpdate(req *UpdateRequest) validation.Errors {
	verrs := validation.Errors{}
	if req.FirstName == nil {
		verrs.Add("first_name", "this field is required")
	}
	if req.LastName == nil {
		verrs.Add("last_name", "this field is required")
	}
	if req.UserRole == nil {
		verrs.Add("user_role", "this field is required")
	}
	return verrs
}

// getClientIP extracts the client IP address from the request
func getClientIP(r *http.Request) string {
	// Check X-Forwarded-For header first (behind proxy/load balancer)
	xff := r.Header.Get("X-Forwarded-For")
	if xff != "" {
		// X-Forwarded-For can contain multiple IPs, take the first one
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	// Check X-Real-IP header
	xri := r.Header.Get("X-Real-IP")
	if xri != "" {
		return strings.TrimSpace(xri)
	}

	// Fallback to RemoteAddr
	ip := r.RemoteAddr
	// RemoteAddr format is "IP:port", extract just the IP
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}
