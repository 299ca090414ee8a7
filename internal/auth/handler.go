package auth

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/ratelimit"
	"github.com/alu-network/backend/internal/validation"
)

// Handler contains the HTTP handler for token issuance
type Handler struct {
	service     *Service
	rateLimiter *ratelimit.Limiter
	logger      *logging.Logger
}

func NewHandler(service *Service, rateLimiter *ratelimit.Limiter, logger *logging.Logger) *Handler {
	return &Handler{
		service:     service,
		rateLimiter: rateLimiter,
		logger:      logger,
	}
}

// TokenRequest represents the token issuance request body. The
// password is used exactly as submitted, whitespace included.
type TokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse carries the issued bearer token
type TokenResponse struct {
	Token string `json:"token"`
}

// CreateToken handles credential validation and token issuance
// @Summary      Create an auth token
// @Description  Exchange email and password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body auth.TokenRequest true "Credentials"
// @Success      200 {object} auth.TokenResponse
// @Failure      400 {object} validation.Errors "Missing fields or credential mismatch"
// @Failure      429 {object} httputil.ErrorResponse "Too many requests"
// @Router       /api/users/token [post]
func (h *Handler) CreateToken(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	// Rate limit by IP
	ip := getClientIP(r)
	exceeded, err := h.rateLimiter.CheckIPRateLimit(r.Context(), ip, "token")
	if err != nil {
		logger.Error("failed to check IP rate limit", "error", err.Error())
	} else if exceeded {
		logger.Warn("IP rate limit exceeded for token", "ip", ip)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return
	}

	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid token request body", "error", err.Error())
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.rateLimiter.RecordIPRequest(r.Context(), ip, "token"); err != nil {
		logger.Error("failed to record IP request", "error", err.Error())
	}

	verrs := validation.Errors{}
	if req.Email == "" {
		verrs.Add("email", "this field is required")
	}
	if req.Password == "" {
		verrs.Add("password", "this field is required")
	}
	if len(verrs) > 0 {
		httputil.RespondFieldErrors(w, verrs)
		return
	}

	authenticated, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			logger.Warn("token request failed: invalid credentials")
			verrs.AddNonField(CredentialsMessage)
			httputil.RespondFieldErrors(w, verrs)
			return
		}
		logger.Error("token request failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	token, err := h.service.IssueToken(r.Context(), authenticated)
	if err != nil {
		logger.Error("token issuance failed: internal error", "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to create token", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	logger.Info("token issued", "user_id", authenticated.ID)

	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
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
