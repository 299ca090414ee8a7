package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/user"
)

// UserGetter is the lookup the staff check needs
type UserGetter interface {
	GetByID(ctx context.Context, id int64) (*user.User, error)
}

// Middleware handles authentication for protected routes
type Middleware struct {
	tokenService TokenService
	registry     TokenRegistry
	users        UserGetter
}

func NewMiddleware(tokenService TokenService, registry TokenRegistry, users UserGetter) *Middleware {
	return &Middleware{
		tokenService: tokenService,
		registry:     registry,
		users:        users,
	}
}

// RequireAuth validates the bearer token and resolves the principal
// once, passing it to downstream handlers through the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			httputil.RespondErrorWithCode(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader, http.StatusUnauthorized)
			return
		}

		claims, err := m.tokenService.VerifyToken(parts[1])
		if err != nil {
			if errors.Is(err, ErrExpiredToken) {
				httputil.RespondErrorWithCode(w, "token has expired", httputil.CodeTokenExpired, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
			return
		}

		revoked, err := m.registry.IsRevoked(r.Context(), claims.TokenID)
		if err != nil {
			httputil.RespondErrorWithCode(w, "failed to verify token", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}
		if revoked {
			httputil.RespondErrorWithCode(w, "token has been revoked", httputil.CodeTokenRevoked, http.StatusUnauthorized)
			return
		}

		ctx := httputil.ContextWithPrincipal(r.Context(), httputil.Principal{
			UserID: claims.UserID,
			Email:  claims.Email,
		})

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireStaff allows only principals whose account carries the staff
// flag. Must be mounted after RequireAuth.
func (m *Middleware) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, ok := httputil.PrincipalFromContext(r.Context())
		if !ok {
			httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
			return
		}

		account, err := m.users.GetByID(r.Context(), principal.UserID)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				httputil.RespondErrorWithCode(w, "invalid token", httputil.CodeInvalidToken, http.StatusUnauthorized)
				return
			}
			httputil.RespondErrorWithCode(w, "failed to verify permissions", httputil.CodeInternalError, http.StatusInternalServerError)
			return
		}

		if !account.IsStaff || !account.IsActive {
			httputil.RespondErrorWithCode(w, "staff access required", httputil.CodeStaffRequired, http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}
