package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/user"
)

// fakeUserGetter serves accounts by id for the staff check.
type fakeUserGetter struct {
	users map[int64]*user.User
}

func (f *fakeUserGetter) GetByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, user.ErrNotFound
	}
	out := *u
	return &out, nil
}

func newTestMiddleware(t *testing.T, users ...*user.User) (*Middleware, *PasetoService, *fakeRegistry) {
	t.Helper()

	tokens, err := NewPasetoService(testKey)
	require.NoError(t, err)

	getter := &fakeUserGetter{users: map[int64]*user.User{}}
	for _, u := range users {
		getter.users[u.ID] = u
	}

	registry := newFakeRegistry()
	return NewMiddleware(tokens, registry, getter), tokens, registry
}

func principalEcho() (http.Handler, *httputil.Principal) {
	var captured httputil.Principal
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := httputil.PrincipalFromContext(r.Context())
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		captured = p
		w.WriteHeader(http.StatusOK)
	})
	return handler, &captured
}

func TestRequireAuthMissingHeader(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)
	next, _ := principalEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httputil.CodeMissingAuth, body.Code)
}

func TestRequireAuthRejectsNonBearer(t *testing.T) {
	mw, _, _ := newTestMiddleware(t)
	next, _ := principalEcho()

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httputil.CodeInvalidAuthHeader, body.Code)
}

func TestRequireAuthResolvesPrincipal(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)
	next, captured := principalEcho()

	token, err := tokens.CreateToken(uuid.NewString(), 42, "someone@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, int64(42), captured.UserID)
	require.Equal(t, "someone@example.com", captured.Email)
}

func TestRequireAuthRejectsExpiredToken(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)
	next, _ := principalEcho()

	token, err := tokens.CreateToken(uuid.NewString(), 42, "someone@example.com", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httputil.CodeTokenExpired, body.Code)
}

func TestRequireAuthRejectsRevokedToken(t *testing.T) {
	mw, tokens, registry := newTestMiddleware(t)
	next, _ := principalEcho()

	tokenID := uuid.NewString()
	require.NoError(t, registry.Register(context.Background(), 42, tokenID, time.Hour))
	require.NoError(t, registry.RevokeUserTokens(context.Background(), 42))

	token, err := tokens.CreateToken(tokenID, 42, "someone@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireAuth(next).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httputil.CodeTokenRevoked, body.Code)
}

func TestRequireStaff(t *testing.T) {
	staff := &user.User{ID: 1, Email: "staff@example.com", IsActive: true, IsStaff: true}
	member := &user.User{ID: 2, Email: "member@example.com", IsActive: true}
	inactiveStaff := &user.User{ID: 3, Email: "former@example.com", IsStaff: true}

	mw, tokens, _ := newTestMiddleware(t, staff, member, inactiveStaff)

	tests := []struct {
		name     string
		account  *user.User
		wantCode int
	}{
		{"staff allowed", staff, http.StatusOK},
		{"plain member forbidden", member, http.StatusForbidden},
		{"inactive staff forbidden", inactiveStaff, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, _ := principalEcho()
			chain := mw.RequireAuth(mw.RequireStaff(next))

			token, err := tokens.CreateToken(uuid.NewString(), tt.account.ID, tt.account.Email, time.Hour)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()
			chain.ServeHTTP(rec, req)

			require.Equal(t, tt.wantCode, rec.Code)
		})
	}
}

func TestRequireStaffRejectsDeletedAccount(t *testing.T) {
	mw, tokens, _ := newTestMiddleware(t)
	next, _ := principalEcho()

	token, err := tokens.CreateToken(uuid.NewString(), 99, "ghost@example.com", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	mw.RequireAuth(mw.RequireStaff(next)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
