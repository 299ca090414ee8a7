package user

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/alu-network/backend/internal/httputil"
	"github.com/alu-network/backend/internal/link"
	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/ratelimit"
)

// fakeLinkStore is an in-memory link.Store so handler tests can serve
// profiles with links attached.
type fakeLinkStore struct {
	nextID int64
	links  map[int64]*link.Link
}

func newFakeLinkStore() *fakeLinkStore {
	return &fakeLinkStore{nextID: 1, links: map[int64]*link.Link{}}
}

func (f *fakeLinkStore) Create(_ context.Context, l *link.Link) (*link.Link, error) {
	stored := *l
	stored.ID = f.nextID
	f.nextID++
	f.links[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeLinkStore) GetByID(_ context.Context, id int64) (*link.Link, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, link.ErrNotFound
	}
	out := *l
	return &out, nil
}

func (f *fakeLinkStore) ListByUser(_ context.Context, userID int64) ([]link.Link, error) {
	var out []link.Link
	for _, l := range f.links {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLinkStore) List(_ context.Context) ([]link.Link, error) {
	var out []link.Link
	for _, l := range f.links {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeLinkStore) Update(_ context.Context, l *link.Link) (*link.Link, error) {
	if _, ok := f.links[l.ID]; !ok {
		return nil, link.ErrNotFound
	}
	stored := *l
	f.links[l.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeLinkStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.links[id]; !ok {
		return link.ErrNotFound
	}
	delete(f.links, id)
	return nil
}

// newTestHandler wires a handler over in-memory stores. The rate
// limiter points at an unreachable Redis; limit checks fail open, which
// the handler tolerates.
func newTestHandler(t *testing.T) (*Handler, *Service, *link.Service) {
	t.Helper()

	logger := logging.NewLogger(true)
	svc, _, _ := newTestService()
	linkSvc := link.NewService(newFakeLinkStore())
	limiter := ratelimit.NewLimiter(redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"}))

	return NewHandler(svc, linkSvc, limiter, logger), svc, linkSvc
}

func TestMeWithoutPrincipal(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, httputil.CodeMissingAuth, body.Code)
}

func TestMeReturnsProfileWithLinks(t *testing.T) {
	handler, svc, linkSvc := newTestHandler(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Email:     "someone@example.com",
		Password:  "secret",
		FirstName: "Ada",
		LastName:  "Lovelace",
		UserRole:  RoleAlumni,
	})
	require.NoError(t, err)

	_, err = linkSvc.Create(context.Background(), created.ID, "", "https://github.com/some-user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req = req.WithContext(httputil.ContextWithPrincipal(req.Context(), httputil.Principal{
		UserID: created.ID,
		Email:  created.Email,
	}))
	rec := httptest.NewRecorder()
	handler.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body UserJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "someone@example.com", body.Email)
	require.Len(t, body.Links, 1)
	require.Equal(t, "Github", body.Links[0].Name)
}

func TestListGroupsLinksByOwner(t *testing.T) {
	handler, svc, linkSvc := newTestHandler(t)

	first, err := svc.Create(context.Background(), CreateInput{
		Email:     "first@example.com",
		Password:  "secret",
		FirstName: "Ada",
		LastName:  "Lovelace",
		UserRole:  RoleAlumni,
	})
	require.NoError(t, err)

	second, err := svc.Create(context.Background(), CreateInput{
		Email:     "second@example.com",
		Password:  "secret",
		FirstName: "Grace",
		LastName:  "Hopper",
		UserRole:  RoleStaff,
	})
	require.NoError(t, err)

	_, err = linkSvc.Create(context.Background(), first.ID, "", "https://github.com/first-user")
	require.NoError(t, err)
	_, err = linkSvc.Create(context.Background(), first.ID, "", "https://www.linkedin.com/in/first-user")
	require.NoError(t, err)
	_, err = linkSvc.Create(context.Background(), second.ID, "", "https://twitter.com/second-user")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()
	handler.List(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var profiles []UserJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profiles))
	require.Len(t, profiles, 2)

	byEmail := make(map[string]UserJSON, len(profiles))
	for _, p := range profiles {
		byEmail[p.Email] = p
	}

	require.Len(t, byEmail["first@example.com"].Links, 2)
	require.Len(t, byEmail["second@example.com"].Links, 1)
	require.Equal(t, "Twitter", byEmail["second@example.com"].Links[0].Name)
}

func TestCreateRegistersUser(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{
		"email": "someone@example.com",
		"password": "secret",
		"first_name": "Ada",
		"last_name": "Lovelace",
		"user_role": "alumni"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	// The password never appears in the response
	require.NotContains(t, rec.Body.String(), "secret")
	require.NotContains(t, rec.Body.String(), "password")

	var profile UserJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "someone@example.com", profile.Email)
	require.Equal(t, "alumni", profile.UserRole)
	require.NotZero(t, profile.ID)
}

func TestCreateReportsMissingFields(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fieldErrs map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldErrs))
	for _, field := range []string{"email", "password", "first_name", "last_name", "user_role"} {
		require.Contains(t, fieldErrs, field)
	}
}

func TestCreateHandlerRejectsShortPassword(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	body := `{
		"email": "someone@example.com",
		"password": "abcd",
		"first_name": "Ada",
		"last_name": "Lovelace",
		"user_role": "alumni"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/users", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fieldErrs map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldErrs))
	require.Contains(t, fieldErrs, "password")
}

func TestUpdateMePutRequiresWritableFields(t *testing.T) {
	handler, svc, _ := newTestHandler(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Email:     "someone@example.com",
		Password:  "secret",
		FirstName: "Ada",
		LastName:  "Lovelace",
		UserRole:  RoleAlumni,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/users/me", strings.NewReader(`{"short_bio": "hi"}`))
	req = req.WithContext(httputil.ContextWithPrincipal(req.Context(), httputil.Principal{
		UserID: created.ID,
		Email:  created.Email,
	}))
	rec := httptest.NewRecorder()
	handler.UpdateMe(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var fieldErrs map[string][]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &fieldErrs))
	for _, field := range []string{"first_name", "last_name", "user_role"} {
		require.Contains(t, fieldErrs, field)
	}
}

func TestUpdateMePatchIsPartial(t *testing.T) {
	handler, svc, _ := newTestHandler(t)

	created, err := svc.Create(context.Background(), CreateInput{
		Email:     "someone@example.com",
		Password:  "secret",
		FirstName: "Ada",
		LastName:  "Lovelace",
		UserRole:  RoleAlumni,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, "/api/users/me", strings.NewReader(`{"short_bio": "builds things"}`))
	req = req.WithContext(httputil.ContextWithPrincipal(req.Context(), httputil.Principal{
		UserID: created.ID,
		Email:  created.Email,
	}))
	rec := httptest.NewRecorder()
	handler.UpdateMe(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var profile UserJSON
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &profile))
	require.Equal(t, "builds things", profile.ShortBio)
	require.Equal(t, "Ada", profile.FirstName)
	require.Equal(t, "someone@example.com", profile.Email)
}
