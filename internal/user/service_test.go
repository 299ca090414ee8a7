package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/validation"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	nextID int64
	users  map[int64]*User
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, users: map[int64]*User{}}
}

func (f *fakeStore) Create(_ context.Context, u *User) (*User, error) {
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return nil, ErrDuplicateEmail
		}
	}
	stored := *u
	stored.ID = f.nextID
	f.nextID++
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeStore) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *u
	return &out, nil
}

func (f *fakeStore) List(_ context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, u *User) (*User, error) {
	stored, ok := f.users[u.ID]
	if !ok {
		return nil, ErrNotFound
	}
	hash := stored.PasswordHash
	updated := *u
	updated.PasswordHash = hash
	updated.UpdatedAt = time.Now()
	f.users[u.ID] = &updated
	out := updated
	return &out, nil
}

func (f *fakeStore) UpdatePassword(_ context.Context, userID int64, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.PasswordHash = passwordHash
	return nil
}

func (f *fakeStore) UpdateLastLogin(_ context.Context, userID int64, at time.Time) error {
	u, ok := f.users[userID]
	if !ok {
		return ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (f *fakeStore) Delete(_ context.Context, userID int64) error {
	if _, ok := f.users[userID]; !ok {
		return ErrNotFound
	}
	delete(f.users, userID)
	return nil
}

// fakeRevoker records revocation calls.
type fakeRevoker struct {
	revoked []int64
}

func (f *fakeRevoker) RevokeUserTokens(_ context.Context, userID int64) error {
	f.revoked = append(f.revoked, userID)
	return nil
}

func newTestService() (*Service, *fakeStore, *fakeRevoker) {
	store := newFakeStore()
	revoker := &fakeRevoker{}
	return NewService(store, revoker, logging.NewLogger(true)), store, revoker
}

func TestCreateRequiresEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{Password: "secret"})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("email"))
}

func TestCreateNormalizesEmailDomain(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "Someone@EXAMPLE.Com",
		Password: "secret",
	})
	require.NoError(t, err)
	require.Equal(t, "Someone@example.com", created.Email)

	// Normalizing again changes nothing
	require.Equal(t, created.Email, NormalizeEmail(created.Email))
}

func TestCreateHashesPassword(t *testing.T) {
	svc, store, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	stored, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.NotEqual(t, "secret", stored.PasswordHash)
	require.True(t, VerifyPassword(stored.PasswordHash, "secret"))
	require.False(t, VerifyPassword(stored.PasswordHash, "wrong"))
}

func TestCreateRejectsShortPassword(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "abcd",
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("password"))
}

func TestCreateWithoutPasswordIsUnusable(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email: "someone@example.com",
	})
	require.NoError(t, err)
	require.False(t, created.HasUsablePassword())
	require.False(t, VerifyPassword(created.PasswordHash, ""))
}

func TestCreateRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	// Same address with a differently cased domain collides
	_, err = svc.Create(context.Background(), CreateInput{
		Email:    "someone@EXAMPLE.COM",
		Password: "secret",
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("email"))
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "secret",
		UserRole: "wizard",
	})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("user_role"))
}

func TestCreateSuperuserForcesFlags(t *testing.T) {
	svc, _, _ := newTestService()

	created, err := svc.CreateSuperuser(context.Background(), "admin@example.com", "secret")
	require.NoError(t, err)
	require.True(t, created.IsStaff)
	require.True(t, created.IsSuperuser)
	require.True(t, created.IsActive)
}

func TestUpdatePasswordRevokesTokens(t *testing.T) {
	svc, store, revoker := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "secret",
	})
	require.NoError(t, err)
	require.Empty(t, revoker.revoked)

	newPassword := "changed"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Password: &newPassword})
	require.NoError(t, err)
	require.Equal(t, []int64{created.ID}, revoker.revoked)

	stored, err := store.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	require.True(t, VerifyPassword(stored.PasswordHash, "changed"))
	require.False(t, VerifyPassword(stored.PasswordHash, "secret"))
}

func TestUpdateProfileFieldsLeaveTokensAlone(t *testing.T) {
	svc, _, revoker := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	bio := "builds things"
	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{ShortBio: &bio})
	require.NoError(t, err)
	require.Equal(t, bio, updated.ShortBio)
	require.Empty(t, revoker.revoked)
}

func TestUpdateRejectsShortPassword(t *testing.T) {
	svc, _, revoker := newTestService()

	created, err := svc.Create(context.Background(), CreateInput{
		Email:    "someone@example.com",
		Password: "secret",
	})
	require.NoError(t, err)

	short := "ab"
	_, err = svc.Update(context.Background(), created.ID, UpdateInput{Password: &short})

	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	require.True(t, verrs.Has("password"))
	require.Empty(t, revoker.revoked)
}

func TestFullName(t *testing.T) {
	u := &User{FirstName: "Ada", LastName: "Lovelace"}
	require.Equal(t, "Lovelace Ada", u.FullName())

	require.Equal(t, "Ada", (&User{FirstName: "Ada"}).FullName())
	require.Equal(t, "", (&User{}).FullName())
}
