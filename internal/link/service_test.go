package link

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/alu-network/backend/internal/validation"
)

// fakeStore is an in-memory Store for service tests.
type fakeStore struct {
	nextID int64
	links  map[int64]*Link
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, links: map[int64]*Link{}}
}

func (f *fakeStore) Create(_ context.Context, l *Link) (*Link, error) {
	stored := *l
	stored.ID = f.nextID
	f.nextID++
	f.links[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (*Link, error) {
	l, ok := f.links[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *l
	return &out, nil
}

func (f *fakeStore) ListByUser(_ context.Context, userID int64) ([]Link, error) {
	var out []Link
	for _, l := range f.links {
		if l.UserID == userID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeStore) List(_ context.Context) ([]Link, error) {
	var out []Link
	for _, l := range f.links {
		out = append(out, *l)
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, l *Link) (*Link, error) {
	if _, ok := f.links[l.ID]; !ok {
		return nil, ErrNotFound
	}
	stored := *l
	f.links[l.ID] = &stored
	out := stored
	return &out, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	if _, ok := f.links[id]; !ok {
		return ErrNotFound
	}
	delete(f.links, id)
	return nil
}

func TestCreateDerivesNameWhenBlank(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Create(context.Background(), 1, "", "https://www.github.com/some-user")
	require.NoError(t, err)
	require.Equal(t, "Github", created.Name)
}

func TestCreateKeepsExplicitName(t *testing.T) {
	svc := NewService(newFakeStore())

	created, err := svc.Create(context.Background(), 1, "My Portfolio", "https://www.github.com/some-user")
	require.NoError(t, err)
	require.Equal(t, "My Portfolio", created.Name)
}

func TestCreateRejectsBadURL(t *testing.T) {
	svc := NewService(newFakeStore())

	for _, rawURL := range []string{"", "not a url", "ftp://example.com/file"} {
		_, err := svc.Create(context.Background(), 1, "", rawURL)
		require.Error(t, err)

		var verrs validation.Errors
		require.ErrorAs(t, err, &verrs)
		require.True(t, verrs.Has("url"))
	}
}

func TestUpdateOwnedKeepsExistingName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), 1, "Portfolio", "https://example.com")
	require.NoError(t, err)

	newURL := "https://github.com/some-user"
	updated, err := svc.UpdateOwned(context.Background(), 1, created.ID, UpdateInput{URL: &newURL})
	require.NoError(t, err)
	require.Equal(t, "Portfolio", updated.Name)
	require.Equal(t, newURL, updated.URL)
}

func TestUpdateOwnedRederivesClearedName(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), 1, "Portfolio", "https://github.com/some-user")
	require.NoError(t, err)

	blank := ""
	updated, err := svc.UpdateOwned(context.Background(), 1, created.ID, UpdateInput{Name: &blank})
	require.NoError(t, err)
	require.Equal(t, "Github", updated.Name)
}

func TestUpdateOwnedHidesForeignLink(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), 1, "", "https://github.com/some-user")
	require.NoError(t, err)

	name := "Stolen"
	_, err = svc.UpdateOwned(context.Background(), 2, created.ID, UpdateInput{Name: &name})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOwnedHidesForeignLink(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store)

	created, err := svc.Create(context.Background(), 1, "", "https://github.com/some-user")
	require.NoError(t, err)

	require.ErrorIs(t, svc.DeleteOwned(context.Background(), 2, created.ID), ErrNotFound)

	// Still present for the owner
	links, err := svc.ListByUser(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, links, 1)
}
