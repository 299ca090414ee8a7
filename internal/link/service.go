package link

import (
	"context"
	"fmt"
	"net/url"

	"github.com/alu-network/backend/internal/validation"
)

// Store is the persistence interface the service needs. Implemented by
// Repository; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, l *Link) (*Link, error)
	GetByID(ctx context.Context, id int64) (*Link, error)
	ListByUser(ctx context.Context, userID int64) ([]Link, error)
	List(ctx context.Context) ([]Link, error)
	Update(ctx context.Context, l *Link) (*Link, error)
	Delete(ctx context.Context, id int64) error
}

// Service owns link lifecycle: URL validation and the one-time name
// derivation when none is supplied.
type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func validateURL(rawURL string) validation.Errors {
	verrs := validation.Errors{}
	if rawURL == "" {
		verrs.Add("url", "this field is required")
		return verrs
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		verrs.Add("url", "enter a valid URL")
	}
	return verrs
}

// Create stores a new link for the user. A blank name is derived from
// the URL's registrable domain; an explicit name is kept as supplied.
func (s *Service) Create(ctx context.Context, userID int64, name, rawURL string) (*Link, error) {
	if verrs := validateURL(rawURL); len(verrs) > 0 {
		return nil, verrs
	}

	if name == "" {
		name = DeriveName(rawURL)
	}

	created, err := s.store.Create(ctx, &Link{
		UserID: userID,
		Name:   name,
		URL:    rawURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return created, nil
}

// UpdateInput carries a partial link update; nil fields are unchanged.
type UpdateInput struct {
	Name *string
	URL  *string
}

// UpdateOwned applies a partial update to a link after checking the
// caller owns it. Setting the name to "" re-derives it from the URL; a
// previously set name is never overwritten by derivation.
func (s *Service) UpdateOwned(ctx context.Context, userID, linkID int64, in UpdateInput) (*Link, error) {
	existing, err := s.store.GetByID(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if existing.UserID != userID {
		// Do not reveal that the link exists
		return nil, ErrNotFound
	}

	if in.URL != nil {
		if verrs := validateURL(*in.URL); len(verrs) > 0 {
			return nil, verrs
		}
		existing.URL = *in.URL
	}
	if in.Name != nil {
		existing.Name = *in.Name
	}

	if existing.Name == "" {
		existing.Name = DeriveName(existing.URL)
	}

	return s.store.Update(ctx, existing)
}

// DeleteOwned removes a link after checking the caller owns it.
func (s *Service) DeleteOwned(ctx context.Context, userID, linkID int64) error {
	existing, err := s.store.GetByID(ctx, linkID)
	if err != nil {
		return err
	}
	if existing.UserID != userID {
		return ErrNotFound
	}

	return s.store.Delete(ctx, linkID)
}

// ListByUser retrieves a user's links.
func (s *Service) ListByUser(ctx context.Context, userID int64) ([]Link, error) {
	return s.store.ListByUser(ctx, userID)
}

// List retrieves every link, for the directory listing and the admin
// surface.
func (s *Service) List(ctx context.Context) ([]Link, error) {
	return s.store.List(ctx)
}

// Delete removes a link without an ownership check. Admin surface only.
func (s *Service) Delete(ctx context.Context, linkID int64) error {
	return s.store.Delete(ctx, linkID)
}
