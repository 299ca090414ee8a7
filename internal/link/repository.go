package link

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/alu-network/backend/internal/database"
)

var ErrNotFound = errors.New("link not found")

// Repository handles link persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new link
func (r *Repository) Create(ctx context.Context, l *Link) (*Link, error) {
	dbLink := &database.Link{
		UserID: l.UserID,
		Name:   l.Name,
		URL:    l.URL,
	}

	_, err := r.db.NewInsert().
		Model(dbLink).
		Returning("*").
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to create link: %w", err)
	}

	return mapDBLinkToModel(dbLink), nil
}

// GetByID retrieves a link by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*Link, error) {
	dbLink := new(database.Link)
	err := r.db.NewSelect().
		Model(dbLink).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get link by id: %w", err)
	}

	return mapDBLinkToModel(dbLink), nil
}

// ListByUser retrieves the links owned by a user, ordered by id
func (r *Repository) ListByUser(ctx context.Context, userID int64) ([]Link, error) {
	var dbLinks []database.Link
	err := r.db.NewSelect().
		Model(&dbLinks).
		Where("user_id = ?", userID).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list links for user: %w", err)
	}

	return mapDBLinks(dbLinks), nil
}

// List retrieves every link, ordered by id
func (r *Repository) List(ctx context.Context) ([]Link, error) {
	var dbLinks []database.Link
	err := r.db.NewSelect().
		Model(&dbLinks).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list links: %w", err)
	}

	return mapDBLinks(dbLinks), nil
}

// Update persists name and url
func (r *Repository) Update(ctx context.Context, l *Link) (*Link, error) {
	dbLink := &database.Link{
		ID:     l.ID,
		UserID: l.UserID,
		Name:   l.Name,
		URL:    l.URL,
	}

	result, err := r.db.NewUpdate().
		Model(dbLink).
		Column("name", "url").
		Where("id = ?", l.ID).
		Exec(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to update link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return l, nil
}

// Delete removes a link
func (r *Repository) Delete(ctx context.Context, id int64) error {
	result, err := r.db.NewDelete().
		Model((*database.Link)(nil)).
		Where("id = ?", id).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete link: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func mapDBLinks(dbLinks []database.Link) []Link {
	links := make([]Link, 0, len(dbLinks))
	for i := range dbLinks {
		links = append(links, *mapDBLinkToModel(&dbLinks[i]))
	}
	return links
}

// mapDBLinkToModel converts database model to domain model
func mapDBLinkToModel(dbl *database.Link) *Link {
	return &Link{
		ID:     dbl.ID,
		UserID: dbl.UserID,
		Name:   dbl.Name,
		URL:    dbl.URL,
	}
}
