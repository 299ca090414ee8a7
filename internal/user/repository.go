package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/alu-network/backend/internal/database"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository handles user data persistence
type Repository struct {
	db *bun.DB
}

func NewRepository(db *bun.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new user into the database
func (r *Repository) Create(ctx context.Context, u *User) (*User, error) {
	dbUser := mapModelToDBUser(u)

	_, err := r.db.NewInsert().
		Model(dbUser).
		Returning("*").
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByEmail retrieves a user by email
func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("email = ?", email).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// GetByID retrieves a user by ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*User, error) {
	dbUser := new(database.User)
	err := r.db.NewSelect().
		Model(dbUser).
		Where("id = ?", id).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}

	return mapDBUserToModel(dbUser), nil
}

// List retrieves all users ordered by id
func (r *Repository) List(ctx context.Context) ([]User, error) {
	var dbUsers []database.User
	err := r.db.NewSelect().
		Model(&dbUsers).
		Order("id ASC").
		Scan(ctx)

	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	users := make([]User, 0, len(dbUsers))
	for i := range dbUsers {
		users = append(users, *mapDBUserToModel(&dbUsers[i]))
	}
	return users, nil
}

// Update persists all mutable columns except the password hash
func (r *Repository) Update(ctx context.Context, u *User) (*User, error) {
	dbUser := mapModelToDBUser(u)

	result, err := r.db.NewUpdate().
		Model(dbUser).
		Column(
			"email",
			"first_name",
			"last_name",
			"short_bio",
			"about_me",
			"user_role",
			"intake",
			"professional_role",
			"current_company",
			"is_active",
			"is_staff",
			"is_superuser",
		).
		Set("updated_at = NOW()").
		Where("id = ?", u.ID).
		Exec(ctx)

	if err != nil {
		if strings.Contains(err.Error(), "duplicate key value violates unique constraint") {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, ErrNotFound
	}

	return r.GetByID(ctx, u.ID)
}

// UpdatePassword updates a user's password hash
func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	result, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("password_hash = ?", passwordHash).
		Set("updated_at = NOW()").
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
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

// UpdateLastLogin records the time of a successful authentication
func (r *Repository) UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error {
	_, err := r.db.NewUpdate().
		Model((*database.User)(nil)).
		Set("last_login = ?", at).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to update last login: %w", err)
	}

	return nil
}

// Delete removes a user; the links foreign key cascades
func (r *Repository) Delete(ctx context.Context, userID int64) error {
	result, err := r.db.NewDelete().
		Model((*database.User)(nil)).
		Where("id = ?", userID).
		Exec(ctx)

	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
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

// mapDBUserToModel converts database model to domain model
func mapDBUserToModel(dbu *database.User) *User {
	return &User{
		ID:               dbu.ID,
		Email:            dbu.Email,
		PasswordHash:     dbu.PasswordHash,
		FirstName:        dbu.FirstName,
		LastName:         dbu.LastName,
		ShortBio:         dbu.ShortBio,
		AboutMe:          dbu.AboutMe,
		UserRole:         dbu.UserRole,
		Intake:           dbu.Intake,
		ProfessionalRole: dbu.ProfessionalRole,
		CurrentCompany:   dbu.CurrentCompany,
		IsActive:         dbu.IsActive,
		IsStaff:          dbu.IsStaff,
		IsSuperuser:      dbu.IsSuperuser,
		LastLogin:        dbu.LastLogin,
		CreatedAt:        dbu.CreatedAt,
		UpdatedAt:        dbu.UpdatedAt,
	}
}

// mapModelToDBUser converts domain model to database model
func mapModelToDBUser(u *User) *database.User {
	return &database.User{
		ID:               u.ID,
		Email:            u.Email,
		PasswordHash:     u.PasswordHash,
		FirstName:        u.FirstName,
		LastName:         u.LastName,
		ShortBio:         u.ShortBio,
		AboutMe:          u.AboutMe,
		UserRole:         u.UserRole,
		Intake:           u.Intake,
		ProfessionalRole: u.ProfessionalRole,
		CurrentCompany:   u.CurrentCompany,
		IsActive:         u.IsActive,
		IsStaff:          u.IsStaff,
		IsSuperuser:      u.IsSuperuser,
		LastLogin:        u.LastLogin,
		CreatedAt:        u.CreatedAt,
		UpdatedAt:        u.UpdatedAt,
	}
}
