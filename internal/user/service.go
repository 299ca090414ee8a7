package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/validation"
)

// PasswordMinLength is the minimum accepted password length on any
// surface that sets a password.
const PasswordMinLength = 5

// Store is the persistence interface the service needs. Implemented by
// Repository; tests substitute an in-memory fake.
type Store interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	List(ctx context.Context) ([]User, error)
	Update(ctx context.Context, u *User) (*User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
	Delete(ctx context.Context, userID int64) error
}

// TokenRevoker invalidates all outstanding bearer tokens for a user.
// Used after password changes.
type TokenRevoker interface {
	RevokeUserTokens(ctx context.Context, userID int64) error
}

// Service owns account creation and mutation policy: email is required
// and normalized, passwords are hashed before they reach the store.
type Service struct {
	store  Store
	tokens TokenRevoker
	logger *logging.Logger
}

func NewService(store Store, tokens TokenRevoker, logger *logging.Logger) *Service {
	return &Service{
		store:  store,
		tokens: tokens,
		logger: logger,
	}
}

// CreateInput carries the fields accepted at account creation. An empty
// Password creates an account that cannot authenticate with a password
// until one is set.
type CreateInput struct {
	Email            string
	Password         string
	FirstName        string
	LastName         string
	ShortBio         string
	AboutMe          string
	UserRole         string
	Intake           string
	ProfessionalRole string
	CurrentCompany   string
	IsStaff          bool
	IsSuperuser      bool
}

// Create makes a new account. The email domain is lower-cased before
// storage and must be unique; the password, when present, is hashed and
// never stored raw. Validation failures are reported per field without
// touching the store.
func (s *Service) Create(ctx context.Context, in CreateInput) (*User, error) {
	verrs := validation.Errors{}

	email := strings.TrimSpace(in.Email)
	if email == "" {
		verrs.Add("email", "this field is required")
	} else if len(email) > 254 {
		verrs.Add("email", "enter a valid email address")
	} else if _, err := mail.ParseAddress(email); err != nil {
		verrs.Add("email", "enter a valid email address")
	}

	if in.Password != "" && len(in.Password) < PasswordMinLength {
		verrs.Add("password", fmt.Sprintf("ensure this field has at least %d characters", PasswordMinLength))
	}

	if in.UserRole != "" && !ValidRole(in.UserRole) {
		verrs.Add("user_role", fmt.Sprintf("%q is not a valid choice", in.UserRole))
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	passwordHash := ""
	if in.Password != "" {
		hash, err := HashPassword(in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		passwordHash = hash
	}

	newUser := &User{
		Email:            NormalizeEmail(email),
		PasswordHash:     passwordHash,
		FirstName:        in.FirstName,
		LastName:         in.LastName,
		ShortBio:         in.ShortBio,
		AboutMe:          in.AboutMe,
		UserRole:         in.UserRole,
		Intake:           in.Intake,
		ProfessionalRole: in.ProfessionalRole,
		CurrentCompany:   in.CurrentCompany,
		IsActive:         true,
		IsStaff:          in.IsStaff,
		IsSuperuser:      in.IsSuperuser,
	}

	created, err := s.store.Create(ctx, newUser)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			verrs.Add("email", "user with this email already exists")
			return nil, verrs
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return created, nil
}

// CreateSuperuser creates an account with staff and superuser flags
// forced on. Delegates to Create.
func (s *Service) CreateSuperuser(ctx context.Context, email, password string) (*User, error) {
	return s.Create(ctx, CreateInput{
		Email:       email,
		Password:    password,
		IsStaff:     true,
		IsSuperuser: true,
	})
}

// Get retrieves a user by id.
func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.store.GetByID(ctx, id)
}

// List retrieves all users ordered by id.
func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.store.List(ctx)
}

// Delete removes a user. The store cascades to the user's links.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.store.Delete(ctx, id)
}

// UpdateInput carries a partial update; nil fields are left unchanged.
// Email and permission flags are only settable through the admin
// surface; the profile endpoint never populates them.
type UpdateInput struct {
	Email            *string
	Password         *string
	FirstName        *string
	LastName         *string
	ShortBio         *string
	AboutMe          *string
	UserRole         *string
	Intake           *string
	ProfessionalRole *string
	CurrentCompany   *string
	IsActive         *bool
	IsStaff          *bool
	IsSuperuser      *bool
}

// Update applies a partial update to an existing account. A new
// password is hashed separately from generic field assignment and all
// outstanding bearer tokens are revoked after the change.
func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (*User, error) {
	existing, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	verrs := validation.Errors{}

	if in.Email != nil {
		email := strings.TrimSpace(*in.Email)
		if email == "" {
			verrs.Add("email", "this field is required")
		} else if _, err := mail.ParseAddress(email); err != nil {
			verrs.Add("email", "enter a valid email address")
		} else {
			existing.Email = NormalizeEmail(email)
		}
	}

	if in.UserRole != nil {
		if !ValidRole(*in.UserRole) {
			verrs.Add("user_role", fmt.Sprintf("%q is not a valid choice", *in.UserRole))
		} else {
			existing.UserRole = *in.UserRole
		}
	}

	if in.Password != nil && len(*in.Password) < PasswordMinLength {
		verrs.Add("password", fmt.Sprintf("ensure this field has at least %d characters", PasswordMinLength))
	}

	if len(verrs) > 0 {
		return nil, verrs
	}

	if in.FirstName != nil {
		existing.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		existing.LastName = *in.LastName
	}
	if in.ShortBio != nil {
		existing.ShortBio = *in.ShortBio
	}
	if in.AboutMe != nil {
		existing.AboutMe = *in.AboutMe
	}
	if in.Intake != nil {
		existing.Intake = *in.Intake
	}
	if in.ProfessionalRole != nil {
		existing.ProfessionalRole = *in.ProfessionalRole
	}
	if in.CurrentCompany != nil {
		existing.CurrentCompany = *in.CurrentCompany
	}
	if in.IsActive != nil {
		existing.IsActive = *in.IsActive
	}
	if in.IsStaff != nil {
		existing.IsStaff = *in.IsStaff
	}
	if in.IsSuperuser != nil {
		existing.IsSuperuser = *in.IsSuperuser
	}

	updated, err := s.store.Update(ctx, existing)
	if err != nil {
		if errors.Is(err, ErrDuplicateEmail) {
			verrs.Add("email", "user with this email already exists")
			return nil, verrs
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if in.Password != nil {
		hash, err := HashPassword(*in.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.store.UpdatePassword(ctx, id, hash); err != nil {
			return nil, fmt.Errorf("failed to update password: %w", err)
		}

		// Outstanding tokens are no longer trusted once the password changes
		if err := s.tokens.RevokeUserTokens(ctx, id); err != nil {
			s.logger.Warn("failed to revoke tokens after password change", "user_id", id, "error", err.Error())
		}
	}

	return updated, nil
}
