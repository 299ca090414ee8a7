package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/alu-network/backend/internal/logging"
	"github.com/alu-network/backend/internal/user"
)

// ErrInvalidCredentials covers unknown email, wrong password and
// inactive accounts alike; callers must not learn which field was wrong.
var ErrInvalidCredentials = errors.New("unable to authenticate with provided credentials")

// CredentialsMessage is the user-facing text for ErrInvalidCredentials.
const CredentialsMessage = "Unable to authenticate with provided credentials."

// UserStore is the slice of user persistence the auth service needs
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (*user.User, error)
	UpdateLastLogin(ctx context.Context, userID int64, at time.Time) error
}

// Service handles authentication business logic
type Service struct {
	users         UserStore
	registry      TokenRegistry
	tokens        TokenService
	logger        *logging.Logger
	tokenDuration time.Duration
}

func NewService(
	users UserStore,
	registry TokenRegistry,
	tokens TokenService,
	logger *logging.Logger,
	tokenDuration time.Duration,
) *Service {
	return &Service{
		users:         users,
		registry:      registry,
		tokens:        tokens,
		logger:        logger,
		tokenDuration: tokenDuration,
	}
}

// Authenticate resolves an email/password pair to a user. The password
// is compared exactly as submitted, never trimmed. Failures do not
// reveal whether the email or the password was wrong.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*user.User, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	existing, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if !user.VerifyPassword(existing.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	// Deactivated accounts cannot log in
	if !existing.IsActive {
		return nil, ErrInvalidCredentials
	}

	return existing, nil
}

// IssueToken creates a bearer token for the user, registers it for
// revocation and records the login time.
func (s *Service) IssueToken(ctx context.Context, u *user.User) (string, error) {
	tokenID := uuid.NewString()

	token, err := s.tokens.CreateToken(tokenID, u.ID, u.Email, s.tokenDuration)
	if err != nil {
		return "", fmt.Errorf("failed to create token: %w", err)
	}

	if err := s.registry.Register(ctx, u.ID, tokenID, s.tokenDuration); err != nil {
		return "", fmt.Errorf("failed to register token: %w", err)
	}

	if err := s.users.UpdateLastLogin(ctx, u.ID, time.Now()); err != nil {
		// Token issuance already succeeded; a stale last_login is not fatal
		s.logger.Warn("failed to update last login", "user_id", u.ID, "error", err.Error())
	}

	return token, nil
}
