package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/auth"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/config"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/models"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// AuthService orchestrates registration, login, identity lookup, logout, and
// token refresh. It owns credential verification; token mechanics live in
// TokenService.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
	bcryptCost  int
}

// NewAuthService constructs an AuthService using repositories and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService, cfg *config.Config) *AuthService {
	return &AuthService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
		bcryptCost:  cfg.BcryptCost,
	}
}

// Register creates a new user and issues a token for it. A duplicate email
// surfaces as a field-level validation error rather than a distinct conflict.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	v := common.NewValidationError()
	if name == "" {
		v.Add("name", "The name field is required.")
	}
	if email == "" {
		v.Add("email", "The email field is required.")
	} else if !emailPattern.MatchString(email) {
		v.Add("email", "The email field must be a valid email address.")
	}
	if len(password) < MinPasswordLength {
		v.Add("password", fmt.Sprintf("The password field must be at least %d characters.", MinPasswordLength))
	}
	if !v.Empty() {
		return nil, "", v
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, "", common.ErrorInternal
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)
	user, err = repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			v.Add("email", "The email has already been taken.")
			return nil, "", v
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies the credentials and issues a token. Unknown email and wrong
// password return the identical error; the unknown-email path still burns a
// hash comparison so the two are not distinguishable by timing.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.EqualizeCompare(password)
			return nil, "", common.ErrorUnauthorized
		}
		return nil, "", fmt.Errorf("error searching user: %w", err)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, "", common.ErrorUnauthorized
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Me returns the fresh user record for an already-verified user id.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// valid token for a deleted account
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}
	return user, nil
}

// Logout revokes the presented token. Revoking twice is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.tokens.Revoke(ctx, token)
}

// Refresh rotates the presented token.
func (s *AuthService) Refresh(ctx context.Context, token string) (string, error) {
	return s.tokens.Refresh(ctx, token)
}
