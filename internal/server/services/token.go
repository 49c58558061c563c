// Package services contains server-side business logic: token issuance and
// verification, the authentication gateway, and the todo lifecycle.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ccaio-oliveira/test-alugamais/internal/common"
	"github.com/ccaio-oliveira/test-alugamais/internal/dbx"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/auth"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/config"
	"github.com/ccaio-oliveira/test-alugamais/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// TokenService issues, verifies, revokes, and refreshes bearer tokens.
// Tokens are HS256 JWTs whose jti points at a server-side session row, so a
// token stops verifying the moment its session is revoked.
type TokenService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewTokenService constructs a TokenService using repositories and server config.
func NewTokenService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// ValiditySeconds returns the configured token TTL in whole seconds, for the
// expires_in field of auth responses.
func (s *TokenService) ValiditySeconds() int64 {
	return int64(s.tokenValidityDuration.Seconds())
}

// Issue creates a session for userID and returns a signed token bound to it.
func (s *TokenService) Issue(ctx context.Context, userID string) (string, error) {
	return s.issue(ctx, s.db, userID)
}

func (s *TokenService) issue(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	sessionID := uuid.NewString()

	repo := s.repomanager.Sessions(db)
	if err := repo.Create(ctx, userID, sessionID, s.tokenValidityDuration); err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	token, err := auth.GenerateToken(userID, sessionID, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", common.ErrorInternal
	}
	return token, nil
}

// Verify checks tokenString and returns the bound user id. Malformed,
// expired, unknown, and revoked tokens all yield common.ErrorUnauthorized;
// the caller must re-fetch the user record if it needs more than the id.
func (s *TokenService) Verify(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.validSession(ctx, tokenString)
	if err != nil {
		return "", err
	}
	return claims.UserID, nil
}

// validSession parses tokenString and checks its session row, returning the
// claims when the token is still usable.
func (s *TokenService) validSession(ctx context.Context, tokenString string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return nil, common.ErrorUnauthorized
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.Find(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}
	if session.Revoked() || session.ExpiresAt.Before(time.Now()) {
		return nil, common.ErrorUnauthorized
	}
	return claims, nil
}

// Revoke marks the token's session unusable for future Verify calls.
// Revoking twice is not an error; an unparseable token is rejected.
func (s *TokenService) Revoke(ctx context.Context, tokenString string) error {
	claims, err := auth.ParseToken(tokenString, s.jwtSecret)
	if err != nil {
		return common.ErrorUnauthorized
	}

	repo := s.repomanager.Sessions(s.db)
	if err := repo.Revoke(ctx, claims.ID); err != nil {
		return fmt.Errorf("error revoking session: %w", err)
	}
	return nil
}

// Refresh verifies tokenString, then transactionally revokes its session and
// issues a fresh token for the same user. The old token stops verifying.
func (s *TokenService) Refresh(ctx context.Context, tokenString string) (string, error) {
	claims, err := s.validSession(ctx, tokenString)
	if err != nil {
		return "", err
	}

	var token string
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Sessions(tx)
		if err := repoTx.Revoke(ctx, claims.ID); err != nil {
			return fmt.Errorf("error revoking session: %w", err)
		}
		var issueErr error
		token, issueErr = s.issue(ctx, tx, claims.UserID)
		return issueErr
	}); err != nil {
		return "", err
	}
	return token, nil
}

// DeleteExpiredSessions purges sessions past their expiry and returns the
// number removed. Called periodically by the app's cleanup loop.
func (s *TokenService) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	repo := s.repomanager.Sessions(s.db)
	return repo.DeleteExpired(ctx)
}
