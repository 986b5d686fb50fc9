// Package services contains the gateway's business logic: login, query
// answering, health probing and index provisioning. Transports call into
// these services and map the common sentinel errors onto their own codes.
package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/chatgate/internal/common"
	"github.com/dmitrijs2005/chatgate/internal/logging"
	"github.com/dmitrijs2005/chatgate/internal/server/credentials"
)

// TokenIssuer mints access tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string) (string, error)
}

// TokenVerifier resolves an Authorization header to a username.
type TokenVerifier interface {
	Verify(header string) (string, error)
}

// LoginResult is what a successful login hands back to the client.
type LoginResult struct {
	AccessToken string
	TokenType   string
}

// AuthService checks credentials and issues tokens.
type AuthService struct {
	store  credentials.Store
	tokens TokenIssuer
	logger logging.Logger
	// dummy is hashed against when the user is unknown, so both paths cost
	// one argon2 computation.
	dummy *credentials.Credential
}

func NewAuthService(store credentials.Store, tokens TokenIssuer, logger logging.Logger) (*AuthService, error) {
	dummy, err := credentials.NewCredential("", "")
	if err != nil {
		return nil, err
	}
	return &AuthService{
		store:  store,
		tokens: tokens,
		logger: logger.With("module", "auth_service"),
		dummy:  dummy,
	}, nil
}

// Login returns a bearer token when password matches the stored secret for
// username, and common.ErrInvalidCredentials otherwise.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	cred, err := s.store.Lookup(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.dummy.Matches(password)
			s.logger.Warn(ctx, "login rejected", "username", username, "reason", "unknown user")
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "credential lookup failed", "error", err)
		return nil, common.ErrorInternal
	}

	if !cred.Matches(password) {
		s.logger.Warn(ctx, "login rejected", "username", username, "reason", "secret mismatch")
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(username)
	if err != nil {
		s.logger.Error(ctx, "token issue failed", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "login succeeded", "username", username)
	return &LoginResult{AccessToken: token, TokenType: common.TokenType}, nil
}
