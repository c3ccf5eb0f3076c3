package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anvi-leather/api/internal/platform/auth"
	"github.com/anvi-leather/api/internal/repositories"
)

// SessionIssuer mints bearer session tokens for authenticated accounts.
type SessionIssuer interface {
	Issue(principal auth.Principal) (string, error)
	TTL() time.Duration
}

// AuthServiceDeps bundles constructor inputs for the auth service.
type AuthServiceDeps struct {
	Users  repositories.AdminUserRepository
	Tokens SessionIssuer
	Logger *zap.Logger
	Clock  func() time.Time
}

type authService struct {
	users  repositories.AdminUserRepository
	tokens SessionIssuer
	logger *zap.Logger
	clock  func() time.Time
}

// NewAuthService constructs the credential login service.
func NewAuthService(deps AuthServiceDeps) (AuthService, error) {
	if deps.Users == nil {
		return nil, errors.New("auth service: user repository is required")
	}
	if deps.Tokens == nil {
		return nil, errors.New("auth service: session issuer is required")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &authService{
		users:  deps.Users,
		tokens: deps.Tokens,
		logger: logger,
		clock:  func() time.Time { return clock().UTC() },
	}, nil
}

// Login verifies the credentials and issues a session token. Unknown email,
// wrong password and deactivated account all answer the same way so the
// response does not leak which part failed.
func (s *authService) Login(ctx context.Context, cmd LoginCommand) (LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(cmd.Email))
	if email == "" || cmd.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		classified := classifyRepoError(err, "email")
		if errors.Is(classified, ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, classified
	}
	if !user.Active {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := auth.VerifyPassword(user.PasswordHash, cmd.Password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	principal := auth.Principal{ID: user.ID, Email: user.Email, Role: string(user.Role)}
	token, err := s.tokens.Issue(principal)
	if err != nil {
		return LoginResult{}, fmt.Errorf("%w: %v", ErrUpstreamFailure, err)
	}

	now := s.clock()
	user.LastLoginAt = &now
	user.UpdatedAt = now
	// Best effort: a failed timestamp write must not fail the login.
	if err := s.users.Update(ctx, user); err != nil {
		s.logger.Warn("record last login failed",
			zap.String("userId", user.ID),
			zap.Error(err))
	}

	user.PasswordHash = ""
	return LoginResult{
		Token:     token,
		ExpiresAt: now.Add(s.tokens.TTL()),
		User:      user,
	}, nil
}
