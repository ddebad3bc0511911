package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/school"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthServiceConfig contains configuration for the auth service
type AuthServiceConfig struct {
	MaxLoginAttempts int           // Maximum failed login attempts before lock
	LockDuration     time.Duration // How long to lock account after max attempts
}

// DefaultAuthServiceConfig returns default configuration
func DefaultAuthServiceConfig() AuthServiceConfig {
	return AuthServiceConfig{
		MaxLoginAttempts: 5,
		LockDuration:     15 * time.Minute,
	}
}

// AuthService handles authentication operations
type AuthService struct {
	userRepo   identity.UserRepository
	schoolRepo school.Repository
	jwtService *auth.JWTService
	blacklist  auth.TokenBlacklist
	config     AuthServiceConfig
	logger     *zap.Logger
}

// NewAuthService creates a new authentication service.
// blacklist may be nil, in which case logout only discards the client's tokens.
func NewAuthService(
	userRepo identity.UserRepository,
	schoolRepo school.Repository,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	config AuthServiceConfig,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		schoolRepo: schoolRepo,
		jwtService: jwtService,
		blacklist:  blacklist,
		config:     config,
		logger:     logger,
	}
}

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid username or password")

// Login authenticates a user and returns tokens
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*LoginResult, error) {
	s.logger.Info("Login attempt",
		zap.String("school_code", input.SchoolCode),
		zap.String("username", input.Username))

	tenantID, err := s.resolveTenant(ctx, input.SchoolCode)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByUsername(ctx, tenantID, strings.TrimSpace(input.Username))
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("User not found during login", zap.String("username", input.Username))
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if !user.CanLogin() {
		switch {
		case user.IsLocked():
			s.logger.Warn("Login attempt for locked account", zap.String("user_id", user.ID.String()))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Account is locked. Please try again later or contact your administrator")
		case user.Status == identity.UserStatusDeactivated:
			return nil, shared.NewDomainError("ACCOUNT_DEACTIVATED", "Account has been deactivated")
		case user.Status == identity.UserStatusPending:
			return nil, shared.NewDomainError("ACCOUNT_PENDING", "Account is pending activation")
		}
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is not active")
	}

	if !user.VerifyPassword(input.Password) {
		locked := user.RecordLoginFailure(s.config.MaxLoginAttempts, s.config.LockDuration)
		if err := s.userRepo.Update(ctx, user); err != nil {
			s.logger.Error("Failed to update user after login failure", zap.Error(err))
		}
		if locked {
			s.logger.Warn("Account locked after too many failed attempts",
				zap.String("user_id", user.ID.String()),
				zap.Int("attempts", s.config.MaxLoginAttempts))
			return nil, shared.NewDomainError("ACCOUNT_LOCKED", "Too many failed login attempts. Account has been locked")
		}
		return nil, errInvalidCredentials
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		TenantID:  user.TenantID,
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ProfileID: user.ProfileID,
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}

	user.RecordLoginSuccess(input.IP)
	if err := s.userRepo.Update(ctx, user); err != nil {
		// the tokens are valid either way
		s.logger.Error("Failed to update user after successful login", zap.Error(err))
	}

	s.logger.Info("User logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("tenant_id", user.TenantID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{TokenResult: toTokenResult(pair), User: toUserInfo(user)}, nil
}

func (s *AuthService) resolveTenant(ctx context.Context, code string) (uuid.UUID, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return identity.PlatformTenantID, nil
	}
	sch, err := s.schoolRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return uuid.Nil, errInvalidCredentials
		}
		return uuid.Nil, err
	}
	if !sch.IsActive() {
		s.logger.Warn("Login attempt for inactive school", zap.String("school_code", code))
		return uuid.Nil, shared.NewDomainError("SCHOOL_INACTIVE", "School is not active")
	}
	return sch.ID, nil
}

// RefreshToken re-issues a token pair, picking up role changes made since login
func (s *AuthService) RefreshToken(ctx context.Context, input RefreshTokenInput) (*TokenResult, error) {
	claims, err := s.jwtService.ValidateRefreshToken(input.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		return nil, tokenError(err)
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}

	if s.blacklist != nil {
		revoked, err := s.blacklist.IsUserTokenRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			s.logger.Error("Failed to check token revocation", zap.Error(err))
		} else if revoked {
			return nil, shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked. Please log in again")
		}
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("ACCOUNT_INACTIVE", "Account is no longer active")
	}

	pair, err := s.jwtService.RefreshTokenPair(input.RefreshToken, user.Role, user.ProfileID)
	if err != nil {
		return nil, tokenError(err)
	}

	s.logger.Info("Token refreshed", zap.String("user_id", userID.String()))
	result := toTokenResult(pair)
	return &result, nil
}

// Logout revokes the presented access token for the rest of its lifetime
func (s *AuthService) Logout(ctx context.Context, input LogoutInput) error {
	if s.blacklist != nil && input.TokenJTI != "" && input.TokenTTL > 0 {
		if err := s.blacklist.AddToBlacklist(ctx, input.TokenJTI, input.TokenTTL); err != nil {
			s.logger.Error("Failed to blacklist token", zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to revoke token")
		}
	}
	s.logger.Info("User logged out", zap.String("user_id", input.UserID.String()))
	return nil
}

// GetCurrentUser returns the signed-in user
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserInfo, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	info := toUserInfo(user)
	return &info, nil
}

// ChangePassword changes the caller's own password and revokes their other sessions
func (s *AuthService) ChangePassword(ctx context.Context, userID uuid.UUID, input ChangePasswordInput) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return err
	}

	if err := user.ChangePassword(input.OldPassword, input.NewPassword); err != nil {
		return err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return err
	}

	if s.blacklist != nil {
		if err := s.blacklist.RevokeUserTokens(ctx, userID.String(), s.jwtService.GetRefreshTokenExpiration()); err != nil {
			s.logger.Error("Failed to revoke tokens after password change", zap.Error(err))
		}
	}

	s.logger.Info("Password changed", zap.String("user_id", userID.String()))
	return nil
}

func tokenError(err error) error {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		return shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
	case errors.Is(err, auth.ErrMaxRefreshExceeded):
		return shared.NewDomainError("TOKEN_MAX_REFRESH", "Maximum token refresh count exceeded. Please log in again")
	default:
		return shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
}

func toTokenResult(p *auth.TokenPair) TokenResult {
	return TokenResult{
		AccessToken:           p.AccessToken,
		RefreshToken:          p.RefreshToken,
		AccessTokenExpiresAt:  p.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: p.RefreshTokenExpiresAt,
		TokenType:             p.TokenType,
	}
}
