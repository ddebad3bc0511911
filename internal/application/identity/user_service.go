package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/schoolhub/backend/internal/domain/identity"
	"github.com/schoolhub/backend/internal/domain/shared"
	"github.com/schoolhub/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// revokeWindow outlives every refresh token that could have been issued before a revocation
const revokeWindow = 7 * 24 * time.Hour

// UserService manages the accounts of a school
type UserService struct {
	userRepo       identity.UserRepository
	blacklist      auth.TokenBlacklist
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:       userRepo,
		blacklist:      blacklist,
		eventPublisher: eventPublisher,
		logger:         logger,
	}
}

// Create creates a user in the actor's school
func (s *UserService) Create(ctx context.Context, actor identity.Actor, req CreateUserRequest) (*UserResponse, error) {
	role, err := identity.ParseRole(req.Role)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManage(role) || role == identity.RoleSuperAdmin {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot create users with this role")
	}

	exists, err := s.userRepo.ExistsByUsername(ctx, actor.TenantID, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username already exists")
	}
	if req.Email != "" {
		exists, err := s.userRepo.ExistsByEmail(ctx, actor.TenantID, req.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already exists")
		}
	}

	user, err := identity.NewUser(actor.TenantID, req.Username, req.Password, role)
	if err != nil {
		return nil, err
	}
	if err := user.SetEmail(req.Email); err != nil {
		return nil, err
	}
	if err := user.SetPhone(req.Phone); err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(req.DisplayName); err != nil {
		return nil, err
	}
	if req.ProfileID != nil {
		user.LinkProfile(req.ProfileID)
	}
	if req.Activate {
		if err := user.Activate(); err != nil {
			return nil, err
		}
	}
	user.SetCreatedBy(actor.UserID)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User created",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(role)))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Get returns a user of the actor's school
func (s *UserService) Get(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	user, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List lists the users of the actor's school
func (s *UserService) List(ctx context.Context, actor identity.Actor, filter UserListFilter) ([]UserResponse, int64, error) {
	f := filter.PageQuery.Filter()
	uf := identity.UserFilter{
		Keyword:   f.Search,
		Page:      f.Page,
		PageSize:  f.PageSize,
		SortBy:    f.OrderBy,
		SortOrder: f.OrderDir,
	}
	if filter.Role != "" {
		role := identity.Role(filter.Role)
		uf.Role = &role
	}
	if filter.Status != "" {
		status := identity.UserStatus(filter.Status)
		uf.Status = &status
	}

	users, total, err := s.userRepo.FindAll(ctx, actor.TenantID, uf)
	if err != nil {
		return nil, 0, err
	}
	out := make([]UserResponse, len(users))
	for i, u := range users {
		out[i] = ToUserResponse(u)
	}
	return out, total, nil
}

// Update changes a user's contact details, role or linked profile
func (s *UserService) Update(ctx context.Context, actor identity.Actor, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.findManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if req.Email != nil && !strings.EqualFold(*req.Email, user.Email) {
		if *req.Email != "" {
			exists, err := s.userRepo.ExistsByEmail(ctx, actor.TenantID, *req.Email)
			if err != nil {
				return nil, err
			}
			if exists {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "Email already exists")
			}
		}
		if err := user.SetEmail(*req.Email); err != nil {
			return nil, err
		}
	}
	if req.Phone != nil {
		if err := user.SetPhone(*req.Phone); err != nil {
			return nil, err
		}
	}
	if req.DisplayName != nil {
		if err := user.SetDisplayName(*req.DisplayName); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		role, err := identity.ParseRole(*req.Role)
		if err != nil {
			return nil, err
		}
		if !actor.Role.CanManage(role) {
			return nil, shared.NewDomainError("FORBIDDEN", "You cannot assign this role")
		}
		if user.ID == actor.UserID && role != user.Role {
			return nil, shared.NewDomainError("CANNOT_CHANGE_OWN_ROLE", "You cannot change your own role")
		}
		if err := user.ChangeRole(role); err != nil {
			return nil, err
		}
	}
	if req.ProfileID != nil {
		user.LinkProfile(req.ProfileID)
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	resp := ToUserResponse(user)
	return &resp, nil
}

// Activate activates a pending or deactivated user
func (s *UserService) Activate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, actor, id, "activated", func(u *identity.User) error {
		return u.Activate()
	})
}

// Deactivate deactivates a user and revokes their tokens
func (s *UserService) Deactivate(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	if id == actor.UserID {
		return nil, shared.NewDomainError("CANNOT_DEACTIVATE_SELF", "You cannot deactivate your own account")
	}
	resp, err := s.transition(ctx, actor, id, "deactivated", func(u *identity.User) error {
		return u.Deactivate()
	})
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, id)
	return resp, nil
}

// Unlock lifts a login lock
func (s *UserService) Unlock(ctx context.Context, actor identity.Actor, id uuid.UUID) (*UserResponse, error) {
	return s.transition(ctx, actor, id, "unlocked", func(u *identity.User) error {
		return u.Unlock()
	})
}

// ResetPassword sets a new password for another user and signs them out everywhere
func (s *UserService) ResetPassword(ctx context.Context, actor identity.Actor, id uuid.UUID, req ResetPasswordRequest) error {
	_, err := s.transition(ctx, actor, id, "password reset", func(u *identity.User) error {
		if err := u.SetPassword(req.NewPassword); err != nil {
			return err
		}
		if req.MustChangeOnLogin {
			u.ForcePasswordChange()
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.revoke(ctx, id)
	return nil
}

// Delete removes a user
func (s *UserService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if id == actor.UserID {
		return shared.NewDomainError("CANNOT_DELETE_SELF", "You cannot delete your own account")
	}
	user, err := s.findManaged(ctx, actor, id)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, actor.TenantID, id); err != nil {
		return err
	}
	user.AddDomainEvent(identity.NewUserDeletedEvent(user))
	s.publish(ctx, user)
	s.revoke(ctx, id)

	s.logger.Info("User deleted",
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("user_id", id.String()))
	return nil
}

func (s *UserService) transition(ctx context.Context, actor identity.Actor, id uuid.UUID, what string, fn func(*identity.User) error) (*UserResponse, error) {
	user, err := s.findManaged(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := fn(user); err != nil {
		return nil, err
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("User "+what,
		zap.String("tenant_id", actor.TenantID.String()),
		zap.String("user_id", id.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

func (s *UserService) find(ctx context.Context, tenantID, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByIDForTenant(ctx, tenantID, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		return nil, err
	}
	return user, nil
}

// findManaged loads a user the actor is allowed to modify
func (s *UserService) findManaged(ctx context.Context, actor identity.Actor, id uuid.UUID) (*identity.User, error) {
	user, err := s.find(ctx, actor.TenantID, id)
	if err != nil {
		return nil, err
	}
	if !actor.Role.CanManage(user.Role) {
		return nil, shared.NewDomainError("FORBIDDEN", "You cannot manage this user")
	}
	return user, nil
}

func (s *UserService) revoke(ctx context.Context, userID uuid.UUID) {
	if s.blacklist == nil {
		return
	}
	if err := s.blacklist.RevokeUserTokens(ctx, userID.String(), revokeWindow); err != nil {
		s.logger.Error("Failed to revoke user tokens", zap.String("user_id", userID.String()), zap.Error(err))
	}
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	if err := shared.PublishAndClear(ctx, s.eventPublisher, user); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}
