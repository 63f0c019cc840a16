package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/sleepystack/vaulta/internal/apperrors"
	"github.com/sleepystack/vaulta/internal/core/domain"
	portsrepo "github.com/sleepystack/vaulta/internal/core/ports/repositories"
	portssvc "github.com/sleepystack/vaulta/internal/core/ports/services"
	"github.com/sleepystack/vaulta/internal/dto"
	"github.com/sleepystack/vaulta/internal/utils"
)

// userService manages user profiles, credentials and the admin-side user
// management operations.
type userService struct {
	BaseService
	userRepo    portsrepo.UserRepository
	accountRepo portsrepo.AccountReader
}

// NewUserService creates the user service. The account reader is used for
// the admin management view's per-user balance totals.
func NewUserService(userRepo portsrepo.UserRepository, accountRepo portsrepo.AccountReader) portssvc.UserSvcFacade {
	return &userService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
	}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

// Register creates a new ACTIVE user with role USER.
func (s *userService) Register(ctx context.Context, req dto.RegisterRequest) (*domain.User, error) {
	if _, err := s.userRepo.FindUserByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username already taken", apperrors.ErrDuplicate)
	}
	if _, err := s.userRepo.FindUserByEmail(ctx, req.Email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", apperrors.ErrDuplicate)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domain.RoleUser,
		Status:       domain.UserActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, err
	}

	s.LogInfo(ctx, "User registered", slog.String("user_id", user.UserID), slog.String("username", user.Username))
	return &user, nil
}

// Authenticate verifies the credentials and returns the user. A frozen user
// authenticates successfully but is denied operations downstream.
func (s *userService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, apperrors.ErrNotFound
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, apperrors.ErrNotFound
	}
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.FindUserByID(ctx, userID)
}

// VerifyTokenVersion rejects tokens minted before the user's last forced
// logout.
func (s *userService) VerifyTokenVersion(ctx context.Context, userID string, tokenVersion int) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.TokenVersion != tokenVersion {
		return apperrors.ErrForbidden
	}
	return nil
}

// ChangePassword verifies the caller's current password, applies the new one
// and bumps the token version so every outstanding session, including the one
// making this request, has to log in again.
func (s *userService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !utils.CheckPasswordHash(currentPassword, user.PasswordHash) {
		return fmt.Errorf("%w: current password is incorrect", apperrors.ErrValidation)
	}
	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.TokenVersion++
	s.LogInfo(ctx, "Password changed", slog.String("user_id", userID))
	return s.userRepo.UpdateUser(ctx, *user)
}

// Logout bumps the token version, revoking every outstanding token for the
// user.
func (s *userService) Logout(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	user.TokenVersion++
	s.LogInfo(ctx, "User logged out", slog.String("user_id", userID))
	return s.userRepo.UpdateUser(ctx, *user)
}

// ListUsersForManagement builds the admin user management view, including
// each user's summed account balance.
func (s *userService) ListUsersForManagement(ctx context.Context) ([]dto.UserManagementResponse, error) {
	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.UserManagementResponse, 0, len(users))
	for _, user := range users {
		accounts, err := s.accountRepo.ListAccountsByOwner(ctx, user.UserID)
		if err != nil {
			return nil, err
		}
		var total domain.Money
		for _, acct := range accounts {
			total += acct.Balance
		}
		out = append(out, dto.UserManagementResponse{
			UserID:       user.UserID,
			Username:     user.Username,
			Email:        user.Email,
			Role:         string(user.Role),
			Status:       string(user.Status),
			TokenVersion: user.TokenVersion,
			TotalBalance: total,
		})
	}
	return out, nil
}

// ToggleUserStatus flips ACTIVE and FROZEN and bumps the token version so
// all outstanding sessions are revoked.
func (s *userService) ToggleUserStatus(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Status == domain.UserActive {
		user.Status = domain.UserFrozen
		s.LogWarn(ctx, "Locking user", slog.String("target_user_id", userID), slog.String("username", user.Username))
	} else {
		user.Status = domain.UserActive
		s.LogInfo(ctx, "Activating user", slog.String("target_user_id", userID), slog.String("username", user.Username))
	}
	user.TokenVersion++
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUserStatus sets the status explicitly, bumping the token version when
// the user is frozen.
func (s *userService) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Status == status {
		return nil
	}
	user.Status = status
	if status == domain.UserFrozen {
		user.TokenVersion++
	}
	s.LogInfo(ctx, "Updating user status",
		slog.String("target_user_id", userID), slog.String("status", string(status)))
	return s.userRepo.UpdateUser(ctx, *user)
}

// PromoteToAdmin grants the ADMIN role.
func (s *userService) PromoteToAdmin(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.Role == domain.RoleAdmin {
		return nil
	}
	user.Role = domain.RoleAdmin
	s.LogInfo(ctx, "Promoting user to admin", slog.String("target_user_id", userID))
	return s.userRepo.UpdateUser(ctx, *user)
}

// ResetPassword sets a temporary password chosen by an admin and revokes
// outstanding sessions.
func (s *userService) ResetPassword(ctx context.Context, userID string, tempPassword string) error {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	hash, err := utils.HashPassword(tempPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = hash
	user.TokenVersion++
	s.LogInfo(ctx, "Password reset by admin", slog.String("target_user_id", userID))
	return s.userRepo.UpdateUser(ctx, *user)
}

// EnsureAdminUser creates the seed admin account on boot when it does not
// exist yet.
func (s *userService) EnsureAdminUser(ctx context.Context, username, email, password string) error {
	if username == "" || password == "" {
		return nil
	}
	if _, err := s.userRepo.FindUserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	admin := domain.User{
		UserID:       uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleAdmin,
		Status:       domain.UserActive,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.SaveUser(ctx, admin); err != nil {
		return err
	}
	s.LogInfo(ctx, "Seed admin user created", slog.String("username", username))
	return nil
}
