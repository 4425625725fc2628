package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/vendora-hq/vendora/internal/models"
	apperrors "github.com/vendora-hq/vendora/pkg/errors"
)

var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = apperrors.New("USER_NOT_FOUND", "User not found", http.StatusNotFound)
	// ErrLastSuperUser blocks mutations that would leave zero active super-users.
	ErrLastSuperUser = apperrors.New("USER_LAST_SUPER_USER", "Cannot demote or deactivate the last active super user", http.StatusBadRequest)
)

// UserService manages platform accounts and enforces the super-user floor:
// at least one active super-user must remain after any status change.
type UserService struct {
	db    *gorm.DB
	audit *AuditService
}

// NewUserService constructs a UserService using the provided database handle.
func NewUserService(db *gorm.DB, audit *AuditService) (*UserService, error) {
	if db == nil {
		return nil, errors.New("user service: db is required")
	}
	return &UserService{db: db, audit: audit}, nil
}

// CreateUserInput describes the payload accepted by CreateUser.
type CreateUserInput struct {
	Username    string
	Email       string
	Password    string
	FirstName   string
	LastName    string
	IsSuperUser bool
}

// CreateUser registers a new account with a bcrypt-hashed password.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*models.User, error) {
	ctx = ensureContext(ctx)

	username := strings.TrimSpace(input.Username)
	email := strings.TrimSpace(input.Email)
	if username == "" || email == "" {
		return nil, apperrors.NewBadRequest("username and email are required")
	}
	if input.Password == "" {
		return nil, apperrors.NewBadRequest("password is required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("user service: hash password: %w", err)
	}

	user := &models.User{
		Username:    username,
		Email:       email,
		Password:    string(hashed),
		FirstName:   strings.TrimSpace(input.FirstName),
		LastName:    strings.TrimSpace(input.LastName),
		IsSuperUser: input.IsSuperUser,
		IsActive:    true,
	}

	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueConstraintError(err) {
			return nil, apperrors.NewBadRequest("username or email already exists")
		}
		return nil, fmt.Errorf("user service: create user: %w", err)
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &user.ID,
		Action:   "user.create",
		Resource: user.ID,
		Result:   "success",
		Metadata: map[string]any{
			"username":      user.Username,
			"is_super_user": user.IsSuperUser,
		},
	})

	return user, nil
}

// GetUser loads a single user with group memberships.
func (s *UserService) GetUser(ctx context.Context, userID string) (*models.User, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).Preload("Groups").First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user service: load user: %w", err)
	}
	return &user, nil
}

// ListUsers returns all users with group memberships preloaded.
func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	ctx = ensureContext(ctx)

	var users []models.User
	if err := s.db.WithContext(ctx).Preload("Groups").Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("user service: list users: %w", err)
	}
	return users, nil
}

// HasSuperUser reports whether at least one active super-user exists.
func (s *UserService) HasSuperUser(ctx context.Context) (bool, error) {
	count, err := s.SuperUserCount(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// SuperUserCount counts active, super-user-flagged accounts.
func (s *UserService) SuperUserCount(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("is_super_user = ? AND is_active = ?", true, true).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("user service: count super users: %w", err)
	}
	return count, nil
}

// CanDemoteSuperUser reports whether removing super-user status from (or
// deactivating) the given user would still leave at least one active
// super-user. Demoting a non-super-user is vacuously allowed. The check is
// advisory: callers must consult it before applying the mutation.
func (s *UserService) CanDemoteSuperUser(ctx context.Context, userID string) (bool, error) {
	ctx = ensureContext(ctx)

	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrUserNotFound
		}
		return false, fmt.Errorf("user service: load user: %w", err)
	}

	if !user.IsSuperUser {
		return true, nil
	}

	count, err := s.SuperUserCount(ctx)
	if err != nil {
		return false, err
	}
	return count > 1, nil
}

// SetSuperUser toggles the super-user flag, refusing demotions that would
// leave zero active super-users.
func (s *UserService) SetSuperUser(ctx context.Context, userID string, super bool) error {
	ctx = ensureContext(ctx)

	if !super {
		ok, err := s.CanDemoteSuperUser(ctx, userID)
		if err != nil {
			return err
		}
		if !ok {
			return ErrLastSuperUser
		}
	}

	if err := s.updateUserFlags(ctx, userID, map[string]any{"is_super_user": super}); err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "user.set_super_user",
		Resource: userID,
		Result:   "success",
		Metadata: map[string]any{"is_super_user": super},
	})
	return nil
}

// SetActive toggles the active flag, refusing to deactivate the last active
// super-user.
func (s *UserService) SetActive(ctx context.Context, userID string, active bool) error {
	ctx = ensureContext(ctx)

	if !active {
		var user models.User
		if err := s.db.WithContext(ctx).First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("user service: load user: %w", err)
		}
		if user.IsSuperUser {
			ok, err := s.CanDemoteSuperUser(ctx, userID)
			if err != nil {
				return err
			}
			if !ok {
				return ErrLastSuperUser
			}
		}
	}

	if err := s.updateUserFlags(ctx, userID, map[string]any{"is_active": active}); err != nil {
		return err
	}

	recordAudit(s.audit, ctx, AuditEntry{
		UserID:   &userID,
		Action:   "user.set_active",
		Resource: userID,
		Result:   "success",
		Metadata: map[string]any{"is_active": active},
	})
	return nil
}

// BootstrapSuperUserInput configures the account created on a fresh install.
type BootstrapSuperUserInput struct {
	Username string
	Email    string
	Password string
}

// EnsureBootstrapSuperUser creates an initial super-user when no active one
// exists, so a fresh installation is never locked out of administration. It
// reports whether an account was created.
func (s *UserService) EnsureBootstrapSuperUser(ctx context.Context, input BootstrapSuperUserInput) (bool, error) {
	ctx = ensureContext(ctx)

	exists, err := s.HasSuperUser(ctx)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if strings.TrimSpace(input.Username) == "" || strings.TrimSpace(input.Email) == "" || input.Password == "" {
		return false, apperrors.NewBadRequest("bootstrap super user requires username, email and password")
	}

	_, err = s.CreateUser(ctx, CreateUserInput{
		Username:    input.Username,
		Email:       input.Email,
		Password:    input.Password,
		IsSuperUser: true,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *UserService) updateUserFlags(ctx context.Context, userID string, updates map[string]any) error {
	result := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("user service: update user: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}
