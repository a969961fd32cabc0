package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"time"

	config "github.com/promura/backend/configs"
	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/transfer"
	"github.com/promura/backend/pkg/utils"
)

const TokenDuration = 24 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

type AuthService interface {
	Authenticate(ctx context.Context, username, password string) (*transfer.UserInfo, error)
	IssueToken(ctx context.Context, username string) (string, error)
	Verify(ctx context.Context, token string) (*transfer.CustomClaims, error)
	CheckPermission(ctx context.Context, username, permission string) (bool, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
	SeedDefaults(ctx context.Context) error
}

type authService struct {
	cfg config.Config
	u   repository.UserRepository
}

func NewAuthService(cfg config.Config, u repository.UserRepository) AuthService {
	return &authService{cfg: cfg, u: u}
}

// Authenticate rejects unknown users, inactive users, and wrong passwords
// with the same error so the login path leaks nothing about which it was.
func (s *authService) Authenticate(ctx context.Context, username, password string) (*transfer.UserInfo, error) {
	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !exists || !user.Active || !utils.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return transfer.ToUserInfo(user), nil
}

func (s *authService) IssueToken(ctx context.Context, username string) (string, error) {
	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", fmt.Errorf("user %s not found", username)
	}
	return utils.GenerateToken(s.cfg.SecretKey, username, string(user.Role), user.Permissions, TokenDuration)
}

// Verify validates signature and expiry, then re-checks that the embedded
// username still exists. Deleting a user revokes every token it holds.
func (s *authService) Verify(ctx context.Context, token string) (*transfer.CustomClaims, error) {
	claims, err := utils.ValidateToken(s.cfg.SecretKey, token)
	if err != nil {
		return nil, ErrInvalidToken
	}

	_, exists, err := s.u.GetByUsername(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *authService) CheckPermission(ctx context.Context, username, permission string) (bool, error) {
	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}
	return user.Permissions.Has(permission), nil
}

func (s *authService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !exists || !utils.CheckPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := utils.HashPassword(newPassword)
	if err != nil {
		return err
	}
	now := time.Now()
	user.PasswordHash = hash
	user.PasswordChangedAt = &now
	user.UpdatedAt = now
	return s.u.Update(ctx, user)
}

// SeedDefaults creates the built-in accounts on first boot. Existing users
// are never overwritten. The default passwords are meant to be changed
// right after the first login.
func (s *authService) SeedDefaults(ctx context.Context) error {
	defaults := []struct {
		username string
		password string
		role     models.Role
		fullName string
		email    string
	}{
		{"lea", "admin123", models.RoleOwner, "Lea (Owner)", "lea@promura.com"},
		{"social_manager", "manager123", models.RoleManager, "Social Media Manager", "manager@promura.com"},
		{"content_assistant", "assistant123", models.RoleAssistant, "Content Assistant", "assistant@promura.com"},
	}

	for _, d := range defaults {
		_, exists, err := s.u.GetByUsername(ctx, d.username)
		if err != nil {
			return err
		}
		if exists {
			continue
		}

		hash, err := utils.HashPassword(d.password)
		if err != nil {
			return err
		}
		user := &models.User{
			Username:     d.username,
			PasswordHash: hash,
			Role:         d.role,
			Permissions:  models.DefaultPermissions(d.role),
			FullName:     d.fullName,
			Email:        d.email,
			Active:       true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := s.u.Create(ctx, user); err != nil {
			slog.Error(err.Error())
			return err
		}
		log.Printf("Created default user: %s", d.username)
	}
	return nil
}
