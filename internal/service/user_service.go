package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/promura/backend/internal/models"
	"github.com/promura/backend/internal/repository"
	"github.com/promura/backend/internal/transfer"
	"github.com/promura/backend/pkg/utils"
)

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrInvalidRole   = errors.New("invalid role")
	ErrUserExists    = errors.New("username already exists")
	ErrSelfDeletion  = errors.New("you cannot delete your own account")
	ErrOwnerDeletion = errors.New("cannot delete owners")
)

type UserService interface {
	GetInfo(ctx context.Context, username string) (*transfer.UserInfo, error)
	List(ctx context.Context) ([]*transfer.UserInfo, error)
	Add(ctx context.Context, actor string, req *transfer.AddUserRequest) (*transfer.UserInfo, error)
	Update(ctx context.Context, username string, req *transfer.UpdateUserRequest) error
	Remove(ctx context.Context, actor, username string) error
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

func (s *userService) GetInfo(ctx context.Context, username string) (*transfer.UserInfo, error) {
	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("error getting user info: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return transfer.ToUserInfo(user), nil
}

// List returns all users sorted owner first, then manager, then assistant,
// alphabetical within a role.
func (s *userService) List(ctx context.Context) ([]*transfer.UserInfo, error) {
	users, err := s.u.List(ctx)
	if err != nil {
		return nil, err
	}

	roleOrder := map[models.Role]int{
		models.RoleOwner:     0,
		models.RoleManager:   1,
		models.RoleAssistant: 2,
	}
	sort.Slice(users, func(i, j int) bool {
		oi, ok := roleOrder[users[i].Role]
		if !ok {
			oi = 3
		}
		oj, ok := roleOrder[users[j].Role]
		if !ok {
			oj = 3
		}
		if oi != oj {
			return oi < oj
		}
		return users[i].Username < users[j].Username
	})

	infos := make([]*transfer.UserInfo, 0, len(users))
	for _, user := range users {
		infos = append(infos, transfer.ToUserInfo(user))
	}
	return infos, nil
}

func (s *userService) Add(ctx context.Context, actor string, req *transfer.AddUserRequest) (*transfer.UserInfo, error) {
	if req.Username == "" || req.Password == "" {
		return nil, errors.New("username and password are required")
	}

	role := models.Role(req.Role)
	switch role {
	case models.RoleOwner, models.RoleManager, models.RoleAssistant:
	default:
		return nil, ErrInvalidRole
	}

	_, exists, err := s.u.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		Permissions:  models.DefaultPermissions(role),
		FullName:     req.FullName,
		Email:        req.Email,
		Active:       true,
		CreatedBy:    actor,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	if err := s.u.Create(ctx, user); err != nil {
		slog.Error(err.Error())
		return nil, err
	}
	return transfer.ToUserInfo(user), nil
}

func (s *userService) Update(ctx context.Context, username string, req *transfer.UpdateUserRequest) error {
	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}

	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		user.Role = models.Role(*req.Role)
	}
	if req.Active != nil {
		user.Active = *req.Active
	}
	if req.Permissions != nil {
		user.Permissions = models.PermissionSet(req.Permissions)
	}
	user.UpdatedAt = time.Now()
	return s.u.Update(ctx, user)
}

// Remove deletes a user. Owners can never be deleted, and no one may delete
// their own account, whatever their role.
func (s *userService) Remove(ctx context.Context, actor, username string) error {
	if actor == username {
		return ErrSelfDeletion
	}

	user, exists, err := s.u.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !exists {
		return ErrUserNotFound
	}
	if user.Role == models.RoleOwner {
		return ErrOwnerDeletion
	}
	return s.u.Remove(ctx, username)
}
