package transfer

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/promura/backend/internal/models"
)

// CustomClaims embeds the username as the registered subject plus the role
// and permission list current at issue time.
type CustomClaims struct {
	Role        string   `json:"role"`
	Permissions []string `json:"permissions"`
	jwt.RegisteredClaims
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type PasswordChangeRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

// UserInfo is the API-facing view of a user, password hash stripped.
type UserInfo struct {
	Username    string               `json:"username"`
	Role        models.Role          `json:"role"`
	Permissions models.PermissionSet `json:"permissions"`
	FullName    string               `json:"full_name"`
	Email       string               `json:"email"`
	Active      bool                 `json:"active"`
	CreatedBy   string               `json:"created_by,omitempty"`
	CreatedAt   time.Time            `json:"created_at"`
}

func ToUserInfo(user *models.User) *UserInfo {
	return &UserInfo{
		Username:    user.Username,
		Role:        user.Role,
		Permissions: user.Permissions,
		FullName:    user.FullName,
		Email:       user.Email,
		Active:      user.Active,
		CreatedBy:   user.CreatedBy,
		CreatedAt:   user.CreatedAt,
	}
}
