package transfer

type AddUserRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// UpdateUserRequest carries optional field updates. Nil pointers leave the
// field untouched; password and created_at cannot be updated this way.
type UpdateUserRequest struct {
	FullName    *string  `json:"full_name"`
	Email       *string  `json:"email"`
	Role        *string  `json:"role"`
	Active      *bool    `json:"active"`
	Permissions []string `json:"permissions"`
}
