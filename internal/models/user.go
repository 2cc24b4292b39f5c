package models

// Role represents a platform user role
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleInstructor Role = "INSTRUCTOR"
	RoleAdmin      Role = "ADMIN"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleStudent, RoleInstructor, RoleAdmin:
		return true
	}
	return false
}

// AuthResponse is the token pair returned by login, register and refresh
type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Username     string `json:"username"`
	Role         Role   `json:"role"`
}

// LoginRequest is the body of the login call
type LoginRequest struct {
	Username string `json:"username" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// RegisterRequest is the body of the register call
type RegisterRequest struct {
	Username string `json:"username" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Role     Role   `json:"role,omitempty" validate:"omitempty,oneof=STUDENT INSTRUCTOR ADMIN"`
}

// Profile is the profile of the current user
type Profile struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	ProfilePicture string `json:"profilePicture,omitempty"`
	Role           Role   `json:"role"`
}

// UpdateProfileRequest holds the profile fields to change, empty fields are left out
type UpdateProfileRequest struct {
	FirstName      string `json:"firstName,omitempty"`
	LastName       string `json:"lastName,omitempty"`
	Email          string `json:"email,omitempty" validate:"omitempty,email"`
	ProfilePicture string `json:"profilePicture,omitempty"`
}

// ChangePasswordRequest is the body of the password change call
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6,nefield=CurrentPassword"`
}
