package domain

import "strings"

// Role is a user's authorization role as issued by the backend.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// User is an account record returned by the remote API.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	Timestamps
}

// FullName joins first and last name, skipping empty parts.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u User) IsAdmin() bool {
	return strings.EqualFold(string(u.Role), string(RoleAdmin))
}

// CreateUserInput is the admin form for creating an account.
type CreateUserInput struct {
	FirstName string `form:"firstName" json:"firstName" binding:"required,min=2"`
	LastName  string `form:"lastName" json:"lastName" binding:"required,min=2"`
	Email     string `form:"email" json:"email" binding:"required,email"`
	Password  string `form:"password" json:"password" binding:"required,min=8"`
}

// UpdateUserInput is a partial update; empty fields are left unchanged.
type UpdateUserInput struct {
	FirstName string `form:"firstName" json:"firstName,omitempty" binding:"omitempty,min=2"`
	LastName  string `form:"lastName" json:"lastName,omitempty" binding:"omitempty,min=2"`
	Email     string `form:"email" json:"email,omitempty" binding:"omitempty,email"`
}

// Credentials is the login form.
type Credentials struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

// RegisterInput is the self-service sign-up form.
type RegisterInput struct {
	FirstName string `form:"firstName" json:"firstName" binding:"required,min=2"`
	LastName  string `form:"lastName" json:"lastName" binding:"required,min=2"`
	Email     string `form:"email" json:"email" binding:"required,email"`
	Password  string `form:"password" json:"password" binding:"required,min=8"`
}

// EmailInput carries a single address for reset and verification mails.
type EmailInput struct {
	Email string `form:"email" json:"email" binding:"required,email"`
}

// ResetPasswordInput is the reset-by-token form.
type ResetPasswordInput struct {
	Password        string `form:"password" json:"password" binding:"required,min=8"`
	ConfirmPassword string `form:"confirmPassword" json:"-" binding:"required,eqfield=Password"`
}

// LoginResult is the payload the backend returns on a successful login.
type LoginResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
