package model

import "time"

// Role determines what a user is allowed to mutate.
type Role string

const (
	RoleStandard Role = "STANDARD"
	RoleAdmin    Role = "ADMIN"
)

// User represents a user row in the database. Token holds the single
// currently-valid session token for this user; it is empty until the first
// login or registration and is overwritten wholesale on every login.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         Role
	Token        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity is the authenticated caller attached to a request context by the
// auth middleware. It carries only what handlers need for authorization.
type Identity struct {
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// RegisterRequest represents a user registration request.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse represents an authentication response with a session token and
// the public user fields.
type AuthResponse struct {
	Token string   `json:"token"`
	User  Identity `json:"user"`
}

// CheckResponse represents the body of a successful token check.
type CheckResponse struct {
	User Identity `json:"user"`
}
