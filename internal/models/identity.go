package models

import "github.com/golang-jwt/jwt/v5"

// Identity is the authenticated principal resolved from a session.
type Identity struct {
	AdminID   int64  `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	SessionID string `json:"-"`
}

// SessionClaims is the signed payload stored in the session cookie.
type SessionClaims struct {
	AdminID  int64  `json:"admin_id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
	jwt.RegisteredClaims
}

// LoginInput carries credentials for authenticating an admin.
type LoginInput struct {
	Username string `db:"username" json:"username" validate:"max=50"`
	Password string `db:"password" json:"password" validate:"maxbytes=72"`
}

// LoginResult is returned after a successful login.
type LoginResult struct {
	User    Admin  `json:"user"`
	Message string `json:"message"`
}

// Session is an issued session token and its metadata.
type Session struct {
	Token  string
	ID     string
	MaxAge int
	Admin  Admin
}
