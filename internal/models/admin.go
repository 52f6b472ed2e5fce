package models

import "time"

// Role represents the access level of an admin account.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// Admin represents a console account stored in the admins table.
type Admin struct {
	ID           int64     `db:"id" json:"id"`
	Username     string    `db:"username" json:"username"`
	PasswordHash string    `db:"password" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// AdminInput holds the writable admin fields. Password is plain text and is
// hashed before it reaches the store.
type AdminInput struct {
	Username string `db:"username" json:"username" validate:"notblank,max=50"`
	Password string `db:"password" json:"password" validate:"omitempty,maxbytes=72"`
	FullName string `db:"full_name" json:"full_name" validate:"notblank,max=100"`
	Role     Role   `db:"role" json:"role" validate:"oneof=admin staff"`
}

// AdminList is the paginated admin listing.
type AdminList struct {
	Admins []Admin `json:"admins"`
	Total  int     `json:"total"`
}
