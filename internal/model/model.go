// Package model holds the persisted domain types.
package model

import (
	"time"

	"github.com/google/uuid"
)

// Role is an immutable access level.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is an account. PasswordHash never leaves the service layer.
type User struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         *string   `json:"name" db:"name"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Role         Role      `json:"role" db:"role"`
	ImageLink    *string   `json:"imageLink" db:"image_link"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// File is an image stored at the remote image host.
type File struct {
	// ID is the identifier assigned by the image host.
	ID           string     `json:"id" db:"id"`
	Link         string     `json:"link" db:"link"`
	DeleteHandle string     `json:"-" db:"delete_handle"`
	OwnerID      *uuid.UUID `json:"ownerId" db:"owner_id"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// IsOwnedBy reports whether userID uploaded the file.
func (f *File) IsOwnedBy(userID uuid.UUID) bool {
	return f.OwnerID != nil && *f.OwnerID == userID
}

// Page is one page of a listing.
type Page[T any] struct {
	Items []T `json:"items"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}
