// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// UserRole distinguishes regular accounts from moderators.
type UserRole string

// UserStatus is the account standing; blocked users cannot authenticate.
type UserStatus string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"

	UserStatusActive  UserStatus = "active"
	UserStatusBlocked UserStatus = "blocked"
)

// User represents a campus account. ActiveClaims tracks the legacy
// direct-claim path and must never go negative; only the claim service
// mutates it.
type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Email        string         `gorm:"unique;not null" json:"email"`
	Password     string         `gorm:"not null" json:"-"`
	RollNumber   string         `gorm:"unique;not null" json:"roll_number"`
	Branch       string         `json:"branch"`
	ContactInfo  string         `json:"contact_info"`
	Role         UserRole       `gorm:"type:varchar(16);default:user;index" json:"role"`
	Status       UserStatus     `gorm:"type:varchar(16);default:active;index" json:"status"`
	ActiveClaims int            `gorm:"default:0" json:"active_claims"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the account has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// IsBlocked reports whether the account is blocked.
func (u *User) IsBlocked() bool {
	return u.Status == UserStatusBlocked
}
