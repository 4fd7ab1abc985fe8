package model

import (
	"time"
)

// Role is a closed enumeration; anything outside user/admin is rejected at
// the boundary rather than compared as a free-form string.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Email          string    `gorm:"size:50;not null;uniqueIndex" json:"email"`
	Username       string    `gorm:"size:50;not null;uniqueIndex" json:"username"`
	HashedPassword string    `gorm:"not null" json:"hashed_password"`
	CreatedAt      time.Time `json:"created_at"`
	Avatar         string    `gorm:"size:255" json:"avatar"`
	Confirmed      bool      `gorm:"not null;default:false" json:"confirmed"`
	Role           Role      `gorm:"size:10;not null;default:user" json:"role"`
	// RefreshToken holds the single currently valid refresh token; nil when
	// the user has never logged in. Login and refresh overwrite it, which
	// invalidates the previous one.
	RefreshToken *string `json:"refresh_token,omitempty"`
}

type Contact struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	FirstName   string    `gorm:"size:50;not null" json:"first_name"`
	LastName    string    `gorm:"size:50;not null" json:"last_name"`
	Email       string    `gorm:"size:50;not null" json:"email"`
	Phone       string    `gorm:"size:50;not null" json:"phone"`
	Birthday    time.Time `gorm:"type:date;not null" json:"birthday"`
	Description string    `gorm:"size:150" json:"description,omitempty"`
	UserID      uint      `gorm:"not null;index" json:"-"`
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
}
