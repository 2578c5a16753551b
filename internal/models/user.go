package models

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	ID          int    `gorm:"primaryKey" json:"id"`
	ShortUserID string `gorm:"uniqueIndex;size:16;not null" json:"shortUserId"`
	Name        string `gorm:"not null" json:"name"`
	Username    string `gorm:"uniqueIndex;size:50;not null" json:"username"`
	Email       string `gorm:"uniqueIndex;size:100;not null" json:"email"`
	Password    string `gorm:"not null" json:"-"` // bcrypt hash

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ShortUserID == "" {
		u.ShortUserID = NewShortID()
	}
	return nil
}

// Profile is the public projection of a User. It is read straight from the
// users table and never carries the password hash.
type Profile struct {
	ID          int       `json:"id"`
	ShortUserID string    `json:"shortUserId"`
	Name        string    `json:"name"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	CreatedAt   time.Time `json:"createdAt"`
}

// ProfileColumns lists the users columns that are safe to hand to clients.
var ProfileColumns = []string{"id", "short_user_id", "name", "username", "email", "created_at"}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UsernameRequest struct {
	Username string `json:"username" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

// AuthUser is the user summary returned alongside a freshly issued token.
type AuthUser struct {
	ShortUserID string `json:"shortUserId"`
	Name        string `json:"name"`
	Username    string `json:"username"`
	Email       string `json:"email"`
}
