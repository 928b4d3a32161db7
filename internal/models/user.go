package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a forum account. Only the fields the messaging core needs
// are mapped here; the rest of the profile lives with the CRUD layer.
type User struct {
	gorm.Model
	FirstName    string     `gorm:"not null" json:"first_name"`
	LastName     string     `gorm:"not null" json:"last_name"`
	Email        string     `gorm:"unique;not null" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	Password     string     `gorm:"-" json:"password"`
	IsOnline     bool       `gorm:"default:false" json:"is_online"`
	LastSeen     *time.Time `json:"last_seen"`
}

func (user *User) ToUserResponse() *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		IsOnline:  user.IsOnline,
		LastSeen:  user.LastSeen,
	}
}
