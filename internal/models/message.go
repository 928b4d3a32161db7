package models

import (
	"gorm.io/gorm"
)

// Message is one direct message between two users. Messages are immutable
// once created; the only mutation the repository performs is flipping Read
// from false to true, never back.
type Message struct {
	gorm.Model
	SenderID    uint   `gorm:"index;not null" json:"sender_id"`
	RecipientID uint   `gorm:"index;not null" json:"recipient_id"`
	Body        string `gorm:"not null" json:"body"`
	Read        bool   `gorm:"default:false" json:"read"`
}
