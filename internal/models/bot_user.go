package models

import "time"

// BotUser links a chat to an application user once the chat has been verified.
type BotUser struct {
	ID               uint64    `gorm:"primarykey" json:"id"`
	ChatID           int64     `gorm:"not null;uniqueIndex" json:"chat_id"`
	UserID           *uint64   `gorm:"index" json:"user_id"`
	VerificationCode *string   `gorm:"type:varchar(32);uniqueIndex" json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	// Relations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (b *BotUser) IsVerified() bool {
	return b.UserID != nil
}
