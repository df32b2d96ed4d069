package models

import (
	"time"
)

type User struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"`
	FriendCode   string    `gorm:"type:varchar(20);uniqueIndex;not null" json:"friend_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Relations
	Boards      []Board      `gorm:"foreignKey:UserID" json:"-"`
	Connections []Connection `gorm:"foreignKey:UserID" json:"-"`
}
