package models

import "time"

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
)

// Connection is one direction of a friendship edge. A pending request is a
// single requester -> recipient row; accepting it adds the mirrored row and
// marks both accepted.
type Connection struct {
	UserID      uint64           `gorm:"primarykey" json:"user_id"`
	FriendID    uint64           `gorm:"primarykey;index" json:"friend_id"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	RequestedBy uint64           `gorm:"not null" json:"requested_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`

	// Relations
	User   User `gorm:"foreignKey:UserID" json:"-"`
	Friend User `gorm:"foreignKey:FriendID" json:"friend,omitempty"`
}
