package models

import "time"

type BoardRole string

const (
	BoardRoleViewer BoardRole = "viewer"
	BoardRoleEditor BoardRole = "editor"
)

// Valid reports whether r is a known member role.
func (r BoardRole) Valid() bool {
	return r == BoardRoleViewer || r == BoardRoleEditor
}

type BoardMember struct {
	BoardID   uint64    `gorm:"primarykey" json:"board_id"`
	UserID    uint64    `gorm:"primarykey;index" json:"user_id"`
	Role      BoardRole `gorm:"type:varchar(20);not null" json:"role"`
	InvitedBy uint64    `gorm:"not null" json:"invited_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
