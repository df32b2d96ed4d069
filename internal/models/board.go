package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

type BoardType string

const (
	BoardTypeKanban   BoardType = "kanban"
	BoardTypeTemplate BoardType = "template"
)

type TemplateType string

const (
	TemplateJobTracker TemplateType = "job_tracker"
	TemplateRecipe     TemplateType = "recipe"
)

// Valid reports whether t is a known template type.
func (t TemplateType) Valid() bool {
	return t == TemplateJobTracker || t == TemplateRecipe
}

// SingletonKind names the board kinds a user may own at most one of.
type SingletonKind string

const (
	SingletonKanban     SingletonKind = "kanban"
	SingletonJobTracker SingletonKind = "job_tracker"
	SingletonRecipe     SingletonKind = "recipe"
)

// Valid reports whether k is a known singleton kind.
func (k SingletonKind) Valid() bool {
	switch k {
	case SingletonKanban, SingletonJobTracker, SingletonRecipe:
		return true
	}
	return false
}

// Key returns the unique singleton key for a user.
func (k SingletonKind) Key(userID uint64) string {
	return fmt.Sprintf("%d:%s", userID, k)
}

// NewBoard returns the unsaved board provisioned for this kind.
func (k SingletonKind) NewBoard(userID uint64) *Board {
	key := k.Key(userID)
	board := &Board{
		UserID:       userID,
		BoardType:    BoardTypeKanban,
		SingletonKey: &key,
	}
	switch k {
	case SingletonJobTracker:
		tt := TemplateJobTracker
		board.Name = "Job Tracker"
		board.BoardType = BoardTypeTemplate
		board.TemplateType = &tt
	case SingletonRecipe:
		tt := TemplateRecipe
		board.Name = "Recipes"
		board.BoardType = BoardTypeTemplate
		board.TemplateType = &tt
	default:
		board.Name = "My Board"
	}
	return board
}

type Board struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	UserID       uint64         `gorm:"not null;index" json:"user_id"`
	Name         string         `gorm:"type:varchar(200);not null" json:"name"`
	Icon         *string        `gorm:"type:varchar(64)" json:"icon"`
	IconColor    *string        `gorm:"type:varchar(64)" json:"icon_color"`
	IsPublic     bool           `gorm:"not null;default:false" json:"is_public"`
	BoardType    BoardType      `gorm:"type:varchar(20);not null;default:'kanban'" json:"board_type"`
	TemplateType *TemplateType  `gorm:"type:varchar(20)" json:"template_type"`
	FieldConfig  datatypes.JSON `json:"field_config"`
	DisplayOrder *int           `json:"display_order"`
	SingletonKey *string        `gorm:"type:varchar(100);uniqueIndex" json:"-"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`

	// Relations
	Sections []Section     `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"sections,omitempty"`
	Members  []BoardMember `gorm:"foreignKey:BoardID;constraint:OnDelete:CASCADE" json:"-"`
}

type Section struct {
	ID           uint64    `gorm:"primarykey" json:"id"`
	BoardID      uint64    `gorm:"not null;index" json:"board_id"`
	Name         string    `gorm:"type:varchar(100);not null" json:"name"`
	DisplayOrder int       `gorm:"not null;default:0" json:"display_order"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
