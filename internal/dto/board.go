package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/tracker-api/internal/models"
)

// SectionDTO represents a board section in API responses
type SectionDTO struct {
	ID           uint64 `json:"id"`
	BoardID      uint64 `json:"board_id"`
	Name         string `json:"name"`
	DisplayOrder int    `json:"display_order"`
}

// BoardDTO represents a board in API responses
type BoardDTO struct {
	ID           uint64               `json:"id"`
	UserID       uint64               `json:"user_id"`
	Name         string               `json:"name"`
	Icon         *string              `json:"icon"`
	IconColor    *string              `json:"icon_color"`
	IsPublic     bool                 `json:"is_public"`
	BoardType    models.BoardType     `json:"board_type"`
	TemplateType *models.TemplateType `json:"template_type"`
	FieldConfig  json.RawMessage      `json:"field_config"`
	DisplayOrder *int                 `json:"display_order"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
	Sections     []SectionDTO         `json:"sections,omitempty"`
}

// BoardMemberDTO represents a user a board is shared with
type BoardMemberDTO struct {
	User      UserDTO          `json:"user"`
	Role      models.BoardRole `json:"role"`
	InvitedBy uint64           `json:"invited_by"`
	SharedAt  time.Time        `json:"shared_at"`
}

// ToSectionDTO converts a Section model to SectionDTO
func ToSectionDTO(section models.Section) SectionDTO {
	return SectionDTO{
		ID:           section.ID,
		BoardID:      section.BoardID,
		Name:         section.Name,
		DisplayOrder: section.DisplayOrder,
	}
}

// ToBoardDTO converts a Board model to BoardDTO
func ToBoardDTO(board models.Board) BoardDTO {
	dto := BoardDTO{
		ID:           board.ID,
		UserID:       board.UserID,
		Name:         board.Name,
		Icon:         board.Icon,
		IconColor:    board.IconColor,
		IsPublic:     board.IsPublic,
		BoardType:    board.BoardType,
		TemplateType: board.TemplateType,
		DisplayOrder: board.DisplayOrder,
		CreatedAt:    board.CreatedAt,
		UpdatedAt:    board.UpdatedAt,
	}
	if len(board.FieldConfig) > 0 {
		dto.FieldConfig = json.RawMessage(board.FieldConfig)
	}

	// Include sections if preloaded
	if len(board.Sections) > 0 {
		dto.Sections = make([]SectionDTO, len(board.Sections))
		for i, section := range board.Sections {
			dto.Sections[i] = ToSectionDTO(section)
		}
	}
	return dto
}

// ToBoardDTOs converts a slice of boards
func ToBoardDTOs(boards []models.Board) []BoardDTO {
	dtos := make([]BoardDTO, len(boards))
	for i, board := range boards {
		dtos[i] = ToBoardDTO(board)
	}
	return dtos
}

// ToBoardMemberDTOs converts board members with their preloaded users
func ToBoardMemberDTOs(members []models.BoardMember) []BoardMemberDTO {
	dtos := make([]BoardMemberDTO, len(members))
	for i, member := range members {
		dtos[i] = BoardMemberDTO{
			User:      ToUserDTO(member.User),
			Role:      member.Role,
			InvitedBy: member.InvitedBy,
			SharedAt:  member.CreatedAt,
		}
	}
	return dtos
}
