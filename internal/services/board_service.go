package services

import (
	"context"
	"encoding/json"
	"strings"

	"gorm.io/datatypes"

	"github.com/yukikurage/tracker-api/internal/constants"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
)

const (
	msgBoardNotFound   = "Board not found"
	msgSectionNotFound = "Section not found"
)

// BoardService provides business logic for boards and their sections.
type BoardService struct {
	boards   repository.BoardRepository
	sections repository.SectionRepository
}

// NewBoardService creates a new BoardService.
func NewBoardService(boards repository.BoardRepository, sections repository.SectionRepository) *BoardService {
	return &BoardService{
		boards:   boards,
		sections: sections,
	}
}

// CreateBoardInput represents parameters to create a free-form kanban board.
type CreateBoardInput struct {
	Name        string          `json:"name" validate:"required,max=200"`
	Icon        *string         `json:"icon" validate:"omitempty,max=64"`
	IconColor   *string         `json:"icon_color" validate:"omitempty,max=64"`
	IsPublic    bool            `json:"is_public"`
	FieldConfig json.RawMessage `json:"field_config"`
}

// UpdateBoardInput holds the board fields to change. Nil fields are left as is.
type UpdateBoardInput struct {
	Name        *string         `json:"name" validate:"omitempty,min=1,max=200"`
	Icon        *string         `json:"icon" validate:"omitempty,max=64"`
	IconColor   *string         `json:"icon_color" validate:"omitempty,max=64"`
	IsPublic    *bool           `json:"is_public"`
	FieldConfig json.RawMessage `json:"field_config"`
}

// SectionInput names a section.
type SectionInput struct {
	Name string `json:"name" validate:"required,max=100"`
}

func fieldConfig(raw json.RawMessage) (datatypes.JSON, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, true
	}
	if !json.Valid(raw) {
		return nil, false
	}
	return datatypes.JSON(raw), true
}

// optionalString trims s and maps an empty result to nil.
func optionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ListBoards returns the boards owned by the acting user.
func (s *BoardService) ListBoards(ctx context.Context) ([]models.Board, error) {
	const op = "ListBoards"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	boards, err := s.boards.List(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return boards, nil
}

// ListSharedBoards returns boards other users shared with the acting user.
func (s *BoardService) ListSharedBoards(ctx context.Context) ([]models.Board, error) {
	const op = "ListSharedBoards"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	boards, err := s.boards.ListShared(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return boards, nil
}

// GetBoard returns a board with its sections if the user owns it or is a member.
func (s *BoardService) GetBoard(ctx context.Context, id uint64) (*models.Board, error) {
	const op = "GetBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	board, err := s.boards.FindAccessible(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}
	return board, nil
}

// CreateBoard creates a kanban board at the end of the user's board order and
// provisions the default sections.
func (s *BoardService) CreateBoard(ctx context.Context, input CreateBoardInput) (*models.Board, error) {
	const op = "CreateBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	config, ok := fieldConfig(input.FieldConfig)
	if !ok {
		return nil, invalid(op, userID, map[string]string{"field_config": "must be valid JSON"})
	}

	max, err := s.boards.MaxDisplayOrder(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	order := max + 1

	board := &models.Board{
		UserID:       userID,
		Name:         input.Name,
		IsPublic:     input.IsPublic,
		BoardType:    models.BoardTypeKanban,
		FieldConfig:  config,
		DisplayOrder: &order,
		Icon:         optionalString(input.Icon),
		IconColor:    optionalString(input.IconColor),
	}

	if err := s.boards.CreateWithSections(ctx, board, constants.DefaultSectionNames); err != nil {
		return nil, storageFailure(op, userID, err)
	}

	created, err := s.boards.FindOwned(ctx, board.ID, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return created, nil
}

// UpdateBoard changes the name, icon, visibility or field configuration.
func (s *BoardService) UpdateBoard(ctx context.Context, id uint64, input UpdateBoardInput) (*models.Board, error) {
	const op = "UpdateBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		input.Name = &name
	}
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}

	if _, err := s.boards.FindOwned(ctx, id, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Icon != nil {
		updates["icon"] = optionalString(input.Icon)
	}
	if input.IconColor != nil {
		updates["icon_color"] = optionalString(input.IconColor)
	}
	if input.IsPublic != nil {
		updates["is_public"] = *input.IsPublic
	}
	if input.FieldConfig != nil {
		config, ok := fieldConfig(input.FieldConfig)
		if !ok {
			return nil, invalid(op, userID, map[string]string{"field_config": "must be valid JSON"})
		}
		updates["field_config"] = config
	}

	if len(updates) > 0 {
		if err := s.boards.Update(ctx, id, userID, updates); err != nil {
			return nil, storageFailure(op, userID, err)
		}
	}

	board, err := s.boards.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}
	return board, nil
}

// DeleteBoard removes a board with its sections, tasks and memberships.
func (s *BoardService) DeleteBoard(ctx context.Context, id uint64) error {
	const op = "DeleteBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if _, err := s.boards.FindOwned(ctx, id, userID); err != nil {
		return lookupFailure(op, userID, err, msgBoardNotFound)
	}
	if err := s.boards.Delete(ctx, id, userID); err != nil {
		return storageFailure(op, userID, err)
	}
	return nil
}

// ReorderBoards assigns display_order by position in ids.
func (s *BoardService) ReorderBoards(ctx context.Context, ids []uint64) error {
	const op = "ReorderBoards"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if err := uniqueIDs(op, userID, ids); err != nil {
		return err
	}
	if err := s.boards.Reorder(ctx, userID, ids); err != nil {
		return reorderFailure(op, userID, err)
	}
	return nil
}

// EnsureSingletonBoard returns the user's board of the given kind, creating it
// on first use. Concurrent first calls all return the same board.
func (s *BoardService) EnsureSingletonBoard(ctx context.Context, kind models.SingletonKind) (*models.Board, error) {
	const op = "EnsureSingletonBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if !kind.Valid() {
		return nil, invalid(op, userID, map[string]string{"kind": "must be one of: kanban, job_tracker, recipe"})
	}

	max, err := s.boards.MaxDisplayOrder(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	order := max + 1

	board := kind.NewBoard(userID)
	board.DisplayOrder = &order

	stored, _, err := s.boards.EnsureSingleton(ctx, board, constants.DefaultSectionNames)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return stored, nil
}

// ownedSection returns a section whose board the user owns.
func (s *BoardService) ownedSection(ctx context.Context, op string, userID, id uint64) (*models.Section, error) {
	section, err := s.sections.FindByID(ctx, id)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgSectionNotFound)
	}
	if _, err := s.boards.FindOwned(ctx, section.BoardID, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgSectionNotFound)
	}
	return section, nil
}

// CreateSection appends a section to a board.
func (s *BoardService) CreateSection(ctx context.Context, boardID uint64, input SectionInput) (*models.Section, error) {
	const op = "CreateSection"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	if _, err := s.boards.FindOwned(ctx, boardID, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}

	max, err := s.sections.MaxDisplayOrder(ctx, boardID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}

	section := &models.Section{BoardID: boardID, Name: input.Name, DisplayOrder: max + 1}
	if err := s.sections.Create(ctx, section); err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return section, nil
}

// UpdateSection renames a section.
func (s *BoardService) UpdateSection(ctx context.Context, id uint64, input SectionInput) (*models.Section, error) {
	const op = "UpdateSection"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	input.Name = strings.TrimSpace(input.Name)
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	section, err := s.ownedSection(ctx, op, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.sections.Update(ctx, id, map[string]interface{}{"name": input.Name}); err != nil {
		return nil, storageFailure(op, userID, err)
	}
	section.Name = input.Name
	return section, nil
}

// DeleteSection removes a section. Its tasks stay on the board without a section.
func (s *BoardService) DeleteSection(ctx context.Context, id uint64) error {
	const op = "DeleteSection"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if _, err := s.ownedSection(ctx, op, userID, id); err != nil {
		return err
	}
	if err := s.sections.Delete(ctx, id); err != nil {
		return storageFailure(op, userID, err)
	}
	return nil
}

// ReorderSections assigns display_order by position in ids within one board.
func (s *BoardService) ReorderSections(ctx context.Context, boardID uint64, ids []uint64) error {
	const op = "ReorderSections"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if _, err := s.boards.FindOwned(ctx, boardID, userID); err != nil {
		return lookupFailure(op, userID, err, msgBoardNotFound)
	}
	if err := uniqueIDs(op, userID, ids); err != nil {
		return err
	}
	if err := s.sections.Reorder(ctx, boardID, ids); err != nil {
		return reorderFailure(op, userID, err)
	}
	return nil
}
