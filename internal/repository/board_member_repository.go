package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/tracker-api/internal/models"
)

// GormBoardMemberRepository is a GORM implementation of BoardMemberRepository
type GormBoardMemberRepository struct {
	db *gorm.DB
}

// NewBoardMemberRepository creates a new BoardMemberRepository
func NewBoardMemberRepository(db *gorm.DB) BoardMemberRepository {
	return &GormBoardMemberRepository{db: db}
}

// Upsert inserts members keyed by (board_id, user_id), updating the role of
// existing rows
func (r *GormBoardMemberRepository) Upsert(ctx context.Context, members []models.BoardMember) error {
	if len(members) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "board_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "invited_by", "updated_at"}),
		}).
		Create(&members).Error
}

// Find finds the membership of userID on boardID
func (r *GormBoardMemberRepository) Find(ctx context.Context, boardID, userID uint64) (*models.BoardMember, error) {
	var member models.BoardMember
	if err := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// List lists the members of a board
func (r *GormBoardMemberRepository) List(ctx context.Context, boardID uint64) ([]models.BoardMember, error) {
	var members []models.BoardMember
	if err := r.db.WithContext(ctx).Preload("User").
		Where("board_id = ?", boardID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Delete removes a membership
func (r *GormBoardMemberRepository) Delete(ctx context.Context, boardID, userID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("board_id = ? AND user_id = ?", boardID, userID).
		Delete(&models.BoardMember{})
	return res.RowsAffected, res.Error
}
