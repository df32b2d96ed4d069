package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/tracker-api/internal/database"
	"github.com/yukikurage/tracker-api/internal/models"
)

// GormBoardRepository is a GORM implementation of BoardRepository
type GormBoardRepository struct {
	db *gorm.DB
}

// NewBoardRepository creates a new BoardRepository
func NewBoardRepository(db *gorm.DB) BoardRepository {
	return &GormBoardRepository{db: db}
}

func orderedSections(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC").Order("id ASC")
}

// List lists boards owned by a user
func (r *GormBoardRepository) List(ctx context.Context, userID uint64) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID), database.DisplayOrdered).
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// ListShared lists boards the user is a member of
func (r *GormBoardRepository) ListShared(ctx context.Context, userID uint64) ([]models.Board, error) {
	var boards []models.Board
	if err := r.db.WithContext(ctx).
		Joins("JOIN board_members ON board_members.board_id = boards.id").
		Where("board_members.user_id = ?", userID).
		Order("boards.id ASC").
		Find(&boards).Error; err != nil {
		return nil, err
	}
	return boards, nil
}

// FindOwned finds a board owned by userID with its sections
func (r *GormBoardRepository) FindOwned(ctx context.Context, id, userID uint64) (*models.Board, error) {
	var board models.Board
	if err := r.db.WithContext(ctx).
		Preload("Sections", orderedSections).
		Where("id = ? AND user_id = ?", id, userID).
		First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// FindAccessible finds a board owned by or shared with userID
func (r *GormBoardRepository) FindAccessible(ctx context.Context, id, userID uint64) (*models.Board, error) {
	membership := r.db.Model(&models.BoardMember{}).
		Select("1").
		Where("board_members.board_id = boards.id AND board_members.user_id = ?", userID)

	var board models.Board
	if err := r.db.WithContext(ctx).
		Preload("Sections", orderedSections).
		Where("boards.id = ?", id).
		Where("boards.user_id = ? OR EXISTS (?)", userID, membership).
		First(&board).Error; err != nil {
		return nil, err
	}
	return &board, nil
}

// MaxDisplayOrder returns the highest board display_order of a user, or -1
func (r *GormBoardRepository) MaxDisplayOrder(ctx context.Context, userID uint64) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Board{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(display_order), -1)").
		Scan(&max).Error
	return max, err
}

func createSections(tx *gorm.DB, boardID uint64, names []string) error {
	if len(names) == 0 {
		return nil
	}
	sections := make([]models.Section, len(names))
	for i, name := range names {
		sections[i] = models.Section{BoardID: boardID, Name: name, DisplayOrder: i}
	}
	return tx.Create(&sections).Error
}

// CreateWithSections creates a board and its sections in a transaction
func (r *GormBoardRepository) CreateWithSections(ctx context.Context, board *models.Board, sectionNames []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(board).Error; err != nil {
			return err
		}
		return createSections(tx, board.ID, sectionNames)
	})
}

// Update applies column updates to a board owned by userID
func (r *GormBoardRepository) Update(ctx context.Context, id, userID uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Board{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
}

// Delete deletes a board and all related data in a transaction
func (r *GormBoardRepository) Delete(ctx context.Context, id, userID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Delete all tasks on the board
		if err := tx.Where("board_id = ?", id).Delete(&models.Task{}).Error; err != nil {
			return err
		}

		if err := tx.Where("board_id = ?", id).Delete(&models.Section{}).Error; err != nil {
			return err
		}

		if err := tx.Where("board_id = ?", id).Delete(&models.BoardMember{}).Error; err != nil {
			return err
		}

		return tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Board{}).Error
	})
}

// Reorder sets display_order to the position of each id
func (r *GormBoardRepository) Reorder(ctx context.Context, userID uint64, ids []uint64) error {
	return reorder(ctx, r.db, &models.Board{}, database.OwnedBy(userID), ids)
}

// EnsureSingleton inserts board unless a board with the same singleton key
// exists, then returns the stored one. Default sections are created only by
// the inserting call.
func (r *GormBoardRepository) EnsureSingleton(ctx context.Context, board *models.Board, sectionNames []string) (*models.Board, bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Omit(clause.Associations).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "singleton_key"}},
				DoNothing: true,
			}).
			Create(board)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		created = true
		return createSections(tx, board.ID, sectionNames)
	})
	if err != nil {
		return nil, false, err
	}

	var stored models.Board
	if err := r.db.WithContext(ctx).
		Preload("Sections", orderedSections).
		Where("singleton_key = ?", *board.SingletonKey).
		First(&stored).Error; err != nil {
		return nil, false, err
	}
	return &stored, created, nil
}
