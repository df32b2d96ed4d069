package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/tracker-api/internal/models"
)

// GormSectionRepository is a GORM implementation of SectionRepository
type GormSectionRepository struct {
	db *gorm.DB
}

// NewSectionRepository creates a new SectionRepository
func NewSectionRepository(db *gorm.DB) SectionRepository {
	return &GormSectionRepository{db: db}
}

func (r *GormSectionRepository) FindByID(ctx context.Context, id uint64) (*models.Section, error) {
	var section models.Section
	if err := r.db.WithContext(ctx).First(&section, id).Error; err != nil {
		return nil, err
	}
	return &section, nil
}

func (r *GormSectionRepository) ListByBoard(ctx context.Context, boardID uint64) ([]models.Section, error) {
	var sections []models.Section
	if err := r.db.WithContext(ctx).
		Where("board_id = ?", boardID).
		Scopes(orderedSections).
		Find(&sections).Error; err != nil {
		return nil, err
	}
	return sections, nil
}

func (r *GormSectionRepository) MaxDisplayOrder(ctx context.Context, boardID uint64) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Section{}).
		Where("board_id = ?", boardID).
		Select("COALESCE(MAX(display_order), -1)").
		Scan(&max).Error
	return max, err
}

func (r *GormSectionRepository) Create(ctx context.Context, section *models.Section) error {
	return r.db.WithContext(ctx).Create(section).Error
}

func (r *GormSectionRepository) Update(ctx context.Context, id uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Section{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// Delete detaches the section's tasks and deletes it in one transaction
func (r *GormSectionRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Task{}).
			Where("section_id = ?", id).
			Update("section_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Section{}, id).Error
	})
}

func (r *GormSectionRepository) Reorder(ctx context.Context, boardID uint64, ids []uint64) error {
	return reorder(ctx, r.db, &models.Section{}, func(db *gorm.DB) *gorm.DB {
		return db.Where("board_id = ?", boardID)
	}, ids)
}
