package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/tracker-api/internal/database"
	"github.com/yukikurage/tracker-api/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindOwned finds a task owned by userID
func (r *GormTaskRepository) FindOwned(ctx context.Context, id, userID uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Task{})

	if filter.OwnerID != 0 {
		query = query.Scopes(database.OwnedBy(filter.OwnerID))
	}
	if filter.BoardID != nil {
		query = query.Where("board_id = ?", *filter.BoardID)
	} else if filter.Inbox {
		query = query.Where("board_id IS NULL")
	}
	if filter.SectionID != nil {
		query = query.Where("section_id = ?", *filter.SectionID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	} else if !filter.IncludeArchived {
		query = query.Where("status <> ?", models.TaskStatusArchived)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Scopes(database.DisplayOrdered)
	if filter.Pagination != nil {
		listQuery = listQuery.Scopes(database.Paginate(*filter.Pagination))
	}

	var tasks []models.Task
	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// MaxDisplayOrder returns the highest display_order in the exact (board,
// section) scope of a user, or -1 when the scope is empty
func (r *GormTaskRepository) MaxDisplayOrder(ctx context.Context, userID uint64, boardID, sectionID *uint64) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Scopes(
			database.OwnedBy(userID),
			database.NullableEq("board_id", boardID),
			database.NullableEq("section_id", sectionID),
		).
		Select("COALESCE(MAX(display_order), -1)").
		Scan(&max).Error
	return max, err
}

// Update applies column updates to a task owned by userID
func (r *GormTaskRepository) Update(ctx context.Context, id, userID uint64, updates map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates).Error
}

// Delete deletes a task and detaches its subtasks
func (r *GormTaskRepository) Delete(ctx context.Context, id, userID uint64) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}

		return tx.Model(&models.Task{}).
			Where("parent_id = ?", id).
			Update("parent_id", nil).Error
	})
	return affected, err
}

// Reorder sets display_order to the position of each id
func (r *GormTaskRepository) Reorder(ctx context.Context, userID uint64, ids []uint64) error {
	return reorder(ctx, r.db, &models.Task{}, database.OwnedBy(userID), ids)
}

// ListActiveTimers lists tasks whose timer is started and not completed
func (r *GormTaskRepository) ListActiveTimers(ctx context.Context, userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Scopes(database.OwnedBy(userID)).
		Where("timer_started_at IS NOT NULL AND timer_completed_at IS NULL").
		Order("timer_started_at ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}
