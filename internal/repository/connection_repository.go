package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/yukikurage/tracker-api/internal/models"
)

// GormConnectionRepository is a GORM implementation of ConnectionRepository
type GormConnectionRepository struct {
	db *gorm.DB
}

// NewConnectionRepository creates a new ConnectionRepository
func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &GormConnectionRepository{db: db}
}

// Find returns the userID -> friendID edge
func (r *GormConnectionRepository) Find(ctx context.Context, userID, friendID uint64) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND friend_id = ?", userID, friendID).
		First(&conn).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

// CreateRequest stores a pending requester -> recipient edge
func (r *GormConnectionRepository) CreateRequest(ctx context.Context, conn *models.Connection) error {
	return r.db.WithContext(ctx).Create(conn).Error
}

// Accept marks the pending request accepted and stores the mirrored edge
func (r *GormConnectionRepository) Accept(ctx context.Context, requesterID, recipientID uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Connection{}).
			Where("user_id = ? AND friend_id = ? AND status = ?", requesterID, recipientID, models.ConnectionPending).
			Update("status", models.ConnectionAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		mirror := &models.Connection{
			UserID:      recipientID,
			FriendID:    requesterID,
			Status:      models.ConnectionAccepted,
			RequestedBy: requesterID,
		}
		return tx.Create(mirror).Error
	})
}

// ListAccepted lists accepted connections of a user with the friend preloaded
func (r *GormConnectionRepository) ListAccepted(ctx context.Context, userID uint64) ([]models.Connection, error) {
	var conns []models.Connection
	if err := r.db.WithContext(ctx).Preload("Friend").
		Where("user_id = ? AND status = ?", userID, models.ConnectionAccepted).
		Order("created_at ASC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// ListIncoming lists pending requests addressed to a user with the requester preloaded
func (r *GormConnectionRepository) ListIncoming(ctx context.Context, userID uint64) ([]models.Connection, error) {
	var conns []models.Connection
	if err := r.db.WithContext(ctx).Preload("User").
		Where("friend_id = ? AND status = ?", userID, models.ConnectionPending).
		Order("created_at ASC").
		Find(&conns).Error; err != nil {
		return nil, err
	}
	return conns, nil
}

// Delete removes both directions of an edge
func (r *GormConnectionRepository) Delete(ctx context.Context, userID, friendID uint64) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("(user_id = ? AND friend_id = ?) OR (user_id = ? AND friend_id = ?)", userID, friendID, friendID, userID).
		Delete(&models.Connection{})
	return res.RowsAffected, res.Error
}

// CountAccepted counts how many of friendIDs are accepted connections of userID
func (r *GormConnectionRepository) CountAccepted(ctx context.Context, userID uint64, friendIDs []uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Connection{}).
		Where("user_id = ? AND status = ? AND friend_id IN ?", userID, models.ConnectionAccepted, friendIDs).
		Count(&count).Error
	return count, err
}
