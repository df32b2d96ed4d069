// Package cache wraps repositories with Redis read-through caching.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
)

// BoardCache caches each user's board list and evicts it on every board
// mutation. Redis failures fall back to the wrapped repository.
type BoardCache struct {
	repository.BoardRepository
	redis *redis.Client
	ttl   time.Duration
}

// NewBoardCache wraps base. A nil client disables caching.
func NewBoardCache(base repository.BoardRepository, client *redis.Client, ttl time.Duration) *BoardCache {
	if base == nil {
		panic("cache.NewBoardCache: base repository is nil")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &BoardCache{BoardRepository: base, redis: client, ttl: ttl}
}

func (c *BoardCache) List(ctx context.Context, userID uint64) ([]models.Board, error) {
	if boards, ok := c.load(ctx, userID); ok {
		return boards, nil
	}

	boards, err := c.BoardRepository.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.store(ctx, userID, boards)
	return boards, nil
}

func (c *BoardCache) CreateWithSections(ctx context.Context, board *models.Board, sectionNames []string) error {
	if err := c.BoardRepository.CreateWithSections(ctx, board, sectionNames); err != nil {
		return err
	}
	c.Evict(ctx, board.UserID)
	return nil
}

func (c *BoardCache) Update(ctx context.Context, id, userID uint64, updates map[string]interface{}) error {
	if err := c.BoardRepository.Update(ctx, id, userID, updates); err != nil {
		return err
	}
	c.Evict(ctx, userID)
	return nil
}

func (c *BoardCache) Delete(ctx context.Context, id, userID uint64) error {
	if err := c.BoardRepository.Delete(ctx, id, userID); err != nil {
		return err
	}
	c.Evict(ctx, userID)
	return nil
}

func (c *BoardCache) Reorder(ctx context.Context, userID uint64, ids []uint64) error {
	err := c.BoardRepository.Reorder(ctx, userID, ids)
	c.Evict(ctx, userID)
	return err
}

func (c *BoardCache) EnsureSingleton(ctx context.Context, board *models.Board, sectionNames []string) (*models.Board, bool, error) {
	stored, created, err := c.BoardRepository.EnsureSingleton(ctx, board, sectionNames)
	if err != nil {
		return nil, false, err
	}
	if created {
		c.Evict(ctx, board.UserID)
	}
	return stored, created, nil
}

// Evict drops the cached board list of a user.
func (c *BoardCache) Evict(ctx context.Context, userID uint64) {
	if c.redis == nil {
		return
	}
	if err := c.redis.Del(ctx, boardsKey(userID)).Err(); err != nil {
		log.WithError(err).WithField("user", userID).Warn("board cache eviction failed")
	}
}

func (c *BoardCache) load(ctx context.Context, userID uint64) ([]models.Board, bool) {
	if c.redis == nil {
		return nil, false
	}
	data, err := c.redis.Get(ctx, boardsKey(userID)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.WithError(err).WithField("user", userID).Warn("board cache read failed")
			_ = c.redis.Del(ctx, boardsKey(userID)).Err()
		}
		return nil, false
	}
	var boards []models.Board
	if err := json.Unmarshal(data, &boards); err != nil {
		_ = c.redis.Del(ctx, boardsKey(userID)).Err()
		return nil, false
	}
	return boards, true
}

func (c *BoardCache) store(ctx context.Context, userID uint64, boards []models.Board) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := json.Marshal(boards)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, boardsKey(userID), data, c.ttl).Err()
}

func boardsKey(userID uint64) string {
	return "boards:" + strconv.FormatUint(userID, 10)
}
