package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/utils"
)

// ErrIncompleteReorder is returned when some ids of a reorder request are not
// in scope. Nothing is written in that case.
var ErrIncompleteReorder = errors.New("repository: reorder ids not in scope")

// ReorderError lists the ids a reorder could not apply.
type ReorderError struct {
	Failed []uint64
}

func (e *ReorderError) Error() string {
	return fmt.Sprintf("%v: %v", ErrIncompleteReorder, e.Failed)
}

func (e *ReorderError) Unwrap() error { return ErrIncompleteReorder }

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// FindByFriendCode finds a user by friend code
	FindByFriendCode(ctx context.Context, code string) (*models.User, error)
}

// ConnectionRepository defines the interface for the friend graph
type ConnectionRepository interface {
	// Find returns the userID -> friendID edge
	Find(ctx context.Context, userID, friendID uint64) (*models.Connection, error)

	// CreateRequest stores a pending requester -> recipient edge
	CreateRequest(ctx context.Context, conn *models.Connection) error

	// Accept marks a pending request accepted and stores the mirrored edge
	Accept(ctx context.Context, requesterID, recipientID uint64) error

	// ListAccepted lists accepted connections of a user with the friend preloaded
	ListAccepted(ctx context.Context, userID uint64) ([]models.Connection, error)

	// ListIncoming lists pending requests addressed to a user
	ListIncoming(ctx context.Context, userID uint64) ([]models.Connection, error)

	// Delete removes both directions of an edge
	Delete(ctx context.Context, userID, friendID uint64) (int64, error)

	// CountAccepted counts how many of friendIDs are accepted connections of userID
	CountAccepted(ctx context.Context, userID uint64, friendIDs []uint64) (int64, error)
}

// BoardRepository defines the interface for board and section data access
type BoardRepository interface {
	// List lists boards owned by a user, display-ordered
	List(ctx context.Context, userID uint64) ([]models.Board, error)

	// ListShared lists boards the user is a member of
	ListShared(ctx context.Context, userID uint64) ([]models.Board, error)

	// FindOwned finds a board owned by userID with its sections
	FindOwned(ctx context.Context, id, userID uint64) (*models.Board, error)

	// FindAccessible finds a board owned by or shared with userID
	FindAccessible(ctx context.Context, id, userID uint64) (*models.Board, error)

	// MaxDisplayOrder returns the highest board display_order of a user, or -1
	MaxDisplayOrder(ctx context.Context, userID uint64) (int, error)

	// CreateWithSections creates a board and its sections atomically
	CreateWithSections(ctx context.Context, board *models.Board, sectionNames []string) error

	// Update applies column updates to a board owned by userID
	Update(ctx context.Context, id, userID uint64, updates map[string]interface{}) error

	// Delete deletes a board owned by userID with its tasks, sections and members
	Delete(ctx context.Context, id, userID uint64) error

	// Reorder sets display_order to the position of each id
	Reorder(ctx context.Context, userID uint64, ids []uint64) error

	// EnsureSingleton inserts board unless its singleton key exists and
	// returns the stored board. created is true only for the inserting call.
	EnsureSingleton(ctx context.Context, board *models.Board, sectionNames []string) (stored *models.Board, created bool, err error)
}

// SectionRepository defines the interface for section data access
type SectionRepository interface {
	// FindByID finds a section by ID
	FindByID(ctx context.Context, id uint64) (*models.Section, error)

	// ListByBoard lists the sections of a board, display-ordered
	ListByBoard(ctx context.Context, boardID uint64) ([]models.Section, error)

	// MaxDisplayOrder returns the highest section display_order of a board, or -1
	MaxDisplayOrder(ctx context.Context, boardID uint64) (int, error)

	// Create creates a section
	Create(ctx context.Context, section *models.Section) error

	// Update applies column updates to a section
	Update(ctx context.Context, id uint64, updates map[string]interface{}) error

	// Delete deletes a section and detaches its tasks
	Delete(ctx context.Context, id uint64) error

	// Reorder sets display_order to the position of each id within a board
	Reorder(ctx context.Context, boardID uint64, ids []uint64) error
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindOwned finds a task owned by userID
	FindOwned(ctx context.Context, id, userID uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// MaxDisplayOrder returns the highest display_order in the exact
	// (board, section) scope of a user, or -1
	MaxDisplayOrder(ctx context.Context, userID uint64, boardID, sectionID *uint64) (int, error)

	// Update applies column updates to a task owned by userID
	Update(ctx context.Context, id, userID uint64, updates map[string]interface{}) error

	// Delete deletes a task owned by userID
	Delete(ctx context.Context, id, userID uint64) (int64, error)

	// Reorder sets display_order to the position of each id
	Reorder(ctx context.Context, userID uint64, ids []uint64) error

	// ListActiveTimers lists tasks whose timer is started and not completed
	ListActiveTimers(ctx context.Context, userID uint64) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	// OwnerID scopes by owner. Zero lists every owner, used for shared boards
	// where BoardID is set.
	OwnerID         uint64
	BoardID         *uint64
	Inbox           bool
	SectionID       *uint64
	Status          *models.TaskStatus
	IncludeArchived bool
	Pagination      *utils.PaginationParams
}

// BoardMemberRepository defines the interface for board membership
type BoardMemberRepository interface {
	// Upsert inserts members or updates the role of existing ones
	Upsert(ctx context.Context, members []models.BoardMember) error

	// Find finds the membership of userID on boardID
	Find(ctx context.Context, boardID, userID uint64) (*models.BoardMember, error)

	// List lists the members of a board with their users
	List(ctx context.Context, boardID uint64) ([]models.BoardMember, error)

	// Delete removes a membership
	Delete(ctx context.Context, boardID, userID uint64) (int64, error)
}
