package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/utils"
)

const msgConnectionNotFound = "Connection not found"

// ConnectionService manages the friend graph that board sharing is checked against.
type ConnectionService struct {
	users repository.UserRepository
	conns repository.ConnectionRepository
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(users repository.UserRepository, conns repository.ConnectionRepository) *ConnectionService {
	return &ConnectionService{users: users, conns: conns}
}

// ConnectionRequestInput addresses a user by friend code.
type ConnectionRequestInput struct {
	FriendCode string `json:"friend_code" validate:"required"`
}

// ConnectionList is the acting user's side of the graph.
type ConnectionList struct {
	Friends  []models.Connection `json:"friends"`
	Incoming []models.Connection `json:"incoming"`
}

// RequestConnection sends a request to the owner of a friend code. A pending
// request in the other direction is accepted instead.
func (s *ConnectionService) RequestConnection(ctx context.Context, input ConnectionRequestInput) (*models.Connection, error) {
	const op = "RequestConnection"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	code, ok := utils.NormalizeFriendCode(input.FriendCode)
	if !ok {
		return nil, invalid(op, userID, map[string]string{"friend_code": "must look like xxxx-xxxx-xxxx"})
	}

	friend, err := s.users.FindByFriendCode(ctx, code)
	if err != nil {
		return nil, lookupFailure(op, userID, err, "No user with that friend code")
	}
	if friend.ID == userID {
		return nil, invalid(op, userID, map[string]string{"friend_code": "cannot be your own"})
	}

	if _, err := s.conns.Find(ctx, userID, friend.ID); err == nil {
		return nil, fail(op, userID, apierrors.Conflict(op, "Connection already exists"))
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storageFailure(op, userID, err)
	}

	reverse, err := s.conns.Find(ctx, friend.ID, userID)
	switch {
	case err == nil && reverse.Status == models.ConnectionPending:
		if err := s.conns.Accept(ctx, friend.ID, userID); err != nil {
			return nil, storageFailure(op, userID, err)
		}
	case err == nil:
		return nil, fail(op, userID, apierrors.Conflict(op, "Connection already exists"))
	case errors.Is(err, gorm.ErrRecordNotFound):
		conn := &models.Connection{
			UserID:      userID,
			FriendID:    friend.ID,
			Status:      models.ConnectionPending,
			RequestedBy: userID,
		}
		if err := s.conns.CreateRequest(ctx, conn); err != nil {
			return nil, storageFailure(op, userID, err)
		}
	default:
		return nil, storageFailure(op, userID, err)
	}

	conn, err := s.conns.Find(ctx, userID, friend.ID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	conn.Friend = *friend
	return conn, nil
}

// AcceptConnection accepts a pending request from requesterID.
func (s *ConnectionService) AcceptConnection(ctx context.Context, requesterID uint64) error {
	const op = "AcceptConnection"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if err := s.conns.Accept(ctx, requesterID, userID); err != nil {
		return lookupFailure(op, userID, err, "Connection request not found")
	}
	return nil
}

// ListConnections returns accepted friends and pending incoming requests.
func (s *ConnectionService) ListConnections(ctx context.Context) (*ConnectionList, error) {
	const op = "ListConnections"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	friends, err := s.conns.ListAccepted(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	incoming, err := s.conns.ListIncoming(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return &ConnectionList{Friends: friends, Incoming: incoming}, nil
}

// RemoveConnection deletes a connection or a pending request in either direction.
func (s *ConnectionService) RemoveConnection(ctx context.Context, friendID uint64) error {
	const op = "RemoveConnection"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	affected, err := s.conns.Delete(ctx, userID, friendID)
	if err != nil {
		return storageFailure(op, userID, err)
	}
	if affected == 0 {
		return fail(op, userID, apierrors.NotFound(op, msgConnectionNotFound))
	}
	return nil
}
