package services

import (
	"context"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
)

// SharingService grants board roles to the owner's connections.
type SharingService struct {
	boards  repository.BoardRepository
	members repository.BoardMemberRepository
	conns   repository.ConnectionRepository
}

// NewSharingService creates a new SharingService.
func NewSharingService(boards repository.BoardRepository, members repository.BoardMemberRepository, conns repository.ConnectionRepository) *SharingService {
	return &SharingService{boards: boards, members: members, conns: conns}
}

// ShareBoardInput lists the users to share with and the role they get.
type ShareBoardInput struct {
	UserIDs []uint64         `json:"user_ids" validate:"required,min=1,max=50,dive,gt=0"`
	Role    models.BoardRole `json:"role" validate:"required,oneof=viewer editor"`
}

// ShareBoard grants role on a board to every user in input. All of them must
// be accepted connections of the owner; re-sharing updates the role.
func (s *SharingService) ShareBoard(ctx context.Context, boardID uint64, input ShareBoardInput) ([]models.BoardMember, error) {
	const op = "ShareBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if err := validate(op, userID, input); err != nil {
		return nil, err
	}

	seen := make(map[uint64]struct{}, len(input.UserIDs))
	targets := make([]uint64, 0, len(input.UserIDs))
	for _, id := range input.UserIDs {
		if id == userID {
			return nil, invalid(op, userID, map[string]string{"user_ids": "cannot include yourself"})
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, id)
	}

	if _, err := s.boards.FindOwned(ctx, boardID, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}

	count, err := s.conns.CountAccepted(ctx, userID, targets)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	if count != int64(len(targets)) {
		return nil, fail(op, userID, apierrors.Forbidden(op, "Boards can only be shared with connections"))
	}

	members := make([]models.BoardMember, len(targets))
	for i, id := range targets {
		members[i] = models.BoardMember{BoardID: boardID, UserID: id, Role: input.Role, InvitedBy: userID}
	}
	if err := s.members.Upsert(ctx, members); err != nil {
		return nil, storageFailure(op, userID, err)
	}

	all, err := s.members.List(ctx, boardID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return all, nil
}

// UnshareBoard revokes a user's membership.
func (s *SharingService) UnshareBoard(ctx context.Context, boardID, memberID uint64) error {
	const op = "UnshareBoard"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if _, err := s.boards.FindOwned(ctx, boardID, userID); err != nil {
		return lookupFailure(op, userID, err, msgBoardNotFound)
	}

	affected, err := s.members.Delete(ctx, boardID, memberID)
	if err != nil {
		return storageFailure(op, userID, err)
	}
	if affected == 0 {
		return fail(op, userID, apierrors.NotFound(op, "Member not found"))
	}
	return nil
}

// ListBoardMembers lists the members of a board the user can access.
func (s *SharingService) ListBoardMembers(ctx context.Context, boardID uint64) ([]models.BoardMember, error) {
	const op = "ListBoardMembers"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if _, err := s.boards.FindAccessible(ctx, boardID, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgBoardNotFound)
	}

	members, err := s.members.List(ctx, boardID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return members, nil
}
