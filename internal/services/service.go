package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/session"
	"github.com/yukikurage/tracker-api/internal/validation"
)

// actor returns the acting user of ctx.
func actor(ctx context.Context, op string) (uint64, error) {
	userID, ok := session.UserID(ctx)
	if !ok {
		return 0, fail(op, 0, apierrors.Unauthenticated(op))
	}
	return userID, nil
}

// fail logs err with the operation context and returns it unchanged.
func fail(op string, userID uint64, err error) error {
	entry := log.WithError(err).WithFields(log.Fields{"op": op, "user": userID})

	var bulk *apierrors.BulkError
	switch {
	case errors.As(err, &bulk):
		entry.WithField("failed_ids", bulk.Failed).Warn("bulk operation incomplete")
	case apierrors.KindOf(err) == apierrors.KindStorageFailure:
		entry.Error("operation failed")
	default:
		entry.Info("operation rejected")
	}
	return err
}

// storageFailure wraps a persistence error.
func storageFailure(op string, userID uint64, err error) error {
	return fail(op, userID, apierrors.Storage(op, err))
}

// lookupFailure maps a missing row to NotFound and anything else to a
// storage failure.
func lookupFailure(op string, userID uint64, err error, notFound string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(op, userID, apierrors.NotFound(op, notFound))
	}
	return storageFailure(op, userID, err)
}

// uniqueIDs rejects a reorder request that lists an id more than once.
func uniqueIDs(op string, userID uint64, ids []uint64) error {
	seen := make(map[uint64]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return invalid(op, userID, map[string]string{"ids": fmt.Sprintf("contains duplicate id %d", id)})
		}
		seen[id] = struct{}{}
	}
	return nil
}

// reorderFailure reports the ids a reorder rejected as a bulk error.
func reorderFailure(op string, userID uint64, err error) error {
	var reorderErr *repository.ReorderError
	if errors.As(err, &reorderErr) {
		return fail(op, userID, &apierrors.BulkError{Op: op, Failed: reorderErr.Failed, Err: err})
	}
	return storageFailure(op, userID, err)
}

// validate runs the struct schema of input.
func validate(op string, userID uint64, input any) error {
	if fields := validation.Struct(input); fields != nil {
		return fail(op, userID, apierrors.Validation(op, fields))
	}
	return nil
}

func invalid(op string, userID uint64, fields map[string]string) error {
	return fail(op, userID, apierrors.Validation(op, fields))
}
