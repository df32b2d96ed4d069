package services

import (
	"context"
	"time"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/validation"
)

// TimerService runs the per-task timer state machine. It only ever writes the
// timer_* columns.
type TimerService struct {
	tasks repository.TaskRepository
	now   func() time.Time
}

// NewTimerService creates a new TimerService
func NewTimerService(tasks repository.TaskRepository) *TimerService {
	return &TimerService{tasks: tasks, now: time.Now}
}

// StartTimerInput configures a timer start. StartedAt resumes a paused timer
// from an earlier point; DurationSeconds keeps the stored duration when nil.
type StartTimerInput struct {
	DurationSeconds *int    `json:"duration_seconds" validate:"omitempty,min=1,max=86400"`
	StartedAt       *string `json:"started_at" validate:"omitempty,timestamp"`
}

func (s *TimerService) update(ctx context.Context, op string, userID, id uint64, updates map[string]interface{}) (*models.Task, error) {
	if err := s.tasks.Update(ctx, id, userID, updates); err != nil {
		return nil, storageFailure(op, userID, err)
	}
	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	return task, nil
}

// StartTaskTimer moves a timer to running.
func (s *TimerService) StartTaskTimer(ctx context.Context, id uint64, input StartTimerInput) (*models.Task, error) {
	const op = "StartTaskTimer"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	startedAt := s.now().UTC()
	if input.StartedAt != nil {
		t, err := validation.ParseTimestamp(*input.StartedAt)
		if err != nil {
			return nil, invalid(op, userID, map[string]string{"started_at": "must be an RFC 3339 timestamp or YYYY-MM-DD date"})
		}
		startedAt = t.UTC()
	}

	if _, err := s.tasks.FindOwned(ctx, id, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}

	updates := map[string]interface{}{
		"timer_started_at":   startedAt,
		"timer_completed_at": nil,
	}
	if input.DurationSeconds != nil {
		updates["timer_duration_seconds"] = *input.DurationSeconds
	}
	return s.update(ctx, op, userID, id, updates)
}

// CompleteTaskTimer moves a running timer to completed.
func (s *TimerService) CompleteTaskTimer(ctx context.Context, id uint64) (*models.Task, error) {
	const op = "CompleteTaskTimer"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	if !task.TimerRunning() {
		return nil, fail(op, userID, apierrors.InvalidState(op, "Timer is not running"))
	}

	return s.update(ctx, op, userID, id, map[string]interface{}{
		"timer_completed_at": s.now().UTC(),
	})
}

// ResetTaskTimer returns a timer to idle from any state.
func (s *TimerService) ResetTaskTimer(ctx context.Context, id uint64) (*models.Task, error) {
	const op = "ResetTaskTimer"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if _, err := s.tasks.FindOwned(ctx, id, userID); err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}

	return s.update(ctx, op, userID, id, map[string]interface{}{
		"timer_started_at":   nil,
		"timer_completed_at": nil,
	})
}

// ListActiveTimers returns the user's tasks with a running timer.
func (s *TimerService) ListActiveTimers(ctx context.Context) ([]models.Task, error) {
	const op = "ListActiveTimers"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.ListActiveTimers(ctx, userID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return tasks, nil
}
