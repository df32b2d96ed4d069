package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/datatypes"

	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/itemdata"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/repository"
	"github.com/yukikurage/tracker-api/internal/schedule"
	"github.com/yukikurage/tracker-api/internal/taskview"
	"github.com/yukikurage/tracker-api/internal/utils"
	"github.com/yukikurage/tracker-api/internal/validation"
)

const (
	msgTaskNotFound   = "Task not found"
	msgParentNotFound = "Parent task not found"
)

// Task list orderings.
const (
	SortByOrder    = "order"
	SortByDueDate  = "due_date"
	SortByPriority = "priority"
)

// Task groupings.
const (
	GroupByBoard  = "board"
	GroupByStatus = "status"
	GroupByDate   = "date"
)

// TaskService handles task business logic
type TaskService struct {
	tasks    repository.TaskRepository
	boards   repository.BoardRepository
	sections repository.SectionRepository
	now      func() time.Time
}

// NewTaskService creates a new TaskService
func NewTaskService(tasks repository.TaskRepository, boards repository.BoardRepository, sections repository.SectionRepository) *TaskService {
	return &TaskService{
		tasks:    tasks,
		boards:   boards,
		sections: sections,
		now:      time.Now,
	}
}

// TaskQuery represents filters for listing tasks
type TaskQuery struct {
	BoardID         *uint64
	Inbox           bool
	SectionID       *uint64
	Status          *models.TaskStatus
	IncludeArchived bool
	Sort            string
	Page            int
	Limit           int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title            string                  `json:"title" validate:"required,max=500"`
	Description      string                  `json:"description" validate:"max=5000"`
	Icon             *string                 `json:"icon" validate:"omitempty,max=64"`
	IconColor        *string                 `json:"icon_color" validate:"omitempty,max=64"`
	Status           models.TaskStatus       `json:"status" validate:"omitempty,oneof=todo in_progress done archived"`
	Priority         *models.TaskPriority    `json:"priority" validate:"omitempty,oneof=low medium high"`
	Tags             []string                `json:"tags" validate:"max=20,dive,required,max=50"`
	DueDate          *string                 `json:"due_date" validate:"omitempty,timestamp"`
	BoardID          *uint64                 `json:"board_id"`
	SectionID        *uint64                 `json:"section_id"`
	ParentID         *uint64                 `json:"parent_id"`
	ItemData         json.RawMessage         `json:"item_data"`
	IsRepeatable     bool                    `json:"is_repeatable"`
	RepeatFrequency  *models.RepeatFrequency `json:"repeat_frequency" validate:"omitempty,oneof=daily weekly biweekly monthly yearly custom"`
	RepeatInterval   *int                    `json:"repeat_interval" validate:"omitempty,min=1,max=365"`
	RepeatCustomDays *int                    `json:"repeat_custom_days" validate:"omitempty,min=1,max=3650"`
}

// UpdateTaskInput represents the general task fields to change. Placement and
// timer fields have their own operations.
type UpdateTaskInput struct {
	Title            *string                 `json:"title" validate:"omitempty,min=1,max=500"`
	Description      *string                 `json:"description" validate:"omitempty,max=5000"`
	Icon             *string                 `json:"icon" validate:"omitempty,max=64"`
	IconColor        *string                 `json:"icon_color" validate:"omitempty,max=64"`
	Status           *models.TaskStatus      `json:"status" validate:"omitempty,oneof=todo in_progress done archived"`
	Priority         *models.TaskPriority    `json:"priority" validate:"omitempty,oneof=low medium high"`
	ClearPriority    bool                    `json:"clear_priority"`
	Tags             []string                `json:"tags" validate:"omitempty,max=20,dive,required,max=50"`
	DueDate          *string                 `json:"due_date" validate:"omitempty,timestamp"`
	ClearDueDate     bool                    `json:"clear_due_date"`
	ItemData         json.RawMessage         `json:"item_data"`
	IsRepeatable     *bool                   `json:"is_repeatable"`
	RepeatFrequency  *models.RepeatFrequency `json:"repeat_frequency" validate:"omitempty,oneof=daily weekly biweekly monthly yearly custom"`
	RepeatInterval   *int                    `json:"repeat_interval" validate:"omitempty,min=1,max=365"`
	RepeatCustomDays *int                    `json:"repeat_custom_days" validate:"omitempty,min=1,max=3650"`
}

// MoveTaskInput is the target (board, section) scope. A nil board moves the
// task to the inbox.
type MoveTaskInput struct {
	BoardID   *uint64 `json:"board_id"`
	SectionID *uint64 `json:"section_id"`
}

// TaskGroups holds tasks grouped one way, selected by By.
type TaskGroups struct {
	By     string                   `json:"by"`
	Board  map[string][]models.Task `json:"board,omitempty"`
	Status []taskview.StatusGroup   `json:"status,omitempty"`
	Date   []taskview.DateGroup     `json:"date,omitempty"`
}

func repeatFields(isRepeatable bool, freq *models.RepeatFrequency, customDays *int) map[string]string {
	fields := map[string]string{}
	if isRepeatable && freq == nil {
		fields["repeat_frequency"] = "is required for repeatable tasks"
	}
	if freq != nil && *freq == models.RepeatCustom && (customDays == nil || *customDays < 1) {
		fields["repeat_custom_days"] = "is required for custom frequency"
	}
	if len(fields) == 0 {
		return nil
	}
	return fields
}

func itemDataFailure(op string, userID uint64, err error) error {
	var fe *itemdata.FieldError
	if errors.As(err, &fe) {
		fields := make(map[string]string, len(fe.Fields))
		for k, v := range fe.Fields {
			fields["item_data."+k] = v
		}
		return invalid(op, userID, fields)
	}
	return invalid(op, userID, map[string]string{"item_data": "must be a JSON object"})
}

func parseDue(op string, userID uint64, raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	due, err := validation.ParseTimestamp(*raw)
	if err != nil {
		return nil, invalid(op, userID, map[string]string{"due_date": "must be an RFC 3339 timestamp or YYYY-MM-DD date"})
	}
	due = due.UTC()
	return &due, nil
}

func sameRef(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func templateOf(board *models.Board) *models.TemplateType {
	if board == nil {
		return nil
	}
	return board.TemplateType
}

// statusUpdates returns the column changes for moving task to next.
func statusUpdates(task *models.Task, next models.TaskStatus, repeatable bool, now time.Time) map[string]interface{} {
	updates := map[string]interface{}{"status": next}

	if next == models.TaskStatusDone {
		if task.Status != models.TaskStatusDone {
			updates["completed_at"] = now
			if repeatable {
				updates["last_completed_at"] = now
			}
		}
	} else {
		updates["completed_at"] = nil
	}

	if next == models.TaskStatusArchived {
		if task.Status != models.TaskStatusArchived {
			updates["archived_at"] = now
		}
	} else {
		updates["archived_at"] = nil
	}
	return updates
}

// placement verifies the user owns the target board, that the section
// belongs to it and that the parent task exists. It returns the board, or nil
// for the inbox.
func (s *TaskService) placement(ctx context.Context, op string, userID uint64, boardID, sectionID, parentID *uint64) (*models.Board, error) {
	if sectionID != nil && boardID == nil {
		return nil, invalid(op, userID, map[string]string{"section_id": "requires board_id"})
	}

	var board *models.Board
	if boardID != nil {
		b, err := s.boards.FindOwned(ctx, *boardID, userID)
		if err != nil {
			return nil, lookupFailure(op, userID, err, msgBoardNotFound)
		}
		board = b
	}

	if sectionID != nil {
		section, err := s.sections.FindByID(ctx, *sectionID)
		if err != nil {
			return nil, lookupFailure(op, userID, err, msgSectionNotFound)
		}
		if section.BoardID != *boardID {
			return nil, fail(op, userID, apierrors.NotFound(op, msgSectionNotFound))
		}
	}

	if parentID != nil {
		if _, err := s.tasks.FindOwned(ctx, *parentID, userID); err != nil {
			return nil, lookupFailure(op, userID, err, msgParentNotFound)
		}
	}
	return board, nil
}

func (s *TaskService) filter(ctx context.Context, op string, userID uint64, q TaskQuery) (repository.TaskFilter, error) {
	if q.Status != nil && !q.Status.Valid() {
		return repository.TaskFilter{}, invalid(op, userID, map[string]string{"status": "must be one of: todo, in_progress, done, archived"})
	}
	switch q.Sort {
	case "", SortByOrder, SortByDueDate, SortByPriority:
	default:
		return repository.TaskFilter{}, invalid(op, userID, map[string]string{"sort": "must be one of: order, due_date, priority"})
	}

	filter := repository.TaskFilter{
		OwnerID:         userID,
		BoardID:         q.BoardID,
		Inbox:           q.Inbox,
		SectionID:       q.SectionID,
		Status:          q.Status,
		IncludeArchived: q.IncludeArchived,
	}

	// Members of a shared board see the owner's tasks on it.
	if q.BoardID != nil {
		board, err := s.boards.FindAccessible(ctx, *q.BoardID, userID)
		if err != nil {
			return repository.TaskFilter{}, lookupFailure(op, userID, err, msgBoardNotFound)
		}
		filter.OwnerID = board.UserID
	}

	if q.Page > 0 || q.Limit > 0 {
		page := utils.ParsePagination(q.Page, q.Limit)
		filter.Pagination = &page
	}
	return filter, nil
}

func sortTasks(tasks []models.Task, by string) []models.Task {
	switch by {
	case SortByDueDate:
		return taskview.SortTasksByDueDate(tasks)
	case SortByPriority:
		return taskview.SortTasksByPriority(tasks)
	default:
		return taskview.SortTasksByOrder(tasks)
	}
}

// ListTasks returns the tasks matching q and the total before pagination.
func (s *TaskService) ListTasks(ctx context.Context, q TaskQuery) ([]models.Task, int64, error) {
	const op = "ListTasks"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, 0, err
	}

	filter, err := s.filter(ctx, op, userID, q)
	if err != nil {
		return nil, 0, err
	}

	tasks, total, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, 0, storageFailure(op, userID, err)
	}
	return sortTasks(tasks, q.Sort), total, nil
}

// GroupTasks lists every task matching q and groups them by board, status or date.
func (s *TaskService) GroupTasks(ctx context.Context, q TaskQuery, by string) (*TaskGroups, error) {
	const op = "GroupTasks"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if by != GroupByBoard && by != GroupByStatus && by != GroupByDate {
		return nil, invalid(op, userID, map[string]string{"by": "must be one of: board, status, date"})
	}

	q.Page, q.Limit = 0, 0
	filter, err := s.filter(ctx, op, userID, q)
	if err != nil {
		return nil, err
	}

	tasks, _, err := s.tasks.List(ctx, filter)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	tasks = sortTasks(tasks, q.Sort)

	groups := &TaskGroups{By: by}
	switch by {
	case GroupByBoard:
		groups.Board = taskview.GroupTasksByBoard(tasks)
	case GroupByStatus:
		groups.Status = taskview.GroupTasksByStatus(tasks)
	case GroupByDate:
		groups.Date = taskview.GroupTasksByDate(tasks, s.now())
	}
	return groups, nil
}

// GetTask returns a task owned by the acting user.
func (s *TaskService) GetTask(ctx context.Context, id uint64) (*models.Task, error) {
	const op = "GetTask"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	return task, nil
}

// CreateTask creates a task at the end of its (board, section) scope.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	const op = "CreateTask"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	if fields := repeatFields(input.IsRepeatable, input.RepeatFrequency, input.RepeatCustomDays); fields != nil {
		return nil, invalid(op, userID, fields)
	}
	due, err := parseDue(op, userID, input.DueDate)
	if err != nil {
		return nil, err
	}

	board, err := s.placement(ctx, op, userID, input.BoardID, input.SectionID, input.ParentID)
	if err != nil {
		return nil, err
	}
	data, err := itemdata.Normalize(templateOf(board), input.ItemData)
	if err != nil {
		return nil, itemDataFailure(op, userID, err)
	}

	max, err := s.tasks.MaxDisplayOrder(ctx, userID, input.BoardID, input.SectionID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	order := max + 1

	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	task := &models.Task{
		UserID:           userID,
		BoardID:          input.BoardID,
		SectionID:        input.SectionID,
		ParentID:         input.ParentID,
		Title:            input.Title,
		Description:      input.Description,
		Icon:             optionalString(input.Icon),
		IconColor:        optionalString(input.IconColor),
		Status:           status,
		Priority:         input.Priority,
		Tags:             datatypes.JSONSlice[string](input.Tags),
		DueDate:          due,
		ItemData:         data,
		DisplayOrder:     &order,
		IsRepeatable:     input.IsRepeatable,
		RepeatFrequency:  input.RepeatFrequency,
		RepeatInterval:   input.RepeatInterval,
		RepeatCustomDays: input.RepeatCustomDays,
	}

	now := s.now().UTC()
	switch status {
	case models.TaskStatusDone:
		task.CompletedAt = &now
		if task.IsRepeatable {
			task.LastCompletedAt = &now
		}
	case models.TaskStatusArchived:
		task.ArchivedAt = &now
	}

	if err := s.tasks.Create(ctx, task); err != nil {
		return nil, storageFailure(op, userID, err)
	}
	return task, nil
}

// UpdateTask applies a column-scoped update of the general task fields.
func (s *TaskService) UpdateTask(ctx context.Context, id uint64, input UpdateTaskInput) (*models.Task, error) {
	const op = "UpdateTask"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		input.Title = &title
	}
	if err := validate(op, userID, input); err != nil {
		return nil, err
	}
	due, err := parseDue(op, userID, input.DueDate)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}

	repeatable := task.IsRepeatable
	if input.IsRepeatable != nil {
		repeatable = *input.IsRepeatable
	}
	freq := task.RepeatFrequency
	if input.RepeatFrequency != nil {
		freq = input.RepeatFrequency
	}
	customDays := task.RepeatCustomDays
	if input.RepeatCustomDays != nil {
		customDays = input.RepeatCustomDays
	}
	if fields := repeatFields(repeatable, freq, customDays); fields != nil {
		return nil, invalid(op, userID, fields)
	}

	updates := map[string]interface{}{}
	if input.Title != nil {
		updates["title"] = *input.Title
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Icon != nil {
		updates["icon"] = optionalString(input.Icon)
	}
	if input.IconColor != nil {
		updates["icon_color"] = optionalString(input.IconColor)
	}
	if input.ClearPriority {
		updates["priority"] = nil
	} else if input.Priority != nil {
		updates["priority"] = *input.Priority
	}
	if input.Tags != nil {
		updates["tags"] = datatypes.JSONSlice[string](input.Tags)
	}
	if input.ClearDueDate {
		updates["due_date"] = nil
	} else if due != nil {
		updates["due_date"] = *due
	}
	if input.IsRepeatable != nil {
		updates["is_repeatable"] = *input.IsRepeatable
	}
	if input.RepeatFrequency != nil {
		updates["repeat_frequency"] = *input.RepeatFrequency
	}
	if input.RepeatInterval != nil {
		updates["repeat_interval"] = *input.RepeatInterval
	}
	if input.RepeatCustomDays != nil {
		updates["repeat_custom_days"] = *input.RepeatCustomDays
	}
	if input.ItemData != nil {
		var board *models.Board
		if task.BoardID != nil {
			if board, err = s.boards.FindOwned(ctx, *task.BoardID, userID); err != nil {
				return nil, lookupFailure(op, userID, err, msgBoardNotFound)
			}
		}
		data, err := itemdata.Normalize(templateOf(board), input.ItemData)
		if err != nil {
			return nil, itemDataFailure(op, userID, err)
		}
		updates["item_data"] = data
	}
	if input.Status != nil && *input.Status != task.Status {
		for k, v := range statusUpdates(task, *input.Status, repeatable, s.now().UTC()) {
			updates[k] = v
		}
	}

	if len(updates) > 0 {
		if err := s.tasks.Update(ctx, id, userID, updates); err != nil {
			return nil, storageFailure(op, userID, err)
		}
	}

	updated, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	return updated, nil
}

// MoveTask places a task in another (board, section) scope at the end of that
// scope's order.
func (s *TaskService) MoveTask(ctx context.Context, id uint64, input MoveTaskInput) (*models.Task, error) {
	const op = "MoveTask"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	if sameRef(task.BoardID, input.BoardID) && sameRef(task.SectionID, input.SectionID) {
		return task, nil
	}

	board, err := s.placement(ctx, op, userID, input.BoardID, input.SectionID, nil)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"board_id":   input.BoardID,
		"section_id": input.SectionID,
	}

	if !sameRef(task.BoardID, input.BoardID) && len(task.ItemData) > 0 {
		data, err := itemdata.Normalize(templateOf(board), task.ItemData)
		if err != nil {
			return nil, itemDataFailure(op, userID, err)
		}
		updates["item_data"] = data
	}

	max, err := s.tasks.MaxDisplayOrder(ctx, userID, input.BoardID, input.SectionID)
	if err != nil {
		return nil, storageFailure(op, userID, err)
	}
	updates["display_order"] = max + 1

	if err := s.tasks.Update(ctx, id, userID, updates); err != nil {
		return nil, storageFailure(op, userID, err)
	}

	moved, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	return moved, nil
}

// DeleteTask removes a task. Its subtasks are kept without a parent.
func (s *TaskService) DeleteTask(ctx context.Context, id uint64) error {
	const op = "DeleteTask"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	affected, err := s.tasks.Delete(ctx, id, userID)
	if err != nil {
		return storageFailure(op, userID, err)
	}
	if affected == 0 {
		return fail(op, userID, apierrors.NotFound(op, msgTaskNotFound))
	}
	return nil
}

// ToggleTaskStatus flips a task between todo and done. Any status other than
// done toggles to done.
func (s *TaskService) ToggleTaskStatus(ctx context.Context, id uint64) (*models.Task, error) {
	const op = "ToggleTaskStatus"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}

	next := models.TaskStatusDone
	if task.Status == models.TaskStatusDone {
		next = models.TaskStatusTodo
	}

	if err := s.tasks.Update(ctx, id, userID, statusUpdates(task, next, task.IsRepeatable, s.now().UTC())); err != nil {
		return nil, storageFailure(op, userID, err)
	}

	toggled, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	return toggled, nil
}

// CompleteRepeatableTask records a completion and reschedules the task to its
// next occurrence with status todo.
func (s *TaskService) CompleteRepeatableTask(ctx context.Context, id uint64) (*models.Task, error) {
	const op = "CompleteRepeatableTask"
	userID, err := actor(ctx, op)
	if err != nil {
		return nil, err
	}

	task, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	if !task.IsRepeatable || task.RepeatFrequency == nil || task.DueDate == nil {
		return nil, fail(op, userID, apierrors.InvalidState(op, "Task must be repeatable with a frequency and a due date"))
	}

	rule, err := schedule.RuleFor(task)
	if err != nil {
		return nil, fail(op, userID, apierrors.InvalidState(op, err.Error()))
	}
	next, err := rule.Next(*task.DueDate)
	if err != nil {
		return nil, fail(op, userID, apierrors.InvalidState(op, err.Error()))
	}

	now := s.now().UTC()
	updates := map[string]interface{}{
		"due_date":          next,
		"status":            models.TaskStatusTodo,
		"completed_at":      nil,
		"archived_at":       nil,
		"last_completed_at": now,
	}
	if err := s.tasks.Update(ctx, id, userID, updates); err != nil {
		return nil, storageFailure(op, userID, err)
	}

	rescheduled, err := s.tasks.FindOwned(ctx, id, userID)
	if err != nil {
		return nil, lookupFailure(op, userID, err, msgTaskNotFound)
	}
	return rescheduled, nil
}

// ReorderTasks assigns display_order by position in ids.
func (s *TaskService) ReorderTasks(ctx context.Context, ids []uint64) error {
	const op = "ReorderTasks"
	userID, err := actor(ctx, op)
	if err != nil {
		return err
	}

	if err := uniqueIDs(op, userID, ids); err != nil {
		return err
	}
	if err := s.tasks.Reorder(ctx, userID, ids); err != nil {
		return reorderFailure(op, userID, err)
	}
	return nil
}
