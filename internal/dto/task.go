package dto

import (
	"encoding/json"
	"time"

	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/services"
	"github.com/yukikurage/tracker-api/internal/taskview"
)

// TimerDTO is the timer state of a task
type TimerDTO struct {
	DurationSeconds *int       `json:"duration_seconds"`
	StartedAt       *time.Time `json:"started_at"`
	CompletedAt     *time.Time `json:"completed_at"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	Running         bool       `json:"running"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID               uint64                  `json:"id"`
	UserID           uint64                  `json:"user_id"`
	BoardID          *uint64                 `json:"board_id"`
	SectionID        *uint64                 `json:"section_id"`
	ParentID         *uint64                 `json:"parent_id"`
	Title            string                  `json:"title"`
	Description      string                  `json:"description"`
	Icon             *string                 `json:"icon"`
	IconColor        *string                 `json:"icon_color"`
	Status           models.TaskStatus       `json:"status"`
	Priority         *models.TaskPriority    `json:"priority"`
	Tags             []string                `json:"tags"`
	DueDate          *time.Time              `json:"due_date"`
	ItemData         json.RawMessage         `json:"item_data"`
	DisplayOrder     *int                    `json:"display_order"`
	IsRepeatable     bool                    `json:"is_repeatable"`
	RepeatFrequency  *models.RepeatFrequency `json:"repeat_frequency"`
	RepeatInterval   *int                    `json:"repeat_interval"`
	RepeatCustomDays *int                    `json:"repeat_custom_days"`
	LastCompletedAt  *time.Time              `json:"last_completed_at"`
	Timer            TimerDTO                `json:"timer"`
	CompletedAt      *time.Time              `json:"completed_at"`
	ArchivedAt       *time.Time              `json:"archived_at"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// StatusGroupDTO is one status bucket of a grouped listing
type StatusGroupDTO struct {
	Status models.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Tasks  []TaskDTO         `json:"tasks"`
}

// DateGroupDTO is one date bucket of a grouped listing
type DateGroupDTO struct {
	Bucket taskview.DateBucket `json:"bucket"`
	Tasks  []TaskDTO           `json:"tasks"`
}

// TaskGroupsDTO is a grouped listing; only the field named by By is set
type TaskGroupsDTO struct {
	By     string               `json:"by"`
	Board  map[string][]TaskDTO `json:"board,omitempty"`
	Status []StatusGroupDTO     `json:"status,omitempty"`
	Date   []DateGroupDTO       `json:"date,omitempty"`
}

// Conversion functions

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:               task.ID,
		UserID:           task.UserID,
		BoardID:          task.BoardID,
		SectionID:        task.SectionID,
		ParentID:         task.ParentID,
		Title:            task.Title,
		Description:      task.Description,
		Icon:             task.Icon,
		IconColor:        task.IconColor,
		Status:           task.Status,
		Priority:         task.Priority,
		Tags:             []string(task.Tags),
		DueDate:          task.DueDate,
		DisplayOrder:     task.DisplayOrder,
		IsRepeatable:     task.IsRepeatable,
		RepeatFrequency:  task.RepeatFrequency,
		RepeatInterval:   task.RepeatInterval,
		RepeatCustomDays: task.RepeatCustomDays,
		LastCompletedAt:  task.LastCompletedAt,
		Timer: TimerDTO{
			DurationSeconds: task.TimerDurationSeconds,
			StartedAt:       task.TimerStartedAt,
			CompletedAt:     task.TimerCompletedAt,
			Running:         task.TimerRunning(),
		},
		CompletedAt: task.CompletedAt,
		ArchivedAt:  task.ArchivedAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
	if dto.Tags == nil {
		dto.Tags = []string{}
	}
	if len(task.ItemData) > 0 {
		dto.ItemData = json.RawMessage(task.ItemData)
	}
	if expiresAt, ok := task.TimerExpiresAt(); ok {
		dto.Timer.ExpiresAt = &expiresAt
	}
	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task) []TaskDTO {
	dtos := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		dtos[i] = ToTaskDTO(task)
	}
	return dtos
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(totalCount) / pageSize
		if int(totalCount)%pageSize > 0 {
			totalPages++
		}
	}

	return TaskListResponse{
		Tasks:      ToTaskDTOs(tasks),
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: totalPages,
	}
}

// ToTaskGroupsDTO converts a grouped listing
func ToTaskGroupsDTO(groups services.TaskGroups) TaskGroupsDTO {
	dto := TaskGroupsDTO{By: groups.By}

	if groups.Board != nil {
		dto.Board = make(map[string][]TaskDTO, len(groups.Board))
		for key, tasks := range groups.Board {
			dto.Board[key] = ToTaskDTOs(tasks)
		}
	}
	for _, g := range groups.Status {
		dto.Status = append(dto.Status, StatusGroupDTO{
			Status: g.Status,
			Label:  g.Label,
			Tasks:  ToTaskDTOs(g.Tasks),
		})
	}
	for _, g := range groups.Date {
		dto.Date = append(dto.Date, DateGroupDTO{Bucket: g.Bucket, Tasks: ToTaskDTOs(g.Tasks)})
	}
	return dto
}
