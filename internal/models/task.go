package models

import (
	"time"

	"gorm.io/datatypes"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
	TaskStatusArchived   TaskStatus = "archived"
)

// TaskStatuses lists every status in display order.
var TaskStatuses = []TaskStatus{TaskStatusTodo, TaskStatusInProgress, TaskStatusDone, TaskStatusArchived}

// Valid reports whether s is one of the closed set of statuses.
func (s TaskStatus) Valid() bool {
	for _, v := range TaskStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type TaskPriority string

const (
	PriorityUrgent TaskPriority = "urgent"
	PriorityHigh   TaskPriority = "high"
	PriorityMedium TaskPriority = "medium"
	PriorityLow    TaskPriority = "low"
)

type RepeatFrequency string

const (
	RepeatDaily    RepeatFrequency = "daily"
	RepeatWeekly   RepeatFrequency = "weekly"
	RepeatBiweekly RepeatFrequency = "biweekly"
	RepeatMonthly  RepeatFrequency = "monthly"
	RepeatYearly   RepeatFrequency = "yearly"
	RepeatCustom   RepeatFrequency = "custom"
)

type Task struct {
	ID          uint64                      `gorm:"primarykey" json:"id"`
	UserID      uint64                      `gorm:"not null;index" json:"user_id"`
	BoardID     *uint64                     `gorm:"index" json:"board_id"`
	SectionID   *uint64                     `gorm:"index" json:"section_id"`
	ParentID    *uint64                     `gorm:"index" json:"parent_id"`
	Title       string                      `gorm:"type:varchar(500);not null" json:"title"`
	Description string                      `gorm:"type:text" json:"description"`
	Icon        *string                     `gorm:"type:varchar(64)" json:"icon"`
	IconColor   *string                     `gorm:"type:varchar(64)" json:"icon_color"`
	Status      TaskStatus                  `gorm:"type:varchar(20);not null;default:'todo'" json:"status"`
	Priority    *TaskPriority               `gorm:"type:varchar(20)" json:"priority"`
	Tags        datatypes.JSONSlice[string] `json:"tags"`
	DueDate     *time.Time                  `gorm:"index" json:"due_date"`
	ItemData    datatypes.JSON              `json:"item_data"`
	// DisplayOrder is unique within the (BoardID, SectionID) scope.
	DisplayOrder *int `json:"display_order"`

	IsRepeatable     bool             `gorm:"not null;default:false" json:"is_repeatable"`
	RepeatFrequency  *RepeatFrequency `gorm:"type:varchar(20)" json:"repeat_frequency"`
	RepeatInterval   *int             `json:"repeat_interval"`
	RepeatCustomDays *int             `json:"repeat_custom_days"`
	LastCompletedAt  *time.Time       `json:"last_completed_at"`

	// Timer columns are written only by the timer operations.
	TimerDurationSeconds *int       `json:"timer_duration_seconds"`
	TimerStartedAt       *time.Time `json:"timer_started_at"`
	TimerCompletedAt     *time.Time `json:"timer_completed_at"`

	CompletedAt *time.Time `json:"completed_at"`
	ArchivedAt  *time.Time `json:"archived_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// TimerRunning reports whether the task's timer has started and not completed.
func (t *Task) TimerRunning() bool {
	return t.TimerStartedAt != nil && t.TimerCompletedAt == nil
}

// TimerExpiresAt returns when a running timer reaches its duration.
func (t *Task) TimerExpiresAt() (time.Time, bool) {
	if !t.TimerRunning() || t.TimerDurationSeconds == nil {
		return time.Time{}, false
	}
	return t.TimerStartedAt.Add(time.Duration(*t.TimerDurationSeconds) * time.Second), true
}
