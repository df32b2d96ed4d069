package taskview

import "github.com/yukikurage/tracker-api/internal/models"

// Meta is the display metadata for an enum value.
type Meta struct {
	Label string `json:"label"`
	Color string `json:"color"`
}

var statusMeta = map[models.TaskStatus]Meta{
	models.TaskStatusTodo:       {Label: "To Do", Color: "gray"},
	models.TaskStatusInProgress: {Label: "In Progress", Color: "blue"},
	models.TaskStatusDone:       {Label: "Done", Color: "green"},
	models.TaskStatusArchived:   {Label: "Archived", Color: "slate"},
}

var priorityMeta = map[models.TaskPriority]Meta{
	models.PriorityUrgent: {Label: "Urgent", Color: "red"},
	models.PriorityHigh:   {Label: "High", Color: "orange"},
	models.PriorityMedium: {Label: "Medium", Color: "yellow"},
	models.PriorityLow:    {Label: "Low", Color: "gray"},
}

// StatusInfo returns display metadata for a status.
func StatusInfo(status models.TaskStatus) Meta {
	if m, ok := statusMeta[status]; ok {
		return m
	}
	return Meta{Label: string(status), Color: "gray"}
}

// PriorityInfo returns display metadata for a priority; nil means none.
func PriorityInfo(priority *models.TaskPriority) Meta {
	if priority == nil {
		return Meta{Label: "None", Color: "gray"}
	}
	if m, ok := priorityMeta[*priority]; ok {
		return m
	}
	return Meta{Label: string(*priority), Color: "gray"}
}
