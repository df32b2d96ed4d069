package taskview

import (
	"strconv"
	"time"

	"github.com/yukikurage/tracker-api/internal/constants"
	"github.com/yukikurage/tracker-api/internal/models"
)

// DateBucket labels a relative-date group.
type DateBucket string

const (
	BucketOverdue   DateBucket = "Overdue"
	BucketToday     DateBucket = "Today"
	BucketTomorrow  DateBucket = "Tomorrow"
	BucketYesterday DateBucket = "Yesterday"
	BucketThisWeek  DateBucket = "This Week"
	BucketThisMonth DateBucket = "This Month"
	BucketOlder     DateBucket = "Older"
)

// DateBuckets is the fixed order in which date groups are returned.
var DateBuckets = []DateBucket{
	BucketOverdue, BucketToday, BucketTomorrow, BucketYesterday,
	BucketThisWeek, BucketThisMonth, BucketOlder,
}

type DateGroup struct {
	Bucket DateBucket    `json:"bucket"`
	Tasks  []models.Task `json:"tasks"`
}

type StatusGroup struct {
	Status models.TaskStatus `json:"status"`
	Label  string            `json:"label"`
	Tasks  []models.Task     `json:"tasks"`
}

// GroupTasksByDate buckets completed tasks by completion time and active tasks
// by due date. Tasks with neither land in Older. Empty buckets are omitted and
// the rest follow DateBuckets order.
func GroupTasksByDate(tasks []models.Task, now time.Time) []DateGroup {
	buckets := make(map[DateBucket][]models.Task, len(DateBuckets))
	for _, task := range tasks {
		b := dateBucket(&task, now)
		buckets[b] = append(buckets[b], task)
	}

	groups := make([]DateGroup, 0, len(buckets))
	for _, b := range DateBuckets {
		if len(buckets[b]) == 0 {
			continue
		}
		groups = append(groups, DateGroup{Bucket: b, Tasks: buckets[b]})
	}
	return groups
}

func dateBucket(task *models.Task, now time.Time) DateBucket {
	if task.Status == models.TaskStatusDone {
		if task.CompletedAt == nil {
			return BucketOlder
		}
		return completedBucket(*task.CompletedAt, now)
	}
	if task.DueDate == nil {
		return BucketOlder
	}
	return dueBucket(*task.DueDate, now)
}

func completedBucket(at, now time.Time) DateBucket {
	loc := now.Location()
	switch ago := dayDiff(at, now, loc); {
	case ago <= 0:
		return BucketToday
	case ago == 1:
		return BucketYesterday
	case !at.Before(startOfWeek(now, loc)):
		return BucketThisWeek
	case !at.Before(startOfMonth(now, loc)):
		return BucketThisMonth
	default:
		return BucketOlder
	}
}

func dueBucket(due, now time.Time) DateBucket {
	loc := now.Location()
	switch ahead := dayDiff(now, due, loc); {
	case ahead < 0:
		return BucketOverdue
	case ahead == 0:
		return BucketToday
	case ahead == 1:
		return BucketTomorrow
	case due.Before(startOfWeek(now, loc).AddDate(0, 0, 7)):
		return BucketThisWeek
	case due.Before(startOfMonth(now, loc).AddDate(0, 1, 0)):
		return BucketThisMonth
	default:
		return BucketOlder
	}
}

// BoardKey returns the grouping key for a task's board.
func BoardKey(task *models.Task) string {
	if task.BoardID == nil {
		return constants.InboxKey
	}
	return strconv.FormatUint(*task.BoardID, 10)
}

// GroupTasksByBoard partitions tasks by board id; unassigned tasks use the
// "inbox" key.
func GroupTasksByBoard(tasks []models.Task) map[string][]models.Task {
	groups := make(map[string][]models.Task)
	for _, task := range tasks {
		key := BoardKey(&task)
		groups[key] = append(groups[key], task)
	}
	return groups
}

// GroupTasksByStatus partitions tasks by status in models.TaskStatuses order,
// omitting empty statuses.
func GroupTasksByStatus(tasks []models.Task) []StatusGroup {
	byStatus := make(map[models.TaskStatus][]models.Task)
	for _, task := range tasks {
		byStatus[task.Status] = append(byStatus[task.Status], task)
	}

	groups := make([]StatusGroup, 0, len(byStatus))
	for _, status := range models.TaskStatuses {
		if len(byStatus[status]) == 0 {
			continue
		}
		groups = append(groups, StatusGroup{
			Status: status,
			Label:  StatusInfo(status).Label,
			Tasks:  byStatus[status],
		})
	}
	return groups
}
