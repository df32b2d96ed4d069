package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tracker-api/internal/dto"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/middleware"
	"github.com/yukikurage/tracker-api/internal/models"
	"github.com/yukikurage/tracker-api/internal/services"
	"github.com/yukikurage/tracker-api/internal/utils"
)

type TaskHandler struct {
	taskService       *services.TaskService
	suggestionService *services.SuggestionService
}

func NewTaskHandler(taskService *services.TaskService, suggestionService *services.SuggestionService) *TaskHandler {
	return &TaskHandler{
		taskService:       taskService,
		suggestionService: suggestionService,
	}
}

func queryID(c *gin.Context, key string) (*uint64, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		apierrors.BadRequest(c, "Invalid "+key)
		return nil, false
	}
	return &id, true
}

// parseTaskQuery reads the list filters from the query string
func parseTaskQuery(c *gin.Context) (services.TaskQuery, bool) {
	var q services.TaskQuery
	var ok bool

	if q.BoardID, ok = queryID(c, "board_id"); !ok {
		return q, false
	}
	if q.SectionID, ok = queryID(c, "section_id"); !ok {
		return q, false
	}
	if status := c.Query("status"); status != "" {
		s := models.TaskStatus(status)
		q.Status = &s
	}
	q.Inbox = c.Query("inbox") == "true"
	q.IncludeArchived = c.Query("include_archived") == "true"
	q.Sort = c.Query("sort")
	return q, true
}

// ListTasks returns the user's tasks, paginated
// Filters: board_id, inbox, section_id, status, include_archived, sort
func (h *TaskHandler) ListTasks(c *gin.Context) {
	q, ok := parseTaskQuery(c)
	if !ok {
		return
	}
	params := utils.GetPaginationParams(c)
	q.Page, q.Limit = params.Page, params.Limit

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), q)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GroupTasks returns every matching task grouped by board, status or date
func (h *TaskHandler) GroupTasks(c *gin.Context) {
	q, ok := parseTaskQuery(c)
	if !ok {
		return
	}

	groups, err := h.taskService.GroupTasks(c.Request.Context(), q, c.DefaultQuery("by", services.GroupByStatus))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskGroupsDTO(*groups))
}

// GetTask returns a specific task by ID
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, err := h.taskService.GetTask(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req services.CreateTaskInput
	if !bindJSON(c, &req, false) {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates the provided task fields
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req services.UpdateTaskInput
	if !bindJSON(c, &req, false) {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// MoveTask moves a task to another board or section
func (h *TaskHandler) MoveTask(c *gin.Context) {
	var req services.MoveTaskInput
	if !bindJSON(c, &req, true) {
		return
	}

	task, err := h.taskService.MoveTask(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskService.DeleteTask(c.Request.Context(), middleware.IDParam(c, "id")); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// ToggleTask flips a task between todo and done
func (h *TaskHandler) ToggleTask(c *gin.Context) {
	task, err := h.taskService.ToggleTaskStatus(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteRepeat records a completion and moves the due date forward
func (h *TaskHandler) CompleteRepeat(c *gin.Context) {
	task, err := h.taskService.CompleteRepeatableTask(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// ReorderTasks sets the order of tasks within their scope
func (h *TaskHandler) ReorderTasks(c *gin.Context) {
	var req ReorderRequest
	if !bindJSON(c, &req, false) {
		return
	}

	if err := h.taskService.ReorderTasks(c.Request.Context(), req.IDs); err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Tasks reordered"})
}

// SuggestTasks drafts tasks for a board from free text. Drafts are not saved.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	if h.suggestionService == nil {
		apierrors.ServiceUnavailable(c, "Task suggestions are not configured")
		return
	}

	var req services.SuggestInput
	if !bindJSON(c, &req, false) {
		return
	}

	drafts, err := h.suggestionService.SuggestTasks(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"tasks": drafts})
}
