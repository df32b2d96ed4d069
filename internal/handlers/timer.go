package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/tracker-api/internal/dto"
	apierrors "github.com/yukikurage/tracker-api/internal/errors"
	"github.com/yukikurage/tracker-api/internal/middleware"
	"github.com/yukikurage/tracker-api/internal/services"
	"github.com/yukikurage/tracker-api/internal/timers"
)

// TimerHandler serves task timers and the expiry alert stream.
type TimerHandler struct {
	timerService *services.TimerService
	pollInterval time.Duration
}

// NewTimerHandler creates a new TimerHandler.
func NewTimerHandler(timerService *services.TimerService, pollInterval time.Duration) *TimerHandler {
	return &TimerHandler{timerService: timerService, pollInterval: pollInterval}
}

// StartTimer starts or resumes a task timer
func (h *TimerHandler) StartTimer(c *gin.Context) {
	var req services.StartTimerInput
	if !bindJSON(c, &req, true) {
		return
	}

	task, err := h.timerService.StartTaskTimer(c.Request.Context(), middleware.IDParam(c, "id"), req)
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// CompleteTimer stops a running timer
func (h *TimerHandler) CompleteTimer(c *gin.Context) {
	task, err := h.timerService.CompleteTaskTimer(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// ResetTimer returns a timer to idle
func (h *TimerHandler) ResetTimer(c *gin.Context) {
	task, err := h.timerService.ResetTaskTimer(c.Request.Context(), middleware.IDParam(c, "id"))
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTO(*task))
}

// ListActiveTimers returns the tasks with a running timer
func (h *TimerHandler) ListActiveTimers(c *gin.Context) {
	tasks, err := h.timerService.ListActiveTimers(c.Request.Context())
	if err != nil {
		apierrors.Respond(c, err)
		return
	}
	respond(c, http.StatusOK, dto.ToTaskDTOs(tasks))
}

// Alerts streams a "timer_expired" server-sent event each time one of the
// user's running timers runs out. The stream ends with the request.
func (h *TimerHandler) Alerts(c *gin.Context) {
	ctx := c.Request.Context()
	watcher := timers.NewWatcher(h.timerService, h.pollInterval)

	alerts := make(chan timers.Alert)
	go func() {
		defer close(alerts)
		_ = watcher.Run(ctx, func(alert timers.Alert) error {
			select {
			case alerts <- alert:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("ready", gin.H{"poll_interval_ms": h.pollInterval.Milliseconds()})
	c.Writer.Flush()
	c.Stream(func(w io.Writer) bool {
		alert, ok := <-alerts
		if !ok {
			return false
		}
		c.SSEvent("timer_expired", alert)
		return true
	})
}
