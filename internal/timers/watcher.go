// Package timers watches running task timers and reports the ones that expire.
package timers

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/yukikurage/tracker-api/internal/models"
)

// Source lists the acting user's running timers.
type Source interface {
	ListActiveTimers(ctx context.Context) ([]models.Task, error)
}

// Alert reports a timer that ran out.
type Alert struct {
	TaskID    uint64    `json:"task_id"`
	Title     string    `json:"title"`
	ExpiredAt time.Time `json:"expired_at"`
}

// Watcher polls a Source and alerts each expiry once. Only timers seen
// running on an earlier poll are alerted, so a timer that is already expired
// when first observed never is.
type Watcher struct {
	source   Source
	interval time.Duration
	now      func() time.Time

	running map[uint64]struct{}
}

// NewWatcher creates a Watcher polling source every interval.
func NewWatcher(source Source, interval time.Duration) *Watcher {
	if interval <= 0 {
		interval = time.Second
	}
	return &Watcher{
		source:   source,
		interval: interval,
		now:      time.Now,
		running:  make(map[uint64]struct{}),
	}
}

// Poll checks the active timers once.
func (w *Watcher) Poll(ctx context.Context) ([]Alert, error) {
	tasks, err := w.source.ListActiveTimers(ctx)
	if err != nil {
		return nil, err
	}
	now := w.now()

	var alerts []Alert
	active := make(map[uint64]struct{}, len(tasks))
	for i := range tasks {
		task := &tasks[i]
		expiresAt, ok := task.TimerExpiresAt()
		if !ok {
			continue
		}
		active[task.ID] = struct{}{}

		if now.Before(expiresAt) {
			w.running[task.ID] = struct{}{}
			continue
		}
		if _, seen := w.running[task.ID]; !seen {
			continue
		}

		delete(w.running, task.ID)
		alerts = append(alerts, Alert{TaskID: task.ID, Title: task.Title, ExpiredAt: expiresAt})
	}

	for id := range w.running {
		if _, ok := active[id]; !ok {
			delete(w.running, id)
		}
	}
	return alerts, nil
}

// Run polls until ctx is done, passing every alert to emit. It returns
// ctx.Err(), or the first error from emit.
func (w *Watcher) Run(ctx context.Context, emit func(Alert) error) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		alerts, err := w.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			log.WithError(err).Warn("timer poll failed")
		}
		for _, alert := range alerts {
			if err := emit(alert); err != nil {
				return err
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
