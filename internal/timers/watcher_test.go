package timers

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yukikurage/tracker-api/internal/models"
)

type fakeSource struct {
	mu    sync.Mutex
	tasks []models.Task
	err   error
}

func (f *fakeSource) ListActiveTimers(ctx context.Context) ([]models.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.Task(nil), f.tasks...), f.err
}

func (f *fakeSource) set(tasks ...models.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = tasks
}

var base = time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

func timer(id uint64, startedAt time.Time, seconds int) models.Task {
	return models.Task{ID: id, Title: "timer", TimerStartedAt: &startedAt, TimerDurationSeconds: &seconds}
}

func newTestWatcher(src Source, clock *time.Time) *Watcher {
	w := NewWatcher(src, time.Millisecond)
	w.now = func() time.Time { return *clock }
	return w
}

func TestPoll_AlertsTransitionOnce(t *testing.T) {
	clock := base
	src := &fakeSource{}
	src.set(timer(1, base, 60))
	w := newTestWatcher(src, &clock)

	alerts, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)

	clock = base.Add(61 * time.Second)
	alerts, err = w.Poll(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, uint64(1), alerts[0].TaskID)
	assert.Equal(t, base.Add(time.Minute), alerts[0].ExpiredAt)

	clock = base.Add(2 * time.Minute)
	alerts, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestPoll_ExpiredAtFirstPollIsNeverAlerted(t *testing.T) {
	clock := base.Add(time.Hour)
	src := &fakeSource{}
	src.set(timer(1, base, 60))
	w := newTestWatcher(src, &clock)

	for i := 0; i < 3; i++ {
		alerts, err := w.Poll(context.Background())
		require.NoError(t, err)
		assert.Empty(t, alerts)
		clock = clock.Add(time.Minute)
	}
}

func TestPoll_TimerNeverSeenRunningIsNotAlerted(t *testing.T) {
	clock := base.Add(time.Hour)
	src := &fakeSource{}
	w := newTestWatcher(src, &clock)

	alerts, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)

	// Resumed with an old start time, or started and expired between polls.
	src.set(timer(9, base, 60))
	alerts, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)

	clock = clock.Add(time.Minute)
	alerts, err = w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestPoll_RestartedTimerAlertsAgain(t *testing.T) {
	clock := base
	src := &fakeSource{}
	src.set(timer(1, base, 60))
	w := newTestWatcher(src, &clock)

	_, _ = w.Poll(context.Background())
	clock = base.Add(2 * time.Minute)
	alerts, _ := w.Poll(context.Background())
	require.Len(t, alerts, 1)

	src.set(timer(1, clock, 60))
	alerts, _ = w.Poll(context.Background())
	assert.Empty(t, alerts)

	clock = clock.Add(90 * time.Second)
	alerts, _ = w.Poll(context.Background())
	assert.Len(t, alerts, 1)
}

func TestPoll_IgnoresTimersWithoutDuration(t *testing.T) {
	clock := base
	started := base
	src := &fakeSource{}
	src.set(models.Task{ID: 5, TimerStartedAt: &started})
	w := newTestWatcher(src, &clock)

	_, _ = w.Poll(context.Background())
	clock = base.Add(24 * time.Hour)
	alerts, err := w.Poll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, alerts)
}

func TestRun_EmitsAndStopsWithContext(t *testing.T) {
	var mu sync.Mutex
	clock := base
	src := &fakeSource{}
	src.set(timer(1, base, 60))

	w := NewWatcher(src, time.Millisecond)
	w.now = func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan Alert, 1)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func(a Alert) error {
			got <- a
			return nil
		})
	}()

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	clock = base.Add(time.Hour)
	mu.Unlock()

	select {
	case a := <-got:
		assert.Equal(t, uint64(1), a.TaskID)
	case <-time.After(2 * time.Second):
		t.Fatal("no alert emitted")
	}

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestRun_ReturnsEmitError(t *testing.T) {
	clock := base
	src := &fakeSource{}
	src.set(timer(1, base, 60))
	w := newTestWatcher(src, &clock)

	_, _ = w.Poll(context.Background())
	clock = base.Add(time.Hour)

	boom := errors.New("client gone")
	err := w.Run(context.Background(), func(Alert) error { return boom })
	assert.ErrorIs(t, err, boom)
}
