package game

import (
	"sort"
	"sync"
	"time"
)

// Scheduler abstracts delayed task execution so the autonomous opponent's
// thinking delays run on wall-clock timers in production and on logical time
// in tests.
type Scheduler interface {
	// After runs fn once d has elapsed, returning a cancel function. Cancel
	// is a no-op after fn has started.
	After(d time.Duration, fn func()) (cancel func())
}

// TimerScheduler is the wall-clock Scheduler used in production.
type TimerScheduler struct{}

// NewTimerScheduler returns a Scheduler backed by time.AfterFunc.
func NewTimerScheduler() *TimerScheduler {
	return &TimerScheduler{}
}

// After implements Scheduler.
func (TimerScheduler) After(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// ManualScheduler is a deterministic Scheduler for tests: nothing runs until
// the test advances logical time.
type ManualScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	nextID int
	tasks  map[int]manualTask
}

type manualTask struct {
	at time.Duration
	fn func()
	id int
}

// NewManualScheduler creates a scheduler at logical time zero.
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{tasks: make(map[int]manualTask)}
}

// After implements Scheduler.
func (m *ManualScheduler) After(d time.Duration, fn func()) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	m.tasks[id] = manualTask{at: m.now + d, fn: fn, id: id}
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.tasks, id)
	}
}

// Advance moves logical time forward, running every due task in deadline
// order. Tasks scheduled by running tasks run too when they fall due inside
// the advanced window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		m.mu.Lock()
		due := make([]manualTask, 0, len(m.tasks))
		for _, t := range m.tasks {
			if t.at <= target {
				due = append(due, t)
			}
		}
		if len(due) == 0 {
			m.now = target
			m.mu.Unlock()
			return
		}
		sort.Slice(due, func(i, j int) bool {
			if due[i].at != due[j].at {
				return due[i].at < due[j].at
			}
			return due[i].id < due[j].id
		})
		next := due[0]
		delete(m.tasks, next.id)
		m.now = next.at
		m.mu.Unlock()

		next.fn()
	}
}

// Pending returns the number of tasks waiting to run.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}
