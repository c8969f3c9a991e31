package nudge

import (
	"sort"
	"sync"
	"time"
)

// Handle cancels a scheduled task. Stop reports whether the call prevented
// the task from running.
type Handle interface {
	Stop() bool
}

// Scheduler runs f once after d. Implementations must not run f inline.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Handle
	Now() time.Time
}

// TimerScheduler schedules on the runtime timer heap.
type TimerScheduler struct{}

func (TimerScheduler) AfterFunc(d time.Duration, f func()) Handle { return time.AfterFunc(d, f) }
func (TimerScheduler) Now() time.Time                             { return time.Now() }

// ManualScheduler is a virtual clock. Tasks run on the goroutine calling
// Advance, in due-time order, ties broken by scheduling order.
type ManualScheduler struct {
	mu    sync.Mutex
	now   time.Time
	seq   int
	tasks []*manualTask
}

type manualTask struct {
	s   *ManualScheduler
	at  time.Time
	seq int
	f   func()
	// done is set once the task ran or was stopped.
	done bool
}

func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

func (m *ManualScheduler) AfterFunc(d time.Duration, f func()) Handle {
	if d < 0 {
		d = 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.seq++
	t := &manualTask{s: m, at: m.now.Add(d), seq: m.seq, f: f}
	m.tasks = append(m.tasks, t)
	return t
}

func (m *ManualScheduler) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Advance moves the clock forward by d, running every task that falls due.
// Tasks scheduled by those callbacks run too if they fall inside the window.
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	m.mu.Unlock()
	for {
		m.mu.Lock()
		next := m.popDue(target)
		if next == nil {
			m.now = target
			m.mu.Unlock()
			return
		}
		m.now = next.at
		m.mu.Unlock()
		next.f()
	}
}

// Pending counts tasks that have neither run nor been stopped.
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

func (m *ManualScheduler) popDue(target time.Time) *manualTask {
	if len(m.tasks) == 0 {
		return nil
	}
	sort.SliceStable(m.tasks, func(i, j int) bool {
		if m.tasks[i].at.Equal(m.tasks[j].at) {
			return m.tasks[i].seq < m.tasks[j].seq
		}
		return m.tasks[i].at.Before(m.tasks[j].at)
	})
	t := m.tasks[0]
	if t.at.After(target) {
		return nil
	}
	m.tasks = m.tasks[1:]
	t.done = true
	return t
}

func (t *manualTask) Stop() bool {
	m := t.s
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.done {
		return false
	}
	t.done = true
	for i, x := range m.tasks {
		if x == t {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	return true
}
