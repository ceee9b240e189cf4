// Package toast is a bounded, non-blocking notification queue.
package toast

import (
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Level indicates the severity of a notice.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

const (
	DefaultDuration  = 6 * time.Second
	DefaultMaxNotice = 5
)

// Notice is one queued notification.
type Notice struct {
	ID        string
	Level     Level
	Title     string
	Message   string
	Duration  time.Duration
	CreatedAt time.Time
}

// Manager holds active notices. Posting never blocks on the change callback's consumer.
type Manager struct {
	mu       sync.Mutex
	notices  []*Notice
	timers   map[string]*time.Timer
	maxCount int
	onChange func([]*Notice)
}

// NewManager creates a manager that keeps at most maxCount notices.
func NewManager(maxCount int) *Manager {
	if maxCount <= 0 {
		maxCount = DefaultMaxNotice
	}
	return &Manager{
		maxCount: maxCount,
		timers:   make(map[string]*time.Timer),
	}
}

// SetOnChange configures the callback for queue updates.
func (m *Manager) SetOnChange(fn func([]*Notice)) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.onChange = fn
	snapshot := m.snapshotLocked()
	m.mu.Unlock()
	if fn != nil {
		fn(snapshot)
	}
}

// Show queues a notice and returns its ID. A non-positive duration uses DefaultDuration.
func (m *Manager) Show(level Level, title, message string, duration time.Duration) string {
	if m == nil {
		return ""
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	n := &Notice{
		ID:        strings.ToLower(ulid.Make().String()),
		Level:     level,
		Title:     strings.TrimSpace(title),
		Message:   strings.TrimSpace(message),
		Duration:  duration,
		CreatedAt: time.Now(),
	}

	m.mu.Lock()
	m.notices = append(m.notices, n)
	m.timers[n.ID] = time.AfterFunc(duration, func() {
		m.Dismiss(n.ID)
	})
	for len(m.notices) > m.maxCount {
		evicted := m.notices[0]
		m.notices = m.notices[1:]
		m.stopTimerLocked(evicted.ID)
	}
	snapshot := m.snapshotLocked()
	cb := m.onChange
	m.mu.Unlock()

	if cb != nil {
		cb(snapshot)
	}
	return n.ID
}

// Notify posts an error notice carrying message.
func (m *Manager) Notify(message string) {
	m.Show(LevelError, "", message, DefaultDuration)
}

// Info posts an informational notice.
func (m *Manager) Info(message string) {
	m.Show(LevelInfo, "", message, DefaultDuration)
}

// Dismiss removes a notice by ID.
func (m *Manager) Dismiss(id string) {
	if m == nil || strings.TrimSpace(id) == "" {
		return
	}
	m.mu.Lock()
	found := false
	remaining := m.notices[:0]
	for _, n := range m.notices {
		if n.ID == id {
			found = true
			m.stopTimerLocked(id)
			continue
		}
		remaining = append(remaining, n)
	}
	m.notices = remaining
	if !found {
		m.mu.Unlock()
		return
	}
	snapshot := m.snapshotLocked()
	cb := m.onChange
	m.mu.Unlock()
	if cb != nil {
		cb(snapshot)
	}
}

// Active returns the queued notices, oldest first.
func (m *Manager) Active() []*Notice {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Close cancels all expiry timers.
func (m *Manager) Close() {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for id := range m.timers {
		m.stopTimerLocked(id)
	}
}

func (m *Manager) stopTimerLocked(id string) {
	if timer, ok := m.timers[id]; ok {
		timer.Stop()
		delete(m.timers, id)
	}
}

func (m *Manager) snapshotLocked() []*Notice {
	if len(m.notices) == 0 {
		return nil
	}
	out := make([]*Notice, len(m.notices))
	copy(out, m.notices)
	return out
}
