// Package notifications buffers transient, human-readable messages (action
// descriptions, submission failures) between the gateway and whatever
// surface displays them.
package notifications

import (
	"sync"
	"time"
)

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

// Notification is one transient message.
type Notification struct {
	Text     string
	Severity Severity
	At       time.Time
}

const DefaultCapacity = 256

// Queue is a bounded in-memory notification buffer. When full, the oldest
// entry is dropped: notifications are transient and never worth blocking a
// submission for.
type Queue struct {
	mu       sync.Mutex
	items    []Notification
	capacity int
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Publish appends a notification, evicting the oldest when full.
func (q *Queue) Publish(notification Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if notification.At.IsZero() {
		notification.At = time.Now()
	}
	if len(q.items) >= q.capacity {
		q.items = q.items[1:]
	}
	q.items = append(q.items, notification)
}

// Info publishes an info-level notification.
func (q *Queue) Info(text string) {
	q.Publish(Notification{Text: text, Severity: SeverityInfo})
}

func (q *Queue) Warning(text string) {
	q.Publish(Notification{Text: text, Severity: SeverityWarning})
}

func (q *Queue) Error(text string) {
	q.Publish(Notification{Text: text, Severity: SeverityError})
}

// Drain returns and clears all pending notifications.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	items := q.items
	q.items = nil
	return items
}

// Size returns the number of pending notifications.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Clear drops all pending notifications.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}
