// Package notify is the portal's toast channel. Mutations and fetch
// failures push user-facing messages here; the front end drains them on its
// next poll. Delivery is fire-and-forget: nothing ever waits on a toast.
package notify

import (
	"sync"

	"event-portal/internal/model"
)

type Kind string

const (
	Success Kind = "success"
	Error   Kind = "error"
)

type Notifier interface {
	Notify(sid string, kind Kind, message string)
	Drain(sid string) []model.Toast
}

// Queue holds pending toasts per browser session, FIFO with a fixed cap.
// When a session's queue is full the oldest toast is dropped.
type Queue struct {
	mu     sync.Mutex
	cap    int
	queues map[string][]model.Toast
}

func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 50
	}
	return &Queue{cap: capacity, queues: map[string][]model.Toast{}}
}

func (q *Queue) Notify(sid string, kind Kind, message string) {
	if sid == "" || message == "" {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.queues[sid]
	if len(pending) >= q.cap {
		pending = pending[1:]
	}
	q.queues[sid] = append(pending, model.Toast{Kind: string(kind), Message: message})
}

func (q *Queue) Drain(sid string) []model.Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	pending := q.queues[sid]
	delete(q.queues, sid)
	if pending == nil {
		return []model.Toast{}
	}
	return pending
}
