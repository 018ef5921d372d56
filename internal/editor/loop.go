package editor

import (
	"context"
	"sync"
)

// Loop runs callbacks on the editing goroutine. Background work never touches
// a Session directly; it posts its result through the Loop instead.
type Loop interface {
	Post(fn func())
}

// LoopFunc adapts a scheduling function, such as fyne.Do, to Loop.
type LoopFunc func(func())

func (f LoopFunc) Post(fn func()) { f(fn) }

// Queue is a Loop driven explicitly with Drain or Run.
type Queue struct {
	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}
}

func NewQueue() *Queue {
	return &Queue{wake: make(chan struct{}, 1)}
}

// Post is safe to call from any goroutine.
func (q *Queue) Post(fn func()) {
	q.mu.Lock()
	q.tasks = append(q.tasks, fn)
	q.mu.Unlock()
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

// Drain runs every pending task on the calling goroutine and returns how
// many ran. Tasks posted while draining run in the same call.
func (q *Queue) Drain() int {
	n := 0
	for {
		q.mu.Lock()
		tasks := q.tasks
		q.tasks = nil
		q.mu.Unlock()
		if len(tasks) == 0 {
			return n
		}
		for _, fn := range tasks {
			fn()
			n++
		}
	}
}

// Run drains the queue whenever work is posted until ctx is done.
func (q *Queue) Run(ctx context.Context) error {
	for {
		q.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-q.wake:
		}
	}
}
