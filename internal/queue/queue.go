// Package queue provides a small in-process task queue. A single worker
// drains it, so tasks run strictly one at a time in submission order.
package queue

import (
	"context"
	"log/slog"
)

// Task is a unit of queued work.
type Task func(ctx context.Context)

// Queue is a bounded FIFO task queue with one worker.
type Queue struct {
	tasks chan Task
	log   *slog.Logger
}

// New creates a queue holding at most size pending tasks.
func New(size int, log *slog.Logger) *Queue {
	return &Queue{
		tasks: make(chan Task, size),
		log:   log,
	}
}

// Submit enqueues a task without blocking. It reports false when the queue
// is full; the task is not retried.
func (q *Queue) Submit(task Task) bool {
	select {
	case q.tasks <- task:
		return true
	default:
		return false
	}
}

// Pending returns the number of tasks waiting to run.
func (q *Queue) Pending() int {
	return len(q.tasks)
}

// Start runs the worker loop, blocking until ctx is cancelled. A task that
// is already running finishes; pending tasks are abandoned.
func (q *Queue) Start(ctx context.Context) {
	q.log.Debug("task queue started", "capacity", cap(q.tasks))
	for {
		select {
		case <-ctx.Done():
			return
		case task := <-q.tasks:
			task(ctx)
		}
	}
}
