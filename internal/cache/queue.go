package cache

import (
	"sync"
)

// Job asks for the first chapters of an online book to be cached
type Job struct {
	BookID   string
	SourceID string
	attempt  int
}

// jobQueue is a FIFO of pending jobs holding at most one job per book
type jobQueue struct {
	jobs    []Job
	pending map[string]bool
	mu      sync.Mutex
}

func newJobQueue() *jobQueue {
	return &jobQueue{
		jobs:    make([]Job, 0),
		pending: make(map[string]bool),
	}
}

// Enqueue adds a job unless one for the same book is already waiting.
// It reports whether the job was added.
func (q *jobQueue) Enqueue(job Job) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.pending[job.BookID] {
		return false
	}
	q.pending[job.BookID] = true
	q.jobs = append(q.jobs, job)
	return true
}

// DequeueNext returns the oldest job, or false if the queue is empty
func (q *jobQueue) DequeueNext() (Job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.jobs) == 0 {
		return Job{}, false
	}
	job := q.jobs[0]
	q.jobs = q.jobs[1:]
	delete(q.pending, job.BookID)
	return job, true
}

// Len returns the number of waiting jobs
func (q *jobQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.jobs)
}
