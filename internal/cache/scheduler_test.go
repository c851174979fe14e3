package cache

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type recordingRunner struct {
	mu    sync.Mutex
	jobs  []Job
	fails int32
	calls int32
	done  chan Job
}

func newRecordingRunner(fails int32) *recordingRunner {
	return &recordingRunner{fails: fails, done: make(chan Job, 16)}
}

func (r *recordingRunner) Run(ctx context.Context, job Job) (Result, error) {
	n := atomic.AddInt32(&r.calls, 1)
	if n <= r.fails {
		return Result{}, errors.New("temporary failure")
	}
	r.mu.Lock()
	r.jobs = append(r.jobs, job)
	r.mu.Unlock()
	r.done <- job
	return Result{Cached: 1}, nil
}

func waitJob(t *testing.T, r *recordingRunner) Job {
	t.Helper()
	select {
	case job := <-r.done:
		return job
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for job")
	}
	return Job{}
}

func TestScheduler_RunsScheduledJob(t *testing.T) {
	runner := newRecordingRunner(0)
	s := NewScheduler(runner, SchedulerConfig{InitialDelay: 10 * time.Millisecond}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	s.Schedule("online_00000001", "site")

	job := waitJob(t, runner)
	if job.BookID != "online_00000001" || job.SourceID != "site" {
		t.Errorf("Unexpected job %+v", job)
	}
}

func TestScheduler_Retries(t *testing.T) {
	runner := newRecordingRunner(2)
	s := NewScheduler(runner, SchedulerConfig{
		MaxRetries:   3,
		RetryBackoff: 5 * time.Millisecond,
	}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	s.Enqueue(Job{BookID: "online_00000002"})
	waitJob(t, runner)

	if calls := atomic.LoadInt32(&runner.calls); calls != 3 {
		t.Errorf("Expected 3 attempts, got %d", calls)
	}
}

func TestScheduler_GivesUp(t *testing.T) {
	runner := newRecordingRunner(100)
	s := NewScheduler(runner, SchedulerConfig{
		MaxRetries:   1,
		RetryBackoff: 5 * time.Millisecond,
	}, zerolog.Nop())
	s.Start(context.Background())

	s.Enqueue(Job{BookID: "online_00000003"})
	time.Sleep(100 * time.Millisecond)
	s.Stop()

	if calls := atomic.LoadInt32(&runner.calls); calls != 2 {
		t.Errorf("Expected 2 attempts, got %d", calls)
	}
}

func TestScheduler_WaitsForConnectivity(t *testing.T) {
	var online atomic.Bool
	runner := newRecordingRunner(0)
	s := NewScheduler(runner, SchedulerConfig{
		MaxRetries:   10,
		RetryBackoff: 5 * time.Millisecond,
		Connectivity: func(context.Context) bool { return online.Load() },
	}, zerolog.Nop())
	s.Start(context.Background())
	defer s.Stop()

	s.Enqueue(Job{BookID: "online_00000004"})
	time.Sleep(20 * time.Millisecond)
	if calls := atomic.LoadInt32(&runner.calls); calls != 0 {
		t.Fatalf("Expected no runs while offline, got %d", calls)
	}

	online.Store(true)
	waitJob(t, runner)
}

func TestScheduler_NotStarted(t *testing.T) {
	runner := newRecordingRunner(0)
	s := NewScheduler(runner, SchedulerConfig{}, zerolog.Nop())

	s.Schedule("online_00000005", "site")
	if s.Pending() != 0 {
		t.Errorf("Expected jobs to be dropped before Start, got %d pending", s.Pending())
	}
	s.Stop()
}

func TestJobQueue_Dedupe(t *testing.T) {
	q := newJobQueue()
	if !q.Enqueue(Job{BookID: "a"}) {
		t.Fatal("Expected first job to be queued")
	}
	if q.Enqueue(Job{BookID: "a", SourceID: "other"}) {
		t.Error("Expected duplicate book to be rejected")
	}
	q.Enqueue(Job{BookID: "b"})

	if q.Len() != 2 {
		t.Fatalf("Expected 2 jobs, got %d", q.Len())
	}
	first, _ := q.DequeueNext()
	if first.BookID != "a" {
		t.Errorf("Expected FIFO order, got %q first", first.BookID)
	}
	if !q.Enqueue(Job{BookID: "a"}) {
		t.Error("Expected book to be queueable again once dequeued")
	}
	q.DequeueNext()
	q.DequeueNext()
	if _, ok := q.DequeueNext(); ok {
		t.Error("Expected empty queue")
	}
}
