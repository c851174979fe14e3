package cache

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	DefaultInitialDelay = time.Second
	DefaultMaxRetries   = 3
	DefaultRetryBackoff = 5 * time.Second
	DefaultWorkers      = 1
)

// Connectivity reports whether the network is usable for background work
type Connectivity func(ctx context.Context) bool

// Runner performs a single caching pass
type Runner interface {
	Run(ctx context.Context, job Job) (Result, error)
}

// SchedulerConfig controls when and how often jobs run
type SchedulerConfig struct {
	InitialDelay time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
	Workers      int
	Connectivity Connectivity
}

func (c SchedulerConfig) withDefaults() SchedulerConfig {
	if c.InitialDelay < 0 {
		c.InitialDelay = 0
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = DefaultRetryBackoff
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Connectivity == nil {
		c.Connectivity = func(context.Context) bool { return true }
	}
	return c
}

// Scheduler runs caching jobs in the background. Jobs wait InitialDelay
// before their first attempt and are retried with a linear backoff while
// the network is down or the pass fails, up to MaxRetries times.
type Scheduler struct {
	config SchedulerConfig
	runner Runner
	logger zerolog.Logger

	queue   *jobQueue
	wake    chan struct{}
	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped <-chan struct{}
	wg      sync.WaitGroup
	timers  sync.WaitGroup
}

// NewScheduler creates a scheduler; call Start before jobs can run
func NewScheduler(runner Runner, config SchedulerConfig, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		config: config.withDefaults(),
		runner: runner,
		logger: logger,
		queue:  newJobQueue(),
		wake:   make(chan struct{}, 1),
	}
}

// Start launches the workers. They stop when ctx is done or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}

	ctx, s.cancel = context.WithCancel(ctx)
	s.stopped = ctx.Done()
	for i := 0; i < s.config.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx)
	}
	s.logger.Debug().Int("workers", s.config.Workers).Msg("cache scheduler started")
}

// Stop cancels pending work and waits for running passes to return
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	s.timers.Wait()
	s.wg.Wait()
}

// Schedule queues a caching job for a book after the initial delay
func (s *Scheduler) Schedule(bookID, sourceID string) {
	s.Enqueue(Job{BookID: bookID, SourceID: sourceID})
}

// Enqueue queues a job after the initial delay
func (s *Scheduler) Enqueue(job Job) {
	s.after(s.config.InitialDelay, job)
}

// Pending returns the number of jobs waiting for a worker
func (s *Scheduler) Pending() int {
	return s.queue.Len()
}

func (s *Scheduler) after(delay time.Duration, job Job) {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		s.logger.Warn().Str("book_id", job.BookID).Msg("cache scheduler not running, dropping job")
		return
	}
	if delay <= 0 {
		s.mu.Unlock()
		s.push(job)
		return
	}
	s.timers.Add(1)
	stopped := s.stopped
	s.mu.Unlock()

	go func() {
		defer s.timers.Done()
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			s.push(job)
		case <-stopped:
		}
	}()
}

func (s *Scheduler) push(job Job) {
	if !s.queue.Enqueue(job) {
		s.logger.Debug().Str("book_id", job.BookID).Msg("cache job already queued")
		return
	}
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) worker(ctx context.Context) {
	defer s.wg.Done()
	for {
		job, ok := s.queue.DequeueNext()
		if !ok {
			select {
			case <-ctx.Done():
				return
			case <-s.wake:
				continue
			}
		}
		s.process(ctx, job)
		// Pass the wake-up on so idle workers see the remaining jobs.
		if s.queue.Len() > 0 {
			select {
			case s.wake <- struct{}{}:
			default:
			}
		}
	}
}

func (s *Scheduler) process(ctx context.Context, job Job) {
	log := s.logger.With().Str("book_id", job.BookID).Int("attempt", job.attempt+1).Logger()

	if !s.config.Connectivity(ctx) {
		log.Debug().Msg("offline, postponing cache job")
		s.retry(job)
		return
	}

	res, err := s.runner.Run(ctx, job)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("cache job failed")
		s.retry(job)
		return
	}
	log.Debug().Int("cached", res.Cached).Msg("cache job done")
}

func (s *Scheduler) retry(job Job) {
	if job.attempt >= s.config.MaxRetries {
		s.logger.Warn().Str("book_id", job.BookID).Msg("giving up on cache job")
		return
	}
	job.attempt++
	s.after(time.Duration(job.attempt)*s.config.RetryBackoff, job)
}
