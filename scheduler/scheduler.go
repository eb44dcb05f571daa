// Package scheduler runs periodic background jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// JobFunc is the work a job performs on every tick
type JobFunc func(ctx context.Context) error

// Job is a named periodic task
type Job struct {
	Name     string
	Interval time.Duration
	Run      JobFunc
}

type runningJob struct {
	job    Job
	ticker *time.Ticker
	cancel context.CancelFunc
}

// Scheduler runs jobs on their own tickers
type Scheduler struct {
	jobs   map[string]*runningJob
	mu     sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	log    *zap.Logger
}

// NewScheduler initializes a new Scheduler instance
func NewScheduler(log *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		jobs:   make(map[string]*runningJob),
		ctx:    ctx,
		cancel: cancel,
		log:    log,
	}
}

// Add schedules job. The job runs once immediately and then on every tick.
// A job with the same name is replaced.
func (s *Scheduler) Add(job Job) error {
	if job.Interval <= 0 {
		return fmt.Errorf("job %s: interval must be positive", job.Name)
	}
	if s.ctx.Err() != nil {
		return fmt.Errorf("job %s: scheduler stopped", job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.jobs[job.Name]; ok {
		existing.ticker.Stop()
		existing.cancel()
	}

	jobCtx, jobCancel := context.WithCancel(s.ctx)
	running := &runningJob{
		job:    job,
		ticker: time.NewTicker(job.Interval),
		cancel: jobCancel,
	}
	s.jobs[job.Name] = running

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.execute(jobCtx, job)
		s.loop(jobCtx, running)
	}()

	s.log.Info("scheduled job", zap.String("job", job.Name), zap.Duration("interval", job.Interval))
	return nil
}

// Remove stops a job by name
func (s *Scheduler) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if job, ok := s.jobs[name]; ok {
		job.ticker.Stop()
		job.cancel()
		delete(s.jobs, name)
	}
}

// Jobs returns the names of the scheduled jobs
func (s *Scheduler) Jobs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// Stop cancels every job and waits for running executions to return
func (s *Scheduler) Stop() {
	s.log.Info("stopping scheduler")
	s.cancel()

	s.mu.Lock()
	for _, job := range s.jobs {
		job.ticker.Stop()
		job.cancel()
	}
	s.jobs = make(map[string]*runningJob)
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context, running *runningJob) {
	defer running.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-running.ticker.C:
			s.execute(ctx, running.job)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, job Job) {
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("job panicked", zap.String("job", job.Name), zap.Any("panic", r))
		}
	}()

	if err := job.Run(ctx); err != nil {
		s.log.Error("job failed", zap.String("job", job.Name), zap.Error(err))
		return
	}
	s.log.Debug("job finished", zap.String("job", job.Name), zap.Duration("took", time.Since(start)))
}
