package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/wonny/hotrank/pkg/logger"
)

// Scheduler runs jobs at a fixed interval. It holds no global state:
// every Start returns a Handle that owns that job's timer.
// ⭐ SSOT: 스케줄 관리는 이 스케줄러에서만
type Scheduler struct {
	logger  *logger.Logger
	history map[string]*JobHistory
	handles map[string]*Handle
	mu      sync.RWMutex

	// Retry configuration (off by default; a failed cycle waits for the next tick)
	maxRetries int
	retryDelay time.Duration
}

// New creates a new scheduler
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		logger:  log.Module("scheduler"),
		history: make(map[string]*JobHistory),
		handles: make(map[string]*Handle),
	}
}

// WithRetry retries failed runs within the same tick
func (s *Scheduler) WithRetry(maxRetries int, delay time.Duration) *Scheduler {
	s.maxRetries = maxRetries
	s.retryDelay = delay
	return s
}

// Handle controls one started job
type Handle struct {
	name     string
	interval time.Duration
	cron     *cron.Cron
	owner    *Scheduler

	inflight sync.WaitGroup // runs started outside the cron runner
	halted   bool           // guarded by owner.mu; no inflight.Add once set
	stopOnce sync.Once
	stopped  context.Context
}

// Start runs job once immediately, then every interval.
// Panics are recovered and overlapping runs are skipped.
func (s *Scheduler) Start(job Job, interval time.Duration) (*Handle, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("invalid interval %s for job %s", interval, job.Name())
	}

	name := job.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, running := s.handles[name]; running {
		return nil, fmt.Errorf("job %s already started", name)
	}

	cl := cronLogger{log: s.logger.WithField("job", name)}
	c := cron.New(
		cron.WithLogger(cl),
		// Recover must sit inside SkipIfStillRunning or a panic never returns the run token
		cron.WithChain(cron.SkipIfStillRunning(cl), cron.Recover(cl)),
	)

	id := c.Schedule(cron.Every(interval), cron.FuncJob(func() {
		s.runJob(job)
	}))

	h := &Handle{
		name:     name,
		interval: interval,
		cron:     c,
		owner:    s,
	}

	if _, exists := s.history[name]; !exists {
		s.history[name] = &JobHistory{}
	}
	s.handles[name] = h

	// the immediate run goes through the same chain so it cannot overlap the first tick
	wrapped := c.Entry(id).WrappedJob

	c.Start()
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		wrapped.Run()
	}()

	s.logger.WithFields(map[string]interface{}{
		"job":      name,
		"interval": interval.String(),
	}).Info("Job started")

	return h, nil
}

// Stop cancels future ticks. In-flight runs are not cancelled; the returned
// context is done once they finish. Safe to call more than once.
func (h *Handle) Stop() context.Context {
	h.stopOnce.Do(func() {
		h.owner.mu.Lock()
		h.halted = true
		delete(h.owner.handles, h.name)
		h.owner.mu.Unlock()

		cronDone := h.cron.Stop()
		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			<-cronDone.Done()
			h.inflight.Wait()
			cancel()
		}()
		h.stopped = ctx

		h.owner.logger.WithField("job", h.name).Info("Job stopped")
	})
	return h.stopped
}

// Name returns the job name
func (h *Handle) Name() string {
	return h.name
}

// Interval returns the tick interval
func (h *Handle) Interval() time.Duration {
	return h.interval
}

// Stats returns statistics for this job
func (h *Handle) Stats() JobStats {
	return h.owner.GetJobStats()[h.name]
}

// RunJob runs a started job immediately (outside of schedule), subject to the overlap guard
func (s *Scheduler) RunJob(jobName string) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	h, exists := s.handles[jobName]
	if !exists || h.halted {
		return fmt.Errorf("job %s not found", jobName)
	}

	entries := h.cron.Entries()
	if len(entries) == 0 {
		return fmt.Errorf("job %s has no schedule", jobName)
	}

	// Add happens under the owner lock, so it is ordered before Stop's Wait
	h.inflight.Add(1)
	go func() {
		defer h.inflight.Done()
		entries[0].WrappedJob.Run()
	}()
	return nil
}

// runJob executes a job with optional retry and records the result
func (s *Scheduler) runJob(job Job) {
	jobName := job.Name()
	startTime := time.Now()

	s.logger.WithField("job", jobName).Debug("Job started")

	var lastErr error
	var success, skipped bool

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		err := job.Run(context.Background())
		if err == nil {
			success = true
			break
		}

		lastErr = err
		if errors.Is(err, ErrSkipped) {
			skipped = true
			break
		}

		if attempt < s.maxRetries {
			s.logger.WithFields(map[string]interface{}{
				"job":     jobName,
				"attempt": attempt + 1,
				"error":   err.Error(),
			}).Warn("Job execution failed, retrying")
			time.Sleep(s.retryDelay)
		}
	}

	endTime := time.Now()
	duration := endTime.Sub(startTime)

	result := JobResult{
		JobName:   jobName,
		StartTime: startTime,
		EndTime:   endTime,
		Duration:  duration,
		Success:   success,
		Skipped:   skipped,
	}
	if !success && lastErr != nil {
		result.Error = lastErr.Error()
	}

	s.mu.Lock()
	if history, exists := s.history[jobName]; exists {
		history.AddResult(result)
	}
	s.mu.Unlock()

	fields := map[string]interface{}{
		"job":      jobName,
		"duration": duration,
	}
	switch {
	case success:
		s.logger.WithFields(fields).Debug("Job completed successfully")
	case skipped:
		s.logger.WithFields(fields).Info("Job run skipped")
	default:
		fields["error"] = lastErr.Error()
		s.logger.WithFields(fields).Error("Job failed")
	}
}

// GetJobHistory returns the latest results for a specific job
func (s *Scheduler) GetJobHistory(jobName string, n int) ([]JobResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, exists := s.history[jobName]
	if !exists {
		return nil, fmt.Errorf("job %s not found", jobName)
	}

	return history.GetLatestResults(n), nil
}

// GetJobStats returns statistics for all jobs
func (s *Scheduler) GetJobStats() map[string]JobStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := make(map[string]JobStats)

	for jobName, history := range s.history {
		var lastRun, lastSuccess, lastFailure *time.Time
		skippedCount := 0

		for i := range history.Results {
			r := history.Results[i]
			lastRun = &r.StartTime
			switch {
			case r.Success:
				lastSuccess = &r.StartTime
			case r.Skipped:
				skippedCount++
			default:
				lastFailure = &r.StartTime
			}
		}

		failed := len(history.GetFailedResults())
		var interval string
		if h, ok := s.handles[jobName]; ok {
			interval = h.interval.String()
		}

		stats[jobName] = JobStats{
			JobName:      jobName,
			Interval:     interval,
			TotalRuns:    len(history.Results),
			SuccessCount: len(history.Results) - failed - skippedCount,
			FailureCount: failed,
			SkippedCount: skippedCount,
			SuccessRate:  history.GetSuccessRate(),
			LastRun:      lastRun,
			LastSuccess:  lastSuccess,
			LastFailure:  lastFailure,
		}
	}

	return stats
}

// JobStats represents statistics for a job
type JobStats struct {
	JobName      string     `json:"job_name"`
	Interval     string     `json:"interval,omitempty"`
	TotalRuns    int        `json:"total_runs"`
	SuccessCount int        `json:"success_count"`
	FailureCount int        `json:"failure_count"`
	SkippedCount int        `json:"skipped_count"`
	SuccessRate  float64    `json:"success_rate"`
	LastRun      *time.Time `json:"last_run,omitempty"`
	LastSuccess  *time.Time `json:"last_success,omitempty"`
	LastFailure  *time.Time `json:"last_failure,omitempty"`
}

// cronLogger adapts logger.Logger to cron.Logger
type cronLogger struct {
	log *logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.log.WithFields(kvFields(keysAndValues)).Debug("cron: " + msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.log.WithError(err).WithFields(kvFields(keysAndValues)).Error("cron: " + msg)
}

func kvFields(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{}, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			key = fmt.Sprint(keysAndValues[i])
		}
		fields[key] = keysAndValues[i+1]
	}
	return fields
}
