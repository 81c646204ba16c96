// Package scheduler runs periodic maintenance jobs such as backups.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of scheduled work.
type Job interface {
	Run(ctx context.Context) error
	Name() string
}

// Status is the outcome of a job's latest run.
type Status struct {
	Job      string    `json:"job"`
	Schedule string    `json:"schedule"`
	LastRun  time.Time `json:"last_run,omitempty"`
	LastErr  string    `json:"last_error,omitempty"`
	Next     time.Time `json:"next_run,omitempty"`
}

// Scheduler manages background jobs. Schedules accept five or six fields
// (seconds optional) and descriptors such as "@daily" or "@every 1h".
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	status map[string]*Status
	ids    map[string]cron.EntryID
}

var parser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func New(log zerolog.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithParser(parser)),
		log:    log.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
		status: map[string]*Status{},
		ids:    map[string]cron.EntryID{},
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop cancels running jobs and waits for them to return.
func (s *Scheduler) Stop() {
	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under a cron schedule.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	id, err := s.cron.AddFunc(schedule, func() {
		_ = s.run(job)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.status[job.Name()] = &Status{Job: job.Name(), Schedule: schedule}
	s.ids[job.Name()] = id
	s.mu.Unlock()

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// RunNow executes a job immediately (outside schedule)
func (s *Scheduler) RunNow(job Job) error {
	s.log.Info().Str("job", job.Name()).Msg("Running job immediately")
	return s.run(job)
}

func (s *Scheduler) run(job Job) error {
	s.log.Debug().Str("job", job.Name()).Msg("Running job")
	started := time.Now()
	err := job.Run(s.ctx)
	if err != nil {
		s.log.Error().Err(err).Str("job", job.Name()).Msg("Job failed")
	} else {
		s.log.Debug().Str("job", job.Name()).Dur("took", time.Since(started)).Msg("Job completed")
	}

	s.mu.Lock()
	st, ok := s.status[job.Name()]
	if !ok {
		st = &Status{Job: job.Name()}
		s.status[job.Name()] = st
	}
	st.LastRun = started
	st.LastErr = ""
	if err != nil {
		st.LastErr = err.Error()
	}
	s.mu.Unlock()
	return err
}

// Statuses reports every job seen so far, with its next planned run.
func (s *Scheduler) Statuses() []Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Status, 0, len(s.status))
	for name, st := range s.status {
		cp := *st
		if id, ok := s.ids[name]; ok {
			cp.Next = s.cron.Entry(id).Next
		}
		out = append(out, cp)
	}
	return out
}
