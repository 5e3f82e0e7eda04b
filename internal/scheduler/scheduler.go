package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"ComputeStats/internal/model"
	"ComputeStats/internal/pipeline"
)

// DefaultDailyCron runs at midnight every day (seconds field first).
const DefaultDailyCron = "0 0 0 * * *"

// Runner is the job the scheduler drives.
type Runner interface {
	Run(ctx context.Context, today model.Date) (*pipeline.Result, error)
}

// Scheduler triggers daily runs. Runs never overlap within one process.
type Scheduler struct {
	Cron *cron.Cron
	Ctx  context.Context

	runMu  sync.Mutex // held for the duration of a run; guards runner
	runner Runner
	now    func() time.Time
}

// NewScheduler creates a new Scheduler.
func NewScheduler(ctx context.Context, runner Runner) *Scheduler {
	return &Scheduler{
		Cron:   cron.New(cron.WithSeconds()),
		Ctx:    ctx,
		runner: runner,
		now:    time.Now,
	}
}

// Register adds the daily job.
func (s *Scheduler) Register(dailyCron string) error {
	if dailyCron == "" {
		dailyCron = DefaultDailyCron
	}
	if _, err := s.Cron.AddFunc(dailyCron, s.dailyTask); err != nil {
		return fmt.Errorf("register daily task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Int("jobs", len(s.Cron.Entries())).Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	s.runMu.Lock()
	s.runMu.Unlock()
	log.Info().Msg("scheduler stopped")
}

// SetRunner swaps the runner used by subsequent runs, e.g. after a config
// reload. It waits for an in-flight run, so the old runner is idle on return.
func (s *Scheduler) SetRunner(r Runner) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	s.runner = r
}

// RunNow executes the daily job immediately (for run_on_start or a manual trigger).
func (s *Scheduler) RunNow() (*pipeline.Result, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	today := model.DateOf(s.now())
	return s.runner.Run(s.Ctx, today)
}

func (s *Scheduler) dailyTask() {
	log.Info().Msg("running daily task")
	res, err := s.RunNow()
	if err != nil {
		log.Error().Err(err).Msg("daily run failed")
		return
	}
	log.Info().Int("reporting", res.Reporting).Bool("appended", res.Appended).Msg("daily run finished")
}
