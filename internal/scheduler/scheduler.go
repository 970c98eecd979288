// Package scheduler drives the automated reminder cycle on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pursuepayments/invoicechase/config"
	"github.com/pursuepayments/invoicechase/pkg/dto"
	"github.com/robfig/cron/v3"
)

// Dispatcher runs one automated reminder pass.
type Dispatcher interface {
	RunCycle(ctx context.Context, grace time.Duration) dto.CycleResult
}

// Scheduler fires the dispatch cycle on the configured cron spec. Cycles
// never overlap: if a tick arrives while the previous cycle is still
// running, that tick is skipped.
type Scheduler struct {
	cron     *cron.Cron
	dispatch Dispatcher
	cfg      config.SchedulerConfig
	logger   *slog.Logger

	ctx     context.Context
	running sync.Mutex
}

// New creates a Scheduler. UTC is deliberate: the reminder cursors are
// hour-truncated UTC timestamps, so the tick grid has to match.
func New(cfg config.SchedulerConfig, dispatch Dispatcher, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(time.UTC)),
		dispatch: dispatch,
		cfg:      cfg,
		logger:   logger,
	}
}

// Start registers the cron entry and begins ticking. The given context is
// passed to every cycle; cancel it before Stop to abort an in-flight cycle.
func (s *Scheduler) Start(ctx context.Context) error {
	s.ctx = ctx
	if _, err := s.cron.AddFunc(s.cfg.CronSpec, s.tick); err != nil {
		return fmt.Errorf("add dispatch entry: %w", err)
	}
	s.cron.Start()
	s.logger.Info("Scheduler started",
		"cron", s.cfg.CronSpec, "grace_minutes", s.cfg.GraceMinutes)
	return nil
}

// Stop halts the cron loop and waits for a running cycle to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.running.Lock()
	s.running.Unlock()
	s.logger.Info("Scheduler stopped")
}

func (s *Scheduler) tick() {
	if !s.running.TryLock() {
		s.logger.Warn("Previous dispatch cycle still running, skipping tick")
		return
	}
	defer s.running.Unlock()

	grace := time.Duration(s.cfg.GraceMinutes) * time.Minute
	started := time.Now()
	result := s.dispatch.RunCycle(s.ctx, grace)

	sent := 0
	for _, r := range result.Results {
		if r.Success {
			sent++
		}
	}
	s.logger.Info("Dispatch cycle finished",
		"candidates", len(result.Results),
		"sent", sent,
		"elapsed", time.Since(started),
		"ok", result.Success)
}
