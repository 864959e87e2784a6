package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Q872/base-sniper-monitor/monitor/internal/alerts"
	"github.com/Q872/base-sniper-monitor/monitor/internal/engine"
	"github.com/Q872/base-sniper-monitor/shared/logger"
)

// Scheduler drives the monitoring cycle and cooldown housekeeping on cron
// schedules. Overlapping cycle runs are skipped, not queued.
type Scheduler struct {
	Cron     *cron.Cron
	Orch     *engine.Orchestrator
	Cooldown *alerts.Cooldown
	Ctx      context.Context
	log      *logger.Logger
}

func NewScheduler(ctx context.Context, orch *engine.Orchestrator, cooldown *alerts.Cooldown, log *logger.Logger) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		Orch:     orch,
		Cooldown: cooldown,
		Ctx:      ctx,
		log:      log,
	}
}

// RegisterAll registers the polling cycle and the hourly cooldown sweep.
func (s *Scheduler) RegisterAll(pollCron string) error {
	if _, err := s.Cron.AddFunc(pollCron, s.cycleTask); err != nil {
		return fmt.Errorf("register poll task: %w", err)
	}
	if _, err := s.Cron.AddFunc("@every 1h", s.sweepTask); err != nil {
		return fmt.Errorf("register cooldown sweep: %w", err)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.Cron.Start()
	s.log.Info("Scheduler started")
}

// Stop stops scheduling new runs and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.Cron.Stop()
	select {
	case <-ctx.Done():
	case <-time.After(30 * time.Second):
		s.log.Warn("Timed out waiting for running jobs during shutdown")
	}
	s.log.Info("Scheduler stopped")
}

// RunCycleNow executes a monitoring cycle immediately (manual trigger or
// RUN_ON_START).
func (s *Scheduler) RunCycleNow() engine.CycleSummary {
	return s.Orch.RunCycle(s.Ctx)
}

func (s *Scheduler) cycleTask() {
	s.Orch.RunCycle(s.Ctx)
}

func (s *Scheduler) sweepTask() {
	removed := s.Cooldown.Sweep(time.Now())
	if removed > 0 {
		s.log.Debug("Cooldown entries swept", zap.Int("removed", removed), zap.Int("remaining", s.Cooldown.Len()))
	}
}
