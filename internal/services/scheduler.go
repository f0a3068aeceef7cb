package services

import (
	"context"
	"time"

	"github.com/robfig/cron"

	"github.com/hybridlms/backend/internal/logger"
)

// Scheduler drives the auto-refresh loop. It wakes hourly and triggers a
// batch regeneration when auto refresh is enabled; staleness filtering
// inside RegenerateAll keeps fresh users untouched between intervals.
type Scheduler struct {
	log             *logger.Logger
	recommendations RecommendationService
	cron            *cron.Cron
}

func NewScheduler(log *logger.Logger, recommendations RecommendationService) *Scheduler {
	return &Scheduler{
		log:             log.With("service", "Scheduler"),
		recommendations: recommendations,
		cron:            cron.New(),
	}
}

func (s *Scheduler) Start() error {
	if err := s.cron.AddFunc("@every 1h", s.tick); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Info("auto-refresh scheduler started")
	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.log.Info("auto-refresh scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	settings, err := s.recommendations.GetSettings(ctx)
	if err != nil {
		s.log.Error("failed to load settings for auto refresh", "error", err)
		return
	}
	if !settings.AutoRefreshEnabled {
		return
	}
	summary, err := s.recommendations.RegenerateAll(ctx, false)
	if err != nil {
		s.log.Error("auto refresh run failed", "error", err)
		return
	}
	s.log.Info("auto refresh run finished",
		"generated", summary.Generated, "skipped", summary.Skipped, "failed", summary.Failed)
}
