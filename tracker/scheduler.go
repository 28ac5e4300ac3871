package tracker

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"price-scout/scraper"
	"price-scout/utils"
)

// Scheduler wraps robfig/cron and triggers Tracker.Rescan on a schedule.
// The tracker records one sample per calendar day per item, so the default
// schedule is @daily.
type Scheduler struct {
	cron    *cron.Cron
	tracker *Tracker
	sources map[string]scraper.Source
	spec    string
	logger  *utils.Logger
}

// NewScheduler creates a Scheduler with a cron spec such as "@daily" or
// "@every 12h".
func NewScheduler(t *Tracker, sources map[string]scraper.Source, spec string, logger *utils.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		tracker: t,
		sources: sources,
		spec:    spec,
		logger:  logger,
	}
}

// Start registers the job and starts the scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runRescan(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	s.logger.Info("[scheduler] Re-scan cron started — spec: %s", s.spec)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("[scheduler] Re-scan cron stopped")
}

func (s *Scheduler) runRescan(ctx context.Context) {
	s.logger.Info("[scheduler] Daily price re-scan started")
	updated := s.tracker.Rescan(ctx, s.sources)
	s.logger.Info("[scheduler] Re-scan complete — %d items updated", updated)
}
