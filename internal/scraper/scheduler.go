package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs the scraper on a fixed interval in the background.
type Scheduler struct {
	service *Service
	c       *cron.Cron
}

// NewScheduler builds a scheduler around the scraper service.
func NewScheduler(service *Service) *Scheduler {
	return &Scheduler{
		service: service,
		c:       cron.New(),
	}
}

// Start schedules periodic scrapes every interval. The first scrape runs
// on the schedule, not immediately; callers wanting an initial populate
// invoke ScrapeAndStore themselves.
func (s *Scheduler) Start(interval time.Duration) error {
	spec := fmt.Sprintf("@every %s", interval)
	_, err := s.c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := s.service.ScrapeAndStore(ctx); err != nil {
			log.Printf("scraper: scheduled run failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule scrape job: %w", err)
	}

	s.c.Start()
	log.Printf("scraper: scheduled every %s", interval)
	return nil
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.c.Stop()
	<-ctx.Done()
}
