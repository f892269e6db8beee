package calendar

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"

	"github.com/famtime/backend/internal/notify"
)

// RefreshScheduler periodically re-enumerates events so that changes in
// external feeds reach subscribers without a user action.
type RefreshScheduler struct {
	cron     *cron.Cron
	service  *Service
	notifier *notify.Notifier
	spec     string
}

// NewRefreshScheduler creates a scheduler that refreshes on the given
// cron-style spec (e.g. "*/15 * * * *").
func NewRefreshScheduler(service *Service, notifier *notify.Notifier, spec string) *RefreshScheduler {
	if spec == "" {
		spec = "*/15 * * * *"
	}
	return &RefreshScheduler{
		cron:     cron.New(),
		service:  service,
		notifier: notifier,
		spec:     spec,
	}
}

// Start registers the refresh job and begins the schedule.
func (s *RefreshScheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, s.refresh)
	if err != nil {
		return err
	}
	s.cron.Start()
	log.Printf("Refresh scheduler started (spec: %s)", s.spec)
	return nil
}

// Stop shuts the scheduler down, waiting for a running job to finish.
func (s *RefreshScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Println("Refresh scheduler stopped")
}

func (s *RefreshScheduler) refresh() {
	listing := s.service.GetEvents(context.Background())
	if listing.Degraded {
		log.Printf("Scheduled refresh degraded: %s", listing.Reason)
	} else {
		log.Printf("Scheduled refresh completed (%d events)", len(listing.Events))
	}

	// Tell subscribers to reload; the refresh itself carries no data.
	s.notifier.Notify()
}
