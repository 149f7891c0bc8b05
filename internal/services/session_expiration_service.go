package services

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// SessionExpirationService sweeps abandoned and terminal checkout
// sessions out of the store on a fixed schedule
type SessionExpirationService struct {
	store  *SessionStore
	ttl    time.Duration
	cron   *cron.Cron
	logger *logrus.Logger
}

// NewSessionExpirationService creates the sweeper
func NewSessionExpirationService(store *SessionStore, ttl time.Duration, logger *logrus.Logger) *SessionExpirationService {
	return &SessionExpirationService{
		store:  store,
		ttl:    ttl,
		cron:   cron.New(cron.WithSeconds()),
		logger: logger,
	}
}

// Start schedules the sweep to run at the top of every minute
func (s *SessionExpirationService) Start() error {
	_, err := s.cron.AddFunc("0 * * * * *", s.RunOnce)
	if err != nil {
		return err
	}
	s.cron.Start()

	s.logger.Info("Session expiration sweeper started")
	return nil
}

// Stop halts the schedule. Running sweeps finish.
func (s *SessionExpirationService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Session expiration sweeper stopped")
}

// RunOnce performs a single sweep
func (s *SessionExpirationService) RunOnce() {
	removed := s.store.Sweep(s.ttl, time.Now())
	if removed > 0 {
		s.logger.WithFields(logrus.Fields{
			"removed":   removed,
			"remaining": s.store.Count(),
		}).Info("Expired checkout sessions removed")
	}
}
