package scheduler

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/keyhaven/keyhaven-api/invitations"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the periodic invitation maintenance jobs. The read paths
// already treat stale invitations as expired; the sweep keeps the stored
// statuses and the audit trail caught up.
type Scheduler struct {
	cron       *cron.Cron
	Service    *invitations.Service
	instanceID string
}

// NewScheduler creates a new scheduler instance
func NewScheduler(service *invitations.Service) *Scheduler {
	instanceID := os.Getenv("DYNO") // Heroku sets this to "web.1", "web.2", etc.
	if instanceID == "" {
		instanceID = fmt.Sprintf("instance-%d", time.Now().UnixNano())
	}

	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		Service:    service,
		instanceID: instanceID,
	}
}

// Start begins the scheduler with all registered jobs
func (s *Scheduler) Start() {
	// Sweep expired invitations hourly. Each row transition is conditional,
	// so overlapping runs across instances are harmless.
	_, err := s.cron.AddFunc("@hourly", s.expireInvitations)
	if err != nil {
		zap.S().Errorw("failed to register invitation expiry job", "error", err)
	}

	s.cron.Start()
	zap.S().Info("Invitation scheduler started")
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	zap.S().Info("Invitation scheduler stopped")
}

func (s *Scheduler) expireInvitations() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	zap.S().Infow("Running invitation expiry job", "instance", s.instanceID)

	expired, err := s.Service.ExpireStale(ctx)
	if err != nil {
		zap.S().Errorw("invitation expiry job failed", "error", err)
		return
	}

	zap.S().Infow("Invitation expiry job complete",
		"expired", expired,
		"instance", s.instanceID,
	)
}
