package worker

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/retreathub/booking-service/internal/service"
)

// Sweeper runs the periodic jobs: payment escalation inside grace periods and
// waitlist offer expiry.
type Sweeper struct {
	paymentSvc  service.PaymentService
	waitlistSvc service.WaitlistService
	logger      *zap.Logger
	cron        *cron.Cron
}

func NewSweeper(paymentSvc service.PaymentService, waitlistSvc service.WaitlistService, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		paymentSvc:  paymentSvc,
		waitlistSvc: waitlistSvc,
		logger:      logger,
		cron:        cron.New(),
	}
}

// Start registers the jobs and launches the scheduler. Escalation runs hourly;
// offer expiry every ten minutes so expired offers move on quickly.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc("0 * * * *", s.runEscalation); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("*/10 * * * *", s.runOfferExpiry); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("sweeper started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("sweeper stopped")
}

func (s *Sweeper) runEscalation() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.paymentSvc.EscalateOverdue(ctx, time.Now())
}

func (s *Sweeper) runOfferExpiry() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()
	s.waitlistSvc.ExpireOffers(ctx, time.Now())
}
