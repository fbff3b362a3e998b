package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store"
)

// HousekeepingService periodically nulls out OTP codes past their validity
// window. Expiry is already enforced at verification time by the ledger
// query; this pass only keeps stale codes from lingering in the table.
// Attempt rows are retained for audit, never deleted.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	OTPTTL   time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 1 hour; a non-positive TTL defaults to DefaultOTPTTL.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval, otpTTL time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}
	if otpTTL <= 0 {
		otpTTL = DefaultOTPTTL
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		OTPTTL:   otpTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop to shut down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts down the worker and blocks until any in-progress cleanup ends.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx := context.Background()
	cutoff := time.Now().Add(-s.OTPTTL)

	if err := s.Store.LoginAttempts().ClearExpiredOTPCodes(ctx, cutoff); err != nil {
		s.Logger.Error("failed to clear expired OTP codes", "error", err)
		return
	}

	s.Logger.Debug("cleared expired OTP codes", "cutoff", cutoff)
}
