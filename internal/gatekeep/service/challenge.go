package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/notify"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store"
	"github.com/aussiebroadwan/gatekeep/pkg/cryptox"
)

// ErrNotificationFailed reports that a challenge code was persisted but
// could not be delivered. The code stays live in the ledger; callers must
// surface the failure rather than swallow it.
var ErrNotificationFailed = errors.New("notification delivery failed")

// ChallengeService generates OTP codes for challenged login attempts and
// hands them to the notification collaborator.
type ChallengeService struct {
	Store       store.Store
	Notifier    notify.Notifier
	Destination string // side-channel address codes are delivered to

	// Now is the injectable wall clock; nil means time.Now.
	Now func() time.Time
}

func (s *ChallengeService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// IssueChallenge attaches a fresh six-digit code to the attempt and triggers
// delivery. The code is persisted before the delivery call so a transport
// failure can never leave a code in the side channel with no record of it.
func (s *ChallengeService) IssueChallenge(ctx context.Context, attempt domain.LoginAttempt) error {
	code, err := cryptox.GenerateOTPCode()
	if err != nil {
		return fmt.Errorf("failed to generate OTP code: %w", err)
	}

	if err := s.Store.LoginAttempts().AttachOTP(ctx, attempt.ID, code, s.now()); err != nil {
		return fmt.Errorf("failed to record OTP code: %w", err)
	}

	if err := s.Notifier.SendOTP(ctx, s.Destination, code); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return nil
}
