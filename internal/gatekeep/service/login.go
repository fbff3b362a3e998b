package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/classify"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/policy"
	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/store"
	"github.com/aussiebroadwan/gatekeep/pkg/cryptox"
	"github.com/aussiebroadwan/gatekeep/pkg/idx"
)

var (
	// ErrMalformedCode reports a submitted code that fails the shape check.
	// Raised before the ledger is ever consulted.
	ErrMalformedCode = errors.New("malformed OTP code")

	// ErrCodeInvalidOrExpired covers unknown, expired and already consumed
	// codes alike, so a caller learns nothing about whether the code ever
	// existed.
	ErrCodeInvalidOrExpired = errors.New("invalid or expired OTP code")
)

// DefaultOTPTTL is how long an issued code stays verifiable.
const DefaultOTPTTL = 15 * time.Minute

// User-facing messages on the wire contract.
const (
	MsgLoginSuccessful = "Login successful"
	MsgOTPSent         = "OTP sent to your email"
	MsgAccessDenied    = "Access to the website is restricted to 10 AM to 1 PM on mobile devices"
)

// LoginService orchestrates a login request: classify, record, decide, and
// issue a challenge when the policy asks for one. It also owns the verify
// path that consumes submitted codes.
type LoginService struct {
	Store      store.Store
	Challenges *ChallengeService
	OTPTTL     time.Duration // zero means DefaultOTPTTL

	// Now is the injectable wall clock; nil means time.Now.
	Now func() time.Time
}

func (s *LoginService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *LoginService) ttl() time.Duration {
	if s.OTPTTL > 0 {
		return s.OTPTTL
	}
	return DefaultOTPTTL
}

// HandleLogin runs the decision pipeline for one login request. The attempt
// is recorded whatever the verdict, forming the audit trail; only a
// persistence failure leaves no record (and issues no challenge).
func (s *LoginService) HandleLogin(ctx context.Context, rawIdentity, sourceAddress string) (domain.LoginResult, error) {
	now := s.now()

	c := classify.Classify(rawIdentity)
	verdict := policy.Decide(c, now)

	attempt := domain.LoginAttempt{
		ID:             idx.New().String(),
		RawIdentity:    rawIdentity,
		Classification: c,
		SourceAddress:  sourceAddress,
		Verdict:        verdict,
		CreatedAt:      now,
	}

	if err := s.Store.LoginAttempts().CreateAttempt(ctx, attempt); err != nil {
		return domain.LoginResult{}, fmt.Errorf("failed to record login attempt: %w", err)
	}

	result := domain.LoginResult{
		AttemptID: attempt.ID,
		Verdict:   verdict,
	}

	switch verdict {
	case domain.VerdictChallenge:
		if err := s.Challenges.IssueChallenge(ctx, attempt); err != nil {
			return domain.LoginResult{}, err
		}
		result.OTPRequired = true
		result.Message = MsgOTPSent

	case domain.VerdictDeny:
		result.Message = MsgAccessDenied

	default:
		result.Message = MsgLoginSuccessful
	}

	return result, nil
}

// VerifyOTP consumes a submitted code. The shape check runs before any
// store access; the consume itself is a single atomic conditional update in
// the driver, so exactly one of any concurrent callers can win a given code.
func (s *LoginService) VerifyOTP(ctx context.Context, code string) (string, error) {
	if len(code) != cryptox.OTPCodeLength {
		return "", ErrMalformedCode
	}

	now := s.now()
	attemptID, err := s.Store.LoginAttempts().ConsumeOTP(ctx, code, now.Add(-s.ttl()), now)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", ErrCodeInvalidOrExpired
		}
		return "", fmt.Errorf("failed to consume OTP code: %w", err)
	}

	return attemptID, nil
}

// RecentAttempts exposes the audit trail, newest first.
func (s *LoginService) RecentAttempts(ctx context.Context, limit int) ([]domain.LoginAttempt, error) {
	return s.Store.LoginAttempts().ListRecentAttempts(ctx, limit)
}
