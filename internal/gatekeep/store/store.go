package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
)

var ErrNotFound = errors.New("store: not found")

// Store is the root data access interface. Concrete drivers (sqlite today)
// implement this. The login attempt ledger is the only shared mutable state
// in the service, so it is the only repository here.
type Store interface {
	LoginAttempts() LoginAttempts

	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

type LoginAttempts interface {
	// CreateAttempt inserts a new login attempt record (id is provided by
	// the caller via ULID). Every request is recorded, whatever the verdict.
	CreateAttempt(ctx context.Context, a domain.LoginAttempt) error

	// GetAttemptByID returns an attempt by id, or ErrNotFound.
	GetAttemptByID(ctx context.Context, id string) (domain.LoginAttempt, error)

	// AttachOTP sets the attempt's outstanding code and issuance time,
	// superseding any previous code on the same attempt. ErrNotFound if the
	// attempt does not exist.
	AttachOTP(ctx context.Context, attemptID, code string, issuedAt time.Time) error

	// ConsumeOTP finds the most recently created attempt holding code whose
	// issuance time is after notBefore, clears the code and stamps the
	// consumption time, all in one atomic conditional update. Concurrent
	// calls with the same code therefore race safely: exactly one wins.
	// Returns the consumed attempt's id, or ErrNotFound when no live match
	// exists (unknown, expired or already consumed all look the same).
	ConsumeOTP(ctx context.Context, code string, notBefore, consumedAt time.Time) (string, error)

	// ListRecentAttempts returns up to limit attempts, newest first.
	ListRecentAttempts(ctx context.Context, limit int) ([]domain.LoginAttempt, error)

	// ClearExpiredOTPCodes makes codes issued at or before cutoff
	// unmatchable by nulling them out. Rows are retained for audit.
	ClearExpiredOTPCodes(ctx context.Context, cutoff time.Time) error
}
