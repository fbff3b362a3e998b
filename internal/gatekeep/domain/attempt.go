package domain

import "time"

// Verdict is the policy engine's decision for a login request.
type Verdict string

const (
	VerdictAllow     Verdict = "allow"
	VerdictChallenge Verdict = "challenge"
	VerdictDeny      Verdict = "deny"
)

// LoginAttempt is the persisted audit record of a single login request.
// One row is written for every request regardless of verdict. OTPCode is
// non-nil only while a challenge is outstanding; consumption or housekeeping
// clears it, the row itself is never deleted.
type LoginAttempt struct {
	ID             string // ULID
	RawIdentity    string // raw client identity string as received
	Classification ClientClassification
	SourceAddress  string
	Verdict        Verdict
	OTPCode        *string
	OTPIssuedAt    *time.Time
	OTPConsumedAt  *time.Time
	CreatedAt      time.Time
}

// LoginResult is what the orchestrator hands back to the HTTP layer.
type LoginResult struct {
	AttemptID   string
	Verdict     Verdict
	OTPRequired bool
	Message     string
}
