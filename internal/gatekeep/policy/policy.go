// Package policy is the pure decision engine: classification + wall-clock
// time in, verdict out. No IO, no side effects, so the rule ordering can be
// pinned by tests in isolation from HTTP and storage concerns.
package policy

import (
	"time"

	"github.com/aussiebroadwan/gatekeep/internal/gatekeep/domain"
)

// Mobile clients may only log in between these local wall-clock hours,
// inclusive on both ends. Hour 13 is inside the window.
const (
	MobileWindowOpenHour  = 10
	MobileWindowCloseHour = 13
)

// Decide evaluates the ordered rule list and returns on the first match.
// A client can match both a software and a device rule at once, so the
// priority here is a behavioural contract, not an implementation detail:
//
//  1. Chrome always gets a step-up challenge.
//  2. Edge and Internet Explorer are exempt, regardless of device or time.
//  3. Other mobile clients are held to the access window.
//  4. Everything else is allowed.
func Decide(c domain.ClientClassification, now time.Time) domain.Verdict {
	if c.SoftwareFamily == domain.FamilyChrome {
		return domain.VerdictChallenge
	}

	if c.SoftwareFamily == domain.FamilyEdge || c.SoftwareFamily == domain.FamilyInternetExplorer {
		return domain.VerdictAllow
	}

	if c.DeviceClass == domain.DeviceMobile {
		hour := now.Hour()
		if hour >= MobileWindowOpenHour && hour <= MobileWindowCloseHour {
			return domain.VerdictAllow
		}
		return domain.VerdictDeny
	}

	return domain.VerdictAllow
}
