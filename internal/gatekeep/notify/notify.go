// Package notify delivers one-time passcodes to a side channel. The core
// does not care about the transport; it only sees this interface.
package notify

import "context"

// Notifier sends a freshly issued OTP code to a destination address.
// Implementations are expected to enforce their own delivery timeouts.
type Notifier interface {
	SendOTP(ctx context.Context, destination, code string) error
}
