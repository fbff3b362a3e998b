// Package cryptox holds the small crypto helpers the service needs. Today
// that is only one-time passcode generation.
package cryptox

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// One-time passcodes are drawn uniformly from [OTPCodeMin, OTPCodeMax], so a
// code is always exactly six digits and never carries a leading zero.
const (
	OTPCodeMin = 100000
	OTPCodeMax = 999999

	OTPCodeLength = 6
)

// GenerateOTPCode creates a cryptographically secure random six-digit code.
// Returns an error only if the random number generator fails.
func GenerateOTPCode() (string, error) {
	span := big.NewInt(OTPCodeMax - OTPCodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate OTP code: %w", err)
	}

	return fmt.Sprintf("%d", n.Int64()+OTPCodeMin), nil
}

// MustGenerateOTPCode is like GenerateOTPCode but panics on error. Use only
// in contexts where failure is unrecoverable (tests, init).
func MustGenerateOTPCode() string {
	code, err := GenerateOTPCode()
	if err != nil {
		panic(fmt.Sprintf("cryptox: failed to generate OTP code: %v", err))
	}
	return code
}
