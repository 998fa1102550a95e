// Package totpx wraps time-based one-time-password validation for the login
// second factor. PIN shape checks are separated from code verification so a
// malformed submission never reaches TOTP derivation.
package totpx

import (
	"errors"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

const (
	// Period is the TOTP time step in seconds. Must match whatever the
	// secret-provisioning side assumes.
	Period = 30

	// PINLength is the required number of digits in a submitted code.
	PINLength = 6

	// SecretLength is the required length of a stored shared secret.
	SecretLength = 32
)

// ErrMalformedPIN reports a submitted code that is not exactly six decimal
// digits after trimming surrounding whitespace.
var ErrMalformedPIN = errors.New("totpx: pin must be exactly 6 digits")

// NormalizePIN trims surrounding whitespace and validates the submitted PIN
// shape. It returns the cleaned PIN or ErrMalformedPIN.
func NormalizePIN(pin string) (string, error) {
	pin = strings.TrimSpace(pin)
	if len(pin) != PINLength {
		return "", ErrMalformedPIN
	}
	for i := 0; i < len(pin); i++ {
		if pin[i] < '0' || pin[i] > '9' {
			return "", ErrMalformedPIN
		}
	}
	return pin, nil
}

// Verify reports whether pin is the valid code for secret at the given time.
// skew is the number of time steps accepted either side of the current one;
// zero means only the exact current step is valid. The pin must already be
// shape-validated via NormalizePIN.
//
// A secret that cannot be decoded simply fails verification. Secrets are
// format-checked at registration, not base32-validated, so garbage in means
// no code will ever match.
func Verify(secret, pin string, at time.Time, skew uint) bool {
	ok, err := totp.ValidateCustom(pin, secret, at, totp.ValidateOpts{
		Period:    Period,
		Skew:      skew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	if err != nil {
		return false
	}
	return ok
}

// GenerateSecret provisions a new shared secret for an account and returns it
// in base32 form, sized to SecretLength. Used when seeding accounts; normal
// registration accepts a caller-provided secret.
func GenerateSecret(issuer, account string) (string, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      Period,
		SecretSize:  20, // 20 raw bytes encode to 32 base32 chars
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
	})
	if err != nil {
		return "", err
	}
	return key.Secret(), nil
}
