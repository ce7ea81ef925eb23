package auth

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

const (
	totpPeriod          = 30 // TOTP codes are valid for 30-second windows
	minSecondsRemaining = 5  // Minimum seconds remaining before we wait for next window
)

// TOTPWindowRemaining returns how long the current TOTP window has left.
func TOTPWindowRemaining(now time.Time) time.Duration {
	into := now.Unix() % totpPeriod
	return time.Duration(totpPeriod-into) * time.Second
}

// GenerateTOTP generates a TOTP code from a base32 secret for the chat
// site's two-factor prompt. If the current window is about to roll over,
// it waits for a fresh one so the code survives submission.
func GenerateTOTP(secret string) (string, error) {
	remaining := TOTPWindowRemaining(time.Now())
	if remaining < minSecondsRemaining*time.Second {
		time.Sleep(remaining + time.Second)
	}

	// Secrets are often displayed with spaces for readability.
	cleanSecret := strings.ReplaceAll(strings.ToUpper(secret), " ", "")

	code, err := totp.GenerateCode(cleanSecret, time.Now())
	if err != nil {
		return "", fmt.Errorf("failed to generate TOTP code: %w", err)
	}
	return code, nil
}
