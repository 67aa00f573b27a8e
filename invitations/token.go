package invitations

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// Invite codes skip 0/O, 1/I/L and vowels that form words; the code is typed by
// hand from an SMS or over the phone.
const (
	codeCharset = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength  = 8
	tokenBytes  = 32
)

// NewInviteToken returns a 64-character hex token with 256 bits of entropy,
// used as the bearer secret in invitation links.
func NewInviteToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewInviteCode returns a short human-enterable code. Uniqueness against active
// invitations is the caller's job; the service collision-checks and retries.
func NewInviteCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate invite code: %w", err)
	}
	for i := range b {
		b[i] = codeCharset[int(b[i])%len(codeCharset)]
	}
	return string(b), nil
}
