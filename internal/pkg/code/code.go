package code

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
)

// NewVerificationCode returns a uniformly random 6-digit numeric code,
// zero-padded ("000000".."999999").
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

// NewHandoffCode returns a 32-character hex token (16 random bytes) used for
// the single-use web-to-mobile login hand-off.
func NewHandoffCode() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate handoff code: %w", err)
	}
	return hex.EncodeToString(b), nil
}
