// Package fingerprint computes content-addressed document digests.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"

	"authstamp/internal/domain"
)

var fingerprintPattern = regexp.MustCompile(`^[0-9a-f]{64}$`)

// Hasher produces SHA-256 fingerprints of raw document bytes. The digest
// domain is the byte content only; name and media type never contribute.
type Hasher struct{}

func New() Hasher {
	return Hasher{}
}

func (Hasher) Hash(data []byte) domain.Fingerprint {
	sum := sha256.Sum256(data)
	return domain.Fingerprint(hex.EncodeToString(sum[:]))
}

// Valid reports whether s is a well-formed fingerprint.
func Valid(s domain.Fingerprint) bool {
	return fingerprintPattern.MatchString(string(s))
}
