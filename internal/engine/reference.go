package engine

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// referenceBytes controls the entropy of a booking reference: 4 random bytes
// render as 8 hex characters, short enough to read over the phone. Collisions
// are possible at this length and are absorbed by the coordinator's retry
// around CreateBooking.
const referenceBytes = 4

// NewReference generates a human-shareable booking code of the form
// MOT-4F21A9C3. The underlying crypto/rand read makes codes unguessable.
func NewReference() (string, error) {
	b := make([]byte, referenceBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "MOT-" + strings.ToUpper(hex.EncodeToString(b)), nil
}
