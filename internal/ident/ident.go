package ident

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	mrand "math/rand"

	"github.com/google/uuid"
)

// NewID returns a collision-resistant UUID-v4-shaped identifier. It never
// fails: if the platform UUID primitive is unavailable it assembles the
// layout from crypto/rand bytes, and if even that source errors it falls
// back to a pseudo-random fill. Entity creation must not block on an
// unavailable randomness primitive.
func NewID() string {
	if id, err := uuid.NewRandom(); err == nil {
		return id.String()
	}
	var b [16]byte
	if _, err := crand.Read(b[:]); err == nil {
		return formatV4(b)
	}
	binary.BigEndian.PutUint64(b[:8], mrand.Uint64())
	binary.BigEndian.PutUint64(b[8:], mrand.Uint64())
	return formatV4(b)
}

// formatV4 forces the version nibble to 4 and the variant bits to 10 before
// rendering the canonical textual layout.
func formatV4(b [16]byte) string {
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

// IsRemoteID reports whether id is syntactically acceptable to the remote
// store's uuid columns. Legacy locally generated non-UUID ids fail this and
// short-circuit callers straight to the local path.
func IsRemoteID(id string) bool {
	if len(id) != 36 {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
