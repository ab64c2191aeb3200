package score

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/oddlyprompt/ExitorDie/internal/sim"
)

// canonicalRoom and canonicalLog mirror the replay wire shapes with struct
// fields in sorted-key order, so json.Marshal emits the canonical byte string
// (keys sorted, no extraneous whitespace) regardless of how the input was
// keyed. Nil slices are normalized to empty ones first; a digest must not
// depend on whether a client sent [] or omitted the field.
type canonicalRoom struct {
	Choice *string `json:"choice"`
	Depth  int     `json:"depth"`
	Type   string  `json:"type"`
}

type canonicalLog struct {
	Choices        []string        `json:"choices"`
	ContentVersion string          `json:"contentVersion"`
	Items          []string        `json:"items"`
	Rolls          int             `json:"rolls"`
	Rooms          []canonicalRoom `json:"rooms"`
	Seed           string          `json:"seed"`
}

// Digest returns the hex-encoded SHA-256 of the canonicalized replay log.
// It is the submission's idempotency key.
func Digest(log sim.ReplayLog) string {
	canon := canonicalLog{
		Choices:        log.Choices,
		ContentVersion: log.ContentVersion,
		Items:          log.Items,
		Rolls:          log.Rolls,
		Rooms:          make([]canonicalRoom, len(log.Rooms)),
		Seed:           log.Seed,
	}
	if canon.Choices == nil {
		canon.Choices = []string{}
	}
	if canon.Items == nil {
		canon.Items = []string{}
	}
	for i, room := range log.Rooms {
		canon.Rooms[i] = canonicalRoom{Choice: room.Choice, Depth: room.Depth, Type: room.Type}
	}

	// Marshal of a struct cannot fail here; every field is a plain type.
	data, _ := json.Marshal(canon)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
