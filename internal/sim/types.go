package sim

import "github.com/oddlyprompt/ExitorDie/internal/content"

// Room is one entry of a client replay log. Depth is the client's claimed
// depth and is written into simulator state verbatim; it is not derived from
// a counter, so nothing here constrains monotonicity (a known validation gap
// of the run format).
type Room struct {
	Depth  int     `json:"depth"`
	Type   string  `json:"type"`
	Choice *string `json:"choice"`
}

// ReplayLog is the client-produced record of a run. Rooms drive the
// simulation; Choices, Rolls and Items are client telemetry carried through
// the wire format and the digest but not cross-checked against the
// simulator's own draws.
type ReplayLog struct {
	Seed           string   `json:"seed"`
	ContentVersion string   `json:"contentVersion"`
	Rooms          []Room   `json:"rooms"`
	Choices        []string `json:"choices"`
	Rolls          int      `json:"rolls"`
	Items          []string `json:"items"`
}

// Item is a loot drop produced by the simulator. A simulated item is ground
// truth; a client-submitted item with the same shape is only a claim.
type Item struct {
	Hash    string           `json:"hash"`
	Name    string           `json:"name"`
	Rarity  string           `json:"rarity"`
	Set     *string          `json:"set,omitempty"`
	Effects []content.Effect `json:"effects"`
	Value   int              `json:"value"`
	Lore    string           `json:"lore"`
}

// Outcome is the canonical result of a simulated run. Only the outcome is
// persisted; intermediate state is discarded.
type Outcome struct {
	Score         int    `json:"score"`
	Depth         int    `json:"depth"`
	ArtifactCount int    `json:"artifacts"`
	Items         []Item `json:"items"`
	EndingHP      int    `json:"hp"`
}
