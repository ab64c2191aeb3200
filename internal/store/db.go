package store

import (
	"context"
	"errors"
	"time"

	"github.com/oddlyprompt/ExitorDie/internal/content"
)

// Sentinel errors returned by DB implementations. The duplicate errors are
// produced by atomic insert-if-absent operations, never by a separate
// check-then-insert sequence, so concurrent submissions cannot both win.
var (
	ErrNotFound        = errors.New("record not found")
	ErrNoActivePack    = errors.New("no active content pack")
	ErrDuplicateDigest = errors.New("replay digest already stored")
	ErrDuplicateItem   = errors.New("item hash already minted")
)

// DB is the storage boundary of the validation core. All sharing between
// concurrent submissions happens here.
type DB interface {
	Close() error
	Migrate() error

	// GetActiveContentPack returns the single active pack, or ErrNoActivePack.
	GetActiveContentPack(ctx context.Context) (*content.Pack, error)
	// EnsureDefaultContentPack installs pack as active only if no pack is
	// active yet. First write wins; concurrent callers all observe one pack.
	EnsureDefaultContentPack(ctx context.Context, pack *content.Pack) error
	// ReplaceContentPack deactivates every stored pack and inserts pack as
	// the new active one (append-only history).
	ReplaceContentPack(ctx context.Context, pack *content.Pack) error

	// FindScoreByDigest returns the score carrying the digest, or ErrNotFound.
	FindScoreByDigest(ctx context.Context, digest string) (*Score, error)
	// InsertScoreWithItems persists a validated score and mints its
	// one-of-a-kind items in a single transaction. Returns
	// ErrDuplicateDigest or ErrDuplicateItem (and persists nothing) when a
	// uniqueness constraint is violated.
	InsertScoreWithItems(ctx context.Context, score *Score, items []Item) error
	// FindItemByHash returns a minted item, or ErrNotFound.
	FindItemByHash(ctx context.Context, hash string) (*Item, error)
	// CountScoresGreaterThan counts stored scores in the same daily scope
	// strictly greater than value.
	CountScoresGreaterThan(ctx context.Context, daily bool, day string, value int) (int, error)
	// ListScores returns a leaderboard page ordered by score descending.
	ListScores(ctx context.Context, q ScoresQuery) (*ScoresPage, error)
}

// Score is one accepted submission. Created once, never mutated or deleted.
type Score struct {
	ID           string    `json:"id"`
	Seed         string    `json:"seed"`
	Version      string    `json:"version"`
	Daily        bool      `json:"daily"`
	Day          string    `json:"day,omitempty"`
	Score        int       `json:"score"`
	Depth        int       `json:"depth"`
	DurationS    int       `json:"duration_s"`
	Artifacts    []string  `json:"artifacts"`
	ReplayDigest string    `json:"replay_digest"`
	CreatedAt    time.Time `json:"created_at"`
}

// Item is a minted one-of-a-kind item. At most one row per hash ever exists.
type Item struct {
	Hash     string           `json:"hash"`
	Name     string           `json:"name"`
	Rarity   string           `json:"rarity"`
	Set      *string          `json:"set,omitempty"`
	Effects  []content.Effect `json:"effects"`
	Lore     string           `json:"lore"`
	MintedAt time.Time        `json:"minted_at"`
}

// ScoresQuery selects a leaderboard page.
type ScoresQuery struct {
	Daily  bool
	Day    string // required when Daily is set
	Limit  int
	Offset int
}

// ScoresPage is one page of leaderboard rows plus the unpaged total.
type ScoresPage struct {
	Rows  []LeaderboardRow `json:"rows"`
	Total int              `json:"total"`
}

// LeaderboardRow is the public projection of a score.
type LeaderboardRow struct {
	Score     int       `json:"score"`
	Depth     int       `json:"depth"`
	Artifacts int       `json:"artifacts"`
	Day       string    `json:"day,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
