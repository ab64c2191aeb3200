package score

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oddlyprompt/ExitorDie/internal/content"
	"github.com/oddlyprompt/ExitorDie/internal/engine"
	"github.com/oddlyprompt/ExitorDie/internal/sim"
	"github.com/oddlyprompt/ExitorDie/internal/store"
)

// SubmittedItem is a client claim about one collected item. Only hash and
// rarity are cross-checked against the simulation; value and lore are
// recomputed server-side and the claimed ones never reach storage.
type SubmittedItem struct {
	Hash    string           `json:"hash"`
	Name    string           `json:"name"`
	Rarity  string           `json:"rarity"`
	Set     *string          `json:"set"`
	Effects []content.Effect `json:"effects"`
	Value   int              `json:"value"`
	Lore    string           `json:"lore"`
}

// Submission is one complete score submission.
type Submission struct {
	Seed      string          `json:"seed"`
	Version   string          `json:"version"`
	Daily     bool            `json:"daily"`
	ReplayLog sim.ReplayLog   `json:"replayLog"`
	Items     []SubmittedItem `json:"items"`
}

// Result is the accepted-submission response: always the simulated numbers,
// never the client's.
type Result struct {
	Score         int `json:"score"`
	Placement     int `json:"placement"`
	Depth         int `json:"depth"`
	ArtifactCount int `json:"artifacts"`
}

// Pipeline validates submissions against server-side re-simulation and
// persists the authoritative outcome. It holds no state besides its
// collaborators; construct one at process start and share it freely.
type Pipeline struct {
	db  store.DB
	now func() time.Time
}

// NewPipeline creates a validation pipeline over the given store.
func NewPipeline(db store.DB) *Pipeline {
	return &Pipeline{db: db, now: time.Now}
}

// ActivePack fetches the active content pack, synthesizing and persisting the
// built-in default on first access. The conditional insert in the store keeps
// concurrent first accesses from seeding two packs.
func ActivePack(ctx context.Context, db store.DB) (*content.Pack, error) {
	pack, err := db.GetActiveContentPack(ctx)
	if err == nil {
		return pack, nil
	}
	if !errors.Is(err, store.ErrNoActivePack) {
		return nil, err
	}

	if err := db.EnsureDefaultContentPack(ctx, content.Default()); err != nil {
		return nil, fmt.Errorf("seed default pack: %w", err)
	}
	return db.GetActiveContentPack(ctx)
}

// ValidateAndScore re-derives the run outcome from the submission's seed and
// replay log and accepts or rejects the claim. Rejections are *Rejection
// values; any other error is an internal fault the caller should surface
// opaquely.
func (p *Pipeline) ValidateAndScore(ctx context.Context, sub Submission) (*Result, error) {
	pack, err := ActivePack(ctx, p.db)
	if err != nil {
		return nil, fmt.Errorf("fetch active pack: %w", err)
	}

	if sub.Version != pack.Version {
		return nil, reject(KindVersionMismatch)
	}

	// Early, cheap rejections. These reads are advisory only: the inserts
	// below re-check both conditions atomically, so a race loser is still
	// rejected rather than persisted twice.
	digest := Digest(sub.ReplayLog)
	if _, err := p.db.FindScoreByDigest(ctx, digest); err == nil {
		return nil, reject(KindDuplicateSubmission)
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("check digest: %w", err)
	}

	for _, claimed := range sub.Items {
		if claimed.Rarity != content.RarityOneOfAKind {
			continue
		}
		if _, err := p.db.FindItemByHash(ctx, claimed.Hash); err == nil {
			return nil, &Rejection{Kind: KindUniquenessViolation, Hash: claimed.Hash}
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("check item uniqueness: %w", err)
		}
	}

	outcome, err := sim.Simulate(pack, sub.Seed, sub.ReplayLog)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidSeed) {
			return nil, reject(KindInvalidSeed)
		}
		return nil, fmt.Errorf("simulate run: %w", err)
	}

	if len(sub.Items) != len(outcome.Items) {
		return nil, reject(KindItemCountMismatch)
	}
	for i, claimed := range sub.Items {
		simulated := outcome.Items[i]
		if claimed.Hash != simulated.Hash || claimed.Rarity != simulated.Rarity {
			return nil, &Rejection{Kind: KindItemValidationFailed, Index: i}
		}
	}

	now := p.now().UTC()
	var day string
	if sub.Daily {
		day = DayBucket(now)
	}

	hashes := make([]string, len(outcome.Items))
	for i, item := range outcome.Items {
		hashes[i] = item.Hash
	}

	record := &store.Score{
		Seed:         sub.Seed,
		Version:      sub.Version,
		Daily:        sub.Daily,
		Day:          day,
		Score:        outcome.Score,
		Depth:        outcome.Depth,
		Artifacts:    hashes,
		ReplayDigest: digest,
		CreatedAt:    now,
	}

	var mints []store.Item
	for _, item := range outcome.Items {
		if item.Rarity != content.RarityOneOfAKind {
			continue
		}
		mints = append(mints, store.Item{
			Hash:     item.Hash,
			Name:     item.Name,
			Rarity:   item.Rarity,
			Set:      item.Set,
			Effects:  item.Effects,
			Lore:     item.Lore,
			MintedAt: now,
		})
	}

	if err := p.db.InsertScoreWithItems(ctx, record, mints); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateDigest):
			return nil, reject(KindDuplicateSubmission)
		case errors.Is(err, store.ErrDuplicateItem):
			// A concurrent submission minted the same one-of-a-kind item
			// first; this one loses post-hoc.
			return nil, reject(KindUniquenessViolation)
		default:
			return nil, fmt.Errorf("persist score: %w", err)
		}
	}

	greater, err := p.db.CountScoresGreaterThan(ctx, sub.Daily, day, outcome.Score)
	if err != nil {
		return nil, fmt.Errorf("compute placement: %w", err)
	}

	return &Result{
		Score:         outcome.Score,
		Placement:     greater + 1,
		Depth:         outcome.Depth,
		ArtifactCount: outcome.ArtifactCount,
	}, nil
}
