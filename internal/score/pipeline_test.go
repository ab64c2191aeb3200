package score

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oddlyprompt/ExitorDie/internal/content"
	"github.com/oddlyprompt/ExitorDie/internal/sim"
	"github.com/oddlyprompt/ExitorDie/internal/store"
)

// fakeDB is an in-memory store.DB for pipeline tests. Single-goroutine use
// only; race behavior is exercised through the injected insert error.
type fakeDB struct {
	pack      *content.Pack
	scores    map[string]*store.Score
	items     map[string]*store.Item
	insertErr error
}

func newFakeDB(pack *content.Pack) *fakeDB {
	return &fakeDB{
		pack:   pack,
		scores: make(map[string]*store.Score),
		items:  make(map[string]*store.Item),
	}
}

func (f *fakeDB) Close() error   { return nil }
func (f *fakeDB) Migrate() error { return nil }

func (f *fakeDB) GetActiveContentPack(ctx context.Context) (*content.Pack, error) {
	if f.pack == nil {
		return nil, store.ErrNoActivePack
	}
	return f.pack, nil
}

func (f *fakeDB) EnsureDefaultContentPack(ctx context.Context, pack *content.Pack) error {
	if f.pack == nil {
		f.pack = pack
	}
	return nil
}

func (f *fakeDB) ReplaceContentPack(ctx context.Context, pack *content.Pack) error {
	f.pack = pack
	return nil
}

func (f *fakeDB) FindScoreByDigest(ctx context.Context, digest string) (*store.Score, error) {
	if sc, ok := f.scores[digest]; ok {
		return sc, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeDB) InsertScoreWithItems(ctx context.Context, sc *store.Score, items []store.Item) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.scores[sc.ReplayDigest]; ok {
		return store.ErrDuplicateDigest
	}
	for _, item := range items {
		if _, ok := f.items[item.Hash]; ok {
			return store.ErrDuplicateItem
		}
	}
	f.scores[sc.ReplayDigest] = sc
	for i := range items {
		f.items[items[i].Hash] = &items[i]
	}
	return nil
}

func (f *fakeDB) FindItemByHash(ctx context.Context, hash string) (*store.Item, error) {
	if item, ok := f.items[hash]; ok {
		return item, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeDB) CountScoresGreaterThan(ctx context.Context, daily bool, day string, value int) (int, error) {
	count := 0
	for _, sc := range f.scores {
		if sc.Daily == daily && (day == "" || sc.Day == day) && sc.Score > value {
			count++
		}
	}
	return count, nil
}

func (f *fakeDB) ListScores(ctx context.Context, q store.ScoresQuery) (*store.ScoresPage, error) {
	return &store.ScoresPage{Rows: []store.LeaderboardRow{}, Total: len(f.scores)}, nil
}

// testPack is the default pack with the hazard curve zeroed so the replay in
// the tests (seed a1b2c3d4e5f60718, ten continues) finishes and drops exactly
// one Common with hash 929afa05e3918913 at depth 9.
func testPack() *content.Pack {
	pack := content.Default()
	pack.HazardCurve = content.Curve{}
	return pack
}

func testSubmission() Submission {
	rooms := make([]sim.Room, 10)
	for i := range rooms {
		c := "continue"
		rooms[i] = sim.Room{Depth: i + 1, Type: "room", Choice: &c}
	}
	return Submission{
		Seed:    "a1b2c3d4e5f60718",
		Version: "1.0.0",
		ReplayLog: sim.ReplayLog{
			Seed:           "a1b2c3d4e5f60718",
			ContentVersion: "1.0.0",
			Rooms:          rooms,
			Rolls:          20,
		},
		Items: []SubmittedItem{{Hash: "929afa05e3918913", Rarity: "Common", Value: 50}},
	}
}

func wantRejection(t *testing.T, err error, kind Kind) *Rejection {
	t.Helper()
	var rej *Rejection
	if !errors.As(err, &rej) {
		t.Fatalf("err = %v, want a rejection of kind %s", err, kind)
	}
	if rej.Kind != kind {
		t.Fatalf("rejection kind = %s, want %s", rej.Kind, kind)
	}
	return rej
}

func TestValidateAndScoreAccepts(t *testing.T) {
	db := newFakeDB(testPack())
	p := NewPipeline(db)

	res, err := p.ValidateAndScore(context.Background(), testSubmission())
	if err != nil {
		t.Fatalf("ValidateAndScore: %v", err)
	}

	if res.Score != 100 || res.Depth != 10 || res.ArtifactCount != 1 {
		t.Errorf("result = %+v, want score 100, depth 10, 1 artifact", res)
	}
	if res.Placement != 1 {
		t.Errorf("placement = %d, want 1", res.Placement)
	}
	if len(db.scores) != 1 {
		t.Errorf("stored %d scores, want 1", len(db.scores))
	}
	// Common drops are not minted; only the one-of-a-kind tier is.
	if len(db.items) != 0 {
		t.Errorf("minted %d items, want 0", len(db.items))
	}
}

func TestDuplicateSubmission(t *testing.T) {
	db := newFakeDB(testPack())
	p := NewPipeline(db)

	if _, err := p.ValidateAndScore(context.Background(), testSubmission()); err != nil {
		t.Fatalf("first submission: %v", err)
	}
	_, err := p.ValidateAndScore(context.Background(), testSubmission())
	wantRejection(t, err, KindDuplicateSubmission)
}

// A concurrent duplicate that slips past the advisory read is still rejected
// by the atomic insert.
func TestDuplicateSubmissionRace(t *testing.T) {
	db := newFakeDB(testPack())
	db.insertErr = store.ErrDuplicateDigest
	p := NewPipeline(db)

	_, err := p.ValidateAndScore(context.Background(), testSubmission())
	wantRejection(t, err, KindDuplicateSubmission)
}

func TestVersionGate(t *testing.T) {
	db := newFakeDB(testPack())
	p := NewPipeline(db)

	sub := testSubmission()
	sub.Version = "0.9.9"
	_, err := p.ValidateAndScore(context.Background(), sub)
	wantRejection(t, err, KindVersionMismatch)
}

func TestInvalidSeed(t *testing.T) {
	db := newFakeDB(testPack())
	p := NewPipeline(db)

	sub := testSubmission()
	sub.Seed = "not-hex"
	_, err := p.ValidateAndScore(context.Background(), sub)
	wantRejection(t, err, KindInvalidSeed)
}

func TestItemCountMismatch(t *testing.T) {
	db := newFakeDB(testPack())
	p := NewPipeline(db)

	sub := testSubmission()
	sub.Items = nil
	_, err := p.ValidateAndScore(context.Background(), sub)
	wantRejection(t, err, KindItemCountMismatch)
}

func TestItemValidationFailed(t *testing.T) {
	db := newFakeDB(testPack())
	p := NewPipeline(db)

	sub := testSubmission()
	sub.Items[0].Hash = "0000000000000000"
	_, err := p.ValidateAndScore(context.Background(), sub)
	rej := wantRejection(t, err, KindItemValidationFailed)
	if rej.Index != 0 {
		t.Errorf("index = %d, want 0", rej.Index)
	}

	sub = testSubmission()
	sub.Items[0].Rarity = "Legendary"
	_, err = p.ValidateAndScore(context.Background(), sub)
	wantRejection(t, err, KindItemValidationFailed)
}

// oneOfOneSubmission drops exactly one 1/1 (hash 276fe485948f4716) by making
// it the only configured rarity.
func oneOfOnePack() *content.Pack {
	pack := testPack()
	pack.RarityWeights = content.RarityWeights{{Rarity: content.RarityOneOfAKind, Weight: 100}}
	return pack
}

func oneOfOneSubmission(rolls int) Submission {
	sub := testSubmission()
	sub.ReplayLog.Rolls = rolls // telemetry only; changes the digest, not the run
	sub.Items = []SubmittedItem{{Hash: "276fe485948f4716", Rarity: content.RarityOneOfAKind, Value: 180000}}
	return sub
}

func TestOneOfAKindMintAndUniqueness(t *testing.T) {
	db := newFakeDB(oneOfOnePack())
	p := NewPipeline(db)

	res, err := p.ValidateAndScore(context.Background(), oneOfOneSubmission(20))
	if err != nil {
		t.Fatalf("first submission: %v", err)
	}
	if res.Score != 360000 {
		t.Errorf("score = %d, want 360000", res.Score)
	}
	minted, err := db.FindItemByHash(context.Background(), "276fe485948f4716")
	if err != nil {
		t.Fatalf("minted item missing: %v", err)
	}
	if minted.Rarity != content.RarityOneOfAKind {
		t.Errorf("minted rarity = %q", minted.Rarity)
	}

	// A second run with different telemetry digests differently but mints
	// the same 1/1 hash; it must be rejected with the offending hash.
	_, err = p.ValidateAndScore(context.Background(), oneOfOneSubmission(21))
	rej := wantRejection(t, err, KindUniquenessViolation)
	if rej.Hash != "276fe485948f4716" {
		t.Errorf("rejection hash = %q", rej.Hash)
	}
}

func TestOneOfAKindMintRace(t *testing.T) {
	db := newFakeDB(oneOfOnePack())
	db.insertErr = store.ErrDuplicateItem
	p := NewPipeline(db)

	_, err := p.ValidateAndScore(context.Background(), oneOfOneSubmission(20))
	wantRejection(t, err, KindUniquenessViolation)
}

func TestDefaultPackSynthesis(t *testing.T) {
	db := newFakeDB(nil)

	pack, err := ActivePack(context.Background(), db)
	if err != nil {
		t.Fatalf("ActivePack: %v", err)
	}
	if pack.Version != "1.0.0" || !pack.Active {
		t.Errorf("synthesized pack = %+v", pack)
	}
	if db.pack == nil {
		t.Error("default pack was not persisted")
	}
}

func TestDailyPlacement(t *testing.T) {
	db := newFakeDB(testPack())
	day := DayBucket(time.Now())

	// Two stored daily scores above 100 and one below; placement is 3.
	db.scores["d1"] = &store.Score{Daily: true, Day: day, Score: 500, ReplayDigest: "d1"}
	db.scores["d2"] = &store.Score{Daily: true, Day: day, Score: 200, ReplayDigest: "d2"}
	db.scores["d3"] = &store.Score{Daily: true, Day: day, Score: 50, ReplayDigest: "d3"}

	p := NewPipeline(db)
	sub := testSubmission()
	sub.Daily = true

	res, err := p.ValidateAndScore(context.Background(), sub)
	if err != nil {
		t.Fatalf("ValidateAndScore: %v", err)
	}
	if res.Placement != 3 {
		t.Errorf("placement = %d, want 3", res.Placement)
	}

	stored, err := db.FindScoreByDigest(context.Background(), Digest(sub.ReplayLog))
	if err != nil {
		t.Fatalf("stored score missing: %v", err)
	}
	if !stored.Daily || stored.Day != day {
		t.Errorf("stored daily/day = %v/%q, want true/%q", stored.Daily, stored.Day, day)
	}
}
