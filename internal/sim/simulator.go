package sim

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/oddlyprompt/ExitorDie/internal/content"
	"github.com/oddlyprompt/ExitorDie/internal/engine"
)

const (
	startingHP = 3
	maxGreed   = 10

	baseLootChance   = 0.15
	streakChestBonus = 0.3

	choiceContinue = "continue"
	choiceExit     = "exit"
	modifierPrefix = "modifier_"
)

// Simulate replays a run from its seed and room list against a content pack
// and returns the canonical outcome. It is referentially transparent: the
// same pack, seed and replay always produce the same outcome, which is what
// lets the server act as the sole arbiter of what happened during a run.
func Simulate(pack *content.Pack, seed string, log ReplayLog) (*Outcome, error) {
	rng, err := engine.NewFromSeed(seed)
	if err != nil {
		return nil, err
	}

	r := &run{
		pack:  pack,
		rng:   rng,
		hp:    startingHP,
		maxHP: startingHP,
		items: []Item{},
	}
	r.play(log.Rooms)
	return r.outcome(), nil
}

// run is the mutable state of one simulation. Created fresh per call and
// discarded once the outcome is built.
type run struct {
	pack *content.Pack
	rng  *engine.Rand

	hp             int
	maxHP          int
	greed          int
	depth          int
	roomsSinceLoot int
	safeRoomStreak int
	treasureValue  int
	items          []Item
}

func (r *run) play(rooms []Room) {
	for _, room := range rooms {
		// Depth is overwritten from the claim, never incremented.
		r.depth = room.Depth

		var choice string
		if room.Choice != nil {
			choice = *room.Choice
		}

		switch {
		case choice == choiceContinue:
			r.greed = min(maxGreed, r.greed+1)
			r.roomsSinceLoot++
			if r.rng.Next() < r.deathRisk() {
				return // died; the partially filled item list stands
			}
			if r.shouldGiveLoot() {
				r.items = append(r.items, r.generateLoot())
				r.roomsSinceLoot = 0
			}

		case choice == choiceExit:
			return // successful exit; later rooms are ignored

		case strings.HasPrefix(choice, modifierPrefix):
			if dead := r.applyModifier(choice); dead {
				return
			}

		default:
			// Unrecognized choices are no-ops; the run continues.
		}
	}
}

func (r *run) deathRisk() float64 {
	return r.pack.HazardCurve.At(r.depth, r.greed) / 100
}

// applyModifier handles a modifier_* room. Returns true when the run ends.
// The sub-effect is the second underscore-separated token of the choice.
func (r *run) applyModifier(choice string) bool {
	switch strings.Split(choice, "_")[1] {
	case "trap":
		r.hp = max(0, r.hp-1)
		if r.hp <= 0 {
			return true
		}
		r.roomsSinceLoot = max(0, r.roomsSinceLoot-1)
	case "shrine":
		if r.greed >= 2 {
			r.greed -= 2
			r.hp = min(r.maxHP, r.hp+1)
		}
	case "treasure":
		r.greed = min(maxGreed, r.greed+1)
		r.treasureValue += r.rng.NextInt(50, 150)
	}
	return false
}

// shouldGiveLoot consumes exactly one draw to decide grant vs no-grant.
// The streak-chest reset fires once the threshold is met regardless of
// whether the subsequent draw succeeds.
func (r *run) shouldGiveLoot() bool {
	chance := baseLootChance

	if r.roomsSinceLoot >= r.pack.Pity.NoDropStreak {
		chance *= r.pack.Pity.BonusNext/100 + 1
	}

	if float64(r.safeRoomStreak) >= r.pack.StreakChest.Interval {
		chance += streakChestBonus
		r.safeRoomStreak = 0
	}

	return r.rng.Next() < chance
}

func (r *run) generateLoot() Item {
	pityActive := r.roomsSinceLoot >= r.pack.Pity.NoDropStreak

	table := make([]engine.Weighted, 0, len(r.pack.RarityWeights))
	for _, rw := range r.pack.RarityWeights {
		w := rw.Weight
		if pityActive {
			if rw.Rarity == "Common" {
				w *= 0.5
			} else {
				w *= 1.2
			}
		}
		table = append(table, engine.Weighted{Item: rw.Rarity, Weight: w})
	}

	rarity := r.rng.WeightedChoice(table)
	value := int(float64(content.BaseValue(rarity)) * r.pack.ValueMultiplier(rarity))

	// The hash embeds the post-draw generator state, so it can only be
	// reproduced by an identical simulation up to this point.
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d:%s", r.pack.Version, r.depth, r.rng.State(), rarity)))
	hash := hex.EncodeToString(sum[:])[:16]

	return Item{
		Hash:    hash,
		Name:    rarity + " Artifact",
		Rarity:  rarity,
		Effects: []content.Effect{},
		Value:   value,
		Lore:    fmt.Sprintf("A %s artifact from depth %d.", strings.ToLower(rarity), r.depth),
	}
}

func (r *run) outcome() *Outcome {
	var total int
	for _, it := range r.items {
		total += it.Value
	}

	score := int(float64(total+r.treasureValue) * (1 + float64(r.greed)*0.1))

	return &Outcome{
		Score:         score,
		Depth:         r.depth,
		ArtifactCount: len(r.items),
		Items:         r.items,
		EndingHP:      r.hp,
	}
}
