package content

import (
	"fmt"
	"time"
)

// RarityOneOfAKind is the one-of-a-kind tier: at most one item with a given
// hash may ever be minted system-wide.
const RarityOneOfAKind = "1/1"

// Curve is a linear probability ramp, expressed in percent and capped.
type Curve struct {
	Base     float64 `json:"base" yaml:"base"`
	PerDepth float64 `json:"per_depth" yaml:"per_depth"`
	PerGreed float64 `json:"per_greed" yaml:"per_greed"`
	Cap      float64 `json:"cap" yaml:"cap"`
}

// At evaluates the curve for a depth/greed pair. The result is a percentage.
func (c Curve) At(depth, greed int) float64 {
	v := c.Base + float64(depth)*c.PerDepth + float64(greed)*c.PerGreed
	if v > c.Cap {
		return c.Cap
	}
	return v
}

// Pity boosts loot chance after a streak of rooms without a drop.
type Pity struct {
	NoDropStreak int     `json:"no_drop_streak" yaml:"no_drop_streak"`
	BonusNext    float64 `json:"bonus_next" yaml:"bonus_next"` // percent added to the base chance multiplier
}

// StreakChest grants a flat loot-chance bonus after a streak of safe rooms.
type StreakChest struct {
	Interval              float64 `json:"interval" yaml:"interval"`
	RarityBoostMultiplier float64 `json:"rarity_boost_multiplier" yaml:"rarity_boost_multiplier"`
}

// Effect is a single artifact effect (id plus magnitude).
type Effect struct {
	ID string  `json:"id" yaml:"id"`
	V  float64 `json:"v" yaml:"v"`
}

// Artifact is static flavor/effect metadata from the catalog. The simulator's
// math never consumes it; it rides along for clients.
type Artifact struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name" yaml:"name"`
	Rarity  string   `json:"rarity" yaml:"rarity"`
	Effects []Effect `json:"effects" yaml:"effects"`
	Lore    string   `json:"lore" yaml:"lore"`
}

// Set groups artifacts into a set with a completion bonus.
type Set struct {
	ID     string   `json:"id" yaml:"id"`
	Name   string   `json:"name" yaml:"name"`
	Pieces []string `json:"pieces" yaml:"pieces"`
	Bonus  []Effect `json:"bonus" yaml:"bonus"`
}

// Pack is an immutable, versioned bundle of tunables handed to the simulator.
// Exactly one pack is active at a time; administrative updates append a new
// active pack and deactivate the rest. A Pack must never be mutated during a
// simulation.
type Pack struct {
	Version          string             `json:"version" yaml:"version"`
	Active           bool               `json:"active" yaml:"active"`
	RarityWeights    RarityWeights      `json:"rarity_weights" yaml:"rarity_weights"`
	HazardCurve      Curve              `json:"hazard_curve" yaml:"hazard_curve"`
	ExitCurve        Curve              `json:"exit_curve" yaml:"exit_curve"`
	Pity             Pity               `json:"pity" yaml:"pity"`
	StreakChest      StreakChest        `json:"streak_chest" yaml:"streak_chest"`
	Artifacts        []Artifact         `json:"artifacts" yaml:"artifacts"`
	Sets             []Set              `json:"sets" yaml:"sets"`
	ValueMultipliers map[string]float64 `json:"value_multipliers" yaml:"value_multipliers"`
	CreatedAt        time.Time          `json:"created_at" yaml:"created_at"`
}

// Validate checks the pack for shape errors before it is persisted or used.
func (p *Pack) Validate() error {
	if p.Version == "" {
		return fmt.Errorf("pack version must not be empty")
	}
	if len(p.RarityWeights) == 0 {
		return fmt.Errorf("pack must configure at least one rarity weight")
	}
	for _, rw := range p.RarityWeights {
		if rw.Rarity == "" {
			return fmt.Errorf("rarity name must not be empty")
		}
		if rw.Weight < 0 {
			return fmt.Errorf("rarity %q has negative weight %v", rw.Rarity, rw.Weight)
		}
	}
	for rarity, mult := range p.ValueMultipliers {
		if mult < 0 {
			return fmt.Errorf("rarity %q has negative value multiplier %v", rarity, mult)
		}
	}
	for _, c := range []struct {
		name  string
		curve Curve
	}{{"hazard_curve", p.HazardCurve}, {"exit_curve", p.ExitCurve}} {
		if c.curve.Cap < 0 {
			return fmt.Errorf("%s cap must not be negative", c.name)
		}
	}
	if p.Pity.NoDropStreak < 0 || p.Pity.BonusNext < 0 {
		return fmt.Errorf("pity configuration must not be negative")
	}
	if p.StreakChest.Interval < 0 {
		return fmt.Errorf("streak chest interval must not be negative")
	}
	return nil
}

// ValueMultiplier returns the configured multiplier for a rarity, defaulting
// to 1 when the rarity is not listed.
func (p *Pack) ValueMultiplier(rarity string) float64 {
	if m, ok := p.ValueMultipliers[rarity]; ok {
		return m
	}
	return 1
}

// BaseValue is the built-in base-value ladder. Rarities outside the ladder
// fall back to the Common value.
func BaseValue(rarity string) int {
	switch rarity {
	case "Common":
		return 50
	case "Uncommon":
		return 100
	case "Rare":
		return 200
	case "Epic":
		return 500
	case "Mythic":
		return 1000
	case "Ancient":
		return 2000
	case "Relic":
		return 4000
	case "Legendary":
		return 8000
	case "Transcendent":
		return 15000
	case RarityOneOfAKind:
		return 30000
	default:
		return 50
	}
}

// Default synthesizes the built-in content pack used when no pack has been
// installed yet.
func Default() *Pack {
	return &Pack{
		Version: "1.0.0",
		Active:  true,
		RarityWeights: RarityWeights{
			{Rarity: "Common", Weight: 40},
			{Rarity: "Uncommon", Weight: 22},
			{Rarity: "Rare", Weight: 12},
			{Rarity: "Epic", Weight: 8},
			{Rarity: "Mythic", Weight: 6},
			{Rarity: "Ancient", Weight: 4},
			{Rarity: "Relic", Weight: 3},
			{Rarity: "Legendary", Weight: 2},
			{Rarity: "Transcendent", Weight: 1.5},
			{Rarity: RarityOneOfAKind, Weight: 1.5},
		},
		HazardCurve: Curve{Base: 2.0, PerDepth: 0.7, PerGreed: 0.8, Cap: 60},
		ExitCurve:   Curve{Base: 5, PerDepth: 1, PerGreed: 0.5, Cap: 40},
		Pity:        Pity{NoDropStreak: 2, BonusNext: 5},
		StreakChest: StreakChest{Interval: 3, RarityBoostMultiplier: 1.8},
		Artifacts: []Artifact{
			{
				ID:      "phoenix_feather",
				Name:    "Phoenix Feather",
				Rarity:  "Legendary",
				Effects: []Effect{{ID: "on_death_revive", V: 1}},
				Lore:    "One life, rekindled.",
			},
			{
				ID:      "lucky_coin",
				Name:    "Lucky Coin",
				Rarity:  "Uncommon",
				Effects: []Effect{{ID: "loot_chance", V: 10}},
				Lore:    "A tarnished coin that brings unexpected fortune.",
			},
			{
				ID:      "iron_will",
				Name:    "Iron Will",
				Rarity:  "Rare",
				Effects: []Effect{{ID: "greed_resist", V: 1}},
				Lore:    "Strengthens resolve against temptation.",
			},
		},
		ValueMultipliers: map[string]float64{
			"Common":         1,
			"Uncommon":       1.2,
			"Rare":           1.5,
			"Epic":           2,
			"Mythic":         2.5,
			"Ancient":        3,
			"Relic":          3.5,
			"Legendary":      4,
			"Transcendent":   5,
			RarityOneOfAKind: 6,
		},
		CreatedAt: time.Now().UTC(),
	}
}
