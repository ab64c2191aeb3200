package content

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultPackValid(t *testing.T) {
	pack := Default()
	if err := pack.Validate(); err != nil {
		t.Fatalf("default pack invalid: %v", err)
	}
	if !pack.Active {
		t.Error("default pack must be active")
	}
	if pack.Version != "1.0.0" {
		t.Errorf("default version = %q", pack.Version)
	}
	if w, ok := pack.RarityWeights.Get(RarityOneOfAKind); !ok || w != 1.5 {
		t.Errorf("1/1 weight = %v ok=%v, want 1.5", w, ok)
	}
	if len(pack.Artifacts) != 3 {
		t.Errorf("default catalog has %d artifacts, want 3", len(pack.Artifacts))
	}
}

func TestCurveAt(t *testing.T) {
	curve := Curve{Base: 2, PerDepth: 0.7, PerGreed: 0.8, Cap: 60}

	tests := []struct {
		depth, greed int
		want         float64
	}{
		{0, 0, 2},
		{1, 1, 3.5},
		{10, 5, 13},
		{100, 10, 60}, // capped
	}
	for _, tt := range tests {
		if got := curve.At(tt.depth, tt.greed); got != tt.want {
			t.Errorf("At(%d,%d) = %v, want %v", tt.depth, tt.greed, got, tt.want)
		}
	}
}

func TestBaseValueLadder(t *testing.T) {
	tests := []struct {
		rarity string
		want   int
	}{
		{"Common", 50},
		{"Uncommon", 100},
		{"Rare", 200},
		{"Epic", 500},
		{"Mythic", 1000},
		{"Ancient", 2000},
		{"Relic", 4000},
		{"Legendary", 8000},
		{"Transcendent", 15000},
		{RarityOneOfAKind, 30000},
		{"NoSuchTier", 50},
	}
	for _, tt := range tests {
		if got := BaseValue(tt.rarity); got != tt.want {
			t.Errorf("BaseValue(%q) = %d, want %d", tt.rarity, got, tt.want)
		}
	}
}

func TestRarityWeightsJSONOrder(t *testing.T) {
	in := []byte(`{"Rare":12,"Common":40,"1/1":1.5}`)

	var w RarityWeights
	if err := json.Unmarshal(in, &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(w) != 3 || w[0].Rarity != "Rare" || w[1].Rarity != "Common" || w[2].Rarity != RarityOneOfAKind {
		t.Fatalf("order not preserved: %+v", w)
	}

	out, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("round trip = %s, want %s", out, in)
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Pack)
	}{
		{"empty version", func(p *Pack) { p.Version = "" }},
		{"no weights", func(p *Pack) { p.RarityWeights = nil }},
		{"negative weight", func(p *Pack) { p.RarityWeights[0].Weight = -1 }},
		{"negative multiplier", func(p *Pack) { p.ValueMultipliers["Common"] = -2 }},
		{"negative cap", func(p *Pack) { p.HazardCurve.Cap = -1 }},
		{"negative pity", func(p *Pack) { p.Pity.NoDropStreak = -1 }},
		{"negative interval", func(p *Pack) { p.StreakChest.Interval = -3 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pack := Default()
			tt.mutate(pack)
			if err := pack.Validate(); err == nil {
				t.Error("Validate() accepted a broken pack")
			}
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	good, err := json.Marshal(Default())
	if err != nil {
		t.Fatalf("marshal default: %v", err)
	}

	pack, err := DecodeJSON(good)
	if err != nil {
		t.Fatalf("DecodeJSON rejected the default pack: %v", err)
	}
	if pack.Version != "1.0.0" {
		t.Errorf("version = %q", pack.Version)
	}

	bad := []struct {
		name string
		body string
	}{
		{"unknown key", `{"version":"2","bogus":1,"rarity_weights":{"Common":1},"hazard_curve":{"base":1,"per_depth":0,"per_greed":0,"cap":1},"exit_curve":{"base":1,"per_depth":0,"per_greed":0,"cap":1},"pity":{"no_drop_streak":1,"bonus_next":0},"streak_chest":{"interval":1},"value_multipliers":{}}`},
		{"missing hazard curve", `{"version":"2","rarity_weights":{"Common":1},"exit_curve":{"base":1,"per_depth":0,"per_greed":0,"cap":1},"pity":{"no_drop_streak":1,"bonus_next":0},"streak_chest":{"interval":1},"value_multipliers":{}}`},
		{"negative weight", `{"version":"2","rarity_weights":{"Common":-1},"hazard_curve":{"base":1,"per_depth":0,"per_greed":0,"cap":1},"exit_curve":{"base":1,"per_depth":0,"per_greed":0,"cap":1},"pity":{"no_drop_streak":1,"bonus_next":0},"streak_chest":{"interval":1},"value_multipliers":{}}`},
		{"not json", `{{{`},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := DecodeJSON([]byte(tt.body)); err == nil {
				t.Error("DecodeJSON accepted invalid input")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.yml")

	yml := `version: "2.0.0"
rarity_weights:
  Common: 90
  "1/1": 10
hazard_curve: {base: 2, per_depth: 0.7, per_greed: 0.8, cap: 60}
exit_curve: {base: 5, per_depth: 1, per_greed: 0.5, cap: 40}
pity: {no_drop_streak: 2, bonus_next: 5}
streak_chest: {interval: 3, rarity_boost_multiplier: 1.8}
value_multipliers:
  Common: 1
  "1/1": 6
`
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	pack, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if pack.Version != "2.0.0" {
		t.Errorf("version = %q", pack.Version)
	}
	if len(pack.RarityWeights) != 2 || pack.RarityWeights[0].Rarity != "Common" {
		t.Errorf("weights = %+v", pack.RarityWeights)
	}

	if _, err := LoadFile(filepath.Join(dir, "missing.yml")); err == nil {
		t.Error("LoadFile accepted a missing file")
	}

	if err := os.WriteFile(path, []byte("version: \"3\"\nunknown_field: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("LoadFile accepted unknown fields")
	}
}
