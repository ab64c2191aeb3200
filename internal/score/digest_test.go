package score

import (
	"testing"
	"time"

	"github.com/oddlyprompt/ExitorDie/internal/sim"
)

func strptr(s string) *string { return &s }

func sampleLog() sim.ReplayLog {
	return sim.ReplayLog{
		Seed:           "0",
		ContentVersion: "test-pack",
		Rooms: []sim.Room{
			{Depth: 1, Type: "room", Choice: strptr("continue")},
			{Depth: 2, Type: "room", Choice: strptr("exit")},
		},
		Choices: []string{"continue", "exit"},
		Rolls:   1,
		Items:   []string{},
	}
}

// The canonical form is sorted-key JSON without whitespace; this digest is a
// fixed point shared with the reference implementation.
func TestDigestGolden(t *testing.T) {
	want := "5f63dffcc896aa663a48438bedf270b38264b508bb431e97f8e12b0635e48f3e"
	if got := Digest(sampleLog()); got != want {
		t.Errorf("Digest = %s, want %s", got, want)
	}
}

func TestDigestIdempotent(t *testing.T) {
	a := Digest(sampleLog())
	b := Digest(sampleLog())
	if a != b {
		t.Errorf("same log digested twice: %s vs %s", a, b)
	}
}

// Nil and empty telemetry slices canonicalize identically: the digest must
// not depend on whether a client sent [] or omitted the field.
func TestDigestNormalizesNilSlices(t *testing.T) {
	withEmpty := sampleLog()
	withNil := sampleLog()
	withNil.Choices = nil
	withNil.Items = nil
	withEmpty.Choices = []string{}
	withEmpty.Items = []string{}

	if Digest(withNil) != Digest(withEmpty) {
		t.Error("nil and empty slices digest differently")
	}
}

func TestDigestSensitivity(t *testing.T) {
	base := Digest(sampleLog())

	tests := []struct {
		name   string
		mutate func(*sim.ReplayLog)
	}{
		{"seed", func(l *sim.ReplayLog) { l.Seed = "1" }},
		{"version", func(l *sim.ReplayLog) { l.ContentVersion = "other" }},
		{"rolls", func(l *sim.ReplayLog) { l.Rolls = 2 }},
		{"room depth", func(l *sim.ReplayLog) { l.Rooms[0].Depth = 9 }},
		{"room choice", func(l *sim.ReplayLog) { l.Rooms[0].Choice = nil }},
		{"extra item", func(l *sim.ReplayLog) { l.Items = append(l.Items, "abc") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := sampleLog()
			tt.mutate(&log)
			if Digest(log) == base {
				t.Error("mutation did not change the digest")
			}
		})
	}
}

func TestDailySeed(t *testing.T) {
	day := time.Date(2025, 1, 15, 13, 37, 0, 0, time.UTC)

	tests := []struct {
		secret string
		t      time.Time
		want   string
	}{
		{"daily-seed-secret", day, "b480952b12ae7b8e"},
		{"other-secret", day, "0a52a307701aa673"},
		{"daily-seed-secret", day.Add(24 * time.Hour), "ef6ac621b258047a"},
	}
	for _, tt := range tests {
		if got := DailySeed(tt.secret, tt.t); got != tt.want {
			t.Errorf("DailySeed(%q, %s) = %s, want %s", tt.secret, tt.t, got, tt.want)
		}
	}

	// Any time within the same UTC day yields the same seed.
	if DailySeed("s", day) != DailySeed("s", day.Add(10*time.Hour)) {
		t.Error("seed changed within the same UTC day")
	}
}

func TestDailyWindow(t *testing.T) {
	at := time.Date(2025, 1, 15, 13, 37, 42, 0, time.UTC)
	start, end := DailyWindow(at)

	if !start.Equal(time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("start = %s", start)
	}
	if !end.Equal(time.Date(2025, 1, 16, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("end = %s", end)
	}
	if DayBucket(at) != "2025-01-15" {
		t.Errorf("DayBucket = %s", DayBucket(at))
	}
}
