package engine

import (
	"errors"
	"math"
	"strconv"
)

// The generator below is the reproducibility contract for the whole system:
// the server re-derives every hazard and loot outcome of a client run from the
// same stream, so two implementations fed the same initial state must produce
// bit-identical state sequences. Do not change the constants or the float
// conversion.
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
	stateMask     = 0x7fffffff // state is always reduced to 31 bits
)

// ErrInvalidSeed is returned when a seed string is not parseable hex.
var ErrInvalidSeed = errors.New("invalid seed")

// Rand is a deterministic pseudo-random stream keyed by a single integer
// state. It is not safe for concurrent use; each simulation owns its own Rand.
type Rand struct {
	state uint64
}

// New creates a generator from a raw integer state.
func New(state uint64) *Rand {
	return &Rand{state: state}
}

// NewFromSeed parses a hexadecimal seed string (up to 16 hex chars, e.g. a
// daily seed) and creates a generator from it. The initial state may exceed
// 31 bits; the first transition reduces it. Because 2^31 divides 2^64,
// uint64 wraparound in the multiply step preserves the low 31 bits exactly.
func NewFromSeed(seed string) (*Rand, error) {
	state, err := strconv.ParseUint(seed, 16, 64)
	if err != nil {
		return nil, ErrInvalidSeed
	}
	return &Rand{state: state}, nil
}

// State returns the current generator state. Item hashes embed the post-draw
// state, which ties them to an exact position in the stream.
func (r *Rand) State() uint64 {
	return r.state
}

// Next advances the state and returns a fraction of the full 31-bit range.
func (r *Rand) Next() float64 {
	r.state = (r.state*lcgMultiplier + lcgIncrement) & stateMask
	return float64(r.state) / float64(uint32(stateMask))
}

// NextInt returns an integer in [min, max], both bounds inclusive.
func (r *Rand) NextInt(min, max int) int {
	return int(math.Floor(r.Next()*float64(max-min+1))) + min
}

// NextFloat returns a float in [min, max).
func (r *Rand) NextFloat(min, max float64) float64 {
	return r.Next()*(max-min) + min
}

// Weighted is one entry of a weighted selection table.
type Weighted struct {
	Item   string
	Weight float64
}

// WeightedChoice draws one item from the table. The draw walks the table in
// its given order subtracting weights until the running value reaches zero.
// If floating-point rounding keeps the running value positive through the
// whole walk, the last item is returned; that fallback is part of the
// contract, not an error path.
func (r *Rand) WeightedChoice(items []Weighted) string {
	var total float64
	for _, it := range items {
		total += it.Weight
	}

	draw := r.NextFloat(0, total)
	for _, it := range items {
		draw -= it.Weight
		if draw <= 0 {
			return it.Item
		}
	}
	return items[len(items)-1].Item
}
