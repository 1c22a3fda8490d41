// Package random provides seed generation for the game's samplers.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// New returns a PCG-backed generator with a fresh seed. If crypto/rand is
// unavailable it falls back to the runtime's random source.
func New() *rand.Rand {
	hi, err := NewSeed()
	if err != nil {
		hi = rand.Uint64()
	}
	lo, err := NewSeed()
	if err != nil {
		lo = rand.Uint64()
	}
	return rand.New(rand.NewPCG(hi, lo))
}

// Seeded returns a deterministic generator for the given seed.
func Seeded(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
