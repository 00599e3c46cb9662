// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package wheel

import (
	cryptorand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource abstracts the random draw so spins can be replayed in tests.
type RandomSource interface {
	// Float64 returns a value in [0, 1).
	Float64() float64
}

type cryptoRNG struct{}

func (cryptoRNG) Float64() float64 {
	var buf [8]byte
	if _, err := cryptorand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// 53 bits fill a float64 mantissa exactly
	u := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(u) / (1 << 53)
}

// DefaultRNG returns a crypto-backed source.
func DefaultRNG() RandomSource { return cryptoRNG{} }

type seededRNG struct{ r *rand.Rand }

// NewSeededRNG returns a reproducible source for a given seed.
func NewSeededRNG(seed uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, 0))}
}

func (s *seededRNG) Float64() float64 { return s.r.Float64() }
