package rng

import (
	"context"
	"math/rand/v2"

	"gorate/ports"
)

// PCGAdapter implements ports.RNGPort with PCG streams
type PCGAdapter struct{}

var _ ports.RNGPort = (*PCGAdapter)(nil)

func NewPCGAdapter() *PCGAdapter {
	return &PCGAdapter{}
}

// SeededStream derives the stream from seed and the operation name, so two
// operations sharing a seed still draw independent sequences
func (a *PCGAdapter) SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(seed, uint64(hashString(name)))), nil
}

func (a *PCGAdapter) Stream(ctx context.Context, name string) (*rand.Rand, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()^uint64(hashString(name)))), nil
}

// hashString creates a simple hash for deterministic seeding
func hashString(s string) uint32 {
	var hash uint32 = 5381
	for _, c := range s {
		hash = ((hash << 5) + hash) + uint32(c) // djb2 algorithm
	}
	return hash
}
