package ports

import (
	"context"
	"math/rand/v2"
)

// RNGPort provides random number streams for Monte Carlo simulation
type RNGPort interface {
	// SeededStream creates a deterministic random number generator for a named operation
	SeededStream(ctx context.Context, name string, seed uint64) (*rand.Rand, error)

	// Stream creates a non-deterministic generator; each call yields an independent stream
	Stream(ctx context.Context, name string) (*rand.Rand, error)
}
