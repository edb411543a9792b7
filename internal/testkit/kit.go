package testkit

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorate/adapters/rng"
	"gorate/app"
	"gorate/internal/config"
	"gorate/internal/errors"
	"gorate/ports"
)

// TestKit provides a seeded rate service over generated in-memory streams
type TestKit struct {
	Generator *EventGenerator
	Source    *MemorySource
	RNG       ports.RNGPort
	Service   *app.RateService
}

// NewTestKit creates a test kit with the default generated streams
func NewTestKit() (*TestKit, error) {
	return NewTestKitWithConfig(DefaultEventConfig())
}

// NewTestKitWithConfig creates a test kit from a generator config. The
// reference sample is seeded from the same seed.
func NewTestKitWithConfig(cfg EventGeneratorConfig) (*TestKit, error) {
	generator := NewEventGenerator(cfg)
	source := NewMemorySource(generator.GenerateStreams())
	rngAdapter := rng.NewPCGAdapter()

	model := config.Default().Model
	model.Seed = cfg.Seed
	if model.Seed == 0 {
		model.Seed = 1
	}

	svc, err := app.NewRateService(context.Background(), model, rngAdapter, source)
	if err != nil {
		return nil, err
	}

	return &TestKit{
		Generator: generator,
		Source:    source,
		RNG:       rngAdapter,
		Service:   svc,
	}, nil
}

// MemorySource is an in-memory ports.EventSource with failure injection
type MemorySource struct {
	mu       sync.RWMutex
	streams  map[string][]time.Time
	failures map[string]error
}

var _ ports.EventSource = (*MemorySource)(nil)

// NewMemorySource creates a source serving the given streams
func NewMemorySource(streams map[string][]time.Time) *MemorySource {
	s := &MemorySource{
		streams:  make(map[string][]time.Time, len(streams)),
		failures: make(map[string]error),
	}
	for name, ts := range streams {
		s.streams[name] = append([]time.Time(nil), ts...)
	}
	return s
}

// Add appends events to a stream, creating it if needed
func (s *MemorySource) Add(stream string, timestamps ...time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[stream] = append(s.streams[stream], timestamps...)
}

// Fail makes every read of stream return err
func (s *MemorySource) Fail(stream string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[stream] = err
}

func (s *MemorySource) Streams(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.streams)+len(s.failures))
	for name := range s.streams {
		names = append(names, name)
	}
	for name := range s.failures {
		if _, ok := s.streams[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemorySource) Timestamps(ctx context.Context, stream string) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err, ok := s.failures[stream]; ok {
		return nil, err
	}
	ts, ok := s.streams[stream]
	if !ok {
		return nil, errors.NotFound("stream " + stream)
	}
	return append([]time.Time(nil), ts...), nil
}
