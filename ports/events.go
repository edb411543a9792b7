package ports

import (
	"context"
	"time"
)

// DefaultStream names the single stream of a source without stream labels
const DefaultStream = "default"

// EventSource supplies event timestamps, grouped into named streams.
// Implementations are read-only: they never store, deduplicate or validate events.
type EventSource interface {
	// Streams lists the stream names the source knows about, sorted
	Streams(ctx context.Context) ([]string, error)

	// Timestamps returns every event instant recorded for stream, in no particular order
	Timestamps(ctx context.Context, stream string) ([]time.Time, error)
}
