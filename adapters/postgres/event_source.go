package postgres

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gorate/internal/errors"
	"gorate/ports"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// eventSource implements ports.EventSource over a table with
// (stream, created_at) columns. It only ever reads.
type eventSource struct {
	db    *sqlx.DB
	table string
}

// Connect opens a PostgreSQL connection and verifies it with a ping
func Connect(ctx context.Context, url string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, errors.SourceError("postgres", err)
	}
	return db, nil
}

// NewEventSource creates a read-only event source over table
func NewEventSource(db *sqlx.DB, table string) (ports.EventSource, error) {
	if !identifierPattern.MatchString(table) {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid events table name %q", table))
	}
	return &eventSource{db: db, table: table}, nil
}

// Streams lists the distinct stream names in the table
func (s *eventSource) Streams(ctx context.Context) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT stream FROM %s ORDER BY stream`, s.table)

	var streams []string
	if err := s.db.SelectContext(ctx, &streams, query); err != nil {
		return nil, errors.SourceError("postgres", fmt.Errorf("failed to list streams: %w", err))
	}
	return streams, nil
}

// Timestamps returns every created_at for stream. An unknown stream is NOT_FOUND.
func (s *eventSource) Timestamps(ctx context.Context, stream string) ([]time.Time, error) {
	query := fmt.Sprintf(`SELECT created_at FROM %s WHERE stream = $1`, s.table)

	var timestamps []time.Time
	if err := s.db.SelectContext(ctx, &timestamps, query, stream); err != nil {
		return nil, errors.SourceError("postgres", fmt.Errorf("failed to load stream %s: %w", stream, err))
	}
	if len(timestamps) == 0 {
		return nil, errors.NotFound("stream " + stream)
	}

	for i := range timestamps {
		timestamps[i] = timestamps[i].UTC()
	}
	return timestamps, nil
}
