package excel

import (
	"context"
	"log"
	"sort"
	"time"

	"gorate/internal/errors"
	"gorate/ports"
)

// FileEventSource serves event streams read once from an xlsx or csv file
type FileEventSource struct {
	path    string
	streams map[string][]time.Time
	skipped int
}

var _ ports.EventSource = (*FileEventSource)(nil)

// NewFileEventSource reads and parses the whole file up front. Rows whose
// timestamp cell is empty or unparseable are skipped and counted.
func NewFileEventSource(cfg ExcelConfig) (*FileEventSource, error) {
	if cfg.FilePath == "" {
		return nil, errors.InvalidInput("events file path is required")
	}
	if cfg.TimestampColumn == "" {
		cfg.TimestampColumn = DefaultExcelConfig().TimestampColumn
	}

	reader := NewDataReader(cfg.FilePath, cfg.Sheet)
	data, err := reader.ReadData()
	if err != nil {
		return nil, errors.SourceError("file", err)
	}
	if !data.HasColumn(cfg.TimestampColumn) {
		return nil, errors.InvalidInput("timestamp column " + cfg.TimestampColumn + " not found in " + cfg.FilePath)
	}

	streamColumn := cfg.StreamColumn
	if streamColumn == "" {
		streamColumn = reader.DetectStreamColumn(data)
	}

	src := &FileEventSource{path: cfg.FilePath, streams: make(map[string][]time.Time)}
	for _, row := range data.Rows {
		raw := row[cfg.TimestampColumn]
		if raw == "" {
			src.skipped++
			continue
		}
		ts, err := ParseTimestamp(raw)
		if err != nil {
			src.skipped++
			continue
		}

		stream := ports.DefaultStream
		if streamColumn != "" && row[streamColumn] != "" {
			stream = row[streamColumn]
		}
		src.streams[stream] = append(src.streams[stream], ts)
	}

	if src.skipped > 0 {
		log.Printf("[EventReader] Skipped %d rows without a valid %s in %s", src.skipped, cfg.TimestampColumn, cfg.FilePath)
	}
	return src, nil
}

// Streams lists stream names found in the file
func (s *FileEventSource) Streams(ctx context.Context) ([]string, error) {
	names := make([]string, 0, len(s.streams))
	for name := range s.streams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Timestamps returns a copy of the stream's events
func (s *FileEventSource) Timestamps(ctx context.Context, stream string) ([]time.Time, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ts, ok := s.streams[stream]
	if !ok {
		return nil, errors.NotFound("stream " + stream)
	}
	return append([]time.Time(nil), ts...), nil
}

// Skipped is the number of rows that carried no usable timestamp
func (s *FileEventSource) Skipped() int {
	return s.skipped
}
