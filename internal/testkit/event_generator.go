package testkit

import (
	"encoding/csv"
	"io"
	"math"
	"math/rand/v2"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

const day = 24 * time.Hour

// EventGeneratorConfig configures the synthetic event generator
type EventGeneratorConfig struct {
	Rates     map[string]float64 `json:"rates"` // events per day, by stream
	StartDate time.Time          `json:"start_date"`
	EndDate   time.Time          `json:"end_date"`
	Seed      uint64             `json:"seed"`
}

// DefaultEventConfig returns three streams over one quarter
func DefaultEventConfig() EventGeneratorConfig {
	return EventGeneratorConfig{
		Rates: map[string]float64{
			"herb": 2.0,
			"hash": 0.5,
			"wax":  0.2,
		},
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 3, 31, 23, 59, 59, 0, time.UTC),
		Seed:      42,
	}
}

// EventRecord is one generated event
type EventRecord struct {
	Stream    string
	CreatedAt time.Time
}

// EventGenerator draws homogeneous Poisson processes, one per stream
type EventGenerator struct {
	config EventGeneratorConfig
}

// NewEventGenerator creates a new event generator
func NewEventGenerator(config EventGeneratorConfig) *EventGenerator {
	return &EventGenerator{config: config}
}

// GenerateStreams returns sorted timestamps per stream. The same config
// always yields the same events.
func (g *EventGenerator) GenerateStreams() map[string][]time.Time {
	rng := rand.New(rand.NewPCG(g.config.Seed, g.config.Seed^0x9e3779b97f4a7c15))

	names := make([]string, 0, len(g.config.Rates))
	for name := range g.config.Rates {
		names = append(names, name)
	}
	sort.Strings(names)

	streams := make(map[string][]time.Time, len(names))
	for _, name := range names {
		streams[name] = g.poissonProcess(rng, g.config.Rates[name])
	}
	return streams
}

// GenerateRecords returns every event across streams ordered by time
func (g *EventGenerator) GenerateRecords() []EventRecord {
	var records []EventRecord
	for stream, timestamps := range g.GenerateStreams() {
		for _, ts := range timestamps {
			records = append(records, EventRecord{Stream: stream, CreatedAt: ts})
		}
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].Stream < records[j].Stream
		}
		return records[i].CreatedAt.Before(records[j].CreatedAt)
	})
	return records
}

// poissonProcess accumulates exponential gaps until EndDate
func (g *EventGenerator) poissonProcess(rng *rand.Rand, ratePerDay float64) []time.Time {
	if !(ratePerDay > 0) || math.IsInf(ratePerDay, 0) || !g.config.EndDate.After(g.config.StartDate) {
		return nil
	}

	gap := distuv.Exponential{Rate: ratePerDay, Src: rng}
	var timestamps []time.Time
	t := g.config.StartDate
	for {
		t = t.Add(time.Duration(gap.Rand() * float64(day)))
		if !t.Before(g.config.EndDate) {
			return timestamps
		}
		timestamps = append(timestamps, t)
	}
}

// SpanDays is the length of the generated window in days
func (g *EventGenerator) SpanDays() float64 {
	return float64(g.config.EndDate.Sub(g.config.StartDate)) / float64(day)
}

// WriteCSV writes records with a created_at,stream header
func WriteCSV(w io.Writer, records []EventRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"created_at", "stream"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := cw.Write([]string{r.CreatedAt.UTC().Format(time.RFC3339), r.Stream}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
