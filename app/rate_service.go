package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gorate/domain/rate"
	"gorate/internal/config"
	"gorate/internal/errors"
	"gorate/internal/inference"
	"gorate/internal/profiling"
	"gorate/internal/timeline"
	"gorate/ports"
)

// maxConcurrentStreams bounds SummarizeStreams fan-out
const maxConcurrentStreams = 8

const referenceStreamName = "reference_population"

// RateService owns one session: a reference sample drawn at construction and
// read-only afterwards, plus the model settings every summary uses
type RateService struct {
	model     config.ModelConfig
	source    ports.EventSource
	sessionID uuid.UUID
	sample    *inference.ReferenceSample
	profile   profiling.SampleProfile
	now       func() time.Time
}

// SummaryRequest describes one stream to summarize. Zero-valued overrides
// fall back to the configured model.
type SummaryRequest struct {
	Stream     string
	Timestamps []time.Time
	Prior      *rate.Prior
	Horizon    float64
}

// NewRateService validates the model settings and draws the session's
// reference sample. source may be nil when callers always pass timestamps.
func NewRateService(ctx context.Context, model config.ModelConfig, rngPort ports.RNGPort, source ports.EventSource) (*RateService, error) {
	if err := (&config.Config{Model: model}).Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid model configuration")
	}
	if rngPort == nil {
		return nil, errors.ConfigInvalid("random number port is required")
	}

	rng, err := referenceStream(ctx, rngPort, model.Seed)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create random stream")
	}

	started := time.Now()
	sample := inference.Simulate(rng, model.Reference, model.SampleSize)

	profile, err := profiling.NewDistributionAnalyzer().AnalyzeSample(sample.Values(), model.Reference)
	if err != nil {
		return nil, errors.Wrap(err, "failed to profile reference sample")
	}

	s := &RateService{
		model:     model,
		source:    source,
		sessionID: uuid.New(),
		sample:    sample,
		profile:   profile,
		now:       time.Now,
	}

	log.Printf("[RateService] Session %s: %d reference draws from Gamma(%.2f, %.2f) in %.2fms (mean %.3f)",
		s.sessionID, sample.Len(), model.Reference.Shape, model.Reference.Rate,
		float64(time.Since(started).Nanoseconds())/1e6, profile.Mean)
	if !profile.Consistent {
		log.Printf("[RateService] Warning: reference sample fails goodness of fit (p=%.2g)", profile.GoodnessP)
	}

	return s, nil
}

func referenceStream(ctx context.Context, rngPort ports.RNGPort, seed uint64) (*rand.Rand, error) {
	if seed != 0 {
		return rngPort.SeededStream(ctx, referenceStreamName, seed)
	}
	return rngPort.Stream(ctx, referenceStreamName)
}

// SessionID identifies the reference sample this service ranks against
func (s *RateService) SessionID() string {
	return s.sessionID.String()
}

// Reference returns the session's read-only reference sample
func (s *RateService) Reference() *inference.ReferenceSample {
	return s.sample
}

// Profile returns summary statistics of the reference sample
func (s *RateService) Profile() profiling.SampleProfile {
	return s.profile
}

// Model returns the model settings in effect
func (s *RateService) Model() config.ModelConfig {
	return s.model
}

// Summarize fits the request's timestamps and derives every output a
// presentation layer needs. Only the overrides are validated; the engine
// itself degrades to safe values.
func (s *RateService) Summarize(req SummaryRequest) (*rate.RateSummary, error) {
	prior := s.model.Prior
	if req.Prior != nil {
		if err := req.Prior.Validate(); err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		prior = *req.Prior
	}

	horizon := s.model.Horizon
	if req.Horizon != 0 {
		if err := (rate.PredictiveQuery{Horizon: req.Horizon}).Validate(); err != nil {
			return nil, errors.WithCode(errors.CodeInvalidInput, err)
		}
		horizon = req.Horizon
	}

	post := inference.Fit(req.Timestamps, prior)
	mean := inference.PosteriorMean(post.Alpha, post.Beta)

	summary := &rate.RateSummary{
		Stream:            req.Stream,
		Prior:             prior,
		Posterior:         post,
		PosteriorMean:     mean,
		PosteriorVariance: inference.PosteriorVariance(post.Alpha, post.Beta),
		PosteriorStdDev:   inference.PosteriorStdDev(post.Alpha, post.Beta),
		Horizon:           horizon,
		PredictiveMean:    inference.PredictiveMean(post.Alpha, post.Beta, horizon),
		Predictive:        inference.PredictiveTable(post.Alpha, post.Beta, horizon, s.model.MaxK),
		Curve:             inference.PosteriorCurve(post.Alpha, post.Beta, s.model.CurvePoints),
		Percentile:        s.sample.Percentile(mean),
		SessionID:         s.SessionID(),
		ActiveDays:        timeline.ActiveDays(req.Timestamps),
		Daily:             timeline.DailyCounts(req.Timestamps, s.now(), s.model.DailyWindow),
	}
	if err := checkFinite(summary); err != nil {
		return nil, err
	}
	return summary, nil
}

// checkFinite rejects summaries whose scalars overflowed, which JSON cannot carry
func checkFinite(s *rate.RateSummary) error {
	scalars := []struct {
		name  string
		value float64
	}{
		{"posterior mean", s.PosteriorMean},
		{"posterior variance", s.PosteriorVariance},
		{"predictive mean", s.PredictiveMean},
	}
	for _, sc := range scalars {
		if math.IsInf(sc.value, 0) || math.IsNaN(sc.value) {
			return errors.InvalidInput(fmt.Sprintf("%s is not finite for Gamma(%g, %g) over %g days",
				sc.name, s.Posterior.Alpha, s.Posterior.Beta, s.Horizon))
		}
	}
	return nil
}

// Streams lists the streams the event source knows about
func (s *RateService) Streams(ctx context.Context) ([]string, error) {
	if s.source == nil {
		return nil, errors.ConfigInvalid("no event source configured")
	}

	streams, err := s.source.Streams(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list streams")
	}
	return streams, nil
}

// SummarizeStream loads a stream from the event source and summarizes it
func (s *RateService) SummarizeStream(ctx context.Context, stream string) (*rate.RateSummary, error) {
	if s.source == nil {
		return nil, errors.ConfigInvalid("no event source configured")
	}

	timestamps, err := s.source.Timestamps(ctx, stream)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load stream %s", stream)
	}
	return s.Summarize(SummaryRequest{Stream: stream, Timestamps: timestamps})
}

// SummarizeStreams summarizes several streams concurrently against the same
// reference sample, in the order given. No names means every stream the
// source knows about.
func (s *RateService) SummarizeStreams(ctx context.Context, streams []string) ([]*rate.RateSummary, error) {
	if len(streams) == 0 {
		names, err := s.Streams(ctx)
		if err != nil {
			return nil, err
		}
		streams = names
	}

	summaries := make([]*rate.RateSummary, len(streams))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentStreams)
	for i, stream := range streams {
		g.Go(func() error {
			summary, err := s.SummarizeStream(gctx, stream)
			if err != nil {
				return err
			}
			summaries[i] = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Printf("[RateService] Summarized %d streams", len(summaries))
	return summaries, nil
}
