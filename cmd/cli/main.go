package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"gorate/adapters/excel"
	"gorate/adapters/rng"
	"gorate/app"
	"gorate/domain/rate"
	"gorate/internal/config"
	"gorate/internal/container"
	"gorate/internal/inference"
	"gorate/internal/report"
)

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "gorate",
		Short:         "Bayesian event-rate estimates from timestamped events",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newFitCmd(),
		newPMFCmd(),
		newCurveCmd(),
		newSimulateCmd(),
		newSummaryCmd(),
	)
	return rootCmd
}

func newFitCmd() *cobra.Command {
	var alpha, beta, spanDays float64
	var count int

	cmd := &cobra.Command{
		Use:   "fit [timestamps...]",
		Short: "Fit the Gamma posterior to event timestamps",
		Long: `Fit a Gamma(alpha, beta) prior to a list of event timestamps.

Timestamps are RFC3339, YYYY-MM-DD or Excel date serials. With --count the
timestamps are replaced by an event count over --span-days.

Example: gorate fit 2025-03-01T09:00:00Z 2025-03-02T09:00:00Z --prior-alpha 1 --prior-beta 1
Example: gorate fit --count 10 --span-days 9`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prior := rate.Prior{Alpha: alpha, Beta: beta}
			if err := prior.Validate(); err != nil {
				return err
			}

			if cmd.Flags().Changed("count") {
				if len(args) > 0 {
					return fmt.Errorf("--count cannot be combined with timestamps")
				}
				return printPosterior(cmd.OutOrStdout(), inference.FitCounts(count, spanDays, prior))
			}

			timestamps, err := parseTimestamps(args)
			if err != nil {
				return err
			}
			return printPosterior(cmd.OutOrStdout(), inference.Fit(timestamps, prior))
		},
	}

	cmd.Flags().Float64Var(&alpha, "prior-alpha", 1, "Prior shape")
	cmd.Flags().Float64Var(&beta, "prior-beta", 1, "Prior rate per day")
	cmd.Flags().IntVar(&count, "count", 0, "Number of events, instead of timestamps")
	cmd.Flags().Float64Var(&spanDays, "span-days", 1, "Days between first and last event, with --count")
	return cmd
}

func printPosterior(w io.Writer, post rate.PosteriorParameters) error {

	fmt.Fprintf(w, "Events:     %d over %g days\n", post.N, post.T)
	fmt.Fprintf(w, "Posterior:  Gamma(alpha=%g, beta=%g)\n", post.Alpha, post.Beta)
	fmt.Fprintf(w, "Mean rate:  %.4f per day\n", inference.PosteriorMean(post.Alpha, post.Beta))
	fmt.Fprintf(w, "Std dev:    %.4f\n", inference.PosteriorStdDev(post.Alpha, post.Beta))
	return nil
}

func newPMFCmd() *cobra.Command {
	var alpha, beta, horizon float64
	var maxK int

	cmd := &cobra.Command{
		Use:   "pmf",
		Short: "Print the negative binomial predictive distribution",
		Long: `Print P(K = k) for k = 0..max-k events over the next horizon days.

Example: gorate pmf --alpha 11 --beta 10 --horizon 1 --max-k 7`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePosterior(alpha, beta); err != nil {
				return err
			}
			if err := (rate.PredictiveQuery{Horizon: horizon}).Validate(); err != nil {
				return err
			}
			return runPMF(cmd.OutOrStdout(), alpha, beta, horizon, maxK)
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", 1, "Posterior shape")
	cmd.Flags().Float64Var(&beta, "beta", 1, "Posterior rate")
	cmd.Flags().Float64Var(&horizon, "horizon", 1, "Horizon in days")
	cmd.Flags().IntVar(&maxK, "max-k", inference.DefaultMaxK, "Largest count to print")
	return cmd
}

func runPMF(w io.Writer, alpha, beta, horizon float64, maxK int) error {
	fmt.Fprintf(w, "Expected events in %g days: %.4f\n", horizon, inference.PredictiveMean(alpha, beta, horizon))
	for _, p := range inference.PredictiveTable(alpha, beta, horizon, maxK) {
		fmt.Fprintf(w, "%3d  %.6f\n", p.K, p.Probability)
	}
	return nil
}

func newCurveCmd() *cobra.Command {
	var alpha, beta float64
	var points int

	cmd := &cobra.Command{
		Use:   "curve",
		Short: "Print the normalized posterior density as x,density rows",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePosterior(alpha, beta); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "x,density")
			for _, p := range inference.PosteriorCurve(alpha, beta, points) {
				fmt.Fprintf(w, "%.6f,%.6f\n", p.X, p.Density)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&alpha, "alpha", 1, "Posterior shape")
	cmd.Flags().Float64Var(&beta, "beta", 1, "Posterior rate")
	cmd.Flags().IntVar(&points, "points", inference.DefaultCurvePoints, "Number of steps across the plotted range")
	return cmd
}

func newSimulateCmd() *cobra.Command {
	var seed uint64
	var size int
	var shape, rateParam float64
	var value float64
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Draw a reference population and profile it",
		Long: `Draw a Gamma(shape, rate) reference population, print its profile and
optionally the percentile of --value within it.

Example: gorate simulate --seed 42 --value 1.1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			model := config.Default().Model
			model.Reference = rate.ReferenceDistribution{Shape: shape, Rate: rateParam}
			model.SampleSize = size
			model.Seed = seed

			svc, err := app.NewRateService(cmd.Context(), model, rng.NewPCGAdapter(), nil)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if asJSON {
				return writeJSON(w, svc.Profile())
			}

			p := svc.Profile()
			fmt.Fprintf(w, "Session:    %s\n", svc.SessionID())
			fmt.Fprintf(w, "Reference:  Gamma(%g, %g), %d draws\n", p.Reference.Shape, p.Reference.Rate, p.Size)
			fmt.Fprintf(w, "Mean:       %.4f (sd %.4f)\n", p.Mean, p.StdDev)
			fmt.Fprintf(w, "Quartiles:  %.4f / %.4f / %.4f\n", p.Q25, p.Median, p.Q75)
			fmt.Fprintf(w, "Fit:        chi2=%.2f p=%.3f consistent=%t\n", p.GoodnessStat, p.GoodnessP, p.Consistent)
			if cmd.Flags().Changed("value") {
				fmt.Fprintf(w, "Percentile of %g: %.1f\n", value, svc.Reference().Percentile(value))
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&seed, "seed", 0, "Random seed (0 for unseeded)")
	cmd.Flags().IntVar(&size, "size", inference.DefaultSampleSize, "Number of draws")
	cmd.Flags().Float64Var(&shape, "shape", 2, "Reference shape")
	cmd.Flags().Float64Var(&rateParam, "rate", 1, "Reference rate")
	cmd.Flags().Float64Var(&value, "value", 0, "Rate to rank against the population")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the profile as JSON")
	return cmd
}

func newSummaryCmd() *cobra.Command {
	var file, column string
	var asJSON, markdown bool

	cmd := &cobra.Command{
		Use:   "summary [streams...]",
		Short: "Summarize event streams from the configured source",
		Long: `Summarize event streams from an events file or the configured database.

The source is --file when given, otherwise DATABASE_URL, otherwise EVENTS_FILE.
With no stream names every stream in the source is summarized.

Example: gorate summary herb wax --file events.xlsx --markdown`,
		RunE: func(cmd *cobra.Command, args []string) error {
			appConfig, err := config.Load()
			if err != nil {
				return err
			}
			if file != "" {
				appConfig.Database.URL = ""
				appConfig.Source.EventsFile = file
			}
			if column != "" {
				appConfig.Source.Column = column
			}
			return runSummary(cmd.Context(), cmd.OutOrStdout(), appConfig, args, asJSON, markdown)
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "xlsx or csv events file")
	cmd.Flags().StringVar(&column, "column", "", "Timestamp column name")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print summaries as JSON")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Print summaries as Markdown reports")
	return cmd
}

func runSummary(ctx context.Context, w io.Writer, appConfig *config.Config, streams []string, asJSON, markdown bool) error {
	appContainer, err := container.New(appConfig)
	if err != nil {
		return err
	}
	defer appContainer.Shutdown(ctx)

	if err := appContainer.Init(ctx); err != nil {
		return err
	}

	summaries, err := appContainer.RateService.SummarizeStreams(ctx, streams)
	if err != nil {
		return err
	}

	if asJSON {
		return writeJSON(w, summaries)
	}
	for _, s := range summaries {
		if markdown {
			fmt.Fprintln(w, report.Markdown(*s))
			continue
		}
		fmt.Fprintf(w, "%-12s n=%-5d rate=%.3f/day  next %gd=%.2f  percentile=%.1f\n",
			s.Stream, s.Posterior.N, s.PosteriorMean, s.Horizon, s.PredictiveMean, s.Percentile)
	}
	return nil
}

func parseTimestamps(args []string) ([]time.Time, error) {
	timestamps := make([]time.Time, 0, len(args))
	for _, arg := range args {
		ts, err := excel.ParseTimestamp(arg)
		if err != nil {
			return nil, err
		}
		timestamps = append(timestamps, ts)
	}
	return timestamps, nil
}

func validatePosterior(alpha, beta float64) error {
	return rate.Prior{Alpha: alpha, Beta: beta}.Validate()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
