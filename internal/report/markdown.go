package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"gorate/domain/rate"
)

// Markdown renders a summary as a Markdown document with a PMF table
func Markdown(s rate.RateSummary) string {
	var b strings.Builder

	title := "Event rate"
	if s.Stream != "" {
		title = fmt.Sprintf("Event rate: %s", s.Stream)
	}
	fmt.Fprintf(&b, "# %s\n\n", title)

	if s.Posterior.ColdStart() {
		b.WriteString("_No events recorded yet; figures reflect the prior only._\n\n")
	}

	fmt.Fprintf(&b, "- Events: %d over %s (%d active days)\n", s.Posterior.N, spanLabel(s.Posterior.T), s.ActiveDays)
	fmt.Fprintf(&b, "- Posterior: Gamma(α=%.2f, β=%.2f)\n", s.Posterior.Alpha, s.Posterior.Beta)
	fmt.Fprintf(&b, "- Rate: %.3f ± %.3f per day (variance %.4f)\n", s.PosteriorMean, s.PosteriorStdDev, s.PosteriorVariance)
	fmt.Fprintf(&b, "- Expected events in the next %s: %.2f\n", spanLabel(s.Horizon), s.PredictiveMean)
	fmt.Fprintf(&b, "- Percentile against the reference population: %.1f\n\n", s.Percentile)

	if len(s.Predictive) > 0 {
		b.WriteString("| k | P(k) |\n|---:|---:|\n")
		for _, p := range s.Predictive {
			fmt.Fprintf(&b, "| %d | %.4f |\n", p.K, p.Probability)
		}
		b.WriteString("\n")
	}

	return b.String()
}

// HTML renders the Markdown report to an HTML fragment
func HTML(s rate.RateSummary) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags})
	return markdown.ToHTML([]byte(Markdown(s)), p, renderer)
}

func spanLabel(days float64) string {
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%g days", days)
}
