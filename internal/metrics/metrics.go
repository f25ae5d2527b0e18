// Package metrics counts parse outcomes and dumps them in the Prometheus text format.
package metrics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/insightdelivered/statement-parser/internal/models"
)

const namespace = "statement_parser"

// Recorder implements parser.Observer on a private registry.
type Recorder struct {
	registry      *prometheus.Registry
	documents     *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	records       *prometheus.CounterVec
	continuations *prometheus.CounterVec
	skipped       *prometheus.CounterVec
	issues        *prometheus.CounterVec
}

func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents parsed, by institution and outcome.",
		}, []string{"institution", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "parse_duration_seconds",
			Help:      "Wall time spent parsing one document.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"institution"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Normalized records emitted.",
		}, []string{"institution"}),
		continuations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "continuations_total",
			Help:      "Continuation lines folded into a previous record.",
		}, []string{"institution"}),
		skipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_rows_total",
			Help:      "Rows dropped, by reason.",
		}, []string{"institution", "reason"}),
		issues: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "issues_total",
			Help:      "Non-fatal issues reported, by severity.",
		}, []string{"institution", "severity"}),
	}
	r.registry.MustRegister(r.documents, r.duration, r.records, r.continuations, r.skipped, r.issues)
	return r
}

// Registry exposes the underlying registry, e.g. for an HTTP handler.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) ObserveParse(institution models.Institution, result *models.ParseResult, err error, elapsed time.Duration) {
	inst := string(institution)
	r.duration.WithLabelValues(inst).Observe(elapsed.Seconds())
	r.documents.WithLabelValues(inst, outcome(result, err)).Inc()
	if result == nil {
		return
	}

	r.records.WithLabelValues(inst).Add(float64(len(result.Transactions)))
	r.continuations.WithLabelValues(inst).Add(float64(result.Stats.Continuations))
	for reason, n := range result.Stats.SkipReasons {
		r.skipped.WithLabelValues(inst, reason).Add(float64(n))
	}
	for _, is := range result.Issues {
		r.issues.WithLabelValues(inst, string(is.Severity)).Inc()
	}
}

func outcome(result *models.ParseResult, err error) string {
	var docErr *models.DocumentError
	switch {
	case errors.As(err, &docErr):
		return "rejected"
	case err != nil || result == nil:
		return "error"
	case result.NeedsReview():
		return "needs_review"
	default:
		return "ok"
	}
}

// Write encodes every gathered family in the text exposition format.
func (r *Recorder) Write(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("encode %s: %w", mf.GetName(), err)
		}
	}
	if c, ok := enc.(expfmt.Closer); ok {
		return c.Close()
	}
	return nil
}

// WriteFile replaces path with the current metrics.
func (r *Recorder) WriteFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create metrics file %q: %w", path, err)
	}
	if err := r.Write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
