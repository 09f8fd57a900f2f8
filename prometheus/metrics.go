// Package prometheus instruments the excerpt services with Prometheus
// metrics.
package prometheus

import (
	"context"
	"net/http"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "excerpt"

// Extraction outcomes used as the "outcome" label.
const (
	OutcomePrimary  = "primary"
	OutcomeFallback = "fallback"
	OutcomePDF      = "pdf"
)

// Metrics holds the collectors of one registry.
type Metrics struct {
	registry *prometheus.Registry

	extractions     *prometheus.CounterVec
	extractDuration prometheus.Histogram
	paragraphs      prometheus.Histogram

	truncations prometheus.Counter
	usedTokens  prometheus.Histogram
	located     *prometheus.CounterVec

	explains        *prometheus.CounterVec
	explainDuration prometheus.Histogram
}

// NewMetrics registers the collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extractions by outcome or error code.",
		}, []string{"outcome"}),
		extractDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_duration_seconds",
			Help:      "Time spent extracting a document.",
			Buckets:   prometheus.DefBuckets,
		}),
		paragraphs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "extraction_paragraphs",
			Help:      "Paragraphs per extracted record.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		truncations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "truncations_total",
			Help:      "Excerpts assembled.",
		}),
		usedTokens: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "excerpt_tokens",
			Help:      "Estimated tokens used per excerpt.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 10),
		}),
		located: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "selections_total",
			Help:      "Excerpts by whether their selection was found.",
		}, []string{"found"}),
		explains: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "explains_total",
			Help:      "Model calls by result.",
		}, []string{"result"}),
		explainDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "explain_duration_seconds",
			Help:      "Time spent waiting for the model.",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 8),
		}),
	}
	m.registry.MustRegister(
		m.extractions, m.extractDuration, m.paragraphs,
		m.truncations, m.usedTokens, m.located,
		m.explains, m.explainDuration,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// WatchCache exposes whether the extraction cache holds a record.
func (m *Metrics) WatchCache(populated func() bool) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "cache_populated",
		Help:      "1 when the extraction cache holds a record.",
	}, func() float64 {
		if populated() {
			return 1
		}
		return 0
	}))
}

func (m *Metrics) observeExtraction(record *excerpt.ContentRecord, err error, d time.Duration) {
	m.extractDuration.Observe(d.Seconds())
	if err != nil {
		m.extractions.WithLabelValues(excerpt.ErrorCode(err)).Inc()
		return
	}
	outcome := OutcomePrimary
	switch {
	case record.IsPDF:
		outcome = OutcomePDF
	case record.IsFallback:
		outcome = OutcomeFallback
	}
	m.extractions.WithLabelValues(outcome).Inc()
	m.paragraphs.Observe(float64(len(record.Paragraphs)))
}

// Ensure Extractor implements excerpt.Extractor.
var _ excerpt.Extractor = (*Extractor)(nil)

// Extractor counts and times extractions.
type Extractor struct {
	next    excerpt.Extractor
	metrics *Metrics
}

// NewExtractor wraps next.
func NewExtractor(next excerpt.Extractor, m *Metrics) *Extractor {
	return &Extractor{next: next, metrics: m}
}

// Extract delegates to the wrapped extractor.
func (e *Extractor) Extract(ctx context.Context, doc excerpt.Document) (record *excerpt.ContentRecord, err error) {
	defer func(begin time.Time) {
		e.metrics.observeExtraction(record, err, time.Since(begin))
	}(time.Now())
	return e.next.Extract(ctx, doc)
}

// Ensure ContentService implements excerpt.ContentService.
var _ excerpt.ContentService = (*ContentService)(nil)

// ContentService records excerpt metrics. Extraction
// metrics come from Extractor, which sees only cache misses.
type ContentService struct {
	next    excerpt.ContentService
	metrics *Metrics
}

// NewContentService wraps next.
func NewContentService(next excerpt.ContentService, m *Metrics) *ContentService {
	return &ContentService{next: next, metrics: m}
}

// Extract delegates to the wrapped service.
func (s *ContentService) Extract(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	return s.next.Extract(ctx, doc)
}

// LocateSelection delegates to the wrapped service.
func (s *ContentService) LocateSelection(selected string) excerpt.LocateResult {
	return s.next.LocateSelection(selected)
}

// Truncate delegates to the wrapped service and observes the budget use.
func (s *ContentService) Truncate(record *excerpt.ContentRecord, loc excerpt.LocateResult, maxTokens int) *excerpt.TruncationResult {
	result := s.next.Truncate(record, loc, maxTokens)
	s.metrics.observeLocate(loc)
	s.metrics.truncations.Inc()
	if result != nil {
		s.metrics.usedTokens.Observe(float64(result.UsedTokens))
	}
	return result
}

// ClearCache delegates to the wrapped service.
func (s *ContentService) ClearCache() {
	s.next.ClearCache()
}

func (m *Metrics) observeLocate(loc excerpt.LocateResult) {
	if loc.Found {
		m.located.WithLabelValues("true").Inc()
		return
	}
	m.located.WithLabelValues("false").Inc()
}

// Ensure Explainer implements excerpt.Explainer.
var _ excerpt.Explainer = (*Explainer)(nil)

// Explainer counts and times model calls.
type Explainer struct {
	next    excerpt.Explainer
	metrics *Metrics
}

// NewExplainer wraps next.
func NewExplainer(next excerpt.Explainer, m *Metrics) *Explainer {
	return &Explainer{next: next, metrics: m}
}

// Explain delegates to the wrapped explainer.
func (e *Explainer) Explain(ctx context.Context, req *excerpt.ExplainRequest) (answer string, err error) {
	defer func(begin time.Time) {
		e.metrics.explainDuration.Observe(time.Since(begin).Seconds())
		if err != nil {
			e.metrics.explains.WithLabelValues("error").Inc()
			return
		}
		e.metrics.explains.WithLabelValues("ok").Inc()
	}(time.Now())
	return e.next.Explain(ctx, req)
}
