package prometheus_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/mock"
	exprom "github.com/fwojciec/excerpt/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *exprom.Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("counts outcomes", func(t *testing.T) {
		t.Parallel()

		m := exprom.NewMetrics()
		records := []*excerpt.ContentRecord{
			{Paragraphs: []*excerpt.Paragraph{{}}},
			{IsFallback: true},
			{IsPDF: true, IsFallback: true},
		}
		i := 0
		inner := &mock.Extractor{ExtractFn: func(context.Context, excerpt.Document) (*excerpt.ContentRecord, error) {
			r := records[i]
			i++
			return r, nil
		}}
		ex := exprom.NewExtractor(inner, m)

		for range records {
			_, err := ex.Extract(context.Background(), nil)
			require.NoError(t, err)
		}

		body := scrape(t, m)
		assert.Contains(t, body, `excerpt_extractions_total{outcome="primary"} 1`)
		assert.Contains(t, body, `excerpt_extractions_total{outcome="fallback"} 1`)
		assert.Contains(t, body, `excerpt_extractions_total{outcome="pdf"} 1`)
		assert.Contains(t, body, "excerpt_extraction_duration_seconds_count 3")
		assert.Contains(t, body, "excerpt_extraction_paragraphs_count 3")
	})

	t.Run("labels errors by code", func(t *testing.T) {
		t.Parallel()

		m := exprom.NewMetrics()
		inner := &mock.Extractor{ExtractFn: func(context.Context, excerpt.Document) (*excerpt.ContentRecord, error) {
			return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "unreadable")
		}}

		_, err := exprom.NewExtractor(inner, m).Extract(context.Background(), nil)

		require.Error(t, err)
		assert.Contains(t, scrape(t, m), `excerpt_extractions_total{outcome="extraction_unavailable"} 1`)
	})
}

func TestContentService_Truncate(t *testing.T) {
	t.Parallel()

	m := exprom.NewMetrics()
	inner := &mock.ContentService{TruncateFn: func(*excerpt.ContentRecord, excerpt.LocateResult, int) *excerpt.TruncationResult {
		return &excerpt.TruncationResult{UsedTokens: 100}
	}}
	svc := exprom.NewContentService(inner, m)

	svc.Truncate(&excerpt.ContentRecord{}, excerpt.LocateResult{Found: true, ParagraphIndex: 0}, 200)
	svc.Truncate(&excerpt.ContentRecord{}, excerpt.NotFound, 200)

	body := scrape(t, m)
	assert.Contains(t, body, "excerpt_truncations_total 2")
	assert.Contains(t, body, `excerpt_selections_total{found="true"} 1`)
	assert.Contains(t, body, `excerpt_selections_total{found="false"} 1`)
	assert.Contains(t, body, "excerpt_excerpt_tokens_sum 200")
}

func TestExplainer_Explain(t *testing.T) {
	t.Parallel()

	m := exprom.NewMetrics()
	fail := false
	inner := &mock.Explainer{ExplainFn: func(context.Context, *excerpt.ExplainRequest) (string, error) {
		if fail {
			return "", errors.New("quota")
		}
		return "ok", nil
	}}
	ex := exprom.NewExplainer(inner, m)

	_, err := ex.Explain(context.Background(), &excerpt.ExplainRequest{Selection: "x"})
	require.NoError(t, err)
	fail = true
	_, err = ex.Explain(context.Background(), &excerpt.ExplainRequest{Selection: "x"})
	require.Error(t, err)

	body := scrape(t, m)
	assert.Contains(t, body, `excerpt_explains_total{result="ok"} 1`)
	assert.Contains(t, body, `excerpt_explains_total{result="error"} 1`)
}

func TestMetrics_WatchCache(t *testing.T) {
	t.Parallel()

	m := exprom.NewMetrics()
	populated := false
	m.WatchCache(func() bool { return populated })

	assert.Contains(t, scrape(t, m), "excerpt_cache_populated 0")
	populated = true
	assert.Contains(t, scrape(t, m), "excerpt_cache_populated 1")
}
