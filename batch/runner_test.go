package batch_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	"github.com/fwojciec/excerpt/extract"
	"github.com/fwojciec/excerpt/goquery"
	"github.com/fwojciec/excerpt/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageHTML = `<html><head><title>Channels</title></head><body><main>
<p>Channels are typed conduits through which you send and receive values with the channel operator.</p>
<p>By default sends and receives block until the other side is ready, which lets goroutines synchronize.</p>
<p>Buffered channels accept a limited number of values without a corresponding receiver.</p>
</main></body></html>`

type closingDocument struct {
	*goquery.Document
	closed *atomic.Int32
}

func (d closingDocument) Close() error {
	d.closed.Add(1)
	return nil
}

type fixture struct {
	opens       sync.Map
	extractions atomic.Int32
	closed      atomic.Int32
}

func (f *fixture) runner(t *testing.T) *batch.Runner {
	t.Helper()
	return &batch.Runner{
		Opener: &mock.Opener{OpenFn: func(_ context.Context, location string) (excerpt.Document, error) {
			n, _ := f.opens.LoadOrStore(location, new(atomic.Int32))
			n.(*atomic.Int32).Add(1)
			if location == "https://missing.example" {
				return nil, excerpt.Errorf(excerpt.ENOTFOUND, "gone")
			}
			doc, err := goquery.NewDocument(pageHTML, location, "text/html")
			require.NoError(t, err)
			return closingDocument{Document: doc, closed: &f.closed}, nil
		}},
		NewContent: func() excerpt.ContentService {
			inner := extract.NewExtractor(nil)
			return extract.NewService(&mock.Extractor{ExtractFn: func(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
				f.extractions.Add(1)
				return inner.Extract(ctx, doc)
			}})
		},
	}
}

func (f *fixture) openCount(location string) int32 {
	n, ok := f.opens.Load(location)
	if !ok {
		return 0
	}
	return n.(*atomic.Int32).Load()
}

func TestRunner_Run(t *testing.T) {
	t.Parallel()

	t.Run("returns results in job order", func(t *testing.T) {
		t.Parallel()

		var f fixture
		jobs := []batch.Job{
			{URL: "https://a.example", Selection: "Buffered channels"},
			{URL: "https://b.example", Selection: "Channels are typed"},
			{URL: "https://a.example", Selection: "By default sends"},
		}

		results, err := f.runner(t).Run(context.Background(), jobs)

		require.NoError(t, err)
		require.Len(t, results, 3)
		for i, r := range results {
			require.NoError(t, r.Err)
			assert.Equal(t, jobs[i], r.Job)
			assert.True(t, r.Response.Locate.Found)
		}
		assert.Equal(t, 2, results[0].Response.Locate.ParagraphIndex)
		assert.Equal(t, 0, results[1].Response.Locate.ParagraphIndex)
		assert.Equal(t, 1, results[2].Response.Locate.ParagraphIndex)
	})

	t.Run("opens and extracts each URL once", func(t *testing.T) {
		t.Parallel()

		var f fixture
		jobs := []batch.Job{
			{URL: "https://a.example", Selection: "Buffered"},
			{URL: "https://a.example", Selection: "Channels"},
			{URL: "https://a.example", Selection: "default"},
			{URL: "https://b.example", Selection: "Buffered"},
		}

		_, err := f.runner(t).Run(context.Background(), jobs)

		require.NoError(t, err)
		assert.Equal(t, int32(1), f.openCount("https://a.example"))
		assert.Equal(t, int32(1), f.openCount("https://b.example"))
		assert.Equal(t, int32(2), f.extractions.Load())
		assert.Equal(t, int32(2), f.closed.Load())
	})

	t.Run("reports job failures without stopping", func(t *testing.T) {
		t.Parallel()

		var f fixture
		jobs := []batch.Job{
			{URL: "https://missing.example", Selection: "x"},
			{URL: "https://missing.example", Selection: "y"},
			{URL: "https://a.example", Selection: "Buffered"},
		}

		results, err := f.runner(t).Run(context.Background(), jobs)

		require.NoError(t, err)
		assert.Equal(t, excerpt.ENOTFOUND, excerpt.ErrorCode(results[0].Err))
		assert.Equal(t, excerpt.ENOTFOUND, excerpt.ErrorCode(results[1].Err))
		assert.Equal(t, int32(1), f.openCount("https://missing.example"))
		require.NoError(t, results[2].Err)
	})

	t.Run("reports progress for every job", func(t *testing.T) {
		t.Parallel()

		var f fixture
		r := f.runner(t)
		r.Concurrency = 2
		var seen []int
		r.Progress = func(completed, total int, _ batch.Result) {
			assert.Equal(t, 3, total)
			seen = append(seen, completed)
		}

		_, err := r.Run(context.Background(), []batch.Job{
			{URL: "https://a.example"}, {URL: "https://b.example"}, {URL: "https://c.example"},
		})

		require.NoError(t, err)
		assert.ElementsMatch(t, []int{1, 2, 3}, seen)
	})

	t.Run("records history", func(t *testing.T) {
		t.Parallel()

		var f fixture
		var stored atomic.Int32
		r := f.runner(t)
		r.History = &mock.ExcerptService{CreateExcerptFn: func(context.Context, *excerpt.Excerpt) error {
			stored.Add(1)
			return nil
		}}

		_, err := r.Run(context.Background(), []batch.Job{
			{URL: "https://a.example", Selection: "Buffered"},
			{URL: "https://b.example", Selection: "Channels"},
		})

		require.NoError(t, err)
		assert.Equal(t, int32(2), stored.Load())
	})

	t.Run("returns context error when canceled", func(t *testing.T) {
		t.Parallel()

		var f fixture
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results, err := f.runner(t).Run(ctx, []batch.Job{{URL: "https://a.example"}})

		require.ErrorIs(t, err, context.Canceled)
		require.ErrorIs(t, results[0].Err, context.Canceled)
	})
}
