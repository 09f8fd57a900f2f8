package batch

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/extract"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of URLs processed at once.
const DefaultConcurrency = 4

// Result is the outcome of one job.
type Result struct {
	Job      Job               `json:"job"`
	Response *extract.Response `json:"response,omitempty"`
	Err      error             `json:"-"`
}

// ProgressFunc is called as each job finishes.
type ProgressFunc func(completed, total int, r Result)

// Runner runs jobs through a Workflow.
//
// Jobs are grouped by URL. Each group opens its document once, runs in job
// order against a content service of its own, and so hits that service's
// cache after the first job. Groups run concurrently.
type Runner struct {
	Opener excerpt.Opener

	// NewContent returns the content service of one URL group.
	NewContent func() excerpt.ContentService

	Explainer excerpt.Explainer
	History   excerpt.ExcerptService

	// Markdown renders every excerpt as Markdown when set.
	Markdown excerpt.MarkdownRenderer

	// Limiter spaces out document opens per host when set.
	Limiter *DomainLimiter

	Concurrency int
	Progress    ProgressFunc
}

// Run executes jobs and returns one result per job, in job order. Job
// failures are reported in their Result; Run itself fails only when ctx
// ends.
func (r *Runner) Run(ctx context.Context, jobs []Job) ([]Result, error) {
	concurrency := r.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	results := make([]Result, len(jobs))
	var completed atomic.Int64
	var progressMu sync.Mutex
	report := func(i int) {
		n := completed.Add(1)
		if r.Progress == nil {
			return
		}
		progressMu.Lock()
		defer progressMu.Unlock()
		r.Progress(int(n), len(jobs), results[i])
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, group := range groupByURL(jobs) {
		g.Go(func() error {
			r.runGroup(gctx, jobs, group, results, report)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

func (r *Runner) runGroup(ctx context.Context, jobs []Job, group []int, results []Result, report func(int)) {
	opener := &sharedOpener{next: r.Opener, limiter: r.Limiter}
	defer opener.Close()

	w := &extract.Workflow{
		Opener:    opener,
		Content:   r.NewContent(),
		Explainer: r.Explainer,
		History:   r.History,
		Markdown:  r.Markdown,
	}

	for _, i := range group {
		results[i].Job = jobs[i]
		if err := ctx.Err(); err != nil {
			results[i].Err = err
		} else {
			req := jobs[i].Request()
			req.Markdown = r.Markdown != nil
			results[i].Response, results[i].Err = w.Run(ctx, req)
		}
		report(i)
	}
}

// groupByURL returns job indexes grouped by URL, groups ordered by first
// appearance.
func groupByURL(jobs []Job) [][]int {
	index := make(map[string]int)
	var groups [][]int
	for i, j := range jobs {
		g, ok := index[j.URL]
		if !ok {
			g = len(groups)
			index[j.URL] = g
			groups = append(groups, nil)
		}
		groups[g] = append(groups[g], i)
	}
	return groups
}

// sharedOpener opens a document once and hands the same document to every
// caller. The document is closed by Close, not by the callers.
type sharedOpener struct {
	next    excerpt.Opener
	limiter *DomainLimiter

	doc excerpt.Document
	err error
}

func (o *sharedOpener) Open(ctx context.Context, location string) (excerpt.Document, error) {
	if o.doc == nil && o.err == nil {
		o.doc, o.err = o.open(ctx, location)
	}
	if o.err != nil {
		return nil, o.err
	}
	return sharedDocument{o.doc}, nil
}

func (o *sharedOpener) open(ctx context.Context, location string) (excerpt.Document, error) {
	if o.limiter != nil {
		if err := o.limiter.WaitURL(ctx, location); err != nil {
			return nil, err
		}
	}
	return o.next.Open(ctx, location)
}

func (o *sharedOpener) Close() {
	if c, ok := o.doc.(io.Closer); ok {
		c.Close()
	}
}

// sharedDocument hides the Close method of the wrapped document.
type sharedDocument struct {
	excerpt.Document
}
