package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	"github.com/fwojciec/excerpt/fs"
)

// DefaultRPS is the per-host request rate when neither the flag nor the job
// file sets one.
const DefaultRPS = 1.0

// batchLine is one JSON line of batch output.
type batchLine struct {
	URL       string                    `json:"url"`
	Selection string                    `json:"selection"`
	Error     string                    `json:"error,omitempty"`
	Locate    *excerpt.LocateResult     `json:"locate,omitempty"`
	Result    *excerpt.TruncationResult `json:"result,omitempty"`
	Answer    string                    `json:"answer,omitempty"`
	ID        string                    `json:"id,omitempty"`
}

// Run executes the batch command.
func (c *BatchCmd) Run(deps *Dependencies) error {
	f, err := os.Open(c.File)
	if err != nil {
		return err
	}
	jobs, err := batch.ParseJobs(f)
	f.Close()
	if err != nil {
		return err
	}

	for _, job := range jobs.Jobs {
		if job.Explain && deps.Runner.Explainer == nil {
			return excerpt.Errorf(excerpt.EINVALID, "job %q asks for an explanation but GEMINI_API_KEY is not set", job.URL)
		}
	}

	runner := *deps.Runner
	runner.Concurrency = jobs.Concurrency
	if c.Concurrency > 0 {
		runner.Concurrency = c.Concurrency
	}
	rps := c.RPS
	if rps <= 0 {
		rps = jobs.RPS
	}
	if rps <= 0 {
		rps = DefaultRPS
	}
	runner.Limiter = batch.NewDomainLimiter(rps)
	runner.Progress = func(completed, total int, r batch.Result) {
		status := "ok"
		if r.Err != nil {
			status = "error: " + excerpt.ErrorMessage(r.Err)
		}
		fmt.Fprintf(deps.Stderr, "[%d/%d] %s %s\n", completed, total, r.Job.URL, status)
	}

	var store *fs.ExcerptStore
	if c.Out != "" {
		store = fs.NewExcerptStore(filepath.Dir(c.Out), filepath.Base(c.Out))
	}

	results, runErr := runner.Run(deps.Ctx, jobs.Jobs)

	failed := 0
	enc := json.NewEncoder(deps.Stdout)
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
		if c.JSON {
			if err := enc.Encode(newBatchLine(r)); err != nil {
				return err
			}
		}
		if store != nil && r.Err == nil {
			if _, err := store.Save(resultExcerpt(r), r.Response.Markdown); err != nil {
				_ = store.Abort()
				return err
			}
		}
	}

	if store != nil {
		if runErr != nil {
			_ = store.Abort()
		} else if err := store.Commit(); err != nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Fprintf(deps.Stderr, "%d jobs, %d failed\n", len(results), failed)
	if failed > 0 {
		return excerpt.Errorf(excerpt.EINTERNAL, "%d of %d jobs failed", failed, len(results))
	}
	return nil
}

func newBatchLine(r batch.Result) batchLine {
	line := batchLine{URL: r.Job.URL, Selection: r.Job.Selection}
	if r.Err != nil {
		line.Error = excerpt.ErrorMessage(r.Err)
		return line
	}
	line.Locate = &r.Response.Locate
	line.Result = r.Response.Result
	line.Answer = r.Response.Answer
	if r.Response.Excerpt != nil {
		line.ID = r.Response.Excerpt.ID
	}
	return line
}

// resultExcerpt returns the stored excerpt of r, or builds one when history
// is disabled.
func resultExcerpt(r batch.Result) *excerpt.Excerpt {
	if r.Response.Excerpt != nil {
		return r.Response.Excerpt
	}
	e := excerpt.NewExcerpt(r.Response.Record, r.Job.Selection, excerpt.ParseContextMode(string(r.Job.Mode)), r.Response.Locate, r.Response.Result)
	e.MaxTokens = r.Job.Request().Budget()
	e.Answer = r.Response.Answer
	return e
}
