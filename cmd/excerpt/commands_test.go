package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	main "github.com/fwojciec/excerpt/cmd/excerpt"
	"github.com/fwojciec/excerpt/extract"
	"github.com/fwojciec/excerpt/goquery"
	"github.com/fwojciec/excerpt/htmltomarkdown"
	"github.com/fwojciec/excerpt/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pageHTML = `<html><head><title>Channels</title></head><body>
<nav><li>Home</li></nav>
<p>Channels are typed conduits through which you send and receive values with the channel operator.</p>
<p>By default sends and receives block until the other side is ready, which lets goroutines synchronize.</p>
<p>Buffered channels accept a limited number of values without a corresponding receiver.</p>
</body></html>`

func newDeps(t *testing.T) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	opener := &mock.Opener{OpenFn: func(_ context.Context, location string) (excerpt.Document, error) {
		if strings.Contains(location, "missing") {
			return nil, excerpt.Errorf(excerpt.ENOTFOUND, "%s not found", location)
		}
		return goquery.NewDocument(pageHTML, location, "text/html")
	}}
	content := extract.NewService(extract.NewExtractor(nil))
	converter := htmltomarkdown.NewConverter()

	deps := &main.Dependencies{
		Ctx:       context.Background(),
		Stdout:    stdout,
		Stderr:    stderr,
		Logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		Mode:      excerpt.ModeStandard,
		Opener:    opener,
		Content:   content,
		Converter: converter,
		Tokens:    excerpt.HeuristicCounter{},
		Workflow: &extract.Workflow{
			Opener:   opener,
			Content:  content,
			Markdown: converter,
		},
		Runner: &batch.Runner{
			Opener:     opener,
			NewContent: func() excerpt.ContentService { return extract.NewService(extract.NewExtractor(nil)) },
		},
	}
	return deps, stdout, stderr
}

func TestExtractCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints paragraphs", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.ExtractCmd{URL: "https://go.dev/tour", Format: "text"}).Run(deps)

		require.NoError(t, err)
		out := stdout.String()
		assert.Contains(t, out, "Title:      Channels")
		assert.Contains(t, out, "Paragraphs: 3")
		assert.Contains(t, out, "Source:     fallback")
		assert.Contains(t, out, "[2] Buffered channels accept")
		assert.NotContains(t, out, "Home")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.ExtractCmd{URL: "https://go.dev/tour", Format: "json"}).Run(deps)

		require.NoError(t, err)
		var view map[string]any
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &view))
		assert.Equal(t, "https://go.dev/tour", view["url"])
		assert.Equal(t, true, view["sufficient"])
		assert.Len(t, view["paragraphs"], 3)
		assert.Len(t, view["contentHash"], 16)
	})

	t.Run("prints markdown", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.ExtractCmd{URL: "https://go.dev/tour", Format: "markdown"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Buffered channels accept")
		assert.NotContains(t, stdout.String(), "<p>")
	})

	t.Run("reports tokens from the configured counter", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		var counted string
		deps.Tokens = &mock.TokenCounter{CountTokensFn: func(_ context.Context, text string) (int, error) {
			counted = text
			return 1234, nil
		}}

		err := (&main.ExtractCmd{URL: "https://go.dev/tour", Format: "json"}).Run(deps)

		require.NoError(t, err)
		var view map[string]any
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &view))
		assert.InDelta(t, 1234, view["tokens"], 0)
		assert.Contains(t, counted, "Buffered channels accept")
	})

	t.Run("returns token counter errors", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		deps.Tokens = &mock.TokenCounter{CountTokensFn: func(context.Context, string) (int, error) {
			return 0, excerpt.Errorf(excerpt.EINVALID, "unsupported model")
		}}

		err := (&main.ExtractCmd{URL: "https://go.dev/tour", Format: "text"}).Run(deps)

		assert.Equal(t, excerpt.EINVALID, excerpt.ErrorCode(err))
		assert.Empty(t, stdout.String())
	})

	t.Run("returns open errors", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)

		err := (&main.ExtractCmd{URL: "https://missing.example", Format: "text"}).Run(deps)

		assert.Equal(t, excerpt.ENOTFOUND, excerpt.ErrorCode(err))
	})
}

func TestContextCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the excerpt and a summary", func(t *testing.T) {
		t.Parallel()

		deps, stdout, stderr := newDeps(t)

		err := (&main.ContextCmd{URL: "https://go.dev/tour", Selection: "buffered channels"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Buffered channels accept")
		assert.Contains(t, stderr.String(), "selection found in paragraph 2")
		assert.Contains(t, stderr.String(), "3 of 3 paragraphs")
	})

	t.Run("prints markdown", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.ContextCmd{URL: "https://go.dev/tour", Selection: "buffered", Markdown: true}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "Buffered channels accept")
	})

	t.Run("prints JSON", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)

		err := (&main.ContextCmd{URL: "https://go.dev/tour", Selection: "nowhere", JSON: true}).Run(deps)

		require.NoError(t, err)
		var resp map[string]any
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &resp))
		assert.Equal(t, false, resp["locate"].(map[string]any)["found"])
	})

	t.Run("records history", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(t)
		deps.Workflow.History = &mock.ExcerptService{CreateExcerptFn: func(_ context.Context, e *excerpt.Excerpt) error {
			e.ID = "ex-1"
			return nil
		}}

		err := (&main.ContextCmd{URL: "https://go.dev/tour", Selection: "Buffered"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "saved as ex-1")
	})
}

func TestExplainCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the answer", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		var got *excerpt.ExplainRequest
		deps.Workflow.Explainer = &mock.Explainer{ExplainFn: func(_ context.Context, req *excerpt.ExplainRequest) (string, error) {
			got = req
			return "A buffer holds values.", nil
		}}

		err := (&main.ExplainCmd{URL: "https://go.dev/tour", Selection: "Buffered channels", Template: "technical"}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "A buffer holds values.")
		require.NotNil(t, got)
		assert.Equal(t, "technical", got.Template)
		assert.NotEmpty(t, got.Context)
	})

	t.Run("fails without an explainer", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)

		err := (&main.ExplainCmd{URL: "https://go.dev/tour", Selection: "x"}).Run(deps)

		assert.Equal(t, excerpt.EINVALID, excerpt.ErrorCode(err))
	})
}

func writeJobs(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))
	return path
}

func TestBatchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("runs jobs and writes markdown files", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(t)
		deps.Runner.Markdown = htmltomarkdown.NewConverter()
		out := filepath.Join(t.TempDir(), "excerpts")
		path := writeJobs(t, `
rps: 100
jobs:
  - url: https://go.dev/tour/channels
    selection: Buffered channels
  - url: https://go.dev/doc
    selection: By default
`)

		err := (&main.BatchCmd{File: path, Out: out}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "2 jobs, 0 failed")
		data, err := os.ReadFile(filepath.Join(out, "go.dev", "tour", "channels.md"))
		require.NoError(t, err)
		assert.Contains(t, string(data), "selection: Buffered channels")
		assert.Contains(t, string(data), "Buffered channels accept")
		_, err = os.Stat(filepath.Join(out, "go.dev", "doc.md"))
		assert.NoError(t, err)
	})

	t.Run("prints JSON lines and reports failures", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		path := writeJobs(t, `
jobs:
  - url: https://missing.example
    selection: x
  - url: https://go.dev/tour
    selection: Buffered
`)

		err := (&main.BatchCmd{File: path, JSON: true, RPS: 100}).Run(deps)

		require.Error(t, err)
		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)
		var first, second map[string]any
		require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
		assert.Contains(t, first["error"], "not found")
		assert.Equal(t, true, second["locate"].(map[string]any)["found"])
	})

	t.Run("needs an explainer for explain jobs", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)
		path := writeJobs(t, "jobs:\n  - url: https://go.dev\n    selection: x\n    explain: true\n")

		err := (&main.BatchCmd{File: path}).Run(deps)

		assert.Equal(t, excerpt.EINVALID, excerpt.ErrorCode(err))
	})
}

func TestHistoryCmds(t *testing.T) {
	t.Parallel()

	stored := &excerpt.Excerpt{
		ID:         "ex-1",
		Location:   "https://go.dev/tour",
		Title:      "Channels",
		Selection:  "Buffered channels",
		Mode:       excerpt.ModeEconomic,
		MaxTokens:  2000,
		UsedTokens: 55,
		Included:   3,
		Total:      3,
		Found:      true,
		Content:    "Buffered channels accept values.",
		CreatedAt:  time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	t.Run("list prints excerpts", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		var gotFilter excerpt.ExcerptFilter
		deps.History = &mock.ExcerptService{FindExcerptsFn: func(_ context.Context, filter excerpt.ExcerptFilter) ([]*excerpt.Excerpt, error) {
			gotFilter = filter
			return []*excerpt.Excerpt{stored}, nil
		}}

		err := (&main.HistoryListCmd{URL: "https://go.dev/tour", Limit: 5}).Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stdout.String(), "ex-1")
		assert.Contains(t, stdout.String(), `"Buffered channels"`)
		assert.Equal(t, 5, gotFilter.Limit)
		require.NotNil(t, gotFilter.Location)
		assert.Equal(t, "https://go.dev/tour", *gotFilter.Location)
	})

	t.Run("list reports empty history", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		deps.History = &mock.ExcerptService{FindExcerptsFn: func(context.Context, excerpt.ExcerptFilter) ([]*excerpt.Excerpt, error) {
			return nil, nil
		}}

		require.NoError(t, (&main.HistoryListCmd{Limit: 20}).Run(deps))
		assert.Contains(t, stdout.String(), "No excerpts found")
	})

	t.Run("show prints one excerpt", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		deps.History = &mock.ExcerptService{FindExcerptByIDFn: func(_ context.Context, id string) (*excerpt.Excerpt, error) {
			if id != "ex-1" {
				return nil, excerpt.Errorf(excerpt.ENOTFOUND, "excerpt not found")
			}
			return stored, nil
		}}

		require.NoError(t, (&main.HistoryShowCmd{ID: "ex-1"}).Run(deps))
		assert.Contains(t, stdout.String(), "Mode:      economic (2000 tokens)")
		assert.Contains(t, stdout.String(), "Buffered channels accept values.")

		err := (&main.HistoryShowCmd{ID: "nope"}).Run(deps)
		assert.Equal(t, excerpt.ENOTFOUND, excerpt.ErrorCode(err))
	})

	t.Run("clear deletes by URL", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(t)
		deps.History = &mock.ExcerptService{DeleteExcerptsFn: func(_ context.Context, filter excerpt.ExcerptFilter) (int, error) {
			require.NotNil(t, filter.Location)
			return 4, nil
		}}

		require.NoError(t, (&main.HistoryClearCmd{URL: "https://go.dev/tour"}).Run(deps))
		assert.Contains(t, stdout.String(), "Deleted 4 excerpt(s)")
	})

	t.Run("fails when history is disabled", func(t *testing.T) {
		t.Parallel()

		deps, _, _ := newDeps(t)

		err := (&main.HistoryListCmd{}).Run(deps)

		assert.Equal(t, excerpt.EINVALID, excerpt.ErrorCode(err))
	})
}
