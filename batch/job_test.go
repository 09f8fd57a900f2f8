package batch_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJobs(t *testing.T) {
	t.Parallel()

	t.Run("parses jobs and settings", func(t *testing.T) {
		t.Parallel()

		f, err := batch.ParseJobs(strings.NewReader(`
concurrency: 2
rps: 0.5
jobs:
  - url: " https://go.dev/tour/channels "
    selection: Buffered channels
    mode: precise
  - url: https://go.dev/doc
    selection: modules
    maxTokens: 500
    explain: true
    template: technical
`))

		require.NoError(t, err)
		assert.Equal(t, 2, f.Concurrency)
		assert.InDelta(t, 0.5, f.RPS, 1e-9)
		require.Len(t, f.Jobs, 2)
		assert.Equal(t, "https://go.dev/tour/channels", f.Jobs[0].URL)
		assert.Equal(t, excerpt.ModePrecise, f.Jobs[0].Mode)
		assert.Equal(t, 500, f.Jobs[1].MaxTokens)
		assert.True(t, f.Jobs[1].Explain)
	})

	t.Run("converts jobs to requests", func(t *testing.T) {
		t.Parallel()

		req := batch.Job{URL: "https://a.example", Selection: "x", Mode: excerpt.ModeEconomic, Template: "technical"}.Request()

		assert.Equal(t, "https://a.example", req.Location)
		assert.Equal(t, "x", req.Selection)
		assert.Equal(t, 2000, req.Budget())
		assert.Equal(t, "technical", req.Template)
	})

	tests := []struct {
		name string
		yaml string
	}{
		{"empty file", ""},
		{"no jobs", "concurrency: 2\n"},
		{"missing url", "jobs:\n  - selection: x\n"},
		{"unknown key", "jobs:\n  - url: https://a.example\n    colour: red\n"},
		{"explain without selection", "jobs:\n  - url: https://a.example\n    explain: true\n"},
		{"malformed", "jobs: [\n"},
	}
	for _, tt := range tests {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := batch.ParseJobs(strings.NewReader(tt.yaml))

			assert.Equal(t, excerpt.EINVALID, excerpt.ErrorCode(err))
		})
	}
}
