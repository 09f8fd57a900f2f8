package excerpt_test

import (
	"testing"

	"github.com/fwojciec/excerpt"
	"github.com/stretchr/testify/assert"
)

func paragraphs(texts ...string) []*excerpt.Paragraph {
	ps := make([]*excerpt.Paragraph, len(texts))
	for i, text := range texts {
		ps[i] = &excerpt.Paragraph{Index: i, Text: text, Length: len([]rune(text))}
	}
	return ps
}

func TestLocate(t *testing.T) {
	t.Parallel()

	ps := paragraphs(
		"Goroutines are lightweight threads.",
		"Channels connect goroutines.",
		"A select statement waits on channels.",
	)

	t.Run("finds paragraph containing selection", func(t *testing.T) {
		t.Parallel()

		got := excerpt.Locate(ps, "select statement")

		assert.Equal(t, excerpt.LocateResult{Found: true, ParagraphIndex: 2}, got)
	})

	t.Run("matches case-insensitively", func(t *testing.T) {
		t.Parallel()

		got := excerpt.Locate(ps, "CHANNELS CONNECT")

		assert.Equal(t, 1, got.ParagraphIndex)
		assert.True(t, got.Found)
	})

	t.Run("trims and collapses whitespace in selection", func(t *testing.T) {
		t.Parallel()

		got := excerpt.Locate(ps, "  lightweight\n\tthreads  ")

		assert.Equal(t, 0, got.ParagraphIndex)
	})

	t.Run("first match wins when phrase recurs", func(t *testing.T) {
		t.Parallel()

		got := excerpt.Locate(ps, "goroutines")

		assert.Equal(t, 0, got.ParagraphIndex)
	})

	t.Run("returns not found for absent text", func(t *testing.T) {
		t.Parallel()

		got := excerpt.Locate(ps, "mutex")

		assert.Equal(t, excerpt.LocateResult{Found: false, ParagraphIndex: -1}, got)
	})

	t.Run("returns not found for empty selection", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, excerpt.NotFound, excerpt.Locate(ps, "   "))
	})

	t.Run("returns not found without paragraphs", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, excerpt.NotFound, excerpt.Locate(nil, "anything"))
	})
}
