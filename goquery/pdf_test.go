package goquery_test

import (
	"testing"

	"github.com/fwojciec/excerpt/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPDF(t *testing.T) {
	t.Parallel()

	html := `<html><body><p>x</p></body></html>`

	tests := []struct {
		name        string
		markup      string
		location    string
		contentType string
		want        bool
	}{
		{"content type", html, "https://example.com/doc", "application/pdf", true},
		{"content type with parameters", html, "https://example.com/doc", "Application/PDF; charset=binary", true},
		{"viewer body class", `<html><body class="pdf-viewer"></body></html>`, "https://example.com/view", "text/html", true},
		{"pdf extension", html, "https://example.com/paper.PDF", "", true},
		{"pdf with query", html, "https://example.com/paper.pdf?page=2", "", true},
		{"html page", html, "https://example.com/pdf-guide", "text/html", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := goquery.NewDocument(tt.markup, tt.location, tt.contentType)
			require.NoError(t, err)
			root, err := doc.Root(t.Context())
			require.NoError(t, err)

			assert.Equal(t, tt.want, goquery.IsPDF(doc, root))
		})
	}
}

func TestTextLayers(t *testing.T) {
	t.Parallel()

	root := parse(t, `<body class="pdf-viewer">
<div class="page"><div class="textLayer"><p>Page one.</p></div></div>
<div class="page"><div class="textLayer"><p>Page two.</p></div></div>
</body>`)

	layers := goquery.TextLayers(root)

	require.Len(t, layers, 2)
	assert.Equal(t, []string{"Page one."}, texts(goquery.Segment(layers[0])))
	assert.Empty(t, goquery.TextLayers(parse(t, `<body><p>none</p></body>`)))
}
