package goquery_test

import (
	"testing"

	"github.com/fwojciec/excerpt/goquery"
	"github.com/stretchr/testify/assert"
)

func TestStripBoilerplate(t *testing.T) {
	t.Parallel()

	root := parse(t, `<html><head><style>p{}</style></head><body>
<header><p>Site header</p></header>
<nav><li>Home</li></nav>
<div class="sidebar"><p>Related</p></div>
<div class="cookie-banner"><p>We use cookies</p></div>
<div class="ads"><p>Buy now</p></div>
<p>Keep me.</p>
<script>var x = 1;</script>
<aside><p>Aside</p></aside>
<footer><p>Footer</p></footer>
</body></html>`)

	goquery.StripBoilerplate(root)

	assert.Equal(t, []string{"Keep me."}, texts(goquery.Segment(root)))
	assert.NotContains(t, goquery.PlainText(root), "var x")
}

func TestStripBoilerplate_NilRoot(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { goquery.StripBoilerplate(nil) })
}
