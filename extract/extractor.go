package extract

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/goquery"
	"golang.org/x/net/html"
)

// Ensure Extractor implements excerpt.Extractor at compile time.
var _ excerpt.Extractor = (*Extractor)(nil)

// Extractor produces content records by trying a fixed chain of
// strategies: the PDF text layer, the main-content algorithm, then
// boilerplate stripping. The first strategy that yields a record wins.
type Extractor struct {
	main   excerpt.MainContent
	settle Settle
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithSettle sets how dynamic documents are waited on before the
// main-content algorithm runs.
func WithSettle(s Settle) Option {
	return func(e *Extractor) {
		e.settle = s
	}
}

// NewExtractor creates an Extractor using main as its primary algorithm.
// A nil main skips straight to the fallback for non-PDF documents.
func NewExtractor(main excerpt.MainContent, opts ...Option) *Extractor {
	e := &Extractor{
		main:   main,
		settle: DefaultSettle,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// attempt is the outcome of one strategy: a record, a reason the strategy
// did not apply, or an error that ends the chain.
type attempt struct {
	record *excerpt.ContentRecord
	skip   string
	err    error
}

func skipped(format string, args ...any) attempt {
	return attempt{skip: fmt.Sprintf(format, args...)}
}

type strategy func(ctx context.Context, doc excerpt.Document, root *html.Node) attempt

// Extract returns the main content of doc.
func (e *Extractor) Extract(ctx context.Context, doc excerpt.Document) (*excerpt.ContentRecord, error) {
	if doc == nil {
		return nil, excerpt.Errorf(excerpt.EINVALID, "document required")
	}

	root, err := doc.Root(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if excerpt.ErrorCode(err) == excerpt.EUNAVAILABLE {
			return nil, err
		}
		return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "cannot read %s: %v", doc.Location(), err)
	}

	var reasons []string
	for _, s := range []strategy{e.pdf, e.primary, e.fallback} {
		a := s(ctx, doc, root)
		if a.err != nil {
			return nil, a.err
		}
		if a.record != nil {
			return finish(doc, a.record), nil
		}
		reasons = append(reasons, a.skip)
	}
	return nil, excerpt.Errorf(excerpt.EUNAVAILABLE, "no strategy could extract %s: %s", doc.Location(), strings.Join(reasons, "; "))
}

// pdf reads the text layer of a PDF viewer. A PDF without a text layer
// goes through the fallback, and fails if that finds no text either.
func (e *Extractor) pdf(ctx context.Context, doc excerpt.Document, root *html.Node) attempt {
	if !goquery.IsPDF(doc, root) {
		return skipped("not a pdf")
	}

	clone, err := doc.Clone(ctx)
	if err != nil {
		return attempt{err: unavailable(ctx, doc, err)}
	}

	layers := goquery.TextLayers(clone)
	if len(layers) == 0 {
		a := e.fallback(ctx, doc, root)
		if a.err != nil {
			return a
		}
		if a.record == nil || len(a.record.Paragraphs) == 0 {
			return attempt{err: excerpt.Errorf(excerpt.EPDFUNAVAILABLE, "pdf %s has no text layer", doc.Location())}
		}
		a.record.IsPDF = true
		return a
	}

	record := &excerpt.ContentRecord{Title: doc.Title(), IsPDF: true}
	var texts, rich []string
	for _, layer := range layers {
		for _, p := range goquery.Segment(layer) {
			p.Index = len(record.Paragraphs)
			record.Paragraphs = append(record.Paragraphs, p)
		}
		if text := goquery.PlainText(layer); text != "" {
			texts = append(texts, text)
		}
		markup, err := render(layer)
		if err != nil {
			return attempt{err: err}
		}
		rich = append(rich, markup)
	}
	record.PlainText = strings.Join(texts, "\n")
	record.RichContent = strings.Join(rich, "\n")
	return attempt{record: record}
}

// primary runs the main-content algorithm over a copy of the settled tree.
func (e *Extractor) primary(ctx context.Context, doc excerpt.Document, _ *html.Node) attempt {
	if e.main == nil {
		return skipped("no main-content algorithm")
	}

	if doc.Dynamic() {
		if err := e.settle.Wait(ctx, doc); err != nil {
			return attempt{err: err}
		}
	}

	clone, err := doc.Clone(ctx)
	if err != nil {
		return attempt{err: unavailable(ctx, doc, err)}
	}

	article, err := e.main.Parse(clone, doc.Location())
	if err != nil {
		return skipped("main content: %v", err)
	}
	if article == nil || article.Node == nil {
		return skipped("main content: nothing found")
	}

	paragraphs := goquery.Segment(article.Node)
	if len(paragraphs) == 0 {
		return skipped("main content: no paragraphs")
	}

	markup, err := render(article.Node)
	if err != nil {
		return attempt{err: err}
	}

	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		text = goquery.PlainText(article.Node)
	}

	title := article.Title
	if title == "" {
		title = doc.Title()
	}

	return attempt{record: &excerpt.ContentRecord{
		Title:       title,
		PlainText:   text,
		RichContent: markup,
		Paragraphs:  paragraphs,
		Excerpt:     article.Excerpt,
		Byline:      article.Byline,
	}}
}

// fallback strips page chrome from a copy of the tree and keeps the body.
func (e *Extractor) fallback(ctx context.Context, doc excerpt.Document, _ *html.Node) attempt {
	clone, err := doc.Clone(ctx)
	if err != nil {
		return attempt{err: unavailable(ctx, doc, err)}
	}

	record := &excerpt.ContentRecord{Title: doc.Title(), IsFallback: true}

	goquery.StripBoilerplate(clone)
	body := goquery.Body(clone)
	if body == nil {
		return attempt{record: record}
	}

	markup, err := render(body)
	if err != nil {
		return attempt{err: err}
	}
	record.Paragraphs = goquery.Segment(body)
	record.PlainText = goquery.PlainText(body)
	record.RichContent = markup
	return attempt{record: record}
}

func finish(doc excerpt.Document, record *excerpt.ContentRecord) *excerpt.ContentRecord {
	record.Location = doc.Location()
	record.EstimatedTokens = excerpt.EstimateTokens(record.PlainText)
	record.ContentHash = hashContent(record.PlainText)
	return record
}

func unavailable(ctx context.Context, doc excerpt.Document, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	var e *excerpt.Error
	if errors.As(err, &e) {
		return err
	}
	return excerpt.Errorf(excerpt.EUNAVAILABLE, "cannot copy %s: %v", doc.Location(), err)
}

func render(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", excerpt.Errorf(excerpt.EINTERNAL, "failed to render content: %v", err)
	}
	return buf.String(), nil
}

// hashContent returns the xxHash of text as a 16 digit hex string.
func hashContent(text string) string {
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, xxhash.Sum64String(text)))
}
