package excerpt

import (
	"context"
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Document is a source of content: a web page, a rendered PDF, or any
// other tree of markup with a stable location identity.
type Document interface {
	// Location identifies the document. It keys the extraction cache.
	Location() string

	// Title returns the document title, if any.
	Title() string

	// ContentType is a classification hint such as "text/html" or
	// "application/pdf". It may be empty.
	ContentType() string

	// Dynamic reports whether the tree may still change after it was
	// opened, as with pages rendered by a live browser.
	Dynamic() bool

	// Root returns the document's current tree. Callers must treat it as
	// read-only.
	Root(ctx context.Context) (*html.Node, error)

	// Clone returns a deep structural copy of the current tree that the
	// caller may freely modify.
	Clone(ctx context.Context) (*html.Node, error)
}

// TagKind is the block kind a paragraph was read from.
type TagKind int

// Block kinds recognised by segmentation.
const (
	KindParagraph TagKind = iota
	KindHeading1
	KindHeading2
	KindHeading3
	KindHeading4
	KindHeading5
	KindHeading6
	KindListItem
	KindQuote
	KindCode
)

var kindTags = [...]string{"p", "h1", "h2", "h3", "h4", "h5", "h6", "li", "blockquote", "code"}

// String returns the HTML tag name of the kind.
func (k TagKind) String() string {
	if k < 0 || int(k) >= len(kindTags) {
		return "unknown"
	}
	return kindTags[k]
}

// HeadingLevel returns 1-6 for heading kinds and 0 otherwise.
func (k TagKind) HeadingLevel() int {
	if k >= KindHeading1 && k <= KindHeading6 {
		return int(k-KindHeading1) + 1
	}
	return 0
}

// Paragraph is one block-level text unit of a document.
type Paragraph struct {
	// Index is the 0-based position among the record's paragraphs.
	Index int

	// Text is the trimmed, whitespace-collapsed text of the block.
	Text string

	// Node is the block's node in the record's content tree. It is a
	// non-owning reference used only to render visual emphasis and must
	// never be mutated through.
	Node *html.Node

	Kind TagKind

	// Length is the number of runes in Text.
	Length int
}

// ContentRecord is the normalized result of one extraction. It is
// immutable once created.
type ContentRecord struct {
	Title    string
	Location string

	// PlainText is the text content of the extracted main content.
	PlainText string

	// RichContent is the extracted main content as HTML.
	RichContent string

	Paragraphs []*Paragraph

	Excerpt string
	Byline  string

	// EstimatedTokens is EstimateTokens(PlainText).
	EstimatedTokens int

	// ContentHash is a hex xxHash of PlainText.
	ContentHash string

	// IsFallback is set when the boilerplate-stripping fallback produced
	// the record instead of the main-content algorithm.
	IsFallback bool

	IsPDF bool
}

// Minimums for HasSufficientContent.
const (
	MinContentLength     = 100
	MinContentParagraphs = 2
)

// HasSufficientContent reports whether a record holds enough text to be
// useful as context. Callers fall back to a no-context mode when it does not.
func HasSufficientContent(record *ContentRecord) bool {
	if record == nil {
		return false
	}
	return utf8.RuneCountInString(record.PlainText) > MinContentLength &&
		len(record.Paragraphs) >= MinContentParagraphs
}

// Article is the output of a main-content algorithm.
type Article struct {
	Title       string
	Byline      string
	Excerpt     string
	TextContent string

	// Node is the root of the extracted content tree. It may be nil when
	// the algorithm found nothing.
	Node *html.Node
}

// MainContent is a readability-style algorithm that isolates the main
// content of a page.
type MainContent interface {
	// Parse extracts the main content from root. Implementations may
	// modify root, so callers pass a copy.
	Parse(root *html.Node, location string) (*Article, error)
}

// Extractor produces a ContentRecord from a document.
type Extractor interface {
	// Extract returns the document's main content. It returns
	// EUNAVAILABLE when no strategy could read the document and
	// EPDFUNAVAILABLE for a PDF without a text layer.
	Extract(ctx context.Context, doc Document) (*ContentRecord, error)
}

// ContentService is the engine as seen by its collaborators.
type ContentService interface {
	// Extract returns the cached record for doc, extracting it if needed.
	Extract(ctx context.Context, doc Document) (*ContentRecord, error)

	// LocateSelection finds selected in the most recently extracted record.
	LocateSelection(selected string) LocateResult

	// Truncate assembles an excerpt of record around loc within maxTokens.
	Truncate(record *ContentRecord, loc LocateResult, maxTokens int) *TruncationResult

	// ClearCache evicts the cached record.
	ClearCache()
}

// Opener opens the document at a location, such as a URL or a file path.
type Opener interface {
	Open(ctx context.Context, location string) (Document, error)
}

// MarkdownRenderer renders the paragraphs of an excerpt as Markdown.
type MarkdownRenderer interface {
	RenderExcerpt(record *ContentRecord, result *TruncationResult) (string, error)
}
