package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

// SegmentSelector matches the block elements that become paragraphs.
const SegmentSelector = "p, h1, h2, h3, h4, h5, h6, li, blockquote, pre, code"

var tagKinds = map[string]excerpt.TagKind{
	"p":          excerpt.KindParagraph,
	"h1":         excerpt.KindHeading1,
	"h2":         excerpt.KindHeading2,
	"h3":         excerpt.KindHeading3,
	"h4":         excerpt.KindHeading4,
	"h5":         excerpt.KindHeading5,
	"h6":         excerpt.KindHeading6,
	"li":         excerpt.KindListItem,
	"blockquote": excerpt.KindQuote,
	"pre":        excerpt.KindCode,
	"code":       excerpt.KindCode,
}

// Segment splits the tree below root into paragraphs in document order.
//
// Every matched block becomes a paragraph, nested ones included, so a <p>
// inside an <li> yields both. Text is trimmed but otherwise kept as is, so
// <pre> keeps its line breaks. Empty blocks are skipped and indices stay
// contiguous. The tree is not modified.
func Segment(root *html.Node) []*excerpt.Paragraph {
	if root == nil {
		return nil
	}

	var paragraphs []*excerpt.Paragraph
	goquery.NewDocumentFromNode(root).Find(SegmentSelector).Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if text == "" {
			return
		}

		node := sel.Get(0)
		paragraphs = append(paragraphs, &excerpt.Paragraph{
			Index:  len(paragraphs),
			Text:   text,
			Node:   node,
			Kind:   tagKinds[node.Data],
			Length: utf8.RuneCountInString(text),
		})
	})
	return paragraphs
}

// PlainText returns the collapsed text of the tree below root.
func PlainText(root *html.Node) string {
	if root == nil {
		return ""
	}
	return collapseWhitespace(goquery.NewDocumentFromNode(root).Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Readiness reports the visible body text length in runes and the number
// of <p> elements below root.
func Readiness(root *html.Node) (textLength, paragraphs int) {
	body := Body(root)
	if body == nil {
		return 0, 0
	}
	sel := goquery.NewDocumentFromNode(body)
	return utf8.RuneCountInString(collapseWhitespace(sel.Text())), sel.Find("p").Length()
}
