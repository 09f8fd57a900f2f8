package goquery

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/fwojciec/excerpt"
	"golang.org/x/net/html"
)

// HighlightClassPrefix is followed by the highlight level, 1 to 3.
const HighlightClassPrefix = "ai-context-level-"

// HighlightClass returns the class marking paragraphs at level.
func HighlightClass(level excerpt.HighlightLevel) string {
	return HighlightClassPrefix + strconv.Itoa(int(level))
}

// Highlight renders the record's content tree as HTML with each paragraph
// included in result marked by its highlight class. The record is left
// untouched; a copy of its tree is marked and rendered.
func Highlight(record *excerpt.ContentRecord, result *excerpt.TruncationResult) (string, error) {
	if record == nil || len(record.Paragraphs) == 0 {
		return "", nil
	}

	root := treeRoot(record.Paragraphs[0].Node)
	if root == nil {
		return "", excerpt.Errorf(excerpt.EINVALID, "record has no content tree")
	}

	index := make(map[*html.Node]*html.Node)
	clone := cloneIndexed(root, index)

	if result != nil {
		for _, inc := range result.Paragraphs {
			if inc.Index < 0 || inc.Index >= len(record.Paragraphs) {
				continue
			}
			node, ok := index[record.Paragraphs[inc.Index].Node]
			if !ok {
				continue
			}
			addClass(node, HighlightClass(inc.Level))
		}
	}

	target := clone
	if body := Body(clone); body != nil {
		target = body
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, target); err != nil {
		return "", excerpt.Errorf(excerpt.EINTERNAL, "failed to render highlighted content: %v", err)
	}
	return buf.String(), nil
}

// addClass appends class to n's class attribute, normalising its spacing.
func addClass(n *html.Node, class string) {
	for i, a := range n.Attr {
		if a.Namespace == "" && a.Key == "class" {
			n.Attr[i].Val = strings.Join(append(strings.Fields(a.Val), class), " ")
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: "class", Val: class})
}

func treeRoot(n *html.Node) *html.Node {
	if n == nil {
		return nil
	}
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}
