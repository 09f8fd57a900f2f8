package excerpt

import "strings"

// LocateResult reports which paragraph contains a selection.
type LocateResult struct {
	Found          bool `json:"found"`
	ParagraphIndex int  `json:"paragraphIndex"`
}

// NotFound is the LocateResult for a selection that matched nothing.
var NotFound = LocateResult{Found: false, ParagraphIndex: -1}

// Locate returns the first paragraph, in index order, whose text contains
// selected. Matching is case-insensitive and ignores differences in
// whitespace. An empty selection never matches.
func Locate(paragraphs []*Paragraph, selected string) LocateResult {
	needle := normalizeText(selected)
	if needle == "" {
		return NotFound
	}

	for i, p := range paragraphs {
		if strings.Contains(normalizeText(p.Text), needle) {
			return LocateResult{Found: true, ParagraphIndex: i}
		}
	}
	return NotFound
}

// normalizeText lower-cases s and collapses whitespace runs to one space.
func normalizeText(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
