package excerpt

import (
	"sort"
	"strings"
)

// HighlightLevel classifies an included paragraph by its distance from the
// anchor: 1 is closest, 3 is everything else.
type HighlightLevel int

// Highlight levels and the distance each one covers.
const (
	LevelNear HighlightLevel = 1
	LevelMid  HighlightLevel = 2
	LevelFar  HighlightLevel = 3

	NearRadius = 3
	MidRadius  = 5
)

// LevelFor returns the highlight level of index relative to anchor.
func LevelFor(index, anchor int) HighlightLevel {
	d := index - anchor
	if d < 0 {
		d = -d
	}
	switch {
	case d <= NearRadius:
		return LevelNear
	case d <= MidRadius:
		return LevelMid
	default:
		return LevelFar
	}
}

// IncludedParagraph is one paragraph of a truncated excerpt.
type IncludedParagraph struct {
	Index int            `json:"index"`
	Text  string         `json:"text"`
	Level HighlightLevel `json:"level"`
}

// TruncationResult is a token-budgeted excerpt.
type TruncationResult struct {
	// Text joins the included paragraphs in document order with blank lines.
	Text string `json:"text"`

	Paragraphs    []IncludedParagraph `json:"paragraphs"`
	UsedTokens    int                 `json:"usedTokens"`
	IncludedCount int                 `json:"includedCount"`
	TotalCount    int                 `json:"totalCount"`

	// Anchor is the paragraph index the excerpt is centred on.
	Anchor int `json:"anchor"`
}

// Truncate selects paragraphs around the located selection under a token
// budget using EstimateTokens. See Truncator.Truncate.
func Truncate(paragraphs []*Paragraph, loc LocateResult, maxTokens int) *TruncationResult {
	return Truncator{}.Truncate(paragraphs, loc, maxTokens)
}

// Truncator assembles budgeted excerpts.
type Truncator struct {
	// Estimate prices a paragraph. Defaults to EstimateTokens.
	Estimate Estimator
}

// Truncate selects paragraphs around the located selection so that their
// estimated cost stays within maxTokens.
//
// The anchor is the located paragraph, or the middle paragraph when the
// selection was not found. Candidates are pulled in three tiers of
// decreasing priority: within NearRadius of the anchor, within MidRadius,
// then the whole document. Each tier scans its window in ascending order
// and skips paragraphs already included. The first candidate that does not
// fit exhausts the budget and ends selection; a tier that simply runs out
// of candidates hands over to the next one.
//
// The output is always in document order regardless of selection order.
func (t Truncator) Truncate(paragraphs []*Paragraph, loc LocateResult, maxTokens int) *TruncationResult {
	estimate := t.Estimate
	if estimate == nil {
		estimate = EstimateTokens
	}

	n := len(paragraphs)
	anchor := n / 2
	if loc.Found && loc.ParagraphIndex >= 0 && loc.ParagraphIndex < n {
		anchor = loc.ParagraphIndex
	}

	result := &TruncationResult{TotalCount: n, Anchor: anchor}
	if n == 0 || maxTokens <= 0 {
		return result
	}

	tiers := [][2]int{
		{anchor - NearRadius, anchor + NearRadius},
		{anchor - MidRadius, anchor + MidRadius},
		{0, n - 1},
	}

	included := make([]bool, n)
	var order []int
	used := 0
	exhausted := false

	for _, tier := range tiers {
		start, end := max(0, tier[0]), min(n-1, tier[1])
		for i := start; i <= end; i++ {
			if included[i] {
				continue
			}
			cost := estimate(paragraphs[i].Text)
			if used+cost > maxTokens {
				exhausted = true
				break
			}
			included[i] = true
			order = append(order, i)
			used += cost
		}
		if exhausted || len(order) == n {
			break
		}
	}

	sort.Ints(order)

	texts := make([]string, 0, len(order))
	result.Paragraphs = make([]IncludedParagraph, 0, len(order))
	for _, i := range order {
		texts = append(texts, paragraphs[i].Text)
		result.Paragraphs = append(result.Paragraphs, IncludedParagraph{
			Index: i,
			Text:  paragraphs[i].Text,
			Level: LevelFor(i, anchor),
		})
	}
	result.Text = strings.Join(texts, "\n\n")
	result.UsedTokens = used
	result.IncludedCount = len(order)
	return result
}
