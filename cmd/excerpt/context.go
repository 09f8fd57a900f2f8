package main

import (
	"fmt"

	"github.com/fwojciec/excerpt/extract"
)

// Run executes the context command.
func (c *ContextCmd) Run(deps *Dependencies) error {
	resp, err := deps.Workflow.Run(deps.Ctx, extract.Request{
		Location:  c.URL,
		Selection: c.Selection,
		Mode:      deps.Mode,
		MaxTokens: c.MaxTokens,
		Highlight: c.Highlight,
		Markdown:  c.Markdown,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, resp)
	}

	printSummary(deps, resp)
	switch {
	case c.Highlight:
		fmt.Fprintln(deps.Stdout, resp.Highlighted)
	case c.Markdown:
		fmt.Fprintln(deps.Stdout, resp.Markdown)
	default:
		fmt.Fprintln(deps.Stdout, resp.Result.Text)
	}
	return nil
}

// printSummary writes a one-line description of the excerpt to stderr.
func printSummary(deps *Dependencies, resp *extract.Response) {
	r := resp.Result
	if resp.Locate.Found {
		fmt.Fprintf(deps.Stderr, "selection found in paragraph %d; ", resp.Locate.ParagraphIndex)
	} else {
		fmt.Fprint(deps.Stderr, "selection not found, excerpt starts at the top; ")
	}
	fmt.Fprintf(deps.Stderr, "%d of %d paragraphs, %d tokens\n", r.IncludedCount, r.TotalCount, r.UsedTokens)
	if !resp.Sufficient {
		fmt.Fprintln(deps.Stderr, "warning: too little content to use as context")
	}
	if resp.Excerpt != nil {
		fmt.Fprintf(deps.Stderr, "saved as %s\n", resp.Excerpt.ID)
	}
}
