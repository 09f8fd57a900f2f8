package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/excerpt"
)

// Run executes the history list command.
func (c *HistoryListCmd) Run(deps *Dependencies) error {
	if err := requireHistory(deps); err != nil {
		return err
	}

	filter := excerpt.ExcerptFilter{Limit: c.Limit, Offset: c.Offset}
	if c.URL != "" {
		filter.Location = &c.URL
	}
	excerpts, err := deps.History.FindExcerpts(deps.Ctx, filter)
	if err != nil {
		return err
	}

	if len(excerpts) == 0 {
		fmt.Fprintln(deps.Stdout, "No excerpts found. Use 'excerpt context' to create one.")
		return nil
	}

	for _, e := range excerpts {
		found := "found"
		if !e.Found {
			found = "missing"
		}
		fmt.Fprintf(deps.Stdout, "%s  %s  %-7s %5d tok  %s  %q\n",
			e.ID, e.CreatedAt.Local().Format("2006-01-02 15:04"), found, e.UsedTokens, e.Location, truncateRunes(e.Selection, 40))
	}
	return nil
}

// Run executes the history show command.
func (c *HistoryShowCmd) Run(deps *Dependencies) error {
	if err := requireHistory(deps); err != nil {
		return err
	}

	e, err := deps.History.FindExcerptByID(deps.Ctx, c.ID)
	if err != nil {
		return err
	}

	if c.JSON {
		return writeJSON(deps.Stdout, e)
	}

	fmt.Fprintf(deps.Stdout, "ID:        %s\n", e.ID)
	fmt.Fprintf(deps.Stdout, "URL:       %s\n", e.Location)
	fmt.Fprintf(deps.Stdout, "Title:     %s\n", e.Title)
	fmt.Fprintf(deps.Stdout, "Selection: %s\n", e.Selection)
	fmt.Fprintf(deps.Stdout, "Mode:      %s (%d tokens)\n", e.Mode, e.MaxTokens)
	fmt.Fprintf(deps.Stdout, "Used:      %d tokens, %d of %d paragraphs\n", e.UsedTokens, e.Included, e.Total)
	fmt.Fprintf(deps.Stdout, "Created:   %s\n\n", e.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	fmt.Fprintln(deps.Stdout, e.Content)
	if e.Answer != "" {
		fmt.Fprintf(deps.Stdout, "\n---\n\n%s\n", e.Answer)
	}
	return nil
}

// Run executes the history clear command.
func (c *HistoryClearCmd) Run(deps *Dependencies) error {
	if err := requireHistory(deps); err != nil {
		return err
	}

	var filter excerpt.ExcerptFilter
	if c.URL != "" {
		filter.Location = &c.URL
	}
	n, err := deps.History.DeleteExcerpts(deps.Ctx, filter)
	if err != nil {
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted %d excerpt(s)\n", n)
	return nil
}

func requireHistory(deps *Dependencies) error {
	if deps.History == nil {
		return excerpt.Errorf(excerpt.EINVALID, "history is disabled")
	}
	return nil
}

func truncateRunes(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
