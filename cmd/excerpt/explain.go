package main

import (
	"fmt"

	"github.com/fwojciec/excerpt/extract"
)

// Run executes the explain command.
func (c *ExplainCmd) Run(deps *Dependencies) error {
	resp, err := deps.Workflow.Run(deps.Ctx, extract.Request{
		Location:  c.URL,
		Selection: c.Selection,
		Mode:      deps.Mode,
		MaxTokens: c.MaxTokens,
		Explain:   true,
		Template:  c.Template,
		NoContext: c.NoContext,
	})
	if err != nil {
		return err
	}

	printSummary(deps, resp)
	fmt.Fprintln(deps.Stdout, resp.Answer)
	return nil
}
