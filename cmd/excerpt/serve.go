package main

import (
	exhttp "github.com/fwojciec/excerpt/http"
)

// Run executes the serve command. It blocks until the context ends.
func (c *ServeCmd) Run(deps *Dependencies) error {
	var opts []exhttp.ServerOption
	if deps.Metrics != nil {
		opts = append(opts, exhttp.WithMetrics(deps.Metrics.Handler()))
	}
	return exhttp.NewServer(deps.Workflow, deps.Logger, opts...).Serve(deps.Ctx, c.Addr)
}
