package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	"github.com/fwojciec/excerpt/extract"
	"github.com/fwojciec/excerpt/prometheus"
)

// Converter renders HTML and excerpts as Markdown.
type Converter interface {
	excerpt.MarkdownRenderer
	Convert(html string) (string, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Mode      excerpt.ContextMode
	Opener    excerpt.Opener
	Content   excerpt.ContentService
	Workflow  *extract.Workflow
	History   excerpt.ExcerptService
	Explainer excerpt.Explainer
	Converter Converter
	Tokens    excerpt.TokenCounter
	Runner    *batch.Runner
	Metrics   *prometheus.Metrics
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Extract ExtractCmd `cmd:"" help:"Extract the main content of a page"`
	Context ContextCmd `cmd:"" help:"Build a token-budgeted excerpt around a selection"`
	Explain ExplainCmd `cmd:"" help:"Explain a selection using the surrounding page"`
	Batch   BatchCmd   `cmd:"" help:"Run excerpt jobs from a YAML file"`
	History HistoryCmd `cmd:"" help:"List, show or clear stored excerpts"`
	Serve   ServeCmd   `cmd:"" help:"Serve the JSON API"`
}

// Globals are flags shared by every command.
type Globals struct {
	DB        string `name:"db" env:"EXCERPT_DB" help:"History database path (default ~/.excerpt/excerpt.db)"`
	NoHistory bool   `name:"no-history" help:"Do not record excerpts"`
	Mode      string `env:"EXCERPT_MODE" default:"standard" enum:"economic,standard,precise" help:"Context mode: economic, standard or precise"`
	APIKey    string `name:"api-key" env:"GEMINI_API_KEY" help:"Gemini API key"`
	Model     string `default:"gemini-2.5-flash" help:"Gemini model used for explanations"`
	Browser   bool   `short:"b" help:"Render pages in headless Chrome before extracting"`
	Primary   string `default:"readability" enum:"readability,trafilatura" help:"Main-content algorithm"`
	Tokenizer string `default:"heuristic" enum:"heuristic,cl100k,gemini" help:"Token counter used for reporting"`
	Verbose   bool   `short:"v" help:"Log operations to stderr"`
}

// ExtractCmd is the "extract" subcommand.
type ExtractCmd struct {
	URL    string `arg:"" help:"Page URL or local file"`
	Format string `short:"f" default:"text" enum:"text,json,markdown,html" help:"Output format: text, json, markdown or html"`
}

// ContextCmd is the "context" subcommand.
type ContextCmd struct {
	URL       string `arg:"" help:"Page URL or local file"`
	Selection string `arg:"" help:"Selected text to centre the excerpt on"`
	MaxTokens int    `short:"t" name:"max-tokens" help:"Token budget, overrides --mode"`
	Highlight bool   `help:"Print the page content as HTML with highlight classes"`
	Markdown  bool   `short:"m" help:"Print the excerpt as Markdown"`
	JSON      bool   `name:"json" help:"Print the full response as JSON"`
}

// ExplainCmd is the "explain" subcommand.
type ExplainCmd struct {
	URL       string `arg:"" help:"Page URL or local file"`
	Selection string `arg:"" help:"Selected text to explain"`
	Template  string `default:"default" help:"Prompt preset (default, technical) or a literal template"`
	NoContext bool   `name:"no-context" help:"Explain without the surrounding page"`
	MaxTokens int    `short:"t" name:"max-tokens" help:"Context token budget, overrides --mode"`
}

// BatchCmd is the "batch" subcommand.
type BatchCmd struct {
	File        string  `arg:"" type:"existingfile" help:"YAML job file"`
	Out         string  `short:"o" type:"path" help:"Write each excerpt as Markdown under this directory"`
	Concurrency int     `short:"c" help:"URLs processed at once, overrides the job file"`
	RPS         float64 `help:"Requests per second per host, overrides the job file (default 1)"`
	JSON        bool    `name:"json" help:"Print results as JSON lines"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	List  HistoryListCmd  `cmd:"" default:"withargs" help:"List stored excerpts, newest first"`
	Show  HistoryShowCmd  `cmd:"" help:"Show a stored excerpt"`
	Clear HistoryClearCmd `cmd:"" help:"Delete stored excerpts"`
}

// HistoryListCmd is the "history list" subcommand.
type HistoryListCmd struct {
	URL    string `short:"u" name:"url" help:"Only excerpts of this URL"`
	Limit  int    `short:"n" default:"20" help:"Maximum number of excerpts"`
	Offset int    `help:"Number of excerpts to skip"`
}

// HistoryShowCmd is the "history show" subcommand.
type HistoryShowCmd struct {
	ID   string `arg:"" help:"Excerpt ID"`
	JSON bool   `name:"json" help:"Print as JSON"`
}

// HistoryClearCmd is the "history clear" subcommand.
type HistoryClearCmd struct {
	URL string `short:"u" name:"url" help:"Only excerpts of this URL"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string `default:"127.0.0.1:8080" help:"Listen address"`
	Metrics bool   `default:"true" negatable:"" help:"Expose Prometheus metrics at /metrics"`
}
