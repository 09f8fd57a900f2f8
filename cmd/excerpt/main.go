package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/excerpt"
	"github.com/fwojciec/excerpt/batch"
	"github.com/fwojciec/excerpt/extract"
	"github.com/fwojciec/excerpt/fs"
	"github.com/fwojciec/excerpt/gemini"
	"github.com/fwojciec/excerpt/htmltomarkdown"
	exhttp "github.com/fwojciec/excerpt/http"
	"github.com/fwojciec/excerpt/prometheus"
	"github.com/fwojciec/excerpt/readability"
	"github.com/fwojciec/excerpt/rod"
	exslog "github.com/fwojciec/excerpt/slog"
	"github.com/fwojciec/excerpt/sqlite"
	"github.com/fwojciec/excerpt/tiktoken"
	"github.com/fwojciec/excerpt/trafilatura"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		var e *excerpt.Error
		if errors.As(err, &e) {
			fmt.Fprintf(os.Stderr, "error: %s\n", e.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// SQLite database used by the history service.
	DB *sqlite.DB

	// Browser renders pages when --browser is set.
	Browser *rod.Browser
}

// NewMain returns a new instance of Main.
func NewMain() *Main {
	return &Main{}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	if m.Browser != nil {
		errs = append(errs, m.Browser.Close())
	}
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("excerpt"),
		kong.Description("Extract page content and build token-budgeted excerpts around a selection."),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'excerpt --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	cmd := strings.Fields(kongCtx.Command())[0]

	defer m.Close()
	if err := m.wire(ctx, cmd, cli, deps); err != nil {
		return err
	}

	return kongCtx.Run(deps)
}

// wire builds the services the command needs.
func (m *Main) wire(ctx context.Context, cmd string, cli *CLI, deps *Dependencies) error {
	g := &cli.Globals
	level := slog.LevelWarn
	if g.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(deps.Stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger
	deps.Mode = excerpt.ParseContextMode(g.Mode)
	deps.Converter = htmltomarkdown.NewConverter()

	if cmd == "serve" && cli.Serve.Metrics {
		deps.Metrics = prometheus.NewMetrics()
	}

	if cmd != "history" {
		opener, err := m.opener(g, logger)
		if err != nil {
			return err
		}
		deps.Opener = opener

		var primary excerpt.MainContent = readability.NewMainContent()
		if g.Primary == "trafilatura" {
			primary = trafilatura.NewMainContent()
		}
		var extractor excerpt.Extractor = extract.NewExtractor(primary)
		if deps.Metrics != nil {
			extractor = prometheus.NewExtractor(extractor, deps.Metrics)
		}
		extractor = exslog.NewLoggingExtractor(extractor, logger)

		newContent := func() excerpt.ContentService {
			return exslog.NewLoggingContentService(extract.NewService(extractor), logger)
		}
		svc := extract.NewService(extractor)
		var content excerpt.ContentService = exslog.NewLoggingContentService(svc, logger)
		if deps.Metrics != nil {
			content = prometheus.NewContentService(content, deps.Metrics)
			deps.Metrics.WatchCache(func() bool { return svc.State() == extract.StatePopulated })
		}
		deps.Content = content

		tokens, err := tokenCounter(g.Tokenizer)
		if err != nil {
			return err
		}
		deps.Tokens = tokens

		deps.Runner = &batch.Runner{
			Opener:     batch.NewRetryOpener(opener, batch.DefaultRetryDelays(), logger),
			NewContent: newContent,
			Markdown:   deps.Converter,
		}
	}

	if cmd != "extract" && !g.NoHistory {
		path := g.DB
		if path == "" {
			path = defaultDBPath()
		}
		m.DB = sqlite.NewDB(path)
		if err := m.DB.Open(); err != nil {
			fmt.Fprintf(deps.Stderr, "Hint: Set EXCERPT_DB to use a different database path\n")
			return fmt.Errorf("failed to open database at %q: %w", path, err)
		}
		deps.History = sqlite.NewExcerptService(m.DB)
	}

	if cmd == "explain" || ((cmd == "serve" || cmd == "batch") && g.APIKey != "") {
		if g.APIKey == "" {
			fmt.Fprintln(deps.Stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
			return excerpt.Errorf(excerpt.EINVALID, "GEMINI_API_KEY not set")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			fmt.Fprintln(deps.Stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return fmt.Errorf("failed to connect to Gemini API: %w", err)
		}
		var explainer excerpt.Explainer = gemini.NewExplainer(client, g.Model)
		if deps.Metrics != nil {
			explainer = prometheus.NewExplainer(explainer, deps.Metrics)
		}
		deps.Explainer = exslog.NewLoggingExplainer(explainer, logger)
	}

	if deps.Content != nil {
		deps.Workflow = &extract.Workflow{
			Opener:    deps.Opener,
			Content:   deps.Content,
			Explainer: deps.Explainer,
			History:   deps.History,
			Markdown:  deps.Converter,
		}
		deps.Runner.Explainer = deps.Explainer
		deps.Runner.History = deps.History
	}
	return nil
}

// opener returns the document opener: local files first, then Chrome or
// plain HTTP for remote locations.
func (m *Main) opener(g *Globals, logger *slog.Logger) (excerpt.Opener, error) {
	var remote excerpt.Opener = exhttp.NewFetcher()
	if g.Browser {
		browser, err := rod.NewBrowser()
		if err != nil {
			return nil, fmt.Errorf("failed to start browser (Chrome or Chromium must be installed): %w", err)
		}
		m.Browser = browser
		remote = browser
	}
	return exslog.NewLoggingOpener(fs.NewOpener(remote), logger), nil
}

func tokenCounter(name string) (excerpt.TokenCounter, error) {
	switch name {
	case "cl100k":
		return tiktoken.NewTokenCounter(tiktoken.DefaultEncoding)
	case "gemini":
		return gemini.NewTokenCounter(gemini.DefaultTokenizerModel)
	default:
		return excerpt.HeuristicCounter{}, nil
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "excerpt.db"
	}
	dir := filepath.Join(home, ".excerpt")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "excerpt.db")
}
