package fs

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fwojciec/excerpt"
	"gopkg.in/yaml.v3"
)

// URLToPath converts a document URL to a relative file path.
// Example: https://example.com/docs/api/users → example.com/docs/api/users.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(u.Path, "/")
	if u.Host != "" {
		path = u.Host + "/" + path
	}

	switch {
	case path == "":
		return "index.md", nil
	case strings.HasSuffix(path, "/"):
		return path + "index.md", nil
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".html", ".htm", ".pdf", ".md":
		path = path[:len(path)-len(ext)]
	}
	return path + ".md", nil
}

// frontmatter is the YAML header of an excerpt file.
type frontmatter struct {
	ID         string `yaml:"id,omitempty"`
	Source     string `yaml:"source"`
	Title      string `yaml:"title,omitempty"`
	Selection  string `yaml:"selection"`
	Found      bool   `yaml:"found"`
	Mode       string `yaml:"mode,omitempty"`
	UsedTokens int    `yaml:"tokens"`
	Included   int    `yaml:"included"`
	Total      int    `yaml:"total"`
	Created    string `yaml:"created,omitempty"`
}

// FormatExcerpt formats an excerpt with YAML frontmatter followed by body,
// or by the excerpt's plain content when body is empty.
func FormatExcerpt(e *excerpt.Excerpt, body string) (string, error) {
	fm := frontmatter{
		ID:         e.ID,
		Source:     e.Location,
		Title:      e.Title,
		Selection:  e.Selection,
		Found:      e.Found,
		Mode:       string(e.Mode),
		UsedTokens: e.UsedTokens,
		Included:   e.Included,
		Total:      e.Total,
	}
	if !e.CreatedAt.IsZero() {
		fm.Created = e.CreatedAt.Format("2006-01-02")
	}
	header, err := yaml.Marshal(fm)
	if err != nil {
		return "", err
	}

	if body == "" {
		body = e.Content
	}

	var b strings.Builder
	b.WriteString("---\n")
	b.Write(header)
	b.WriteString("---\n\n")
	b.WriteString(body)
	if e.Answer != "" {
		b.WriteString("\n\n## Explanation\n\n")
		b.WriteString(e.Answer)
	}
	b.WriteString("\n")
	return b.String(), nil
}

// ExcerptStore writes excerpt files with atomic update semantics. Files are
// saved to a temporary directory, then moved into place on Commit.
type ExcerptStore struct {
	baseDir string
	name    string
	seen    map[string]int
}

// NewExcerptStore creates a new ExcerptStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewExcerptStore(baseDir, name string) *ExcerptStore {
	return &ExcerptStore{baseDir: baseDir, name: name, seen: make(map[string]int)}
}

func (s *ExcerptStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ExcerptStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes e to the temporary directory and returns the file's path
// relative to the output directory. Several excerpts of one URL are
// numbered in save order.
func (s *ExcerptStore) Save(e *excerpt.Excerpt, body string) (string, error) {
	if e.Location == "" {
		return "", excerpt.Errorf(excerpt.EINVALID, "excerpt location required")
	}

	relPath, err := URLToPath(e.Location)
	if err != nil {
		return "", excerpt.Errorf(excerpt.EINVALID, "invalid location %q: %v", e.Location, err)
	}
	s.seen[relPath]++
	if n := s.seen[relPath]; n > 1 {
		relPath = strings.TrimSuffix(relPath, ".md") + "-" + strconv.Itoa(n) + ".md"
	}

	content, err := FormatExcerpt(e, body)
	if err != nil {
		return "", err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, []byte(content), 0644); err != nil {
		return "", err
	}
	return relPath, nil
}

// Commit replaces the output directory with the saved files.
func (s *ExcerptStore) Commit() error {
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards the saved files.
func (s *ExcerptStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
