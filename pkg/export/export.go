// Package export writes notes out of the store in portable formats:
// Markdown with YAML frontmatter, standalone HTML pages, or the raw JSON record.
package export

import (
	"bytes"
	"context"
	"fmt"
	"html"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/bloco/pkg/adapters/fs"
	"github.com/aretw0/bloco/pkg/core"
)

// Format selects the output encoding.
type Format string

const (
	Markdown Format = "md"
	HTML     Format = "html"
	JSON     Format = "json"
)

// RecordFile is the file name used by the JSON format.
const RecordFile = "notes.json"

// ParseFormat accepts the format names used on the command line.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "md", "markdown":
		return Markdown, nil
	case "html":
		return HTML, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Frontmatter is the metadata block written above Markdown content.
type Frontmatter struct {
	ID        string `yaml:"id"`
	Title     string `yaml:"title"`
	CreatedAt string `yaml:"created_at"`
	UpdatedAt string `yaml:"updated_at"`
}

// Exporter renders notes. The zero value is not usable; call New.
type Exporter struct {
	md     goldmark.Markdown
	logger *slog.Logger
	perm   os.FileMode
}

// Option configures an Exporter.
type Option func(*Exporter)

// WithLogger sets the logger used to report written files.
func WithLogger(l *slog.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithPerm sets the permission of written files (default 0644).
func WithPerm(perm os.FileMode) Option {
	return func(e *Exporter) {
		e.perm = perm
	}
}

// New creates an Exporter.
func New(opts ...Option) *Exporter {
	e := &Exporter{
		md:     goldmark.New(),
		logger: slog.New(slog.DiscardHandler),
		perm:   0644,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Markdown renders a note as frontmatter plus verbatim content.
func (e *Exporter) Markdown(n core.Note) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(Frontmatter{
		ID:        n.ID,
		Title:     n.Title,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}); err != nil {
		return nil, fmt.Errorf("encode frontmatter: %w", err)
	}
	encoder.Close()
	buf.WriteString("---\n")
	buf.WriteString(n.Content)
	return buf.Bytes(), nil
}

// ContentHTML converts the note content from Markdown to an HTML fragment.
// Raw HTML in the content is not passed through.
func (e *Exporter) ContentHTML(n core.Note) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.md.Convert([]byte(n.Content), &buf); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

// HTML renders a note as a standalone page.
func (e *Exporter) HTML(n core.Note) ([]byte, error) {
	body, err := e.ContentHTML(n)
	if err != nil {
		return nil, err
	}
	title := html.EscapeString(n.Title)

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n", title)
	fmt.Fprintf(&buf, "<h1>%s</h1>\n", title)
	fmt.Fprintf(&buf, "<p><small>%s</small></p>\n", html.EscapeString(n.UpdatedAt))
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes(), nil
}

// Render encodes a single note in the given format.
func (e *Exporter) Render(format Format, n core.Note) ([]byte, error) {
	switch format {
	case Markdown:
		return e.Markdown(n)
	case HTML:
		return e.HTML(n)
	case JSON:
		return core.Encode(core.Record{Notes: []core.Note{n}})
	}
	return nil, fmt.Errorf("unknown export format %q", format)
}

// FileName returns the file a note is written to for format.
// Characters outside [A-Za-z0-9_-] in the id are replaced so loaded ids can never escape the directory.
func FileName(format Format, n core.Note) string {
	return safeID(n.ID) + "." + string(format)
}

func safeID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, id)
}

// uniqueName returns FileName for n, numbered "-2", "-3"... when an earlier
// note in the same export already took that name.
func uniqueName(format Format, n core.Note, used map[string]bool) string {
	name := FileName(format, n)
	for i := 2; used[name]; i++ {
		name = fmt.Sprintf("%s-%d.%s", safeID(n.ID), i, format)
	}
	used[name] = true
	return name
}

// WriteDir writes snap into dir, creating it if needed, and returns the written paths.
// Markdown and HTML produce one file per note; JSON writes the whole record to RecordFile.
func (e *Exporter) WriteDir(ctx context.Context, dir string, format Format, snap core.Snapshot) ([]string, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export dir: %w", err)
	}

	if format == JSON {
		data, err := core.Encode(snap)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, RecordFile)
		if err := fs.WriteFile(path, data, e.perm); err != nil {
			return nil, err
		}
		e.logger.Debug("exported record", "path", path, "notes", len(snap.Notes))
		return []string{path}, nil
	}

	paths := make([]string, 0, len(snap.Notes))
	used := make(map[string]bool, len(snap.Notes))
	for _, n := range snap.Notes {
		if err := ctx.Err(); err != nil {
			return paths, err
		}
		data, err := e.Render(format, n)
		if err != nil {
			return paths, fmt.Errorf("export %s: %w", n.ID, err)
		}
		name := uniqueName(format, n, used)
		if name != FileName(format, n) {
			e.logger.Warn("export file name collision", "id", n.ID, "file", name)
		}
		path := filepath.Join(dir, name)
		if err := fs.WriteFile(path, data, e.perm); err != nil {
			return paths, err
		}
		e.logger.Debug("exported note", "id", n.ID, "path", path)
		paths = append(paths, path)
	}
	return paths, nil
}
