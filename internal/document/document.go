// Package document reads and rewrites markdown files line by line.
package document

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
)

var (
	ErrLineOutOfRange = errors.New("document: line out of range")
	ErrNotCheckbox    = errors.New("document: line is not a checkbox")
)

// Document is a markdown file held as lines. Line numbers are 1-based.
type Document struct {
	Path string

	lines           []string
	crlf            bool
	trailingNewline bool
	mode            os.FileMode
}

// Entry is a checkbox found on a document line.
type Entry struct {
	Line     int
	Checkbox checkbox.Checkbox
}

func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc := Parse(path, string(raw))
	if info, statErr := os.Stat(path); statErr == nil {
		doc.mode = info.Mode().Perm()
	}
	return doc, nil
}

func Parse(path, content string) *Document {
	doc := &Document{Path: path, mode: 0o644}
	doc.crlf = strings.Contains(content, "\r\n")
	if doc.crlf {
		content = strings.ReplaceAll(content, "\r\n", "\n")
	}
	doc.trailingNewline = strings.HasSuffix(content, "\n")
	content = strings.TrimSuffix(content, "\n")
	if content == "" && !doc.trailingNewline {
		return doc
	}
	doc.lines = strings.Split(content, "\n")
	return doc
}

func (d *Document) Len() int {
	return len(d.lines)
}

func (d *Document) Lines() []string {
	out := make([]string, len(d.lines))
	copy(out, d.lines)
	return out
}

func (d *Document) Line(n int) (string, error) {
	if n < 1 || n > len(d.lines) {
		return "", fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, n, len(d.lines))
	}
	return d.lines[n-1], nil
}

// ReplaceLine swaps line n for the given lines, which may be more than one.
func (d *Document) ReplaceLine(n int, lines ...string) error {
	if n < 1 || n > len(d.lines) {
		return fmt.Errorf("%w: %d of %d", ErrLineOutOfRange, n, len(d.lines))
	}
	if len(lines) == 0 {
		return errors.New("document: replacement needs at least one line")
	}
	out := make([]string, 0, len(d.lines)+len(lines)-1)
	out = append(out, d.lines[:n-1]...)
	out = append(out, lines...)
	out = append(out, d.lines[n:]...)
	d.lines = out
	return nil
}

// Checkbox parses line n.
func (d *Document) Checkbox(p *checkbox.Parser, n int) (checkbox.Checkbox, error) {
	line, err := d.Line(n)
	if err != nil {
		return checkbox.Checkbox{}, err
	}
	cb, ok := p.Parse(line)
	if !ok {
		return checkbox.Checkbox{}, fmt.Errorf("%w: line %d", ErrNotCheckbox, n)
	}
	return cb, nil
}

// Checkboxes lists every checkbox line in document order.
func (d *Document) Checkboxes(p *checkbox.Parser) []Entry {
	var out []Entry
	for i, line := range d.lines {
		if cb, ok := p.Parse(line); ok {
			out = append(out, Entry{Line: i + 1, Checkbox: cb})
		}
	}
	return out
}

func (d *Document) String() string {
	sep := "\n"
	if d.crlf {
		sep = "\r\n"
	}
	s := strings.Join(d.lines, sep)
	if d.trailingNewline {
		s += sep
	}
	return s
}

// Save writes the document through a temporary file and a rename so readers
// never see a partial file.
func (d *Document) Save() error {
	if strings.TrimSpace(d.Path) == "" {
		return errors.New("document: no path")
	}
	dir := filepath.Dir(d.Path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(d.Path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(d.String()); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, d.mode); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, d.Path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("save %s: %w", d.Path, err)
	}
	return nil
}
