package document

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandeepkv93/dailycheck/internal/checkbox"
	"github.com/sandeepkv93/dailycheck/internal/status"
)

const sample = `# Today

- [ ] Buy milk 🔁 every month #errand
- plain bullet
  - [x] Call mom ✅ 2024-03-30
`

func testParser() *checkbox.Parser {
	s := checkbox.NewSerializer(checkbox.DefaultLayout(), time.UTC, zerolog.Nop())
	return checkbox.NewParser(status.NewRegistry(), s)
}

func TestParseKeepsLayout(t *testing.T) {
	tests := []struct {
		name    string
		content string
		lines   int
	}{
		{"trailing newline", sample, 5},
		{"no trailing newline", "a\nb", 2},
		{"crlf", "a\r\nb\r\n", 2},
		{"empty", "", 0},
		{"single blank line", "\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := Parse("x.md", tt.content)
			assert.Equal(t, tt.lines, doc.Len())
			assert.Equal(t, tt.content, doc.String())
		})
	}
}

func TestCheckboxes(t *testing.T) {
	doc := Parse("today.md", sample)
	entries := doc.Checkboxes(testParser())

	require.Len(t, entries, 2)
	assert.Equal(t, 3, entries[0].Line)
	assert.Equal(t, "Buy milk #errand", entries[0].Checkbox.Description)
	assert.Equal(t, 5, entries[1].Line)
	assert.Equal(t, "  ", entries[1].Checkbox.Indentation)
	assert.True(t, entries[1].Checkbox.Status.IsCompleted())
}

func TestCheckboxErrors(t *testing.T) {
	doc := Parse("today.md", sample)
	p := testParser()

	_, err := doc.Checkbox(p, 4)
	assert.True(t, errors.Is(err, ErrNotCheckbox))

	_, err = doc.Checkbox(p, 0)
	assert.True(t, errors.Is(err, ErrLineOutOfRange))

	_, err = doc.Checkbox(p, 99)
	assert.True(t, errors.Is(err, ErrLineOutOfRange))
}

func TestReplaceLine(t *testing.T) {
	doc := Parse("today.md", sample)

	require.NoError(t, doc.ReplaceLine(3, "- [ ] next", "- [x] done"))
	assert.Equal(t, 6, doc.Len())
	line, err := doc.Line(4)
	require.NoError(t, err)
	assert.Equal(t, "- [x] done", line)

	assert.ErrorIs(t, doc.ReplaceLine(7, "x"), ErrLineOutOfRange)
	assert.Error(t, doc.ReplaceLine(1))
}

func TestLoadAndSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes", "today.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	doc, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, doc.ReplaceLine(1, "# Tomorrow"))
	require.NoError(t, doc.Save())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "# Tomorrow\n")
	assert.Contains(t, string(raw), "- [ ] Buy milk 🔁 every month #errand\n")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)

	_, err = Load(filepath.Join(t.TempDir(), "missing.md"))
	assert.Error(t, err)
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	files := []string{
		"today.md",
		"daily/2024-03-31.md",
		"daily/archive/2023-12-31.md",
		"notes.txt",
	}
	for _, f := range files {
		p := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("- [ ] x\n"), 0o644))
	}
	require.NoError(t, os.MkdirAll(filepath.Join(root, "folder.md"), 0o755))

	got, err := Scan(root, nil, []string{"**/archive/**"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "daily", "2024-03-31.md"),
		filepath.Join(root, "today.md"),
	}, got)

	got, err = Scan(root, []string{"*.txt", "**/*.txt"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "notes.txt")}, got)

	_, err = Scan(root, []string{"[unclosed"}, nil)
	assert.Error(t, err)
}
