package checkbox

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want LineComponents
	}{
		{
			name: "plain",
			line: "- [ ] Buy milk",
			want: LineComponents{ListMarker: "-", Symbol: " ", Body: "Buy milk"},
		},
		{
			name: "quoted and indented with block link",
			line: "  > * [x] done thing ^abc-1",
			want: LineComponents{Indentation: "  > ", ListMarker: "*", Symbol: "x", Body: "done thing", BlockLink: "^abc-1"},
		},
		{
			name: "numbered",
			line: "12. [/] step two",
			want: LineComponents{ListMarker: "12.", Symbol: "/", Body: "step two"},
		},
		{
			name: "tab and plus",
			line: "\t+ [~] odd one   ",
			want: LineComponents{Indentation: "\t", ListMarker: "+", Symbol: "~", Body: "odd one"},
		},
		{
			name: "multibyte symbol",
			line: "- [✓] tick",
			want: LineComponents{ListMarker: "-", Symbol: "✓", Body: "tick"},
		},
		{
			name: "empty body",
			line: "- [ ]",
			want: LineComponents{ListMarker: "-", Symbol: " "},
		},
		{
			name: "caret inside word is not a block link",
			line: "- [ ] raise x^2",
			want: LineComponents{ListMarker: "-", Symbol: " ", Body: "raise x^2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseLine(tt.line)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLineNoMatch(t *testing.T) {
	lines := []string{
		"Buy milk",
		"- Buy milk",
		"- [] Buy milk",
		"-[ ] Buy milk",
		"- [ab] Buy milk",
		"",
	}

	for _, line := range lines {
		t.Run(line, func(t *testing.T) {
			_, ok := ParseLine(line)
			assert.False(t, ok)
		})
	}
}

func TestExtractHashtags(t *testing.T) {
	assert.Equal(t, []string{"#dog", "#car", "#house"}, ExtractHashtags("#dog #car http://www/ddd#ere #house"))
	assert.Equal(t, []string{"#a/b", "#c"}, ExtractHashtags("see #a/b, then #c."))
	assert.Empty(t, ExtractHashtags("no tags here"))
}
