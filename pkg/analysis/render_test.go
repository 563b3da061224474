package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRender(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain paragraph",
			input:    "Sinus rhythm at 72 bpm.",
			expected: "<p>Sinus rhythm at 72 bpm.</p>\n",
		},
		{
			name:     "heading levels",
			input:    "# Findings\n## Rhythm\n### Rate",
			expected: "<h1>Findings</h1>\n<h2>Rhythm</h2>\n<h3>Rate</h3>\n",
		},
		{
			name:     "bullet list closed by blank line",
			input:    "- normal axis\n- no ST elevation\n\nNo acute changes.",
			expected: "<ul>\n<li>normal axis</li>\n<li>no ST elevation</li>\n</ul>\n<p>No acute changes.</p>\n",
		},
		{
			name:     "bold runs",
			input:    "Rate is **72 bpm** and regular.",
			expected: "<p>Rate is <strong>72 bpm</strong> and regular.</p>\n",
		},
		{
			name:     "unpaired bold marker stays literal",
			input:    "Check **this",
			expected: "<p>Check **this</p>\n",
		},
		{
			name:     "html in input is escaped",
			input:    "<script>alert(1)</script>",
			expected: "<p>&lt;script&gt;alert(1)&lt;/script&gt;</p>\n",
		},
		{
			name:     "bold inside list item",
			input:    "* **PR interval** normal",
			expected: "<ul>\n<li><strong>PR interval</strong> normal</li>\n</ul>\n",
		},
		{
			name:     "windows line endings",
			input:    "# Summary\r\nAll clear.",
			expected: "<h1>Summary</h1>\n<p>All clear.</p>\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, RenderContent(tt.input))
		})
	}
}
