package telegram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitMessageShort(t *testing.T) {
	parts := SplitMessage("hello", 4096)
	assert.Equal(t, []string{"hello"}, parts)
}

func TestSplitMessagePrefersNewlines(t *testing.T) {
	text := strings.Repeat("line one is fairly long here\n", 300)
	parts := SplitMessage(text, 4096)
	require.Greater(t, len(parts), 1)
	for _, part := range parts[:len(parts)-1] {
		assert.True(t, strings.HasSuffix(part, "\n"), "chunks should break at newlines")
	}
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestSplitMessageHardBreak(t *testing.T) {
	text := strings.Repeat("x", 10_000)
	parts := SplitMessage(text, 4096)
	require.Len(t, parts, 3)
	assert.Equal(t, text, strings.Join(parts, ""))
}

func TestFixMarkdownClosesCodeBlock(t *testing.T) {
	got := FixMarkdown("before\n```go\nfmt.Println(\"hi\")")
	assert.Equal(t, strings.Count(got, "```")%2, 0)
}

func TestFixMarkdownClosesInlineCode(t *testing.T) {
	got := FixMarkdown("use `go test to run")
	assert.Equal(t, strings.Count(got, "`")%2, 0)
}

func TestFixMarkdownLeavesBalancedAlone(t *testing.T) {
	text := "all `good` here\n```\nblock\n```"
	assert.Equal(t, text, FixMarkdown(text))
}
