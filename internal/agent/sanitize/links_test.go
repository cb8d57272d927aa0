package sanitize

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripLinksMarkdownKeepsLabel(t *testing.T) {
	in := "Read the [match report](https://example.com/report) for details."
	out := StripLinks(in)

	assert.Equal(t, "Read the match report for details.", out)
}

func TestStripLinksBareURLRemoved(t *testing.T) {
	cases := []string{
		"Check https://example.com/standings for the table.",
		"Check http://example.com/standings for the table.",
		"Check www.example.com/standings for the table.",
	}
	for _, in := range cases {
		out := StripLinks(in)
		assert.Equal(t, "Check for the table.", out, "input: %s", in)
	}
}

func TestStripLinksNoHyperlinkArtifactsRemain(t *testing.T) {
	in := "See [this](https://a.io/x) and https://b.io/y plus [another](http://c.io/z?q=1)."
	out := StripLinks(in)

	assert.NotContains(t, out, "http://")
	assert.NotContains(t, out, "https://")
	assert.NotContains(t, out, "](")
	assert.Contains(t, out, "this")
	assert.Contains(t, out, "another")
}

func TestStripLinksIdempotent(t *testing.T) {
	in := "Mixed [label](https://x.io) text www.y.io end."
	once := StripLinks(in)
	twice := StripLinks(once)

	assert.Equal(t, once, twice)
}

func TestStripLinksPlainTextUntouched(t *testing.T) {
	in := "Arsenal beat Chelsea 2-1 on Saturday.\nGreat match."
	assert.Equal(t, in, StripLinks(in))
}

func TestStripLinksMultiline(t *testing.T) {
	in := "Line one https://x.io here.\nLine two stays."
	out := StripLinks(in)

	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "Line one here.", lines[0])
	assert.Equal(t, "Line two stays.", lines[1])
}
