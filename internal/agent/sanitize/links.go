// Package sanitize strips artifacts the upstream models are prone to
// emitting but the chat surface must never show, currently hyperlinks.
package sanitize

import (
	"regexp"
	"strings"
)

var (
	markdownLink = regexp.MustCompile(`\[([^\]]*)\]\((?:https?://|www\.)[^)]*\)`)
	bareURL      = regexp.MustCompile(`(?:https?://|www\.)[^\s<>()\[\]"']+`)
)

// StripLinks removes every hyperlink from free text. Markdown links keep
// their label, bare URLs are dropped entirely. Idempotent.
func StripLinks(s string) string {
	if s == "" {
		return s
	}
	out := markdownLink.ReplaceAllString(s, "$1")
	out = bareURL.ReplaceAllString(out, "")
	out = collapseSpaces(out)
	return out
}

// collapseSpaces cleans the double spaces left behind by URL removal
// without touching newlines.
func collapseSpaces(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		fields := strings.Fields(line)
		lines[i] = strings.Join(fields, " ")
	}
	return strings.Join(lines, "\n")
}
