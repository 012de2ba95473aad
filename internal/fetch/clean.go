// internal/fetch/clean.go
package fetch

import (
	"io"
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CleanHTML drops script, style and noscript elements (tags and contents), collapses
// every whitespace run to one space and truncates the result to at most
// maxChars characters. The remaining markup is kept so the model can still
// see document structure. A maxChars of zero or less disables truncation.
func CleanHTML(r io.Reader, maxChars int) (string, error) {
	z := html.NewTokenizer(r)
	var b strings.Builder
	skipDepth := 0

	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if err := z.Err(); err != io.EOF {
				return "", err
			}
			return truncateRunes(collapseSpace(b.String()), maxChars), nil
		case html.StartTagToken:
			if isDropped(z) {
				skipDepth++
				continue
			}
		case html.EndTagToken:
			if isDropped(z) {
				if skipDepth > 0 {
					skipDepth--
				}
				continue
			}
		case html.SelfClosingTagToken:
			if isDropped(z) {
				continue
			}
		}
		if skipDepth > 0 {
			continue
		}
		b.Write(z.Raw())
	}
}

func isDropped(z *html.Tokenizer) bool {
	name, _ := z.TagName()
	switch atom.Lookup(name) {
	case atom.Script, atom.Style, atom.Noscript:
		return true
	}
	return false
}

func collapseSpace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
