// internal/assembly/assembly.go

// Package assembly renders validated artifacts into the final text shown to a
// reader. Rendering is pure and deterministic.
package assembly

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

const sectionSeparator = "\n\n"

// Render emits the artifact's sections in order, each trimmed, separated by a
// blank line. Sections that are empty after trimming are dropped. A non-empty
// hashtag list becomes one final line of space-joined tags.
func Render(a schemas.Artifact) string {
	blocks := make([]string, 0, 4)
	for _, section := range a.Sections() {
		if s := strings.TrimSpace(section); s != "" {
			blocks = append(blocks, s)
		}
	}
	if line := hashtagLine(a.Tags()); line != "" {
		blocks = append(blocks, line)
	}
	return strings.Join(blocks, sectionSeparator)
}

// RenderPost renders a LinkedIn post as headline, body, call to action and tags.
func RenderPost(p schemas.Post) string { return Render(p) }

// RenderTweet renders a tweet followed by its tags.
func RenderTweet(t schemas.Tweet) string { return Render(t) }

// NormalizeTags removes whitespace inside each tag and drops tags left empty,
// keeping the input order. A tag is a single token, so "machine learning"
// becomes "machinelearning". Callers that expose tags next to the rendered
// text apply it first so both agree.
func NormalizeTags(tags []string) []string {
	kept := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag = strings.Join(strings.Fields(tag), ""); tag != "" {
			kept = append(kept, tag)
		}
	}
	return kept
}

// hashtagLine uses tags as given, without adding a leading '#', so a tag the
// model already prefixed is not doubled.
func hashtagLine(tags []string) string {
	return strings.Join(NormalizeTags(tags), " ")
}

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// RenderHTML converts rendered text into an HTML fragment for previews.
// Raw HTML in the input is escaped.
func RenderHTML(text string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(text), &buf); err != nil {
		return "", fmt.Errorf("failed to convert rendered text to html: %w", err)
	}
	return buf.String(), nil
}
