// internal/agent/prompts.go
package agent

import (
	"fmt"
	"strings"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

const postSystemPrompt = "You are an executive LinkedIn content strategist. Write thoughtful posts that open " +
	"with a bold headline, deliver actionable insight in two short paragraphs, and close " +
	"with a motivating call to action addressing the specified audience. Maintain a " +
	"professional yet personable voice and weave in concrete details where possible."

const tweetSystemPrompt = "You are an expert Twitter/X copywriter. You craft concise posts that stay within " +
	"the 280-character limit, use strong hooks, and match the specified tone. Keep the " +
	"language conversational, avoid excessive emojis, and ensure any line breaks are purposeful."

const judgeSystemPrompt = "You are a meticulous social media editor specializing in Twitter/X. " +
	"Assess the provided tweet for publish readiness, considering clarity, engagement, " +
	"brand safety, length limits, and tone."

const researchSystemPrompt = "You are an expert research assistant that extracts the main readable content from " +
	"web pages. Given raw HTML, identify the central article or body content. Convert " +
	"it to Markdown with appropriate headings, lists, tables, and code blocks. Return " +
	"a concise JSON object with `title`, `content_markdown`, and an optional `summary` " +
	"of no more than three sentences."

// researchExcerptChars bounds how much extracted page content is quoted into
// a tweet prompt.
const researchExcerptChars = 4000

func postUserPrompt(req schemas.PostRequest) string {
	hashtags := "Do not include hashtags in the final post."
	if req.IncludeHashtags && req.MaxHashtags > 0 {
		hashtags = fmt.Sprintf("Include a final line with 1-%d relevant hashtags tailored to LinkedIn readers.", req.MaxHashtags)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Topic prompt: %s\n", req.Prompt)
	fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "Audience: %s\n", req.Audience)
	b.WriteString("Guidelines: Keep the headline under 70 characters, limit the body to 2-3 short " +
		"paragraphs (<=180 words total), make the CTA audience-specific, and ensure the " +
		"overall post feels like a LinkedIn thought-leadership update. ")
	b.WriteString(hashtags)
	b.WriteString("\nReturn a JSON object with keys `headline`, `body`, `cta`, and `hashtags` (array).")
	return b.String()
}

func tweetUserPrompt(req schemas.TweetRequest) string {
	hashtags := "Do not include hashtags."
	if req.IncludeHashtags && req.MaxHashtags > 0 {
		hashtags = fmt.Sprintf("Include up to %d relevant hashtags in the `hashtags` array, not in the tweet text.", req.MaxHashtags)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Compose a tweet/X post about: %s\n", req.Prompt)
	fmt.Fprintf(&b, "Tone: %s\n", req.Tone)
	fmt.Fprintf(&b, "Requirements: %s\n", hashtags)
	if req.Prior != nil {
		// Revision context from the previous rejected draft.
		b.WriteString("\nA previous draft was rejected by the editor.\n")
		fmt.Fprintf(&b, "Previous draft:\n%s\n", req.Prior.Candidate)
		fmt.Fprintf(&b, "Editor feedback:\n%s\n", req.Prior.Feedback)
		b.WriteString("Write a new draft that addresses the feedback.\n")
	}
	b.WriteString("Return the result as a JSON object with keys `tweet` and `hashtags`.")
	return b.String()
}

func judgeUserPrompt(tweet string) string {
	return "Review the following tweet and decide if it should be published as-is.\n\n" +
		"Tweet:\n" + tweet + "\n\n" +
		"Respond with should_publish=true only when no changes are required. " +
		"If changes are needed, set should_publish=false and give concise, actionable feedback " +
		"focused on how to improve the tweet."
}

func researchUserPrompt(url, html string) string {
	return fmt.Sprintf("URL: %s\n\nExtract the main readable content from the following HTML:\n%s", url, html)
}

// agentTopic folds the caller message and any research into the topic the
// composer writes about.
func agentTopic(req schemas.AgentRequest) string {
	var b strings.Builder
	if msg := strings.TrimSpace(req.Message); msg != "" {
		b.WriteString(msg)
	}
	if r := req.Research; r != nil {
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString("Base the post on this source material.\n")
		if r.URL != "" {
			fmt.Fprintf(&b, "Source: %s\n", r.URL)
		}
		if r.Title != "" {
			fmt.Fprintf(&b, "Title: %s\n", r.Title)
		}
		if r.Summary != nil && *r.Summary != "" {
			fmt.Fprintf(&b, "Summary: %s\n", *r.Summary)
		}
		if r.ContentMarkdown != "" {
			fmt.Fprintf(&b, "Content:\n%s\n", excerpt(r.ContentMarkdown, researchExcerptChars))
		}
	}
	return strings.TrimSpace(b.String())
}

func excerpt(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + "..."
}
