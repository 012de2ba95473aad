// api/schemas/artifacts.go
package schemas

import "time"

// Artifact is a validated generation result the assembler can render.
type Artifact interface {
	// Sections returns the body sections in render order.
	Sections() []string
	// Tags returns the hashtags in their original order.
	Tags() []string
}

// Post is a validated LinkedIn post.
type Post struct {
	Headline string   `json:"headline" yaml:"headline"`
	Body     string   `json:"body" yaml:"body"`
	CTA      string   `json:"cta" yaml:"cta"`
	Hashtags []string `json:"hashtags" yaml:"hashtags"`
}

func (p Post) Sections() []string { return []string{p.Headline, p.Body, p.CTA} }
func (p Post) Tags() []string     { return p.Hashtags }

// Tweet is a validated short-form post.
type Tweet struct {
	Text     string   `json:"tweet" yaml:"tweet"`
	Hashtags []string `json:"hashtags" yaml:"hashtags"`
}

func (t Tweet) Sections() []string { return []string{t.Text} }
func (t Tweet) Tags() []string     { return t.Hashtags }

// JudgeVerdict is the judge's decision on one candidate.
type JudgeVerdict struct {
	ShouldPublish bool   `json:"should_publish" yaml:"should_publish"`
	Feedback      string `json:"feedback" yaml:"feedback"`
}

func (v JudgeVerdict) Accepted() bool { return v.ShouldPublish }

// Normalize clears feedback on acceptance and substitutes the fallback when a
// rejection arrives without any.
func (v JudgeVerdict) Normalize() JudgeVerdict {
	if v.ShouldPublish {
		v.Feedback = ""
		return v
	}
	if v.Feedback == "" {
		v.Feedback = RejectFeedbackFallback
	}
	return v
}

// ResearchResult is the readable content extracted from one web page.
type ResearchResult struct {
	URL             string  `json:"url" yaml:"url"`
	Title           string  `json:"title" yaml:"title"`
	ContentMarkdown string  `json:"content_markdown" yaml:"content_markdown"`
	Summary         *string `json:"summary" yaml:"summary"`
}

// PostResult is the output of the create-post task.
type PostResult struct {
	Post `yaml:",inline"`
	Rendered    string  `json:"post" yaml:"post"`
	Tone        string  `json:"tone" yaml:"tone"`
	Audience    string  `json:"audience" yaml:"audience"`
	Model       string  `json:"model" yaml:"model"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// TweetResult is the output of the compose-tweet task.
type TweetResult struct {
	Tweet `yaml:",inline"`
	Tone  string `json:"tone" yaml:"tone"`
	Model string `json:"model" yaml:"model"`
}

// JudgeResult is the output of the judge-tweet task.
type JudgeResult struct {
	JudgeVerdict `yaml:",inline"`
	Model string `json:"model" yaml:"model"`
}

// AgentResult is the output of the compose-judge workflow.
type AgentResult struct {
	Tweet `yaml:",inline"`
	Rendered string `json:"rendered" yaml:"rendered"`
	Attempts int    `json:"attempts" yaml:"attempts"`
}

// SimulationResult records a simulated publication.
type SimulationResult struct {
	Post          string    `json:"post" yaml:"post"`
	ScheduledTime time.Time `json:"scheduled_time" yaml:"scheduled_time"`
	Channel       string    `json:"channel" yaml:"channel"`
	Status        string    `json:"status" yaml:"status"`
}

// MarketerResult bundles the research step with the tweet it produced.
type MarketerResult struct {
	Research *ResearchResult `json:"research,omitempty" yaml:"research,omitempty"`
	Agent    AgentResult     `json:"agent" yaml:"agent"`
}
