// api/schemas/requests.go
package schemas

// DefaultModel is used whenever a request leaves Model empty and no
// configuration overrides it.
const DefaultModel = "gpt-4o-mini"

// RejectFeedbackFallback replaces empty judge feedback on a rejected candidate.
const RejectFeedbackFallback = "Revise the tweet to improve clarity, tone, or engagement before publishing."

// PostRequest asks for a LinkedIn thought-leadership post.
type PostRequest struct {
	Prompt          string  `json:"prompt" yaml:"prompt" validate:"notblank"`
	Tone            string  `json:"tone" yaml:"tone" validate:"notblank"`
	Audience        string  `json:"audience" yaml:"audience" validate:"notblank"`
	IncludeHashtags bool    `json:"include_hashtags" yaml:"include_hashtags"`
	MaxHashtags     int     `json:"max_hashtags" yaml:"max_hashtags" validate:"gte=0,lte=3"`
	Model           string  `json:"model" yaml:"model" validate:"notblank"`
	Temperature     float64 `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
}

// DefaultPostRequest returns a PostRequest populated with defaults. Callers
// decode their payload over it.
func DefaultPostRequest() PostRequest {
	return PostRequest{
		Tone:            "professional",
		Audience:        "LinkedIn audience",
		IncludeHashtags: true,
		MaxHashtags:     3,
		Model:           DefaultModel,
		Temperature:     0.7,
	}
}

// PriorAttempt carries the rejected candidate and the judge's feedback into the
// next compose call.
type PriorAttempt struct {
	Candidate string `json:"candidate" yaml:"candidate"`
	Feedback  string `json:"feedback" yaml:"feedback"`
}

// TweetRequest asks for a short-form post of at most 280 characters.
type TweetRequest struct {
	Prompt          string        `json:"prompt" yaml:"prompt" validate:"notblank"`
	Tone            string        `json:"tone" yaml:"tone" validate:"notblank"`
	IncludeHashtags bool          `json:"include_hashtags" yaml:"include_hashtags"`
	MaxHashtags     int           `json:"max_hashtags" yaml:"max_hashtags" validate:"gte=0,lte=3"`
	Model           string        `json:"model" yaml:"model" validate:"notblank"`
	Temperature     float64       `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	Prior           *PriorAttempt `json:"prior,omitempty" yaml:"prior,omitempty"`
}

func DefaultTweetRequest() TweetRequest {
	return TweetRequest{
		Tone:            "punchy",
		IncludeHashtags: true,
		MaxHashtags:     3,
		Model:           DefaultModel,
		Temperature:     0.8,
	}
}

// JudgeRequest asks whether a tweet is ready to publish as-is.
type JudgeRequest struct {
	Tweet       string  `json:"tweet" yaml:"tweet" validate:"notblank"`
	Model       string  `json:"model" yaml:"model" validate:"notblank"`
	Temperature float64 `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
}

func DefaultJudgeRequest() JudgeRequest {
	return JudgeRequest{Model: DefaultModel, Temperature: 0.2}
}

// AgentRequest is the input of the compose-judge workflow. At least one of
// Message and Research must be supplied.
type AgentRequest struct {
	Message     string          `json:"message,omitempty" yaml:"message,omitempty" validate:"required_without=Research"`
	Research    *ResearchResult `json:"researcher_result,omitempty" yaml:"researcher_result,omitempty" validate:"required_without=Message"`
	Tone        string          `json:"tone,omitempty" yaml:"tone,omitempty"`
	MaxAttempts int             `json:"max_attempts,omitempty" yaml:"max_attempts,omitempty" validate:"gte=0,lte=10"`
}

// SimulateRequest describes a post whose publication should be simulated.
// Schedule is an optional ISO8601 timestamp; naive times are read as UTC.
type SimulateRequest struct {
	Post     string `json:"post" yaml:"post" validate:"notblank"`
	Channel  string `json:"channel" yaml:"channel" validate:"notblank"`
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

func DefaultSimulateRequest() SimulateRequest {
	return SimulateRequest{Channel: "linkedin"}
}

// ReadWebsiteRequest asks for the readable content of one web page.
type ReadWebsiteRequest struct {
	URL            string  `json:"url" yaml:"url" validate:"required,http_url"`
	TimeoutSeconds float64 `json:"timeout_seconds" yaml:"timeout_seconds" validate:"gte=1,lte=60"`
	Model          string  `json:"model" yaml:"model" validate:"notblank"`
	Temperature    float64 `json:"temperature" yaml:"temperature" validate:"gte=0,lte=2"`
	MaxCharacters  int     `json:"max_characters" yaml:"max_characters" validate:"gte=1000,lte=100000"`
}

func DefaultReadWebsiteRequest() ReadWebsiteRequest {
	return ReadWebsiteRequest{
		TimeoutSeconds: 15,
		Model:          DefaultModel,
		Temperature:    0,
		MaxCharacters:  20000,
	}
}

// MarketerRequest drives research of a page followed by the tweet workflow.
type MarketerRequest struct {
	Message string `json:"message" yaml:"message" validate:"notblank"`
	URL     string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,http_url"`
}
