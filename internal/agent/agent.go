// internal/agent/agent.go

// Package agent implements the content tasks: LinkedIn posts and their
// simulated publication, tweets with an editorial judge, the compose-judge
// tweet agent, web research and the marketer that chains research into a
// tweet. Every task validates its request before any model call.
package agent

import (
	"context"
	"time"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/assembly"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/fetch"
)

// Fetcher retrieves a page and returns it cleaned and truncated.
type Fetcher interface {
	Fetch(ctx context.Context, url string, timeout time.Duration, maxChars int) (fetch.Page, error)
}

// PostDefaults returns the create-post request defaults with configured
// overrides applied. Temperatures are always taken from the config, whose
// defaults already hold the per-task values, so a configured 0 is kept.
func PostDefaults(cfg config.AgentConfig) schemas.PostRequest {
	req := schemas.DefaultPostRequest()
	setString(&req.Model, cfg.LinkedIn.Model)
	setString(&req.Tone, cfg.LinkedIn.Tone)
	setString(&req.Audience, cfg.LinkedIn.Audience)
	req.Temperature = cfg.LinkedIn.Temperature
	return req
}

func TweetDefaults(cfg config.AgentConfig) schemas.TweetRequest {
	req := schemas.DefaultTweetRequest()
	setString(&req.Model, cfg.Twitter.ComposeModel)
	setString(&req.Tone, cfg.Twitter.Tone)
	req.Temperature = cfg.Twitter.ComposeTemperature
	return req
}

func JudgeDefaults(cfg config.AgentConfig) schemas.JudgeRequest {
	req := schemas.DefaultJudgeRequest()
	setString(&req.Model, cfg.Twitter.JudgeModel)
	req.Temperature = cfg.Twitter.JudgeTemperature
	return req
}

func ReadWebsiteDefaults(cfg config.AgentConfig) schemas.ReadWebsiteRequest {
	req := schemas.DefaultReadWebsiteRequest()
	setString(&req.Model, cfg.Research.Model)
	req.Temperature = cfg.Research.Temperature
	if cfg.Research.Timeout > 0 {
		req.TimeoutSeconds = cfg.Research.Timeout.Seconds()
	}
	if cfg.Research.MaxCharacters > 0 {
		req.MaxCharacters = cfg.Research.MaxCharacters
	}
	return req
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// capHashtags applies the request's hashtag policy to extracted tags. Tags are
// normalized the way the assembler renders them.
func capHashtags(tags []string, include bool, max int) []string {
	if !include || max <= 0 {
		return []string{}
	}
	tags = assembly.NormalizeTags(tags)
	if len(tags) > max {
		tags = tags[:max]
	}
	return tags
}
