// internal/agent/twitter.go
package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/assembly"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/llmutil"
	"github.com/xkilldash9x/quill-cli/internal/refine"
)

// Twitter composes and judges tweets and runs the compose-judge agent.
type Twitter struct {
	llm    schemas.LLMClient
	cfg    config.AgentConfig
	logger *zap.Logger
}

func NewTwitter(llm schemas.LLMClient, cfg config.AgentConfig, logger *zap.Logger) *Twitter {
	return &Twitter{llm: llm, cfg: cfg, logger: logger.Named("twitter")}
}

// ComposeTweet drafts one tweet. A Prior attempt, when present, is shown to
// the model as revision context.
func (t *Twitter) ComposeTweet(ctx context.Context, req schemas.TweetRequest) (schemas.TweetResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.TweetResult{}, err
	}

	raw, err := t.llm.Generate(ctx, schemas.CompletionRequest{
		SystemPrompt: tweetSystemPrompt,
		UserPrompt:   tweetUserPrompt(req),
		Schema:       schemas.TweetSchema,
		Role:         schemas.RoleCompose,
		Options:      schemas.GenerationOptions{Model: req.Model, Temperature: req.Temperature},
	})
	if err != nil {
		return schemas.TweetResult{}, err
	}
	tweet, err := llmutil.Extract[schemas.Tweet](raw, schemas.TweetSchema)
	if err != nil {
		return schemas.TweetResult{}, err
	}
	tweet.Hashtags = capHashtags(tweet.Hashtags, req.IncludeHashtags, req.MaxHashtags)

	t.logger.Debug("Composed tweet", zap.Int("characters", len([]rune(tweet.Text))), zap.Bool("revision", req.Prior != nil))
	return schemas.TweetResult{Tweet: tweet, Tone: req.Tone, Model: req.Model}, nil
}

// JudgeTweet asks the editor model whether tweet is ready to publish.
// Accepted verdicts carry no feedback and rejections always carry some.
func (t *Twitter) JudgeTweet(ctx context.Context, req schemas.JudgeRequest) (schemas.JudgeResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.JudgeResult{}, err
	}

	raw, err := t.llm.Generate(ctx, schemas.CompletionRequest{
		SystemPrompt: judgeSystemPrompt,
		UserPrompt:   judgeUserPrompt(req.Tweet),
		Schema:       schemas.VerdictSchema,
		Role:         schemas.RoleJudge,
		Options:      schemas.GenerationOptions{Model: req.Model, Temperature: req.Temperature},
	})
	if err != nil {
		return schemas.JudgeResult{}, err
	}
	verdict, err := llmutil.ParseVerdict(raw)
	if err != nil {
		return schemas.JudgeResult{}, err
	}
	return schemas.JudgeResult{JudgeVerdict: verdict, Model: req.Model}, nil
}

// Run drafts tweets until the judge accepts one or the attempt budget is
// spent. Each rejected draft and its feedback go into the next compose call.
func (t *Twitter) Run(ctx context.Context, req schemas.AgentRequest) (schemas.AgentResult, error) {
	if err := schemas.Validate(req); err != nil {
		return schemas.AgentResult{}, err
	}

	base := TweetDefaults(t.cfg)
	base.Prompt = agentTopic(req)
	if req.Tone != "" {
		base.Tone = req.Tone
	}
	judgeBase := JudgeDefaults(t.cfg)

	maxAttempts := t.cfg.MaxAttempts
	if req.MaxAttempts > 0 {
		maxAttempts = req.MaxAttempts
	}
	if maxAttempts < 1 {
		maxAttempts = refine.DefaultMaxAttempts
	}

	composer := refine.ComposerFunc[schemas.TweetResult](func(ctx context.Context, state refine.LoopState[schemas.TweetResult]) (schemas.TweetResult, error) {
		r := base
		if state.Retrying() {
			r.Prior = &schemas.PriorAttempt{Candidate: state.Previous.Text, Feedback: state.Feedback}
		}
		return t.ComposeTweet(ctx, r)
	})
	judge := refine.JudgeFunc[schemas.TweetResult](func(ctx context.Context, candidate schemas.TweetResult) (schemas.JudgeVerdict, error) {
		r := judgeBase
		r.Tweet = candidate.Text
		res, err := t.JudgeTweet(ctx, r)
		return res.JudgeVerdict, err
	})

	loop, err := refine.New[schemas.TweetResult](composer, judge,
		refine.WithMaxAttempts(maxAttempts),
		refine.WithLogger(t.logger),
	)
	if err != nil {
		return schemas.AgentResult{}, err
	}
	out, err := loop.Run(ctx)
	if err != nil {
		return schemas.AgentResult{}, err
	}

	t.logger.Info("Twitter agent produced a tweet", zap.Int("attempts", out.Attempts))
	return schemas.AgentResult{
		Tweet:    out.Candidate.Tweet,
		Rendered: assembly.RenderTweet(out.Candidate.Tweet),
		Attempts: out.Attempts,
	}, nil
}
