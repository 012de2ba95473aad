// internal/agent/twitter_test.go
package agent_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/agent"
	"github.com/xkilldash9x/quill-cli/internal/refine"
)

func tweetReply(t *testing.T, text string, tags ...string) schemas.MessageContent {
	if tags == nil {
		tags = []string{}
	}
	return reply(t, map[string]any{"tweet": text, "hashtags": tags})
}

func verdictReply(t *testing.T, publish bool, feedback string) schemas.MessageContent {
	return reply(t, map[string]any{"should_publish": publish, "feedback": feedback})
}

func TestTwitter_ComposeTweet(t *testing.T) {
	llm := new(MockLLMClient)
	var captured schemas.CompletionRequest
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).
		Run(func(args mock.Arguments) { captured = args.Get(1).(schemas.CompletionRequest) }).
		Return(tweetReply(t, "  Launch day.  ", "ship", " ", "go"), nil).Once()

	tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
	req := agent.TweetDefaults(testAgentConfig())
	req.Prompt = "our launch"
	req.Prior = &schemas.PriorAttempt{Candidate: "old draft", Feedback: "too long"}

	res, err := tw.ComposeTweet(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Launch day.", res.Text)
	assert.Equal(t, []string{"ship", "go"}, res.Hashtags)
	assert.Equal(t, "punchy", res.Tone)

	assert.Equal(t, schemas.TweetSchema.Name, captured.Schema.Name)
	assert.Equal(t, 0.8, captured.Options.Temperature)
	assert.Contains(t, captured.UserPrompt, "Previous draft:\nold draft")
	assert.Contains(t, captured.UserPrompt, "Editor feedback:\ntoo long")
}

func TestTwitter_JudgeTweet_NormalizesFeedback(t *testing.T) {
	tests := []struct {
		name         string
		publish      bool
		feedback     string
		wantFeedback string
	}{
		{"AcceptedDropsFeedback", true, "looks fine", ""},
		{"RejectedKeepsFeedback", false, "too long", "too long"},
		{"RejectedWithoutFeedback", false, "", schemas.RejectFeedbackFallback},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := new(MockLLMClient)
			llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).
				Return(verdictReply(t, tt.publish, tt.feedback), nil).Once()

			tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
			req := agent.JudgeDefaults(testAgentConfig())
			req.Tweet = "Launch day."
			res, err := tw.JudgeTweet(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, tt.publish, res.ShouldPublish)
			assert.Equal(t, tt.wantFeedback, res.Feedback)
			assert.Equal(t, "gpt-4o-mini", res.Model)
		})
	}
}

// TestTwitter_Run_TooLongScenario rejects the first two drafts as too long and
// accepts the third.
func TestTwitter_Run_TooLongScenario(t *testing.T) {
	llm := new(MockLLMClient)
	var composePrompts []string
	recordCompose := func(args mock.Arguments) {
		composePrompts = append(composePrompts, args.Get(1).(schemas.CompletionRequest).UserPrompt)
	}
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Run(recordCompose).Return(tweetReply(t, "draft one"), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Run(recordCompose).Return(tweetReply(t, "draft two"), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Run(recordCompose).Return(tweetReply(t, "draft three", "launch"), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).Return(verdictReply(t, false, "too long"), nil).Twice()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).Return(verdictReply(t, true, ""), nil).Once()

	tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
	res, err := tw.Run(context.Background(), schemas.AgentRequest{Message: "We launched"})
	require.NoError(t, err)
	llm.AssertExpectations(t)

	assert.Equal(t, "draft three", res.Text)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, "draft three\n\nlaunch", res.Rendered)

	require.Len(t, composePrompts, 3)
	assert.NotContains(t, composePrompts[0], "Editor feedback")
	assert.Contains(t, composePrompts[1], "Previous draft:\ndraft one")
	assert.Contains(t, composePrompts[1], "Editor feedback:\ntoo long")
	assert.Contains(t, composePrompts[2], "Previous draft:\ndraft two")
}

func TestTwitter_Run_Exhausted(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Return(tweetReply(t, "meh"), nil).Times(2)
	llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).Return(verdictReply(t, false, "boring"), nil).Times(2)

	tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
	_, err := tw.Run(context.Background(), schemas.AgentRequest{Message: "x", MaxAttempts: 2})
	require.ErrorIs(t, err, schemas.ErrRetryBudgetExhausted)

	var exhausted *refine.ExhaustedError[schemas.TweetResult]
	require.True(t, errors.As(err, &exhausted))
	assert.Equal(t, "meh", exhausted.LastCandidate.Text)
	assert.Equal(t, "boring", exhausted.LastFeedback)
	llm.AssertNumberOfCalls(t, "Generate", 4)
}

func TestTwitter_Run_UsesResearch(t *testing.T) {
	llm := new(MockLLMClient)
	var prompt string
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).
		Run(func(args mock.Arguments) { prompt = args.Get(1).(schemas.CompletionRequest).UserPrompt }).
		Return(tweetReply(t, "Read this"), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).Return(verdictReply(t, true, ""), nil).Once()

	summary := "A short summary."
	tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
	_, err := tw.Run(context.Background(), schemas.AgentRequest{Research: &schemas.ResearchResult{
		URL: "https://example.com/post", Title: "Big News", ContentMarkdown: "# Big News\nDetails.", Summary: &summary,
	}})
	require.NoError(t, err)
	assert.Contains(t, prompt, "Title: Big News")
	assert.Contains(t, prompt, "Summary: A short summary.")
	assert.Contains(t, prompt, "Source: https://example.com/post")
}

func TestTwitter_Run_RequiresInput(t *testing.T) {
	llm := new(MockLLMClient)
	tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
	_, err := tw.Run(context.Background(), schemas.AgentRequest{})
	require.ErrorIs(t, err, schemas.ErrValidation)
	llm.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything)
}

func TestTwitter_Run_TransportErrorEndsRun(t *testing.T) {
	llm := new(MockLLMClient)
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Return(tweetReply(t, "draft"), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).
		Return(nil, schemas.NewTransportError("llmclient.chat", errors.New("reset"))).Once()

	tw := agent.NewTwitter(llm, testAgentConfig(), zaptest.NewLogger(t))
	_, err := tw.Run(context.Background(), schemas.AgentRequest{Message: "x"})
	require.ErrorIs(t, err, schemas.ErrTransport)
	llm.AssertNumberOfCalls(t, "Generate", 2)
}

func TestDefaults_ConfiguredZeroTemperatureReachesRequest(t *testing.T) {
	cfg := testAgentConfig()
	cfg.LinkedIn.Temperature = 0
	cfg.Twitter.ComposeTemperature = 0
	cfg.Twitter.JudgeTemperature = 0

	llm := new(MockLLMClient)
	var seen []schemas.CompletionRequest
	capture := func(args mock.Arguments) { seen = append(seen, args.Get(1).(schemas.CompletionRequest)) }
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Run(capture).
		Return(tweetReply(t, "Launch day."), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleJudge)).Run(capture).
		Return(verdictReply(t, true, ""), nil).Once()
	llm.On("Generate", mock.Anything, forRole(schemas.RoleCompose)).Run(capture).
		Return(reply(t, map[string]any{"headline": "H", "body": "B", "cta": "C", "hashtags": []string{}}), nil).Once()

	tw := agent.NewTwitter(llm, cfg, zaptest.NewLogger(t))
	compose := agent.TweetDefaults(cfg)
	compose.Prompt = "our launch"
	_, err := tw.ComposeTweet(context.Background(), compose)
	require.NoError(t, err)

	judge := agent.JudgeDefaults(cfg)
	judge.Tweet = "Launch day."
	_, err = tw.JudgeTweet(context.Background(), judge)
	require.NoError(t, err)

	post := agent.PostDefaults(cfg)
	post.Prompt = "We launched"
	_, err = agent.NewLinkedIn(llm, zaptest.NewLogger(t)).CreatePost(context.Background(), post)
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for _, req := range seen {
		assert.Zero(t, req.Options.Temperature, "role %s", req.Role)
	}
	llm.AssertExpectations(t)
}
