// api/schemas/validate_test.go
package schemas_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

func requireValidationField(t *testing.T, err error, field string) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, schemas.ErrValidation)
	var se *schemas.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, field, se.Field)
}

func TestValidate_PostRequest(t *testing.T) {
	t.Parallel()

	req := schemas.DefaultPostRequest()
	req.Prompt = "Announce our new release"
	assert.NoError(t, schemas.Validate(req))

	blank := req
	blank.Prompt = "   \n"
	requireValidationField(t, schemas.Validate(blank), "prompt")

	hot := req
	hot.Temperature = 2.5
	requireValidationField(t, schemas.Validate(hot), "temperature")

	tags := req
	tags.MaxHashtags = 5
	requireValidationField(t, schemas.Validate(tags), "max_hashtags")
}

func TestValidate_TemperatureBoundaries(t *testing.T) {
	t.Parallel()

	req := schemas.DefaultJudgeRequest()
	req.Tweet = "Ship it."
	for _, temp := range []float64{0, 2} {
		req.Temperature = temp
		assert.NoError(t, schemas.Validate(req), "temperature %v", temp)
	}
	req.Temperature = -0.1
	requireValidationField(t, schemas.Validate(req), "temperature")
}

func TestValidate_ReadWebsiteRequest(t *testing.T) {
	t.Parallel()

	req := schemas.DefaultReadWebsiteRequest()
	req.URL = "https://example.com/blog/post"
	assert.NoError(t, schemas.Validate(req))

	bad := req
	bad.URL = "not a url"
	requireValidationField(t, schemas.Validate(bad), "url")

	slow := req
	slow.TimeoutSeconds = 61
	requireValidationField(t, schemas.Validate(slow), "timeout_seconds")

	small := req
	small.MaxCharacters = 999
	requireValidationField(t, schemas.Validate(small), "max_characters")
}

func TestValidate_AgentRequestNeedsMessageOrResearch(t *testing.T) {
	t.Parallel()

	requireValidationField(t, schemas.Validate(schemas.AgentRequest{}), "message")

	assert.NoError(t, schemas.Validate(schemas.AgentRequest{Message: "launch day"}))
	assert.NoError(t, schemas.Validate(schemas.AgentRequest{
		Research: &schemas.ResearchResult{URL: "https://example.com", Title: "T", ContentMarkdown: "# T"},
	}))
}

func TestDefaults(t *testing.T) {
	t.Parallel()

	post := schemas.DefaultPostRequest()
	assert.Equal(t, "professional", post.Tone)
	assert.Equal(t, "LinkedIn audience", post.Audience)
	assert.True(t, post.IncludeHashtags)
	assert.Equal(t, 0.7, post.Temperature)

	tweet := schemas.DefaultTweetRequest()
	assert.Equal(t, "punchy", tweet.Tone)
	assert.Equal(t, 0.8, tweet.Temperature)
	assert.Nil(t, tweet.Prior)

	assert.Equal(t, 0.2, schemas.DefaultJudgeRequest().Temperature)
	assert.Equal(t, "linkedin", schemas.DefaultSimulateRequest().Channel)

	rw := schemas.DefaultReadWebsiteRequest()
	assert.Equal(t, 15.0, rw.TimeoutSeconds)
	assert.Equal(t, 20000, rw.MaxCharacters)
}
