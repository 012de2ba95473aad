// internal/llmclient/router_test.go
package llmclient

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

func TestNewLLMRouter_Validation(t *testing.T) {
	logger := setupTestLogger(t)

	_, err := NewLLMRouter(logger, nil, nil)
	assert.ErrorContains(t, err, "a fallback client must be provided")

	_, err = NewLLMRouter(logger, new(MockLLMClient), map[schemas.Role]schemas.LLMClient{schemas.RoleJudge: nil})
	assert.ErrorContains(t, err, "nil client configured for role: judge")
}

func TestLLMRouter_Generate_Routing(t *testing.T) {
	fallback := &MockLLMClient{Name: "fallback"}
	judge := &MockLLMClient{Name: "judge"}

	router, err := NewLLMRouter(setupTestLogger(t), fallback, map[schemas.Role]schemas.LLMClient{
		schemas.RoleJudge: judge,
	})
	require.NoError(t, err)

	judgeReply := schemas.MessageContent{Content: `{"should_publish":true}`}
	composeReply := schemas.MessageContent{Content: `{"tweet":"x"}`}
	judge.On("Generate", mock.Anything, mock.MatchedBy(func(r schemas.CompletionRequest) bool {
		return r.Role == schemas.RoleJudge
	})).Return(judgeReply, nil).Once()
	fallback.On("Generate", mock.Anything, mock.MatchedBy(func(r schemas.CompletionRequest) bool {
		return r.Role == schemas.RoleCompose
	})).Return(composeReply, nil).Once()

	req := createTestRequest()
	req.Role = schemas.RoleJudge
	raw, err := router.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, judgeReply, raw)

	raw, err = router.Generate(context.Background(), createTestRequest())
	require.NoError(t, err)
	assert.Equal(t, composeReply, raw, "roles without a dedicated client use the fallback")

	judge.AssertExpectations(t)
	fallback.AssertExpectations(t)
}

func TestLLMRouter_Generate_PropagatesErrors(t *testing.T) {
	fallback := new(MockLLMClient)
	router, err := NewLLMRouter(setupTestLogger(t), fallback, nil)
	require.NoError(t, err)

	fallback.On("Generate", mock.Anything, mock.Anything).
		Return(nil, schemas.NewServiceError("test", 500, "boom", nil)).Once()

	_, err = router.Generate(context.Background(), createTestRequest())
	assert.ErrorIs(t, err, schemas.ErrService)
}

func TestLLMRouter_Close_ClosesEachClientOnce(t *testing.T) {
	shared := new(MockLLMClient)
	other := new(MockLLMClient)
	shared.On("Close").Return(nil).Once()
	other.On("Close").Return(errors.New("close failed")).Once()

	router, err := NewLLMRouter(setupTestLogger(t), shared, map[schemas.Role]schemas.LLMClient{
		schemas.RoleCompose: shared,
		schemas.RoleJudge:   shared,
		schemas.RoleExtract: other,
	})
	require.NoError(t, err)

	err = router.Close()
	assert.ErrorContains(t, err, "close failed")
	shared.AssertNumberOfCalls(t, "Close", 1)
	other.AssertNumberOfCalls(t, "Close", 1)
}
