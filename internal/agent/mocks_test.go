// internal/agent/mocks_test.go
package agent_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/fetch"
)

// MockLLMClient mocks schemas.LLMClient.
type MockLLMClient struct {
	mock.Mock
}

func (m *MockLLMClient) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(schemas.RawCompletion)
	return raw, args.Error(1)
}

func (m *MockLLMClient) Close() error {
	return m.Called().Error(0)
}

// MockFetcher mocks agent.Fetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url string, timeout time.Duration, maxChars int) (fetch.Page, error) {
	args := m.Called(ctx, url, timeout, maxChars)
	return args.Get(0).(fetch.Page), args.Error(1)
}

// reply marshals v into a chat style completion.
func reply(t *testing.T, v any) schemas.MessageContent {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return schemas.MessageContent{Content: string(b)}
}

func forRole(role schemas.Role) any {
	return mock.MatchedBy(func(r schemas.CompletionRequest) bool { return r.Role == role })
}

func testAgentConfig() config.AgentConfig {
	return config.NewDefaultConfig().Agent()
}
