// internal/llmclient/helper_test.go
package llmclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

// MockLLMClient is a mock implementation of the LLMClient interface for testing.
type MockLLMClient struct {
	mock.Mock
	Name string
}

// Generate mocks the Generate method.
func (m *MockLLMClient) Generate(ctx context.Context, req schemas.CompletionRequest) (schemas.RawCompletion, error) {
	args := m.Called(ctx, req)
	raw, _ := args.Get(0).(schemas.RawCompletion)
	return raw, args.Error(1)
}

// Close mocks the Close method.
func (m *MockLLMClient) Close() error {
	args := m.Called()
	return args.Error(0)
}

// setupTestLogger is a helper to create a zap logger for testing with an observer.
func setupTestLogger(t *testing.T) *zap.Logger {
	t.Helper()
	core, _ := observer.New(zap.DebugLevel)
	return zap.New(core)
}

// getValidLLMConfig returns a valid LLMModelConfig for testing purposes.
func getValidLLMConfig(provider config.LLMProvider) config.LLMModelConfig {
	return config.LLMModelConfig{
		Provider:   provider,
		API:        config.APIChat,
		APIKey:     "test-api-key",
		Model:      "test-model",
		APITimeout: 5 * time.Second,
	}
}

// createTestRequest provides a standard completion request.
func createTestRequest() schemas.CompletionRequest {
	return schemas.CompletionRequest{
		SystemPrompt: "System prompt instructions.",
		UserPrompt:   "User query.",
		Schema:       schemas.TweetSchema,
		Role:         schemas.RoleCompose,
		Options: schemas.GenerationOptions{
			Temperature: 0.8,
		},
	}
}

// decodeBody reads a JSON request body into a generic map.
func decodeBody(t *testing.T, r *http.Request) map[string]any {
	t.Helper()
	body, err := io.ReadAll(r.Body)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
