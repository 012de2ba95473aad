// internal/llmclient/openai_chat_test.go
package llmclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
)

func chatCompletionBody(content string) map[string]any {
	return map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "test-model",
		"choices": []any{map[string]any{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]any{
				"role":    "assistant",
				"content": content,
				"refusal": nil,
			},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	}
}

// setupChatClient rigs up a ChatClient pointed at a mock HTTP server.
func setupChatClient(t *testing.T, handler http.HandlerFunc) (*ChatClient, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := getValidLLMConfig(config.ProviderOpenAI)
	cfg.Endpoint = server.URL
	client, err := NewChatClient(cfg, setupTestLogger(t))
	require.NoError(t, err)
	return client, server
}

func TestNewChatClient_MissingAPIKey(t *testing.T) {
	cfg := getValidLLMConfig(config.ProviderOpenAI)
	cfg.APIKey = ""
	client, err := NewChatClient(cfg, setupTestLogger(t))
	assert.Nil(t, client)
	assert.ErrorContains(t, err, "OpenAI API Key is required")
}

func TestChatClient_Generate_Success(t *testing.T) {
	var captured map[string]any
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))
		captured = decodeBody(t, r)
		writeJSON(w, http.StatusOK, chatCompletionBody(`{"tweet":"Ship it","hashtags":["launch"]}`))
	})

	raw, err := client.Generate(context.Background(), createTestRequest())
	require.NoError(t, err)
	assert.Equal(t, schemas.ShapeMessageContent, raw.Shape())
	text, ok := raw.Text()
	assert.True(t, ok)
	assert.Equal(t, `{"tweet":"Ship it","hashtags":["launch"]}`, text)

	// Verify the request mapping.
	require.NotNil(t, captured)
	assert.Equal(t, "test-model", captured["model"])
	assert.Equal(t, 0.8, captured["temperature"])
	messages := captured["messages"].([]any)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])

	format := captured["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	js := format["json_schema"].(map[string]any)
	assert.Equal(t, "ComposeTweetResponse", js["name"])
	assert.NotEqual(t, true, js["strict"], "schemas with maxLength cannot request strict mode")
	props := js["schema"].(map[string]any)["properties"].(map[string]any)
	assert.Equal(t, float64(280), props["tweet"].(map[string]any)["maxLength"])
}

func TestChatClient_Generate_ModelOverride(t *testing.T) {
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := decodeBody(t, r)
		assert.Equal(t, "gpt-4o", body["model"])
		writeJSON(w, http.StatusOK, chatCompletionBody(`{}`))
	})

	req := createTestRequest()
	req.Options.Model = "gpt-4o"
	_, err := client.Generate(context.Background(), req)
	require.NoError(t, err)
}

func TestChatClient_Generate_EmptyChoices(t *testing.T) {
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		body := chatCompletionBody("")
		body["choices"] = []any{}
		writeJSON(w, http.StatusOK, body)
	})

	raw, err := client.Generate(context.Background(), createTestRequest())
	require.NoError(t, err, "an empty reply is the extractor's to classify")
	_, ok := raw.Text()
	assert.False(t, ok)
}

func TestChatClient_Generate_ServiceError(t *testing.T) {
	var calls atomic.Int32
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"error": map[string]any{"message": "overloaded", "type": "server_error"},
		})
	})

	_, err := client.Generate(context.Background(), createTestRequest())
	require.ErrorIs(t, err, schemas.ErrService)
	var se *schemas.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusServiceUnavailable, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load(), "the adapter must not retry")
}

func TestChatClient_Generate_TransportError(t *testing.T) {
	client, server := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {})
	server.Close()

	_, err := client.Generate(context.Background(), createTestRequest())
	assert.ErrorIs(t, err, schemas.ErrTransport)
}

func TestChatClient_Generate_TimeoutIsTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	t.Cleanup(server.Close)

	cfg := getValidLLMConfig(config.ProviderOpenAI)
	cfg.Endpoint = server.URL
	cfg.APITimeout = 50 * time.Millisecond
	client, err := NewChatClient(cfg, setupTestLogger(t))
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), createTestRequest())
	assert.ErrorIs(t, err, schemas.ErrTransport)
}

func TestChatClient_Generate_CallerDeadlineIsTransport(t *testing.T) {
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})

	// A host-imposed task timeout expires during the call.
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Generate(ctx, createTestRequest())
	require.ErrorIs(t, err, schemas.ErrTransport)
	assert.Equal(t, schemas.KindTransport, schemas.KindOf(err))
	payload := schemas.ToPayload(err)
	require.NotNil(t, payload)
	assert.True(t, payload.Retryable)
}

func TestChatClient_Generate_CanceledBeforeCall(t *testing.T) {
	var calls atomic.Int32
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Generate(ctx, createTestRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, schemas.KindCanceled, schemas.KindOf(err), "cancellation passes through unclassified")
	assert.Zero(t, calls.Load())
}

func TestChatClient_Generate_InvalidTemperature(t *testing.T) {
	var calls atomic.Int32
	client, _ := setupChatClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	})

	for _, temp := range []float64{-0.5, 2.01} {
		req := createTestRequest()
		req.Options.Temperature = temp
		_, err := client.Generate(context.Background(), req)
		assert.ErrorIs(t, err, schemas.ErrValidation)
	}
	assert.Zero(t, calls.Load(), "validation happens before any network call")
}
