// internal/server/server_test.go
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/xkilldash9x/quill-cli/api/schemas"
	"github.com/xkilldash9x/quill-cli/internal/config"
	"github.com/xkilldash9x/quill-cli/internal/worker"
)

type stubHandler struct {
	name schemas.TaskName
	fn   func(ctx context.Context, payload json.RawMessage) (any, error)
}

func (s stubHandler) Name() schemas.TaskName { return s.name }

func (s stubHandler) Handle(ctx context.Context, payload json.RawMessage) (any, error) {
	return s.fn(ctx, payload)
}

func setupServer(t *testing.T, handlers ...stubHandler) (*Server, *observer.ObservedLogs) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)

	opts := make([]worker.Option, 0, len(handlers))
	for _, h := range handlers {
		opts = append(opts, worker.WithHandlers(h))
	}
	w, err := worker.NewMonolithicWorker(config.NewDefaultConfig(), logger, worker.Dependencies{}, opts...)
	require.NoError(t, err)

	return New(config.ServerConfig{RequestTimeout: time.Second, Mode: gin.TestMode}, w, logger), logs
}

func do(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func echo() stubHandler {
	return stubHandler{name: "echo.task", fn: func(_ context.Context, payload json.RawMessage) (any, error) {
		var v map[string]any
		if err := json.Unmarshal(payload, &v); err != nil {
			return nil, schemas.NewValidationError("payload", err.Error())
		}
		return v, nil
	}}
}

func failing(err error) stubHandler {
	return stubHandler{name: "fail.task", fn: func(context.Context, json.RawMessage) (any, error) { return nil, err }}
}

func TestHealthz(t *testing.T) {
	s, _ := setupServer(t, echo())
	rec := do(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode(t, rec)["status"])
}

func TestListTasks(t *testing.T) {
	s, _ := setupServer(t, echo(), failing(errors.New("x")))
	rec := do(t, s, http.MethodGet, "/api/tasks", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"echo.task", "fail.task"}, decode(t, rec)["tasks"])
}

func TestRunTask_Success(t *testing.T) {
	s, logs := setupServer(t, echo())
	req := httptest.NewRequest(http.MethodPost, "/api/tasks/echo.task", bytes.NewBufferString(`{"hello":"world"}`))
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, "req-42", body["task_id"])
	assert.Equal(t, map[string]any{"hello": "world"}, body["output"])
	assert.NotContains(t, body, "error")
	assert.Equal(t, 1, logs.FilterMessage("Request handled").Len())
}

func TestRunTask_UnknownTask(t *testing.T) {
	s, _ := setupServer(t, echo())
	rec := do(t, s, http.MethodPost, "/api/tasks/missing.task", `{}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	errBody := decode(t, rec)["error"].(map[string]any)
	assert.Equal(t, string(schemas.KindValidation), errBody["kind"])
}

func TestRunTask_ErrorStatus(t *testing.T) {
	tests := map[string]struct {
		err    error
		status int
	}{
		"Validation": {err: schemas.NewValidationError("prompt", "must not be empty"), status: http.StatusBadRequest},
		"Transport":  {err: schemas.NewTransportError("generate", errors.New("reset")), status: http.StatusBadGateway},
		"Service":    {err: schemas.NewServiceError("generate", 503, "overloaded", nil), status: http.StatusBadGateway},
		"Empty":      {err: schemas.NewEmptyResponse("no text"), status: http.StatusUnprocessableEntity},
		"Schema":     {err: schemas.NewSchemaViolation("tweet", "too long"), status: http.StatusUnprocessableEntity},
		"Canceled":   {err: context.Canceled, status: 499},
		"Internal":   {err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			s, logs := setupServer(t, failing(tc.err))
			rec := do(t, s, http.MethodPost, "/api/tasks/fail.task", `{}`)
			assert.Equal(t, tc.status, rec.Code)
			errBody := decode(t, rec)["error"].(map[string]any)
			assert.Equal(t, string(schemas.KindOf(tc.err)), errBody["kind"])
			assert.Equal(t, 1, logs.FilterMessage("Request failed").Len())
		})
	}
}

func TestStatusFor_Exhausted(t *testing.T) {
	assert.Equal(t, http.StatusUnprocessableEntity, StatusFor(schemas.KindRetryBudgetExhausted))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(schemas.ErrorKind("something_new")))
}

func TestRunBatch(t *testing.T) {
	s, _ := setupServer(t, echo(), failing(schemas.NewEmptyResponse("nothing")))
	rec := do(t, s, http.MethodPost, "/api/batch",
		`[{"id":"a","name":"echo.task","payload":{"n":1}},{"id":"b","name":"fail.task"},{"id":"c","name":"nope"}]`)
	require.Equal(t, http.StatusOK, rec.Code)

	results := decode(t, rec)["results"].([]any)
	require.Len(t, results, 3)
	first := results[0].(map[string]any)
	assert.Equal(t, "a", first["task_id"])
	assert.Equal(t, map[string]any{"n": float64(1)}, first["output"])
	assert.Equal(t, string(schemas.KindEmptyResponse), results[1].(map[string]any)["error"].(map[string]any)["kind"])
	assert.Equal(t, string(schemas.KindValidation), results[2].(map[string]any)["error"].(map[string]any)["kind"])
}

func TestRunBatch_BadBody(t *testing.T) {
	s, _ := setupServer(t, echo())
	rec := do(t, s, http.MethodPost, "/api/batch", `{"not":"a list"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRun_ShutsDownOnCancel(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w, err := worker.NewMonolithicWorker(config.NewDefaultConfig(), zap.NewNop(), worker.Dependencies{}, worker.WithHandlers(echo()))
	require.NoError(t, err)
	s := New(config.ServerConfig{Addr: "127.0.0.1:0"}, w, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
