// internal/llmclient/errors.go
package llmclient

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"google.golang.org/genai"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// classify maps a failed SDK call onto the error taxonomy. Caller
// cancellation is returned as the bare context error so hosts can tell an
// abandoned invocation from a failed one. A deadline, whether the caller's or
// the client's own request timeout, counts as a transport failure.
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(ctx.Err(), context.Canceled) {
		return ctx.Err()
	}

	var oaErr *openai.Error
	if errors.As(err, &oaErr) {
		return schemas.NewServiceError(op, oaErr.StatusCode, oaErr.Message, err)
	}
	var gErr genai.APIError
	if errors.As(err, &gErr) {
		return schemas.NewServiceError(op, gErr.Code, serviceMessage(gErr.Status, gErr.Message), err)
	}
	var gErrPtr *genai.APIError
	if errors.As(err, &gErrPtr) && gErrPtr != nil {
		return schemas.NewServiceError(op, gErrPtr.Code, serviceMessage(gErrPtr.Status, gErrPtr.Message), err)
	}
	return schemas.NewTransportError(op, err)
}

func serviceMessage(status, msg string) string {
	if status == "" {
		return msg
	}
	if msg == "" {
		return status
	}
	return fmt.Sprintf("%s: %s", status, msg)
}

// checkRequest validates the parts of a request every client relies on before
// any network traffic happens.
func checkRequest(req schemas.CompletionRequest) error {
	if t := req.Options.Temperature; t < 0 || t > 2 {
		return schemas.NewValidationError("temperature", fmt.Sprintf("must be within [0, 2], got %v", t))
	}
	if req.Schema.Name == "" {
		return schemas.NewValidationError("schema", "a named response schema is required")
	}
	if req.UserPrompt == "" {
		return schemas.NewValidationError("user_prompt", "must not be empty")
	}
	return nil
}
