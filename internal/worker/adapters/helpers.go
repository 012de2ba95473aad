// internal/worker/adapters/helpers.go
package adapters

import (
	"bytes"
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// strictJSON rejects payload fields the request type does not declare.
var strictJSON = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	DisallowUnknownFields:  true,
}.Froze()

// decodeParams decodes payload over the defaults already in v. An empty or
// null payload keeps the defaults.
func decodeParams(payload []byte, v any) error {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := strictJSON.Unmarshal(trimmed, v); err != nil {
		return schemas.NewValidationError("payload", fmt.Sprintf("failed to decode parameters into %T: %v", v, err))
	}
	return nil
}
