// api/schemas/validate_internal_test.go
package schemas

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator_EnforcesNotBlank(t *testing.T) {
	v, err := newValidator()
	require.NoError(t, err)

	type sample struct {
		Name string `json:"name" validate:"notblank"`
	}
	assert.Error(t, v.Struct(sample{Name: " \t\n"}))
	assert.NoError(t, v.Struct(sample{Name: "quill"}))
}

func TestValidatorInstance_IsShared(t *testing.T) {
	assert.Same(t, validatorInstance(), validatorInstance())
}
