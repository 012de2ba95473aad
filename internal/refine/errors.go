// internal/refine/errors.go
package refine

import (
	"fmt"

	"github.com/xkilldash9x/quill-cli/api/schemas"
)

// ExhaustedError reports that every attempt was rejected. It carries the last
// rejected candidate and its feedback for diagnostics.
type ExhaustedError[T any] struct {
	Attempts      int
	LastCandidate T
	LastFeedback  string
}

func (e *ExhaustedError[T]) Error() string {
	return fmt.Sprintf("refine: %s: no candidate accepted after %d attempts: last feedback: %s",
		schemas.KindRetryBudgetExhausted, e.Attempts, e.LastFeedback)
}

// Is makes errors.Is(err, schemas.ErrRetryBudgetExhausted) hold.
func (e *ExhaustedError[T]) Is(target error) bool {
	return target == schemas.ErrRetryBudgetExhausted
}

func (e *ExhaustedError[T]) ErrorDetails() map[string]any {
	return map[string]any{
		"attempts":       e.Attempts,
		"last_candidate": e.LastCandidate,
		"last_feedback":  e.LastFeedback,
	}
}
