package agent

import "fmt"

// ToolLoopError reports that a single user turn exhausted the configured
// maximum of decide/dispatch round trips without the model producing a final
// reply. It usually signals a model/tool-schema mismatch rather than a
// transient fault; the turn is rolled back and the session continues.
type ToolLoopError struct {
	// Iterations is the configured round-trip limit that was reached.
	Iterations int
}

func (e *ToolLoopError) Error() string {
	return fmt.Sprintf("tool call loop reached the limit of %d iterations without a final reply", e.Iterations)
}

// ModelError reports a completion backend failure (unreachable endpoint,
// auth failure, malformed response). It is distinct from a logical "I don't
// know" answer, which is a normal reply. The turn is rolled back and the
// session continues.
type ModelError struct {
	Message string
	Type    string
}

func (e *ModelError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("model request failed (%s): %s", e.Type, e.Message)
	}
	return fmt.Sprintf("model request failed: %s", e.Message)
}
