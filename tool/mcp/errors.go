package mcp

import "fmt"

// ConnectionError reports that an MCP endpoint is unreachable or the
// protocol handshake failed. It is fatal for the current turn: the agent
// cannot recover by retrying a different tool.
type ConnectionError struct {
	Endpoint string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("mcp: cannot connect to %s: %v", e.Endpoint, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

// InvocationError reports a transport failure while calling a remote tool.
// It is transient: the call may be retried, and if retries are exhausted the
// failure is fed back to the model as a tool result rather than aborting the
// turn.
type InvocationError struct {
	Tool string
	Err  error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("mcp: invoking tool %q failed: %v", e.Tool, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// ExecutionError reports that the remote service itself rejected or failed
// the tool call. Unlike InvocationError it is not transient and is never
// retried.
type ExecutionError struct {
	Tool    string
	Message string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("mcp: tool %q returned error: %s", e.Tool, e.Message)
}
