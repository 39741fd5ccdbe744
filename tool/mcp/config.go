// Package mcp exposes the tools of a remote MCP capability provider as
// callable tools.
package mcp

import (
	"context"
	"time"

	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// Transport methods for reaching the server.
const (
	// TransportStdio runs the server as a child process over stdio.
	TransportStdio = "stdio"
	// TransportStreamable talks to the server over streamable HTTP.
	TransportStreamable = "streamable"
)

// ApprovalMode controls whether a human must confirm each tool call before
// it executes.
type ApprovalMode string

const (
	// ApprovalAutoApprove executes tool calls immediately.
	ApprovalAutoApprove ApprovalMode = "auto_approve"
	// ApprovalRequireConfirmation blocks each call until the configured
	// ConfirmFunc returns true.
	ApprovalRequireConfirmation ApprovalMode = "require_confirmation"
)

// ConfirmFunc decides whether a pending tool call may execute. It receives
// the tool name and the raw JSON arguments. Returning false declines the
// call; the decline is reported to the model as a tool failure.
type ConfirmFunc func(ctx context.Context, toolName string, jsonArgs []byte) (bool, error)

// Default configurations.
var (
	defaultClientInfo = mcp.Implementation{
		Name:    "frontier-agents-workshop",
		Version: "1.0.0",
	}

	defaultRetryConfig = RetryConfig{
		MaxRetries:     2,
		InitialBackoff: 500 * time.Millisecond,
		BackoffFactor:  2.0,
		MaxBackoff:     8 * time.Second,
	}
)

// ConnectionConfig defines the configuration for connecting to an MCP server.
// It is immutable after the ToolSet is constructed.
type ConnectionConfig struct {
	// Name identifies the provider (e.g. "UserService"). Used for logging
	// and as the ToolSet name.
	Name string `json:"name"`

	// Transport specifies the transport method: "streamable" or "stdio".
	Transport string `json:"transport"`

	// Streamable HTTP configuration.
	ServerURL string            `json:"server_url,omitempty"`
	Headers   map[string]string `json:"headers,omitempty"`

	// Stdio configuration.
	Command string   `json:"command,omitempty"`
	Args    []string `json:"args,omitempty"`

	// Timeout bounds each remote call. Zero means the client default.
	Timeout time.Duration `json:"timeout,omitempty"`

	// ClientInfo is the implementation info sent during the handshake.
	ClientInfo mcp.Implementation `json:"client_info,omitempty"`
}

// RetryConfig defines retry behavior for transient tool call failures.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts for tool calls.
	MaxRetries int `json:"max_retries"`

	// InitialBackoff is the backoff duration before the first retry.
	InitialBackoff time.Duration `json:"initial_backoff"`

	// BackoffFactor multiplies the backoff duration for each retry.
	BackoffFactor float64 `json:"backoff_factor"`

	// MaxBackoff caps the exponential backoff growth.
	MaxBackoff time.Duration `json:"max_backoff"`
}

// toolSetConfig holds internal configuration for a ToolSet.
type toolSetConfig struct {
	connectionConfig ConnectionConfig
	retryConfig      RetryConfig
	approvalMode     ApprovalMode
	confirm          ConfirmFunc
	mcpOptions       []mcp.ClientOption
}

// ToolSetOption configures a ToolSet.
type ToolSetOption func(*toolSetConfig)

// WithApproval sets the approval policy and the confirmation callback used
// when the policy is ApprovalRequireConfirmation. The callback is an
// explicit parameter rather than a global flag so that tests can inject an
// always-approve stub.
func WithApproval(mode ApprovalMode, confirm ConfirmFunc) ToolSetOption {
	return func(c *toolSetConfig) {
		c.approvalMode = mode
		c.confirm = confirm
	}
}

// WithRetry overrides the default retry configuration for tool calls.
func WithRetry(cfg RetryConfig) ToolSetOption {
	return func(c *toolSetConfig) {
		c.retryConfig = cfg
	}
}

// WithMCPOptions passes additional options to the underlying MCP client.
func WithMCPOptions(options ...mcp.ClientOption) ToolSetOption {
	return func(c *toolSetConfig) {
		c.mcpOptions = append(c.mcpOptions, options...)
	}
}
