// Package tool provides the tool interfaces shared by local and remote tools.
package tool

import "context"

// Tool is the interface that all tools must implement.
type Tool interface {
	// Declaration returns the descriptor of the tool: its name, description
	// and input schema. The descriptor is what the model sees.
	Declaration() *Declaration
}

// CallableTool is a tool that can be invoked with JSON-encoded arguments.
// Both in-process function tools and remote MCP tools implement it, so
// callers never know whether a call crosses a process boundary.
type CallableTool interface {
	Tool

	// Call executes the tool with the given JSON arguments and returns the
	// result value. A non-nil error means the tool could not produce a
	// result; it is never silently coerced to an empty value.
	Call(ctx context.Context, jsonArgs []byte) (any, error)
}

// Declaration describes a tool to the model.
type Declaration struct {
	// Name is the tool name, unique within a registry.
	Name string `json:"name"`
	// Description tells the model what the tool does.
	Description string `json:"description"`
	// InputSchema is the JSON schema of the tool arguments.
	InputSchema *Schema `json:"input_schema,omitempty"`
	// OutputSchema is the JSON schema of the tool result, if declared.
	OutputSchema *Schema `json:"output_schema,omitempty"`
}

// Schema is the subset of JSON schema used for tool parameters.
type Schema struct {
	Type        string             `json:"type,omitempty"`
	Description string             `json:"description,omitempty"`
	Properties  map[string]*Schema `json:"properties,omitempty"`
	Required    []string           `json:"required,omitempty"`
	Items       *Schema            `json:"items,omitempty"`
	Enum        []any              `json:"enum,omitempty"`
	Default     any                `json:"default,omitempty"`
	Ref         string             `json:"$ref,omitempty"`
	Defs        map[string]*Schema `json:"$defs,omitempty"`
}

// ToolSet defines an interface for managing a set of tools.
// It provides methods to retrieve the current tools and to perform cleanup.
type ToolSet interface {
	// Tools returns the tools available in the set. The order is stable
	// across calls within a session.
	Tools(context.Context) []CallableTool

	// Close releases any resources held by the ToolSet.
	Close() error

	// Name returns the name of the ToolSet for identification.
	Name() string
}
