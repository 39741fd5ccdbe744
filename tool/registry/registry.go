// Package registry provides a closed, ordered registry of callable tools.
package registry

import (
	"fmt"

	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
)

// DuplicateError is returned when a tool name is registered twice.
// Duplicate names are a configuration error and are surfaced at startup,
// never at runtime.
type DuplicateError struct {
	Name string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("tool %q is already registered", e.Name)
}

// UnknownError is returned when resolving a name that is not registered.
type UnknownError struct {
	Name string
}

func (e *UnknownError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// Registry holds the tools available to the agent, in declaration order.
// The order is preserved exactly as registered because some model backends
// use prompt order as a tie-break for ambiguous tool selection. Lookups are
// by name; unknown names are a typed error, never a crash.
//
// A Registry is populated once at startup and read-only afterwards, so no
// locking is needed.
type Registry struct {
	ordered []tool.CallableTool
	byName  map[string]tool.CallableTool
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		byName: make(map[string]tool.CallableTool),
	}
}

// Register adds a tool to the registry. It returns a *DuplicateError if a
// tool with the same declared name already exists.
func (r *Registry) Register(t tool.CallableTool) error {
	name := t.Declaration().Name
	if _, exists := r.byName[name]; exists {
		return &DuplicateError{Name: name}
	}
	r.byName[name] = t
	r.ordered = append(r.ordered, t)
	return nil
}

// RegisterAll registers every tool in order, stopping at the first error.
func (r *Registry) RegisterAll(tools ...tool.CallableTool) error {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// Resolve returns the tool registered under name, or a *UnknownError.
func (r *Registry) Resolve(name string) (tool.CallableTool, error) {
	t, ok := r.byName[name]
	if !ok {
		return nil, &UnknownError{Name: name}
	}
	return t, nil
}

// Tools returns the registered tools in registration order. The returned
// slice is a copy to prevent external modification.
func (r *Registry) Tools() []tool.CallableTool {
	result := make([]tool.CallableTool, len(r.ordered))
	copy(result, r.ordered)
	return result
}

// Declarations returns the declarations of all tools in registration order.
func (r *Registry) Declarations() []*tool.Declaration {
	result := make([]*tool.Declaration, len(r.ordered))
	for i, t := range r.ordered {
		result[i] = t.Declaration()
	}
	return result
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	return len(r.ordered)
}
