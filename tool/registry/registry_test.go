package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
)

// stubTool is a minimal CallableTool for registry tests.
type stubTool struct {
	name string
}

func (s *stubTool) Declaration() *tool.Declaration {
	return &tool.Declaration{Name: s.name, Description: "stub"}
}

func (s *stubTool) Call(_ context.Context, _ []byte) (any, error) {
	return s.name, nil
}

func TestRegisterAndResolve(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&stubTool{name: "get_timezone_for_city"}))

	resolved, err := r.Resolve("get_timezone_for_city")
	require.NoError(t, err)
	assert.Equal(t, "get_timezone_for_city", resolved.Declaration().Name)
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register(&stubTool{name: "move"}))

	err := r.Register(&stubTool{name: "move"})
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "move", dup.Name)
}

func TestResolveUnknown(t *testing.T) {
	r := New()

	_, err := r.Resolve("no_such_tool")
	var unknown *UnknownError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "no_such_tool", unknown.Name)
}

func TestToolsPreserveRegistrationOrder(t *testing.T) {
	r := New()
	names := []string{"get_timezone_for_city", "get_current_time", "get_weather_at_location"}
	for _, n := range names {
		require.NoError(t, r.Register(&stubTool{name: n}))
	}

	// Order must be stable across calls within a session.
	for i := 0; i < 3; i++ {
		tools := r.Tools()
		require.Len(t, tools, len(names))
		for j, tl := range tools {
			assert.Equal(t, names[j], tl.Declaration().Name)
		}
	}

	decls := r.Declarations()
	require.Len(t, decls, len(names))
	for j, d := range decls {
		assert.Equal(t, names[j], d.Name)
	}
}

func TestRegisterAllStopsAtDuplicate(t *testing.T) {
	r := New()
	err := r.RegisterAll(
		&stubTool{name: "a"},
		&stubTool{name: "b"},
		&stubTool{name: "a"},
	)
	var dup *DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, 2, r.Len())
}
