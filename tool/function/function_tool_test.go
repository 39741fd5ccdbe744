package function

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greetArgs struct {
	Name string `json:"name"`
}

func TestFunctionToolCall(t *testing.T) {
	greeter := New(
		func(_ context.Context, args greetArgs) (string, error) {
			return "hello " + args.Name, nil
		},
		WithName("greet"),
		WithDescription("Greets a user by name"),
	)

	result, err := greeter.Call(context.Background(), []byte(`{"name":"Ada"}`))
	require.NoError(t, err)
	assert.Equal(t, "hello Ada", result)
}

func TestFunctionToolCallEmptyArgs(t *testing.T) {
	echo := New(
		func(_ context.Context, args greetArgs) (string, error) {
			return args.Name, nil
		},
		WithName("echo"),
		WithDescription("Echoes the name"),
	)

	result, err := echo.Call(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "", result)
}

func TestFunctionToolCallInvalidJSON(t *testing.T) {
	ft := New(
		func(_ context.Context, args greetArgs) (string, error) {
			return "", nil
		},
		WithName("strict"),
		WithDescription("Rejects bad arguments"),
	)

	_, err := ft.Call(context.Background(), []byte(`{not json`))
	assert.Error(t, err)
}

func TestFunctionToolPropagatesError(t *testing.T) {
	boom := errors.New("boom")
	ft := New(
		func(_ context.Context, _ struct{}) (string, error) {
			return "", boom
		},
		WithName("failing"),
		WithDescription("Always fails"),
	)

	_, err := ft.Call(context.Background(), []byte(`{}`))
	assert.ErrorIs(t, err, boom)
}

func TestFunctionToolDeclaration(t *testing.T) {
	ft := New(
		func(_ context.Context, args greetArgs) (string, error) {
			return "", nil
		},
		WithName("greet"),
		WithDescription("Greets a user by name"),
	)

	decl := ft.Declaration()
	require.NotNil(t, decl)
	assert.Equal(t, "greet", decl.Name)
	assert.Equal(t, "Greets a user by name", decl.Description)
	require.NotNil(t, decl.InputSchema)
	assert.Equal(t, "object", decl.InputSchema.Type)
	assert.Contains(t, decl.InputSchema.Properties, "name")
}
