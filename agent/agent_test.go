package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RicardoNiepel/frontier-agents-workshop/model"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool/function"
	mcptool "github.com/RicardoNiepel/frontier-agents-workshop/tool/mcp"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool/registry"
)

// scriptedModel replays a fixed sequence of responses and records every
// request it receives, so tests can assert on the exact thread snapshot the
// agent forwarded.
type scriptedModel struct {
	steps    []func(req *model.Request) *model.Response
	calls    int
	requests []*model.Request
}

func (s *scriptedModel) Info() model.Info {
	return model.Info{Name: "scripted"}
}

func (s *scriptedModel) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	// Copy the messages so later thread mutations cannot alias the record.
	snapshot := &model.Request{
		Messages: append([]model.Message{}, request.Messages...),
		Tools:    request.Tools,
	}
	s.requests = append(s.requests, snapshot)

	var response *model.Response
	if s.calls < len(s.steps) {
		response = s.steps[s.calls](request)
	} else {
		response = textResponse("no more scripted steps")
	}
	s.calls++

	ch := make(chan *model.Response, 1)
	ch <- response
	close(ch)
	return ch, nil
}

func textResponse(content string) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.Message{Role: model.RoleAssistant, Content: content},
		}},
		Done: true,
	}
}

func toolCallResponse(calls ...model.ToolCall) *model.Response {
	return &model.Response{
		Choices: []model.Choice{{
			Message: model.Message{Role: model.RoleAssistant, ToolCalls: calls},
		}},
		Done: true,
	}
}

func call(id, name, args string) model.ToolCall {
	return model.ToolCall{
		ID:   id,
		Type: "function",
		Function: model.FunctionDefinitionParam{
			Name:      name,
			Arguments: []byte(args),
		},
	}
}

type weatherArgs struct {
	Location string `json:"location"`
}

func weatherTool(t *testing.T) tool.CallableTool {
	t.Helper()
	return function.New(
		func(ctx context.Context, args weatherArgs) (string, error) {
			return "Sunny in " + args.Location, nil
		},
		function.WithName("get_weather_at_location"),
		function.WithDescription("Returns the current weather at a location."),
	)
}

func TestRun_FinalReplyWithoutTools(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response { return textResponse("Hello!") },
	}}
	a, err := New("test-agent", WithModel(m), WithInstruction("Be helpful."))
	require.NoError(t, err)

	reply, err := a.Run(context.Background(), "Hi")
	require.NoError(t, err)
	assert.Equal(t, "Hello!", reply)

	messages := a.Messages()
	require.Len(t, messages, 2)
	assert.Equal(t, model.RoleUser, messages[0].Role)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)

	// The instruction travels in the request, not in the thread.
	require.Len(t, m.requests, 1)
	assert.Equal(t, model.RoleSystem, m.requests[0].Messages[0].Role)
}

func TestRun_ToolResultsPairedWithCallIDs(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response {
			return toolCallResponse(call("call-1", "get_weather_at_location", `{"location":"London"}`))
		},
		func(req *model.Request) *model.Response {
			// The tool result must already be in the forwarded thread.
			last := req.Messages[len(req.Messages)-1]
			if last.Role != model.RoleTool || last.ToolID != "call-1" {
				return textResponse("missing tool result")
			}
			return textResponse(last.Content)
		},
	}}
	a, err := New("test-agent", WithModel(m), WithTools(weatherTool(t)))
	require.NoError(t, err)

	reply, err := a.Run(context.Background(), "What is the weather in London?")
	require.NoError(t, err)
	assert.Equal(t, "Sunny in London", reply)

	messages := a.Messages()
	require.Len(t, messages, 4)
	assert.Equal(t, model.RoleAssistant, messages[1].Role)
	require.Len(t, messages[1].ToolCalls, 1)
	assert.Equal(t, model.RoleTool, messages[2].Role)
	assert.Equal(t, messages[1].ToolCalls[0].ID, messages[2].ToolID)
	assert.Equal(t, model.RoleAssistant, messages[3].Role)
}

func TestRun_LocationCarriesAcrossTurns(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response { return textResponse("Noted, you are in London.") },
		func(*model.Request) *model.Response { return textResponse("Still raining in London.") },
	}}
	a, err := New("test-agent", WithModel(m))
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "I am currently in London.")
	require.NoError(t, err)
	_, err = a.Run(context.Background(), "What is the weather now here?")
	require.NoError(t, err)

	// The second decision must see the first turn verbatim: location lives
	// only in the transcript, so losing it would break the carry.
	require.Len(t, m.requests, 2)
	second := m.requests[1].Messages
	require.Len(t, second, 3)
	assert.Equal(t, "I am currently in London.", second[0].Content)
	assert.Equal(t, "Noted, you are in London.", second[1].Content)
	assert.Equal(t, "What is the weather now here?", second[2].Content)
}

func TestRun_LocationOverrideKeepsCausalOrder(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response { return textResponse("Noted: London.") },
		func(*model.Request) *model.Response { return textResponse("Noted: Berlin.") },
		func(*model.Request) *model.Response { return textResponse("You said Berlin.") },
	}}
	a, err := New("test-agent", WithModel(m))
	require.NoError(t, err)

	for _, utterance := range []string{
		"I am currently in London.",
		"I moved to Berlin.",
		"Can you remind me where I said I am based?",
	} {
		_, err := a.Run(context.Background(), utterance)
		require.NoError(t, err)
	}

	// Berlin must appear after London in the transcript the model sees, so
	// the most recent statement wins.
	final := m.requests[2].Messages
	var londonIdx, berlinIdx int
	for i, msg := range final {
		switch msg.Content {
		case "I am currently in London.":
			londonIdx = i
		case "I moved to Berlin.":
			berlinIdx = i
		}
	}
	assert.Greater(t, berlinIdx, londonIdx)
}

func TestRun_UnknownToolFedBackAsData(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response {
			return toolCallResponse(call("call-1", "no_such_tool", `{}`))
		},
		func(req *model.Request) *model.Response {
			last := req.Messages[len(req.Messages)-1]
			return textResponse("Sorry, I could not do that: " + last.Content)
		},
	}}
	a, err := New("test-agent", WithModel(m))
	require.NoError(t, err)

	reply, err := a.Run(context.Background(), "Do something odd")
	require.NoError(t, err)
	assert.Contains(t, reply, `unknown tool "no_such_tool"`)

	// The session keeps working after the failed call.
	m.steps = append(m.steps, func(*model.Request) *model.Response {
		return textResponse("Of course.")
	})
	reply, err = a.Run(context.Background(), "Try something else")
	require.NoError(t, err)
	assert.Equal(t, "Of course.", reply)
}

func TestRun_ToolErrorFedBackAsData(t *testing.T) {
	failing := function.New(
		func(ctx context.Context, args struct{}) (string, error) {
			return "", errors.New("city not recognized")
		},
		function.WithName("get_timezone_for_city"),
	)
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response {
			return toolCallResponse(call("call-1", "get_timezone_for_city", `{}`))
		},
		func(req *model.Request) *model.Response {
			return textResponse(req.Messages[len(req.Messages)-1].Content)
		},
	}}
	a, err := New("test-agent", WithModel(m), WithTools(failing))
	require.NoError(t, err)

	reply, err := a.Run(context.Background(), "What timezone am I in?")
	require.NoError(t, err)
	assert.Equal(t, "Error: city not recognized", reply)
}

func TestRun_LoopBoundExact(t *testing.T) {
	const limit = 8
	m := &scriptedModel{}
	for i := 0; i < limit+4; i++ {
		id := fmt.Sprintf("call-%d", i)
		m.steps = append(m.steps, func(*model.Request) *model.Response {
			return toolCallResponse(call(id, "get_weather_at_location", `{"location":"London"}`))
		})
	}
	a, err := New("test-agent", WithModel(m), WithTools(weatherTool(t)))
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "Loop forever")
	var loopErr *ToolLoopError
	require.ErrorAs(t, err, &loopErr)
	assert.Equal(t, limit, loopErr.Iterations)
	// Exactly the configured number of decisions, not one more or less.
	assert.Equal(t, limit, m.calls)
	// Failed turn leaves no trace in the thread.
	assert.Equal(t, 0, len(a.Messages()))
}

func TestRun_LoopBoundConfigurable(t *testing.T) {
	m := &scriptedModel{}
	for i := 0; i < 5; i++ {
		m.steps = append(m.steps, func(*model.Request) *model.Response {
			return toolCallResponse(call("call-x", "get_weather_at_location", `{"location":"London"}`))
		})
	}
	a, err := New("test-agent",
		WithModel(m),
		WithTools(weatherTool(t)),
		WithMaxToolIterations(3),
	)
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "Loop forever")
	var loopErr *ToolLoopError
	require.ErrorAs(t, err, &loopErr)
	assert.Equal(t, 3, loopErr.Iterations)
	assert.Equal(t, 3, m.calls)
}

func TestRun_ParallelDispatchDeterministicOrder(t *testing.T) {
	// The first requested tool is the slowest; request order must still win.
	slow := function.New(
		func(ctx context.Context, args struct{}) (string, error) {
			time.Sleep(50 * time.Millisecond)
			return "slow result", nil
		},
		function.WithName("slow_tool"),
	)
	fast := function.New(
		func(ctx context.Context, args struct{}) (string, error) {
			return "fast result", nil
		},
		function.WithName("fast_tool"),
	)
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response {
			return toolCallResponse(
				call("call-slow", "slow_tool", `{}`),
				call("call-fast", "fast_tool", `{}`),
			)
		},
		func(*model.Request) *model.Response { return textResponse("done") },
	}}
	a, err := New("test-agent",
		WithModel(m),
		WithTools(slow, fast),
		WithParallelTools(true),
	)
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "Run both")
	require.NoError(t, err)

	messages := a.Messages()
	require.Len(t, messages, 5)
	assert.Equal(t, "call-slow", messages[2].ToolID)
	assert.Equal(t, "slow result", messages[2].Content)
	assert.Equal(t, "call-fast", messages[3].ToolID)
	assert.Equal(t, "fast result", messages[3].Content)
}

// connFailingTool simulates a capability provider whose endpoint dropped.
type connFailingTool struct{}

func (connFailingTool) Declaration() *tool.Declaration {
	return &tool.Declaration{Name: "remote_tool", InputSchema: &tool.Schema{Type: "object"}}
}

func (connFailingTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	return nil, &mcptool.ConnectionError{
		Endpoint: "http://localhost:8002/mcp",
		Err:      errors.New("connection refused"),
	}
}

func TestRun_ConnectionErrorFatalForTurn(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response {
			return toolCallResponse(call("call-1", "remote_tool", `{}`))
		},
	}}
	a, err := New("test-agent", WithModel(m), WithTools(connFailingTool{}))
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "Where am I?")
	var connErr *mcptool.ConnectionError
	require.ErrorAs(t, err, &connErr)
	assert.Equal(t, 0, len(a.Messages()))

	// The session survives: the next turn starts from a clean thread.
	m.steps = append(m.steps, func(*model.Request) *model.Response {
		return textResponse("Back online.")
	})
	reply, err := a.Run(context.Background(), "Are you there?")
	require.NoError(t, err)
	assert.Equal(t, "Back online.", reply)
	require.Len(t, m.requests, 2)
	// The failed turn left nothing behind in the forwarded thread.
	assert.Equal(t, "Are you there?", m.requests[1].Messages[0].Content)
}

func TestRun_ModelErrorRollsBackTurn(t *testing.T) {
	m := &scriptedModel{steps: []func(*model.Request) *model.Response{
		func(*model.Request) *model.Response {
			return &model.Response{
				Error: &model.ResponseError{
					Message: "upstream timeout",
					Type:    model.ErrorTypeAPIError,
				},
				Done: true,
			}
		},
	}}
	a, err := New("test-agent", WithModel(m))
	require.NoError(t, err)

	_, err = a.Run(context.Background(), "Hello?")
	var modelErr *ModelError
	require.ErrorAs(t, err, &modelErr)
	assert.Equal(t, model.ErrorTypeAPIError, modelErr.Type)
	assert.Equal(t, 0, len(a.Messages()))
}

// gatedModel holds its GenerateContent call open until released, so tests
// can observe the agent mid-turn.
type gatedModel struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedModel) Info() model.Info {
	return model.Info{Name: "gated"}
}

func (g *gatedModel) GenerateContent(
	ctx context.Context,
	request *model.Request,
) (<-chan *model.Response, error) {
	ch := make(chan *model.Response, 1)
	go func() {
		defer close(ch)
		close(g.started)
		select {
		case <-g.release:
			ch <- textResponse("released")
		case <-ctx.Done():
		}
	}()
	return ch, nil
}

func TestMessages_NotBlockedByInFlightTurn(t *testing.T) {
	m := &gatedModel{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	a, err := New("test-agent", WithModel(m))
	require.NoError(t, err)

	turnDone := make(chan struct{})
	go func() {
		defer close(turnDone)
		_, _ = a.Run(context.Background(), "Hello")
	}()
	<-m.started

	// Reading the transcript must not wait for the model call: no
	// exclusive lock may span the model/tool I/O boundary.
	read := make(chan []model.Message, 1)
	go func() { read <- a.Messages() }()
	select {
	case messages := <-read:
		require.Len(t, messages, 1)
		assert.Equal(t, "Hello", messages[0].Content)
	case <-time.After(time.Second):
		t.Fatal("Messages() blocked while a model call was in flight")
	}

	close(m.release)
	<-turnDone
	reply := a.Messages()
	require.Len(t, reply, 2)
	assert.Equal(t, "released", reply[1].Content)
}

func TestNew_MissingModelFailsConstruction(t *testing.T) {
	_, err := New("test-agent", WithTools(weatherTool(t)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model")
}

func TestNew_DuplicateToolNameFailsConstruction(t *testing.T) {
	_, err := New("test-agent",
		WithModel(&scriptedModel{}),
		WithTools(weatherTool(t), weatherTool(t)),
	)
	var dupErr *registry.DuplicateError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "get_weather_at_location", dupErr.Name)
}

func TestTools_StableOrder(t *testing.T) {
	a, err := New("test-agent",
		WithModel(&scriptedModel{}),
		WithTools(weatherTool(t)),
	)
	require.NoError(t, err)

	first := a.Tools()
	second := a.Tools()
	require.Len(t, first, 1)
	assert.Equal(t, first[0].Name, second[0].Name)
}
