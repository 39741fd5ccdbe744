// Package agent drives tool-augmented conversation turns: it owns the
// conversation thread, asks the model to decide between a final reply and
// tool calls, dispatches tool calls through the registry, and feeds results
// back until the model replies.
package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/RicardoNiepel/frontier-agents-workshop/log"
	"github.com/RicardoNiepel/frontier-agents-workshop/model"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool/registry"
)

// defaultMaxToolIterations bounds decide/dispatch round trips per user turn
// so a runaway tool-call cycle fails loudly instead of spinning.
const defaultMaxToolIterations = 8

// Options contains configuration options for an Agent.
type Options struct {
	model             model.Model
	instruction       string
	tools             []tool.CallableTool
	toolSets          []tool.ToolSet
	maxToolIterations int
	parallelTools     bool
	generationConfig  model.GenerationConfig
}

// Option configures an Agent.
type Option func(*Options)

// WithModel sets the completion model the agent consults each turn.
func WithModel(m model.Model) Option {
	return func(o *Options) {
		o.model = m
	}
}

// WithInstruction sets the system instruction prepended to every request.
func WithInstruction(instruction string) Option {
	return func(o *Options) {
		o.instruction = instruction
	}
}

// WithTools registers local callable tools with the agent.
func WithTools(tools ...tool.CallableTool) Option {
	return func(o *Options) {
		o.tools = append(o.tools, tools...)
	}
}

// WithToolSets registers tool sets (e.g. connected MCP servers) with the
// agent. Their tools are enumerated once at construction time.
func WithToolSets(toolSets ...tool.ToolSet) Option {
	return func(o *Options) {
		o.toolSets = append(o.toolSets, toolSets...)
	}
}

// WithMaxToolIterations overrides the per-turn decide/dispatch round-trip
// limit. Values below 1 keep the default.
func WithMaxToolIterations(n int) Option {
	return func(o *Options) {
		if n > 0 {
			o.maxToolIterations = n
		}
	}
}

// WithParallelTools enables concurrent execution of independent tool calls
// requested in a single model decision. Results are appended to the thread
// in request order regardless of completion order.
func WithParallelTools(enabled bool) Option {
	return func(o *Options) {
		o.parallelTools = enabled
	}
}

// WithGenerationConfig sets sampling parameters forwarded to the model.
func WithGenerationConfig(cfg model.GenerationConfig) Option {
	return func(o *Options) {
		o.generationConfig = cfg
	}
}

// Agent owns one conversation thread and processes user turns strictly
// sequentially against it.
type Agent struct {
	name     string
	model    model.Model
	options  Options
	registry *registry.Registry
	thread   *Thread

	// runMu serializes turns against the same thread. It guards turn entry
	// only; transcript access goes through the thread's own short-held
	// lock, so nothing exclusive spans the model and tool I/O boundaries.
	runMu sync.Mutex
}

// New creates an agent with the given name and options. Configuration
// errors (a missing model, duplicate tool names) fail construction rather
// than the first turn.
func New(name string, opts ...Option) (*Agent, error) {
	options := Options{
		maxToolIterations: defaultMaxToolIterations,
	}
	for _, opt := range opts {
		opt(&options)
	}

	if options.model == nil {
		return nil, errors.New("agent requires a model: use WithModel")
	}

	reg := registry.New()
	if err := reg.RegisterAll(options.tools...); err != nil {
		return nil, err
	}
	for _, ts := range options.toolSets {
		if err := reg.RegisterAll(ts.Tools(context.Background())...); err != nil {
			return nil, err
		}
	}

	return &Agent{
		name:     name,
		model:    options.model,
		options:  options,
		registry: reg,
		thread:   NewThread(),
	}, nil
}

// Name returns the agent name.
func (a *Agent) Name() string {
	return a.name
}

// Tools returns the registered tool declarations in stable registration
// order.
func (a *Agent) Tools() []*tool.Declaration {
	return a.registry.Declarations()
}

// Messages returns a copy of the conversation transcript so far. It does
// not wait for an in-flight turn, so it stays usable while the agent is
// blocked on a model or tool call.
func (a *Agent) Messages() []model.Message {
	return a.thread.Messages()
}

// Run processes one user turn: it appends the utterance to the thread, loops
// between model decisions and tool dispatches, and returns the final reply
// text. On a fatal turn error (backend failure, provider connection failure,
// iteration limit) the thread is rolled back to its pre-turn state so the
// session can continue with the next utterance.
func (a *Agent) Run(ctx context.Context, utterance string) (string, error) {
	a.runMu.Lock()
	defer a.runMu.Unlock()

	marker := a.thread.Snapshot()
	a.thread.Append(model.NewUserMessage(utterance))

	for iteration := 0; iteration < a.options.maxToolIterations; iteration++ {
		response, err := a.decide(ctx)
		if err != nil {
			a.thread.Rollback(marker)
			return "", err
		}

		message := response.Choices[0].Message
		if len(message.ToolCalls) == 0 {
			a.thread.Append(model.NewAssistantMessage(message.Content))
			return message.Content, nil
		}

		log.Debugf("agent %s: iteration %d requested %d tool call(s)",
			a.name, iteration+1, len(message.ToolCalls))
		a.thread.Append(message)

		results, err := a.dispatch(ctx, message.ToolCalls)
		if err != nil {
			a.thread.Rollback(marker)
			return "", err
		}
		a.thread.Append(results...)
	}

	a.thread.Rollback(marker)
	return "", &ToolLoopError{Iterations: a.options.maxToolIterations}
}

// decide asks the model for the next step given the full thread and the
// registered tool declarations. The model is stateless: everything it may
// rely on travels in the request.
func (a *Agent) decide(ctx context.Context) (*model.Response, error) {
	messages := make([]model.Message, 0, a.thread.Len()+1)
	if a.options.instruction != "" {
		messages = append(messages, model.NewSystemMessage(a.options.instruction))
	}
	messages = append(messages, a.thread.Messages()...)

	request := &model.Request{
		Messages:         messages,
		GenerationConfig: a.options.generationConfig,
		Tools:            a.registry.Declarations(),
	}

	responseChan, err := a.model.GenerateContent(ctx, request)
	if err != nil {
		return nil, &ModelError{Message: err.Error()}
	}

	var response *model.Response
	for r := range responseChan {
		response = r
	}
	if response == nil {
		return nil, &ModelError{Message: "model returned no response"}
	}
	if response.Error != nil {
		return nil, &ModelError{
			Message: response.Error.Message,
			Type:    response.Error.Type,
		}
	}
	if len(response.Choices) == 0 {
		return nil, &ModelError{Message: "model returned no choices"}
	}
	return response, nil
}
