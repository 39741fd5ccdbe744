package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/RicardoNiepel/frontier-agents-workshop/log"
	"github.com/RicardoNiepel/frontier-agents-workshop/model"
	mcptool "github.com/RicardoNiepel/frontier-agents-workshop/tool/mcp"
)

// dispatch executes all tool calls requested by one model decision and
// returns one tool-result message per call, in request order and keyed by
// the call ID. Unknown tools and tool execution failures become failure
// results the model can reason about; a provider connection failure is
// fatal for the turn.
func (a *Agent) dispatch(ctx context.Context, toolCalls []model.ToolCall) ([]model.Message, error) {
	if a.options.parallelTools && len(toolCalls) > 1 {
		return a.dispatchParallel(ctx, toolCalls)
	}

	results := make([]model.Message, 0, len(toolCalls))
	for _, toolCall := range toolCalls {
		result, err := a.executeToolCall(ctx, toolCall)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// dispatchParallel fans each call out to its own goroutine. Results land in
// a slice indexed by request position, so the rejoin is deterministic no
// matter which call finishes first.
func (a *Agent) dispatchParallel(ctx context.Context, toolCalls []model.ToolCall) ([]model.Message, error) {
	results := make([]model.Message, len(toolCalls))
	fatals := make([]error, len(toolCalls))

	var wg sync.WaitGroup
	for i, toolCall := range toolCalls {
		wg.Add(1)
		go func(index int, tc model.ToolCall) {
			defer wg.Done()
			// Keep a panicking tool from taking down sibling calls.
			defer func() {
				if r := recover(); r != nil {
					log.Errorf("tool %s panicked: %v", tc.Function.Name, r)
					results[index] = failureResult(tc, fmt.Sprintf("tool panicked: %v", r))
				}
			}()
			result, err := a.executeToolCall(ctx, tc)
			if err != nil {
				fatals[index] = err
				return
			}
			results[index] = result
		}(i, toolCall)
	}
	wg.Wait()

	for _, err := range fatals {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

// executeToolCall resolves and runs a single tool call. The returned message
// always carries the originating call ID so the transcript stays causally
// paired even when calls run concurrently.
func (a *Agent) executeToolCall(ctx context.Context, toolCall model.ToolCall) (model.Message, error) {
	name := toolCall.Function.Name

	callable, err := a.registry.Resolve(name)
	if err != nil {
		log.Warnf("agent %s: model requested unknown tool %s", a.name, name)
		return failureResult(toolCall, fmt.Sprintf("unknown tool %q", name)), nil
	}

	result, err := callable.Call(ctx, toolCall.Function.Arguments)
	if err != nil {
		var connErr *mcptool.ConnectionError
		if errors.As(err, &connErr) {
			return model.Message{}, fmt.Errorf("tool %s: %w", name, err)
		}
		log.Warnf("agent %s: tool %s failed: %v", a.name, name, err)
		return failureResult(toolCall, err.Error()), nil
	}

	content, err := resultContent(result)
	if err != nil {
		return failureResult(toolCall, fmt.Sprintf("unserializable tool result: %v", err)), nil
	}
	return model.NewToolMessage(toolCall.ID, name, content), nil
}

// failureResult wraps a tool failure as transcript data so the model can
// recover by trying another approach or apologizing.
func failureResult(toolCall model.ToolCall, message string) model.Message {
	return model.NewToolMessage(toolCall.ID, toolCall.Function.Name, "Error: "+message)
}

// resultContent renders a tool result for the transcript. Strings pass
// through unchanged, everything else is serialized as JSON.
func resultContent(result any) (string, error) {
	if s, ok := result.(string); ok {
		return s, nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
