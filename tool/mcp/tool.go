package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/RicardoNiepel/frontier-agents-workshop/log"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// remoteTool adapts one discovered MCP tool to the CallableTool interface.
type remoteTool struct {
	declaration *tool.Declaration
	session     *sessionManager
	config      *toolSetConfig
}

func newRemoteTool(mcpTool mcp.Tool, session *sessionManager, config *toolSetConfig) *remoteTool {
	return &remoteTool{
		declaration: &tool.Declaration{
			Name:        mcpTool.Name,
			Description: mcpTool.Description,
			InputSchema: convertInputSchema(mcpTool.InputSchema),
		},
		session: session,
		config:  config,
	}
}

// Declaration implements the tool.Tool interface.
func (t *remoteTool) Declaration() *tool.Declaration {
	return t.declaration
}

// Call invokes the remote tool. The approval policy is enforced here: under
// ApprovalRequireConfirmation the call does not execute until the configured
// ConfirmFunc returns true. Transient transport failures are retried with
// exponential backoff.
func (t *remoteTool) Call(ctx context.Context, jsonArgs []byte) (any, error) {
	name := t.declaration.Name

	if t.config.approvalMode == ApprovalRequireConfirmation {
		if t.config.confirm == nil {
			return nil, &ExecutionError{
				Tool:    name,
				Message: "tool requires confirmation but no confirmation callback is configured",
			}
		}
		approved, err := t.config.confirm(ctx, name, jsonArgs)
		if err != nil {
			return nil, &ExecutionError{
				Tool:    name,
				Message: fmt.Sprintf("confirmation failed: %v", err),
			}
		}
		if !approved {
			return nil, &ExecutionError{Tool: name, Message: "invocation declined by user"}
		}
	}

	var arguments map[string]any
	if len(jsonArgs) > 0 {
		if err := json.Unmarshal(jsonArgs, &arguments); err != nil {
			return nil, &ExecutionError{
				Tool:    name,
				Message: fmt.Sprintf("invalid arguments: %v", err),
			}
		}
	}

	result, err := executeWithRetry(ctx, t.config.retryConfig, func() (any, error) {
		content, callErr := t.session.callTool(ctx, name, arguments)
		if callErr != nil {
			return nil, callErr
		}
		return contentToResult(content), nil
	}, name)
	if err != nil {
		return nil, err
	}

	log.Debugf("Tool %s call completed", name)
	return result, nil
}

// convertInputSchema converts the wire schema into the tool.Schema format.
func convertInputSchema(raw any) *tool.Schema {
	schemaBytes, err := json.Marshal(raw)
	if err != nil {
		return &tool.Schema{Type: "object"}
	}
	schema := &tool.Schema{}
	if err := json.Unmarshal(schemaBytes, schema); err != nil {
		return &tool.Schema{Type: "object"}
	}
	if schema.Type == "" {
		schema.Type = "object"
	}
	return schema
}

// contentToResult flattens MCP content into a model-consumable value. A
// single text item becomes a plain string; anything richer is preserved as
// structured data. A result with no content gets an explicit marker so the
// model sees that the tool produced nothing.
func contentToResult(content []mcp.Content) any {
	if len(content) == 0 {
		return "(empty result)"
	}
	if len(content) == 1 {
		if text, ok := content[0].(mcp.TextContent); ok {
			return text.Text
		}
	}

	results := make([]any, 0, len(content))
	for _, item := range content {
		switch c := item.(type) {
		case mcp.TextContent:
			results = append(results, map[string]any{"type": "text", "text": c.Text})
		case mcp.ImageContent:
			results = append(results, map[string]any{"type": "image", "data": c.Data, "mimetype": c.MimeType})
		case mcp.AudioContent:
			results = append(results, map[string]any{"type": "audio", "data": c.Data, "mimetype": c.MimeType})
		default:
			results = append(results, fmt.Sprintf("%v", item))
		}
	}
	return results
}
