package mcp

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/RicardoNiepel/frontier-agents-workshop/log"
	"github.com/RicardoNiepel/frontier-agents-workshop/tool"
	mcp "trpc.group/trpc-go/trpc-mcp-go"
)

// connector is the subset of the MCP client surface the toolset needs.
// *mcp.Client satisfies it; tests substitute a stub.
type connector interface {
	Initialize(ctx context.Context, req *mcp.InitializeRequest) (*mcp.InitializeResult, error)
	ListTools(ctx context.Context, req *mcp.ListToolsRequest) (*mcp.ListToolsResult, error)
	CallTool(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error)
	Close() error
}

// ToolSet exposes the tools of one MCP capability provider. The tool list
// is discovered once at Connect time and treated as immutable for the
// session; there is no mid-session re-discovery.
type ToolSet struct {
	config         toolSetConfig
	sessionManager *sessionManager

	mu    sync.RWMutex
	tools []tool.CallableTool
}

// NewToolSet creates a tool set for the given endpoint configuration.
func NewToolSet(config ConnectionConfig, opts ...ToolSetOption) *ToolSet {
	cfg := toolSetConfig{
		connectionConfig: config,
		retryConfig:      defaultRetryConfig,
		approvalMode:     ApprovalAutoApprove,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.connectionConfig.ClientInfo.Name == "" {
		cfg.connectionConfig.ClientInfo = defaultClientInfo
	}

	return &ToolSet{
		config:         cfg,
		sessionManager: newSessionManager(cfg.connectionConfig, cfg.mcpOptions),
	}
}

// Connect establishes the connection, performs the protocol handshake and
// discovers the provider's tools. It returns a *ConnectionError when the
// endpoint is unreachable or the handshake fails.
func (ts *ToolSet) Connect(ctx context.Context) error {
	if err := ts.sessionManager.connect(ctx); err != nil {
		return &ConnectionError{Endpoint: ts.endpoint(), Err: err}
	}

	mcpTools, err := ts.sessionManager.listTools(ctx)
	if err != nil {
		return &ConnectionError{Endpoint: ts.endpoint(), Err: err}
	}

	tools := make([]tool.CallableTool, 0, len(mcpTools))
	for _, mt := range mcpTools {
		tools = append(tools, newRemoteTool(mt, ts.sessionManager, &ts.config))
	}

	ts.mu.Lock()
	ts.tools = tools
	ts.mu.Unlock()

	log.Infof("Connected to MCP provider %s: %d tools discovered",
		ts.Name(), len(tools))
	return nil
}

// Tools implements the tool.ToolSet interface. The order matches the order
// the provider listed its tools in and is stable across calls.
func (ts *ToolSet) Tools(_ context.Context) []tool.CallableTool {
	ts.mu.RLock()
	defer ts.mu.RUnlock()

	// Return a copy to prevent external modification.
	result := make([]tool.CallableTool, len(ts.tools))
	copy(result, ts.tools)
	return result
}

// Name implements the tool.ToolSet interface.
func (ts *ToolSet) Name() string {
	if ts.config.connectionConfig.Name != "" {
		return ts.config.connectionConfig.Name
	}
	return ts.endpoint()
}

// Close implements the tool.ToolSet interface.
func (ts *ToolSet) Close() error {
	if err := ts.sessionManager.close(); err != nil {
		return fmt.Errorf("failed to close MCP session: %w", err)
	}
	return nil
}

func (ts *ToolSet) endpoint() string {
	cc := ts.config.connectionConfig
	if cc.ServerURL != "" {
		return cc.ServerURL
	}
	return cc.Command
}

// sessionManager manages the MCP client connection and session.
type sessionManager struct {
	config     ConnectionConfig
	mcpOptions []mcp.ClientOption

	mu          sync.RWMutex
	client      connector
	connected   bool
	initialized bool
}

func newSessionManager(config ConnectionConfig, mcpOptions []mcp.ClientOption) *sessionManager {
	return &sessionManager{config: config, mcpOptions: mcpOptions}
}

// connect establishes the connection and initializes the MCP session.
func (m *sessionManager) connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected && m.initialized {
		return nil
	}

	log.Debugf("Connecting to MCP server %s (transport=%s)",
		m.config.Name, m.config.Transport)

	if m.client == nil {
		client, err := m.createClient()
		if err != nil {
			return fmt.Errorf("failed to create MCP client: %w", err)
		}
		m.client = client
	}
	m.connected = true

	initResp, err := m.client.Initialize(ctx, &mcp.InitializeRequest{})
	if err != nil {
		m.connected = false
		if closeErr := m.client.Close(); closeErr != nil {
			log.Errorf("Failed to close client after handshake failure: %v", closeErr)
		}
		m.client = nil
		return fmt.Errorf("failed to initialize MCP session: %w", err)
	}
	m.initialized = true

	log.Infof("MCP session initialized: server=%s version=%s protocol=%s",
		initResp.ServerInfo.Name, initResp.ServerInfo.Version, initResp.ProtocolVersion)
	return nil
}

// createClient creates the MCP client matching the configured transport.
func (m *sessionManager) createClient() (connector, error) {
	clientInfo := m.config.ClientInfo
	if clientInfo.Name == "" {
		clientInfo = defaultClientInfo
	}

	switch m.config.Transport {
	case TransportStdio:
		config := mcp.StdioTransportConfig{
			ServerParams: mcp.StdioServerParameters{
				Command: m.config.Command,
				Args:    m.config.Args,
			},
			Timeout: m.config.Timeout,
		}
		return mcp.NewStdioClient(config, clientInfo)

	case TransportStreamable:
		options := []mcp.ClientOption{
			mcp.WithClientLogger(mcp.GetDefaultLogger()),
		}
		if len(m.config.Headers) > 0 {
			headers := http.Header{}
			for k, v := range m.config.Headers {
				headers.Set(k, v)
			}
			options = append(options, mcp.WithHTTPHeaders(headers))
		}
		options = append(options, m.mcpOptions...)
		return mcp.NewClient(m.config.ServerURL, clientInfo, options...)

	default:
		return nil, fmt.Errorf("unsupported transport: %s", m.config.Transport)
	}
}

// listTools retrieves the tools offered by the MCP server.
func (m *sessionManager) listTools(ctx context.Context) ([]mcp.Tool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected || !m.initialized {
		return nil, fmt.Errorf("MCP session not connected or initialized")
	}

	listResp, err := m.client.ListTools(ctx, &mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("failed to list tools: %w", err)
	}

	log.Debugf("Listed %d tools from MCP server %s", len(listResp.Tools), m.config.Name)
	return listResp.Tools, nil
}

// callTool executes a tool call on the MCP server. A transport failure is
// returned as *InvocationError; a logical failure reported by the server is
// returned as *ExecutionError.
func (m *sessionManager) callTool(ctx context.Context, name string, arguments map[string]any) ([]mcp.Content, error) {
	m.mu.RLock()
	client, ready := m.client, m.connected && m.initialized
	m.mu.RUnlock()

	if !ready {
		return nil, &InvocationError{
			Tool: name,
			Err:  fmt.Errorf("MCP session not connected or initialized"),
		}
	}

	callReq := &mcp.CallToolRequest{}
	callReq.Params.Name = name
	callReq.Params.Arguments = arguments

	callResp, err := client.CallTool(ctx, callReq)
	if err != nil {
		return nil, &InvocationError{Tool: name, Err: err}
	}

	if callResp.IsError {
		return nil, &ExecutionError{
			Tool:    name,
			Message: extractErrorFromContent(callResp.Content),
		}
	}

	return callResp.Content, nil
}

// close closes the MCP session and client connection.
func (m *sessionManager) close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected || m.client == nil {
		return nil
	}

	err := m.client.Close()
	m.connected = false
	m.initialized = false
	m.client = nil

	if err != nil {
		return fmt.Errorf("failed to close MCP client: %w", err)
	}
	return nil
}

// extractErrorFromContent extracts error information from MCP content.
func extractErrorFromContent(contents []mcp.Content) string {
	var messages []string
	for _, content := range contents {
		if textContent, ok := content.(mcp.TextContent); ok {
			messages = append(messages, textContent.Text)
		}
	}
	switch len(messages) {
	case 0:
		return "unknown error"
	case 1:
		return messages[0]
	default:
		return fmt.Sprintf("%v", messages)
	}
}
