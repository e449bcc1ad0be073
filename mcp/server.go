package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/skyhop/flightsearch/log"
	"github.com/skyhop/flightsearch/tools"
)

const (
	ProtocolVersion = "2024-11-05"
	ServerName      = "flight-search-server"
	ServerVersion   = "1.0.2"
)

// Supported method names
const (
	MethodInitialize        = "initialize"
	MethodListTools         = "tools/list"
	MethodCallTool          = "tools/call"
	MethodPing              = "ping"
	MethodNotifyInitialized = "notifications/initialized"
)

// Server dispatches JSON-RPC requests to tool handlers. The only mutable
// state is the set-once initialized flag; everything else is per-request.
type Server struct {
	registry    *tools.Registry
	initialized atomic.Bool
}

// NewServer creates a server backed by the given tool registry
func NewServer(registry *tools.Registry) *Server {
	return &Server{registry: registry}
}

// Initialized reports whether the client has completed the handshake
func (s *Server) Initialized() bool {
	return s.initialized.Load()
}

// Handle routes one request to its handler. A nil response means "emit
// nothing": notifications never get a reply.
func (s *Server) Handle(ctx context.Context, req *Request) *Response {
	if req.Method == MethodNotifyInitialized {
		log.Debug(ctx, "Received initialized notification")
		return nil
	}
	if req.IsNotification() {
		log.Debugf(ctx, "Ignoring notification for method %q", req.Method)
		return nil
	}

	switch req.Method {
	case MethodInitialize:
		return s.handleInitialize(ctx, req)
	case MethodListTools:
		return s.handleListTools(ctx, req)
	case MethodCallTool:
		return s.handleCallTool(ctx, req)
	case MethodPing:
		return NewResult(req.ID, struct{}{})
	default:
		return NewError(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

func (s *Server) handleInitialize(ctx context.Context, req *Request) *Response {
	s.initialized.Store(true)
	log.Infof(ctx, "Client initialized (protocol %s)", ProtocolVersion)

	return NewResult(req.ID, InitializeResult{
		ProtocolVersion: ProtocolVersion,
		ServerInfo: ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	})
}

func (s *Server) handleListTools(ctx context.Context, req *Request) *Response {
	registered := s.registry.List()
	infos := make([]ToolInfo, 0, len(registered))
	for _, t := range registered {
		infos = append(infos, ToolInfo{
			Name:        t.Name(),
			Description: t.Description(),
			InputSchema: t.InputSchema(),
		})
	}
	return NewResult(req.ID, ListToolsResult{Tools: infos})
}

func (s *Server) handleCallTool(ctx context.Context, req *Request) *Response {
	var params CallToolParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return NewError(req.ID, CodeInvalidParams, fmt.Sprintf("Invalid params: %v", err))
		}
	}
	if params.Name == "" {
		return NewError(req.ID, CodeInvalidParams, "Invalid params: tool name is required")
	}

	if !s.initialized.Load() {
		log.Warnf(ctx, "tools/call for %q before initialize", params.Name)
	}

	result, err := s.registry.Execute(ctx, params.Name, params.Arguments)
	if err != nil {
		if errors.Is(err, tools.ErrToolNotFound) {
			return NewError(req.ID, CodeMethodNotFound, fmt.Sprintf("Unknown tool: %s", params.Name))
		}
		var validationErr *tools.ValidationError
		if errors.As(err, &validationErr) {
			return NewError(req.ID, CodeInvalidParams, validationErr.Message)
		}
		log.Errorf(ctx, "Tool %q failed: %v", params.Name, err)
		return NewError(req.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	text, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Errorf(ctx, "Failed to serialize result of %q: %v", params.Name, err)
		return NewError(req.ID, CodeInternalError, fmt.Sprintf("Internal error: %v", err))
	}

	return NewResult(req.ID, CallToolResult{
		Content: []Content{{Type: "text", Text: string(text)}},
	})
}
