package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"jira-mcp-server/internal/domain"
	"jira-mcp-server/internal/infrastructure"
)

// Server runs the MCP side of the protocol. It consumes JSON-RPC
// requests from a Transport, answers initialize and tools/list itself,
// and routes tools/call to the registered handlers.
type Server struct {
	transport domain.Transport
	router    *RequestRouter
	config    *domain.Config
	metrics   *infrastructure.MetricsCollector
	logger    *StructuredLogger
}

// NewServer wires a server over the given transport and router. A nil
// metrics collector disables recording.
func NewServer(
	transport domain.Transport,
	router *RequestRouter,
	config *domain.Config,
	metrics *infrastructure.MetricsCollector,
) *Server {
	return &Server{
		transport: transport,
		router:    router,
		config:    config,
		metrics:   metrics,
		logger:    NewStructuredLogger(),
	}
}

// Start brings up the transport and launches the request loop. It
// returns immediately; processing continues until ctx is cancelled or
// the transport closes its channel.
func (s *Server) Start(ctx context.Context) error {
	if err := s.transport.Start(ctx); err != nil {
		s.logger.LogError("failed to start transport", err, nil)
		return fmt.Errorf("failed to start transport: %w", err)
	}

	s.logger.LogInfo("server started", map[string]interface{}{
		"base_url": s.config.BaseURL,
	})

	go s.processRequests(ctx)

	return nil
}

// processRequests drains the transport until cancellation or until the
// request channel closes.
func (s *Server) processRequests(ctx context.Context) {
	reqChan := s.transport.Receive()

	for {
		select {
		case <-ctx.Done():
			s.logger.LogInfo("server shutting down", nil)
			return
		case req, ok := <-reqChan:
			if !ok {
				return
			}
			s.handleRequest(ctx, req)
		}
	}
}

// handleRequest dispatches one request. Whatever path it takes, exactly
// one response goes back: protocol failures are answered here, and a
// method handler that returns an error has already sent its own.
func (s *Server) handleRequest(ctx context.Context, req *domain.Request) {
	s.logger.LogInfo("received request", map[string]interface{}{
		"method":     req.Method,
		"request_id": req.ID,
	})

	if err := s.validateRequest(req); err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidRequest, "Invalid Request", err.Error())
		return
	}

	var response *domain.Response
	var err error

	switch req.Method {
	case "initialize":
		response, err = s.handleInitialize(req)
	case "tools/list":
		response, err = s.handleToolsList(req)
	case "tools/call":
		response, err = s.handleToolsCall(ctx, req)
	default:
		s.sendErrorResponse(req.ID, domain.MethodNotFound, "Method not found", fmt.Sprintf("unknown method: %s", req.Method))
		return
	}

	if err != nil {
		s.logger.LogError("request processing failed", err, map[string]interface{}{
			"method":     req.Method,
			"request_id": req.ID,
		})
		return
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send response", err, map[string]interface{}{
			"request_id": req.ID,
		})
	}
}

// validateRequest rejects requests that are not JSON-RPC 2.0 or that
// name no method.
func (s *Server) validateRequest(req *domain.Request) error {
	if req.JSONRPC != "2.0" {
		return fmt.Errorf("invalid jsonrpc version: %s", req.JSONRPC)
	}

	if req.Method == "" {
		return fmt.Errorf("method is required")
	}

	return nil
}

// handleInitialize answers the MCP handshake with the protocol revision,
// the capability set, and the server identity.
func (s *Server) handleInitialize(req *domain.Request) (*domain.Response, error) {
	result := domain.InitializeResult{
		ProtocolVersion: domain.ProtocolVersion,
		ServerInfo: domain.ServerInfo{
			Name:    "jira-mcp-server",
			Version: "1.0.0",
		},
	}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsList answers tools/list with every tool the router knows.
func (s *Server) handleToolsList(req *domain.Request) (*domain.Response, error) {
	result := domain.ToolsListResult{Tools: s.router.ListAllTools()}

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  result,
	}, nil
}

// handleToolsCall resolves the named tool and executes it. On failure
// the mapped error has already been sent to the client; the returned
// error only feeds the caller's log line.
func (s *Server) handleToolsCall(ctx context.Context, req *domain.Request) (*domain.Response, error) {
	toolReq, err := s.parseToolRequest(req.Params)
	if err != nil {
		s.sendErrorResponse(req.ID, domain.InvalidParams, "Invalid params", err.Error())
		return nil, err
	}

	toolResp, err := s.router.Route(ctx, toolReq)
	if err != nil {
		s.metrics.RecordToolCall(toolReq.Name, "error")
		s.logger.LogError("tool execution failed", err, map[string]interface{}{
			"tool":       toolReq.Name,
			"request_id": req.ID,
		})

		s.sendMappedError(req.ID, err)
		return nil, err
	}

	s.metrics.RecordToolCall(toolReq.Name, "success")

	return &domain.Response{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result:  toolResp,
	}, nil
}

// parseToolRequest converts the params payload into a ToolRequest.
// Params arrive as whatever shape the JSON decoder produced, so the
// value is round-tripped through JSON rather than type-asserted. A
// missing arguments object becomes an empty map so handlers can index
// it freely.
func (s *Server) parseToolRequest(params interface{}) (*domain.ToolRequest, error) {
	if params == nil {
		return nil, fmt.Errorf("params is required for tools/call")
	}

	jsonData, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal params: %w", err)
	}

	var toolReq domain.ToolRequest
	if err := json.Unmarshal(jsonData, &toolReq); err != nil {
		return nil, fmt.Errorf("failed to unmarshal tool request: %w", err)
	}

	if toolReq.Name == "" {
		return nil, fmt.Errorf("tool name is required")
	}

	if toolReq.Arguments == nil {
		toolReq.Arguments = make(map[string]interface{})
	}

	return &toolReq, nil
}

// sendErrorResponse writes a JSON-RPC error response. A transport
// failure at this point is logged and dropped; there is no further
// channel to report it on.
func (s *Server) sendErrorResponse(id interface{}, code int, message string, data interface{}) {
	response := &domain.Response{
		JSONRPC: "2.0",
		ID:      id,
		Error: &domain.Error{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}

	if err := s.transport.Send(response); err != nil {
		s.logger.LogError("failed to send error response", err, map[string]interface{}{
			"request_id":    id,
			"error_code":    code,
			"error_message": message,
		})
	}
}

// sendMappedError turns a tool failure into the wire error. Handlers
// wrap classified failures in *domain.Error already; anything else is a
// routing problem.
func (s *Server) sendMappedError(id interface{}, err error) {
	var rpcErr *domain.Error
	if errors.As(err, &rpcErr) {
		s.sendErrorResponse(id, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}

	code := domain.InternalError
	message := "Internal error"
	if strings.Contains(err.Error(), "unknown tool") {
		code = domain.MethodNotFound
		message = "Tool not found"
	}

	s.sendErrorResponse(id, code, message, err.Error())
}

// Close shuts down the transport, which ends the request loop.
func (s *Server) Close() error {
	s.logger.LogInfo("closing server", nil)
	return s.transport.Close()
}

// StructuredLogger writes one JSON object per log line through the
// standard logger. The standard logger's default output is stderr,
// which keeps diagnostics off the stdio protocol channel.
type StructuredLogger struct {
	logger *log.Logger
}

// NewStructuredLogger returns a logger backed by the process-wide
// standard logger.
func NewStructuredLogger() *StructuredLogger {
	return &StructuredLogger{
		logger: log.Default(),
	}
}

// LogInfo emits an informational entry with optional context fields.
func (l *StructuredLogger) LogInfo(message string, context map[string]interface{}) {
	entry := l.buildLogEntry("INFO", message, nil, context)
	l.logger.Println(entry)
}

// LogError emits an error entry with optional context fields.
func (l *StructuredLogger) LogError(message string, err error, context map[string]interface{}) {
	entry := l.buildLogEntry("ERROR", message, err, context)
	l.logger.Println(entry)
}

// buildLogEntry flattens level, message, error, and context fields into
// a single JSON document.
func (l *StructuredLogger) buildLogEntry(level, message string, err error, context map[string]interface{}) string {
	entry := map[string]interface{}{
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"level":     level,
		"message":   message,
	}

	if err != nil {
		entry["error"] = err.Error()
	}

	for k, v := range context {
		entry[k] = v
	}

	jsonData, err := json.Marshal(entry)
	if err != nil {
		return fmt.Sprintf(`{"level":"ERROR","message":"failed to marshal log entry","error":"%s"}`, err.Error())
	}

	return string(jsonData)
}
