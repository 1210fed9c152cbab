// File: internal/mcp/stdio.go
package mcp

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
)

// maxLineSize bounds one JSON-RPC message on stdio.
const maxLineSize = 10 * 1024 * 1024

// ServeStdio answers newline-delimited JSON-RPC 2.0 requests from in until in
// is exhausted or ctx is done. Notifications get no reply.
func (s *Server) ServeStdio(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	w := bufio.NewWriter(out)

	s.logger.Info("Serving JSON-RPC on stdio")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req JSONRPCRequest
		var resp *JSONRPCResponse
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			resp = &JSONRPCResponse{
				JSONRPC: "2.0",
				Error:   &JSONRPCError{Code: codeParseError, Message: "Parse error: " + err.Error()},
			}
		} else {
			resp = s.HandleRequest(ctx, req)
		}
		if resp == nil {
			continue
		}

		data, err := json.Marshal(resp)
		if err != nil {
			return fmt.Errorf("failed to encode response: %w", err)
		}
		if _, err := w.Write(append(data, '\n')); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
		if err := w.Flush(); err != nil {
			return fmt.Errorf("failed to write response: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read stdin: %w", err)
	}
	s.logger.Info("Stdio client disconnected")
	return nil
}

// HandleRequest dispatches one JSON-RPC request. It returns nil for
// notifications.
func (s *Server) HandleRequest(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	if req.ID == nil && strings.HasPrefix(req.Method, "notifications/") {
		return nil
	}

	switch req.Method {
	case "initialize":
		return s.result(req, map[string]interface{}{
			"protocolVersion": protocolVersion,
			"serverInfo":      map[string]interface{}{"name": "seleniumshift", "version": s.version},
			"capabilities":    map[string]interface{}{"tools": map[string]interface{}{}},
		})
	case "ping":
		return s.result(req, map[string]interface{}{})
	case "tools/list":
		return s.result(req, map[string]interface{}{"tools": describeTools(s.registry)})
	case "tools/call":
		return s.handleToolsCall(ctx, req)
	default:
		return s.rpcError(req, codeMethodNotFound, "Method not found: "+req.Method)
	}
}

func (s *Server) handleToolsCall(ctx context.Context, req JSONRPCRequest) *JSONRPCResponse {
	var params struct {
		Name      string              `json:"name"`
		Arguments jsoniter.RawMessage `json:"arguments"`
	}
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.rpcError(req, codeInvalidParams, "Invalid params: "+err.Error())
	}
	if _, ok := s.registry.tools[params.Name]; !ok {
		return s.rpcError(req, codeMethodNotFound, "Unknown tool: "+params.Name)
	}

	result, err := s.registry.Call(ctx, params.Name, params.Arguments)
	isError := err != nil
	if isError {
		s.logger.Info("Tool call failed", zap.String("tool", params.Name), zap.Error(err))
		result = ErrorRecord{Error: err.Error()}
	}
	text, encErr := json.Marshal(result)
	if encErr != nil {
		text, _ = json.Marshal(ErrorRecord{Error: "failed to encode result: " + encErr.Error()})
		isError = true
	}
	return s.result(req, ToolCallResult{
		Content: []ToolContent{{Type: "text", Text: string(text)}},
		IsError: isError,
	})
}

func (s *Server) result(req JSONRPCRequest, v interface{}) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Result: v}
}

func (s *Server) rpcError(req JSONRPCRequest, code int, msg string) *JSONRPCResponse {
	return &JSONRPCResponse{JSONRPC: "2.0", ID: req.ID, Error: &JSONRPCError{Code: code, Message: msg}}
}
