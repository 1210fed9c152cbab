// File: internal/mcp/types.go
package mcp

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// CommandRequest is the body of POST /api/v1/command.
type CommandRequest struct {
	Command string              `json:"command"`
	Params  jsoniter.RawMessage `json:"params"`
}

// CommandResponse is the reply to a command.
type CommandResponse struct {
	Status string      `json:"status"` // "success" or "error"
	Data   interface{} `json:"data,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// ErrorRecord is what a failed tool call turns into at the boundary.
type ErrorRecord struct {
	Error string `json:"error"`
}

// --- Tool parameters ---

// FileParams names a single source file.
type FileParams struct {
	FilePath string `json:"file_path"`
}

// CompileParams defines parameters for "compile_java".
type CompileParams struct {
	FilePaths []string `json:"file_paths"`
	Classpath string   `json:"classpath,omitempty"`
}

// CoverageParams defines parameters for "check_feature_coverage".
type CoverageParams struct {
	FilePath string `json:"file_path"`
	Feature  string `json:"feature"`
	// Threshold overrides coverage.threshold when set.
	Threshold *float64 `json:"threshold,omitempty"`
}

// ExtractParams defines parameters for "extract_plan".
type ExtractParams struct {
	FilePath string `json:"file_path"`
	BaseURL  string `json:"base_url,omitempty"`
}

// RecordParams defines parameters for "record_locator". Plan is the stored
// plan's artifact name as returned by "extract_plan".
type RecordParams struct {
	Plan   string `json:"plan"`
	Method string `json:"method"`
	Seq    int    `json:"seq"`
	Status string `json:"status"`
	Ref    string `json:"ref,omitempty"`
}

// --- JSON-RPC 2.0 ---

// JSONRPCRequest is one line read from the stdio transport.
type JSONRPCRequest struct {
	JSONRPC string              `json:"jsonrpc"`
	ID      interface{}         `json:"id"`
	Method  string              `json:"method"`
	Params  jsoniter.RawMessage `json:"params,omitempty"`
}

// JSONRPCResponse is one line written to the stdio transport.
type JSONRPCResponse struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      interface{}   `json:"id"`
	Result  interface{}   `json:"result,omitempty"`
	Error   *JSONRPCError `json:"error,omitempty"`
}

// JSONRPCError is a protocol-level failure. Tool failures are not protocol
// failures; they come back as results with isError set.
type JSONRPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

const protocolVersion = "2024-11-05"

// MCPTool describes a tool in tools/list.
type MCPTool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

// ToolContent is one content item of a tools/call result.
type ToolContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolCallResult is the result of tools/call.
type ToolCallResult struct {
	Content []ToolContent `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}
