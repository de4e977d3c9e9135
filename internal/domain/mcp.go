package domain

// ProtocolVersion is the MCP revision this server implements.
const ProtocolVersion = "2024-11-05"

// ToolDefinition declares one callable tool: its name, the description
// the calling agent reads when deciding what to invoke, and the JSON
// schema of its arguments.
type ToolDefinition struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema JSONSchema `json:"inputSchema"`
}

// JSONSchema describes a tool's argument object. Properties maps
// argument names to schema fragments; Required lists the names that
// must be present in every call.
type JSONSchema struct {
	Type       string                 `json:"type"`
	Properties map[string]interface{} `json:"properties,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

// ToolRequest is a tools/call invocation: the tool name plus its decoded
// arguments. Arguments arrive as generic JSON values, so numbers are
// float64 regardless of the schema's declared type.
type ToolRequest struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// ToolResponse is the result of a tool call, carried as content blocks.
// This server always produces text blocks.
type ToolResponse struct {
	Content []ContentBlock `json:"content"`
	IsError bool           `json:"isError,omitempty"`
}

// ContentBlock is one piece of tool output.
type ContentBlock struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	Resource *Resource `json:"resource,omitempty"`
}

// Resource is a reference to addressable content returned by a tool.
type Resource struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// InitializeResult is the server half of the MCP handshake.
type InitializeResult struct {
	ProtocolVersion string       `json:"protocolVersion"`
	Capabilities    Capabilities `json:"capabilities"`
	ServerInfo      ServerInfo   `json:"serverInfo"`
}

// Capabilities advertises the protocol features this server supports.
// Only tools are offered; the empty object form means supported with no
// optional extras.
type Capabilities struct {
	Tools ToolsCapability `json:"tools"`
}

// ToolsCapability marks tool support in the capability set.
type ToolsCapability struct{}

// ServerInfo identifies the server implementation to the client.
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsListResult is the tools/list response payload.
type ToolsListResult struct {
	Tools []ToolDefinition `json:"tools"`
}
