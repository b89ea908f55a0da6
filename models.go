package server

import (
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/convert"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

// InitializeResponse represents the response for MCP initialize requests
type InitializeResponse struct {
	Capabilities    *Capabilities `json:"capabilities"`
	ServerInfo      *ServerInfo   `json:"serverInfo"`
	ProtocolVersion string        `json:"protocolVersion"`
	Instructions    string        `json:"instructions,omitempty"`
}

// Capabilities represents the capabilities of the MCP server
type Capabilities struct {
	Tools map[string]any `json:"tools"`
}

// ServerInfo represents the server information
type ServerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ToolsListResponse represents the response for tools/list requests
type ToolsListResponse struct {
	Tools []types.Tool `json:"tools"`
}

// ToolCallResponse represents the response for tools/call requests
type ToolCallResponse struct {
	Content []Content `json:"content"`
	IsError bool      `json:"isError,omitempty"`
}

// Content represents the content structure in tool call responses
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ConvertArguments are the arguments of the convert_mcp_json tool
type ConvertArguments struct {
	JSON string `json:"json" jsonschema:"required,description=MCP server configuration JSON from Claude Desktop or Cline or VS Code"`
	Mode string `json:"mode,omitempty" jsonschema:"enum=policy|regex,default=policy,description=How scalars are quoted in the YAML"`
}

// InspectArguments are the arguments of the inspect_mcp_json tool
type InspectArguments struct {
	JSON string `json:"json" jsonschema:"required,description=MCP server configuration JSON to inspect"`
}

// InspectResult describes a configuration without converting it
type InspectResult struct {
	Error   string           `json:"error,omitempty"`
	Shape   string           `json:"shape,omitempty"`
	Servers []convert.Server `json:"servers"`
	Valid   bool             `json:"valid"`
}

// ConvertError is the REST body returned when nothing could be converted
type ConvertError struct {
	Error string `json:"error"`
	Valid bool   `json:"valid"`
}
