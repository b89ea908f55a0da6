package server

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/convert"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/transport"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

const (
	DefaultName        = "mcp-transmogrifier"
	DefaultVersion     = "1.0.0"
	DefaultConvertPath = "/convert"
	ProtocolVersion    = "2024-11-05"

	ConvertToolName = "convert_mcp_json"
	InspectToolName = "inspect_mcp_json"
)

// Request bodies above this size are rejected by the REST route
const maxBodyBytes = 1 << 20

type EchoMCP struct {
	transport   transport.Transport
	echo        *echo.Echo
	converter   *convert.Converter
	config      *Config
	name        string
	version     string
	description string
	tools       []types.Tool
}

type Config struct {
	Name        string
	Version     string
	Description string
	// ConvertPath is the REST route taking raw JSON and returning YAML
	ConvertPath string
	Mode        convert.Mode
}

// NewWithConfig creates a new EchoMCP instance, filling unset config fields
// with defaults
func NewWithConfig(e *echo.Echo, config *Config) *EchoMCP {
	if config == nil {
		config = &Config{}
	}

	name := config.Name
	if name == "" {
		name = DefaultName
	}

	version := config.Version
	if version == "" {
		version = DefaultVersion
	}

	description := config.Description
	if description == "" {
		description = "Converts MCP server JSON configurations into LibreChat YAML"
	}

	if config.ConvertPath == "" {
		config.ConvertPath = DefaultConvertPath
	}

	echoMCP := &EchoMCP{
		echo:        e,
		name:        name,
		version:     version,
		description: description,
		config:      config,
		converter:   convert.New(convert.WithMode(config.Mode)),
	}
	echoMCP.tools = echoMCP.buildTools()

	return echoMCP
}

// New creates a new EchoMCP instance with the default configuration
func New(e *echo.Echo) *EchoMCP {
	return NewWithConfig(e, nil)
}

// Mount mounts the MCP endpoint at path and the REST conversion route at
// Config.ConvertPath
func (e *EchoMCP) Mount(path string) error {
	if !strings.HasPrefix(path, "/") {
		return fmt.Errorf("mount path must start with '/': %q", path)
	}
	if path == e.config.ConvertPath {
		return fmt.Errorf("mount path %q collides with the convert route", path)
	}

	e.transport = transport.NewHTTPTransport(path)
	e.echo.JSONSerializer = transport.SonicSerializer{}

	e.transport.RegisterHandler("initialize", e.handleInitialize)
	e.transport.RegisterHandler("ping", e.handlePing)
	e.transport.RegisterHandler("tools/list", e.handleToolsList)
	e.transport.RegisterHandler("tools/call", e.handleToolCall)
	e.transport.RegisterHandler("notifications/initialized", e.handlePing)

	// Handle HTTP messages (Streamable HTTP transport)
	e.echo.POST(path, e.transport.HandleMessage)
	e.echo.GET(path, e.transport.HandleConnection)
	e.echo.DELETE(path, e.transport.HandleDelete)

	e.echo.POST(e.config.ConvertPath, e.handleConvert)

	log.WithFields(log.Fields{
		"mcp":     path,
		"convert": e.config.ConvertPath,
		"mode":    e.converter.Mode().String(),
	}).Info("MCP converter mounted")

	return nil
}

func (e *EchoMCP) buildTools() []types.Tool {
	return []types.Tool{
		{
			Name:        ConvertToolName,
			Description: "Convert an MCP server configuration (mcpServers, servers or mcp.servers JSON) into the mcpServers block of librechat.yaml",
			InputSchema: types.GetSchema(ConvertArguments{}),
		},
		{
			Name:        InspectToolName,
			Description: "Report which configuration layout the JSON uses and the transport type inferred for each server",
			InputSchema: types.GetSchema(InspectArguments{}),
		},
	}
}

// handleInitialize handles MCP initialize requests
func (e *EchoMCP) handleInitialize(params any) (any, error) {
	return InitializeResponse{
		ProtocolVersion: ProtocolVersion,
		Capabilities: &Capabilities{
			Tools: map[string]any{},
		},
		ServerInfo: &ServerInfo{
			Name:    e.name,
			Version: e.version,
		},
		Instructions: e.description,
	}, nil
}

func (e *EchoMCP) handlePing(params any) (any, error) {
	return map[string]any{}, nil
}

// handleToolsList handles tools/list requests
func (e *EchoMCP) handleToolsList(params any) (any, error) {
	return ToolsListResponse{
		Tools: e.tools,
	}, nil
}

// handleToolCall handles tools/call requests
func (e *EchoMCP) handleToolCall(params any) (any, error) {
	paramMap, ok := params.(map[string]any)
	if !ok {
		return nil, invalidParams("invalid parameters")
	}

	toolName, ok := paramMap["name"].(string)
	if !ok {
		return nil, invalidParams("missing tool name")
	}

	arguments, ok := paramMap["arguments"].(map[string]any)
	if !ok {
		arguments = make(map[string]any)
	}

	if toolName != ConvertToolName && toolName != InspectToolName {
		return nil, invalidParams(fmt.Sprintf("tool '%s' not found", toolName))
	}

	input, ok := arguments["json"].(string)
	if !ok {
		return nil, invalidParams("argument 'json' must be a string")
	}

	if toolName == InspectToolName {
		return e.inspectTool(input)
	}

	mode, _ := arguments["mode"].(string)
	return e.convertTool(input, mode)
}

func (e *EchoMCP) convertTool(input, modeName string) (any, error) {
	converter, err := e.converterFor(modeName)
	if err != nil {
		return nil, invalidParams(err.Error())
	}

	result, err := converter.Run(input)
	if err != nil {
		log.WithError(err).Debug("convert tool produced no output")
		return textResponse("No MCP server configuration could be converted: "+err.Error(), true), nil
	}

	return textResponse(result.YAML, false), nil
}

func (e *EchoMCP) inspectTool(input string) (any, error) {
	inspection := InspectResult{Servers: []convert.Server{}}

	result, err := e.converter.Run(input)
	if err != nil {
		inspection.Error = err.Error()
	} else {
		inspection.Valid = true
		inspection.Shape = result.Shape.String()
		inspection.Servers = result.Servers
	}

	text, err := sonic.ConfigStd.MarshalToString(inspection)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inspection: %w", err)
	}

	return textResponse(text, !inspection.Valid), nil
}

// handleConvert is the REST route: JSON in, YAML out
func (e *EchoMCP) handleConvert(c echo.Context) error {
	converter, err := e.converterFor(c.QueryParam("mode"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxBodyBytes+1))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "failed to read request body").SetInternal(err)
	}
	if len(body) > maxBodyBytes {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body too large")
	}

	result, err := converter.Run(string(body))
	if err != nil {
		log.WithError(err).Debug("convert request produced no output")
		return c.JSON(http.StatusUnprocessableEntity, ConvertError{Error: err.Error()})
	}

	log.WithFields(log.Fields{
		"shape":   result.Shape.String(),
		"servers": len(result.Servers),
	}).Debug("converted configuration")

	return c.Blob(http.StatusOK, "text/yaml; charset=utf-8", []byte(result.YAML))
}

// converterFor returns the configured converter, or one for the named mode
// when it differs
func (e *EchoMCP) converterFor(modeName string) (*convert.Converter, error) {
	if modeName == "" {
		return e.converter, nil
	}

	mode, err := convert.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	if mode == e.converter.Mode() {
		return e.converter, nil
	}

	return convert.New(convert.WithMode(mode)), nil
}

func textResponse(text string, isError bool) ToolCallResponse {
	return ToolCallResponse{
		Content: []Content{{Type: "text", Text: text}},
		IsError: isError,
	}
}

func invalidParams(message string) *types.MCPError {
	return &types.MCPError{Code: types.CodeInvalidParams, Message: message}
}

// GetServerInfo returns the server information (useful for testing)
func (e *EchoMCP) GetServerInfo() (name, version, description string) {
	return e.name, e.version, e.description
}
