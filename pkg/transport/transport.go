package transport

import "github.com/labstack/echo/v4"

// MessageHandler handles the params of one JSON-RPC method. Returning a
// *types.MCPError keeps its code in the response; any other error is
// reported as an internal error.
type MessageHandler func(params any) (any, error)

// Transport defines the interface for MCP transport mechanisms
type Transport interface {
	// RegisterHandler registers a message handler for a specific method
	RegisterHandler(method string, handler MessageHandler)

	// HandleConnection handles GET requests on the mount path
	HandleConnection(c echo.Context) error

	// HandleMessage processes incoming MCP messages
	HandleMessage(c echo.Context) error

	// HandleDelete ends the session named in the request
	HandleDelete(c echo.Context) error

	// MountPath returns the path where this transport is mounted
	MountPath() string
}
