package convert

import "github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"

// Shape identifies where the server map was found in the input
type Shape int

const (
	ShapeUnknown Shape = iota
	// ShapeMCPServers is the Claude Desktop / Cline layout: {"mcpServers": {...}}
	ShapeMCPServers
	// ShapeServers is the VS Code layout: {"servers": {...}}
	ShapeServers
	// ShapeNestedServers is the VS Code settings layout: {"mcp": {"servers": {...}}}
	ShapeNestedServers
)

func (s Shape) String() string {
	switch s {
	case ShapeMCPServers:
		return "mcpServers"
	case ShapeServers:
		return "servers"
	case ShapeNestedServers:
		return "mcp.servers"
	default:
		return "unknown"
	}
}

// Extract locates the server map, trying mcpServers, servers and then
// mcp.servers. A candidate that is present but not an object is skipped.
// The returned node aliases the input.
func Extract(root *types.Node) (*types.Node, Shape, error) {
	if !root.IsMapping() {
		return nil, ShapeUnknown, &SchemaNotFoundError{Reason: "top-level value is not an object"}
	}

	if servers, ok := root.Get("mcpServers"); ok && servers.IsMapping() {
		return servers, ShapeMCPServers, nil
	}

	if servers, ok := root.Get("servers"); ok && servers.IsMapping() {
		return servers, ShapeServers, nil
	}

	if mcp, ok := root.Get("mcp"); ok && mcp.IsMapping() {
		if servers, ok := mcp.Get("servers"); ok && servers.IsMapping() {
			return servers, ShapeNestedServers, nil
		}
	}

	return nil, ShapeUnknown, &SchemaNotFoundError{Reason: "expected an object under mcpServers, servers or mcp.servers"}
}
