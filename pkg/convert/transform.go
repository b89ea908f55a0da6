package convert

import (
	"strconv"
	"strings"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

// OutputKey is the single top-level key of every converted document
const OutputKey = "mcpServers"

// Transport types written to the type field
const (
	TypeStdio     = "stdio"
	TypeSSE       = "sse"
	TypeWebsocket = "websocket"
)

// Copied whenever present, including null and falsy values
var optionalFields = []string{"iconPath", "chatMenu", "timeout", "initTimeout", "stderr"}

// Transform converts a server map into the output document, keeping server order
func Transform(servers *types.Node) *types.Node {
	out := types.NewMapping()
	servers.Each(func(name string, record *types.Node) {
		out.Set(name, TransformServer(record))
	})

	doc := types.NewMapping()
	doc.Set(OutputKey, out)
	return doc
}

// TransformServer maps one server record onto the fields LibreChat reads.
// Fields are written in a fixed order starting with type. disabled,
// autoApprove and unknown fields are dropped.
func TransformServer(record *types.Node) *types.Node {
	out := types.NewMapping()
	out.Set("type", types.NewString(InferType(record)))

	if !record.IsMapping() {
		return out
	}

	if url, ok := record.Get("url"); ok && truthy(url) {
		out.Set("url", url)
	}

	if command, ok := record.Get("command"); ok && truthy(command) {
		out.Set("command", command)
		if args, ok := record.Get("args"); ok && truthy(args) {
			out.Set("args", args)
		}
	}

	for _, field := range []string{"headers", "env"} {
		if value, ok := record.Get(field); ok && hasEntries(value) {
			out.Set(field, value)
		}
	}

	for _, field := range optionalFields {
		if value, ok := record.Get(field); ok {
			out.Set(field, value)
		}
	}

	return out
}

// InferType returns the explicit type when it is a non-empty string, otherwise
// derives it from the url scheme, falling back to stdio
func InferType(record *types.Node) string {
	if t, ok := stringField(record, "type"); ok && t != "" {
		return t
	}

	if url, ok := stringField(record, "url"); ok {
		switch {
		case strings.HasPrefix(url, "ws://"), strings.HasPrefix(url, "wss://"):
			return TypeWebsocket
		case strings.HasPrefix(url, "http://"), strings.HasPrefix(url, "https://"):
			return TypeSSE
		}
	}

	return TypeStdio
}

func stringField(record *types.Node, key string) (string, bool) {
	value, ok := record.Get(key)
	if !ok {
		return "", false
	}
	return value.Str()
}

// truthy treats null, false, zero and the empty string as unset
func truthy(n *types.Node) bool {
	switch n.Kind() {
	case types.KindNull:
		return false
	case types.KindBool:
		b, _ := n.Bool()
		return b
	case types.KindNumber:
		f, err := strconv.ParseFloat(n.Literal(), 64)
		return err != nil || f != 0
	case types.KindString:
		s, _ := n.Str()
		return s != ""
	default:
		return true
	}
}

// hasEntries reports whether n has at least one key, item or character
func hasEntries(n *types.Node) bool {
	switch n.Kind() {
	case types.KindMapping, types.KindSequence:
		return n.Len() > 0
	case types.KindString:
		s, _ := n.Str()
		return s != ""
	default:
		return false
	}
}
