package types

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// JSON-RPC error codes used by the MCP endpoint
const (
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// RawMessage is a raw encoded JSON value, used for JSON-RPC request IDs
// which may be strings or numbers and must be echoed back untouched.
type RawMessage json.RawMessage

// MarshalJSON returns m as the JSON encoding of m.
func (m RawMessage) MarshalJSON() ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}
	return m, nil
}

// UnmarshalJSON sets *m to a copy of data.
func (m *RawMessage) UnmarshalJSON(data []byte) error {
	if m == nil {
		return fmt.Errorf("cannot unmarshal into nil RawMessage")
	}
	*m = append((*m)[0:0], data...)
	return nil
}

// MCPMessage represents a generic MCP message structure
type MCPMessage struct {
	Params  any        `json:"params,omitempty"`
	Result  any        `json:"result,omitempty"`
	Error   *MCPError  `json:"error,omitempty"`
	Jsonrpc string     `json:"jsonrpc"`
	Method  string     `json:"method,omitempty"`
	ID      RawMessage `json:"id,omitempty"`
}

// IsNotification reports whether the message carries no ID and expects no response
func (m *MCPMessage) IsNotification() bool {
	return len(m.ID) == 0 || string(m.ID) == "null"
}

// MCPError represents an MCP error
type MCPError struct {
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("mcp error %d: %s", e.Code, e.Message)
}

// Tool represents an MCP tool definition
type Tool struct {
	InputSchema any    `json:"inputSchema"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// GetSchema generates a JSON schema for a tool's arguments from a Go struct
// using its json and jsonschema tags
func GetSchema(input any) map[string]any {
	empty := map[string]any{
		"type":       "object",
		"properties": map[string]any{},
	}
	if input == nil {
		return empty
	}

	val := reflect.ValueOf(input)
	typ := reflect.TypeOf(input)

	if typ.Kind() == reflect.Pointer {
		if val.IsNil() {
			return empty
		}
		typ = typ.Elem()
	}

	if typ.Kind() != reflect.Struct {
		return empty
	}

	properties := make(map[string]any)
	var required []string

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		if !field.IsExported() {
			continue
		}

		jsonTag := field.Tag.Get("json")
		if jsonTag == "-" {
			continue
		}

		fieldName := field.Name
		if name, _, _ := strings.Cut(jsonTag, ","); name != "" {
			fieldName = name
		}

		fieldSchema := reflectType(field.Type)

		schemaTag := field.Tag.Get("jsonschema")
		if schemaTag != "" {
			applySchemaTag(fieldSchema, schemaTag)
		}

		if hasTagOption(schemaTag, "required") {
			required = append(required, fieldName)
		}

		properties[fieldName] = fieldSchema
	}

	schema := map[string]any{
		"type":       "object",
		"properties": properties,
	}

	if len(required) > 0 {
		schema["required"] = required
	}

	return schema
}

// reflectType converts a Go type to JSON schema type
func reflectType(t reflect.Type) map[string]any {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.String:
		return map[string]any{"type": "string"}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return map[string]any{"type": "integer"}
	case reflect.Float32, reflect.Float64:
		return map[string]any{"type": "number"}
	case reflect.Bool:
		return map[string]any{"type": "boolean"}
	case reflect.Slice, reflect.Array:
		return map[string]any{
			"type":  "array",
			"items": reflectType(t.Elem()),
		}
	case reflect.Map:
		return map[string]any{
			"type":                 "object",
			"additionalProperties": reflectType(t.Elem()),
		}
	case reflect.Struct:
		return GetSchema(reflect.New(t).Interface())
	default:
		return map[string]any{"type": "string"}
	}
}

// applySchemaTag applies jsonschema tag attributes to field schema.
// Enum values are separated by "|" since "," separates attributes.
func applySchemaTag(fieldSchema map[string]any, tag string) {
	for part := range strings.SplitSeq(tag, ",") {
		part = strings.TrimSpace(part)
		if after, ok := strings.CutPrefix(part, "description="); ok {
			fieldSchema["description"] = after
		} else if after, ok := strings.CutPrefix(part, "enum="); ok {
			fieldSchema["enum"] = strings.Split(after, "|")
		} else if after, ok := strings.CutPrefix(part, "default="); ok {
			fieldSchema["default"] = after
		} else if after, ok := strings.CutPrefix(part, "minimum="); ok {
			if min, err := strconv.ParseFloat(after, 64); err == nil {
				fieldSchema["minimum"] = min
			}
		} else if after, ok := strings.CutPrefix(part, "maximum="); ok {
			if max, err := strconv.ParseFloat(after, 64); err == nil {
				fieldSchema["maximum"] = max
			}
		}
	}
}

func hasTagOption(tag, option string) bool {
	for part := range strings.SplitSeq(tag, ",") {
		if strings.TrimSpace(part) == option {
			return true
		}
	}
	return false
}
