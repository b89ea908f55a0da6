package types

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind identifies the JSON type held by a Node
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	default:
		return "null"
	}
}

// Node is an order-preserving JSON value.
//
// Mapping keys keep the order they were decoded or set in, which is what lets
// a converted document list servers and fields exactly as the input did.
// A nil *Node is JSON null; every method is safe to call on nil.
type Node struct {
	fields  *orderedmap.OrderedMap[string, *Node]
	text    string
	items   []*Node
	kind    Kind
	boolean bool
}

// NewString creates a string node
func NewString(s string) *Node {
	return &Node{kind: KindString, text: s}
}

// NewNumber creates a number node from its JSON literal
func NewNumber(literal string) *Node {
	return &Node{kind: KindNumber, text: literal}
}

// NewBool creates a boolean node
func NewBool(b bool) *Node {
	return &Node{kind: KindBool, boolean: b}
}

// NewSequence creates a sequence node holding items
func NewSequence(items ...*Node) *Node {
	return &Node{kind: KindSequence, items: items}
}

// NewMapping creates an empty mapping node
func NewMapping() *Node {
	return &Node{kind: KindMapping, fields: orderedmap.New[string, *Node]()}
}

// Kind returns the JSON type of the node
func (n *Node) Kind() Kind {
	if n == nil {
		return KindNull
	}
	return n.kind
}

// IsMapping reports whether the node is a JSON object
func (n *Node) IsMapping() bool {
	return n.Kind() == KindMapping
}

// Str returns the string value and whether the node is a string
func (n *Node) Str() (string, bool) {
	if n.Kind() != KindString {
		return "", false
	}
	return n.text, true
}

// Bool returns the boolean value and whether the node is a boolean
func (n *Node) Bool() (bool, bool) {
	if n.Kind() != KindBool {
		return false, false
	}
	return n.boolean, true
}

// Literal returns the scalar as it would be written in JSON without quotes.
// Containers return an empty string.
func (n *Node) Literal() string {
	switch n.Kind() {
	case KindNull:
		return "null"
	case KindBool:
		return strconv.FormatBool(n.boolean)
	case KindNumber, KindString:
		return n.text
	default:
		return ""
	}
}

// Len returns the number of entries of a mapping or items of a sequence
func (n *Node) Len() int {
	switch n.Kind() {
	case KindMapping:
		return n.fields.Len()
	case KindSequence:
		return len(n.items)
	default:
		return 0
	}
}

// Items returns the elements of a sequence
func (n *Node) Items() []*Node {
	if n.Kind() != KindSequence {
		return nil
	}
	return n.items
}

// Get looks up key in a mapping. A present null value returns (nil, true).
func (n *Node) Get(key string) (*Node, bool) {
	if n.Kind() != KindMapping {
		return nil, false
	}
	return n.fields.Get(key)
}

// Set stores value under key, keeping the position of an existing key.
// It is a no-op on non-mapping nodes.
func (n *Node) Set(key string, value *Node) {
	if n.Kind() != KindMapping {
		return
	}
	n.fields.Set(key, value)
}

// Each calls fn for every mapping entry in insertion order
func (n *Node) Each(fn func(key string, value *Node)) {
	if n.Kind() != KindMapping {
		return
	}
	for pair := n.fields.Oldest(); pair != nil; pair = pair.Next() {
		fn(pair.Key, pair.Value)
	}
}

// Keys returns the mapping keys in insertion order
func (n *Node) Keys() []string {
	keys := make([]string, 0, n.Len())
	n.Each(func(key string, _ *Node) {
		keys = append(keys, key)
	})
	return keys
}

// UnmarshalJSON decodes any JSON value, keeping object key order.
// The whole value is read in a single token pass.
func (n *Node) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	node, err := decodeNode(dec)
	if err != nil {
		return err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("unexpected data after JSON value")
	}

	if node == nil {
		*n = Node{kind: KindNull}
		return nil
	}
	*n = *node
	return nil
}

// decodeNode reads the next value from dec. JSON null yields a nil node.
func decodeNode(dec *json.Decoder) (*Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON token: %w", err)
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			return decodeMapping(dec)
		case '[':
			return decodeSequence(dec)
		}
		return nil, fmt.Errorf("unexpected delimiter %q", rune(v))
	case string:
		return NewString(v), nil
	case json.Number:
		return NewNumber(v.String()), nil
	case bool:
		return NewBool(v), nil
	case nil:
		return nil, nil
	}

	return nil, fmt.Errorf("unexpected JSON token %v", tok)
}

func decodeMapping(dec *json.Decoder) (*Node, error) {
	m := NewMapping()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("failed to decode object: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("failed to decode object: key %v is not a string", tok)
		}

		value, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		m.fields.Set(key, value)
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode object: %w", err)
	}
	return m, nil
}

func decodeSequence(dec *json.Decoder) (*Node, error) {
	items := make([]*Node, 0)
	for dec.More() {
		item, err := decodeNode(dec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	// closing bracket
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("failed to decode array: %w", err)
	}
	return NewSequence(items...), nil
}
