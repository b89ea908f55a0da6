// Package render writes converted documents as block-style YAML.
//
// Output uses two-space indentation, never wraps lines and never emits
// anchors or aliases. How each string scalar is quoted is decided by a
// Policy.
package render

import (
	"strconv"
	"strings"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

const indentWidth = 2

// Renderer emits block YAML using a quoting policy
type Renderer struct {
	policy Policy
}

// New creates a Renderer. A nil policy selects LibreChat.
func New(policy Policy) *Renderer {
	if policy == nil {
		policy = LibreChat
	}
	return &Renderer{policy: policy}
}

// Render writes doc with the LibreChat policy
func Render(doc *types.Node) string {
	return New(LibreChat).Render(doc)
}

// Render writes doc as a YAML document ending with a newline
func (r *Renderer) Render(doc *types.Node) string {
	var b strings.Builder
	if isBlock(doc) {
		r.block(&b, doc, 0)
	} else {
		b.WriteString(r.inline(doc, Position{}))
		b.WriteByte('\n')
	}
	return b.String()
}

// isBlock reports whether n is written on its own lines
func isBlock(n *types.Node) bool {
	kind := n.Kind()
	return (kind == types.KindMapping || kind == types.KindSequence) && n.Len() > 0
}

func (r *Renderer) block(b *strings.Builder, n *types.Node, indent int) {
	if n.Kind() == types.KindMapping {
		r.mapping(b, n, indent)
		return
	}
	r.sequence(b, n, indent)
}

func (r *Renderer) mapping(b *strings.Builder, n *types.Node, indent int) {
	pad := strings.Repeat(" ", indent)

	n.Each(func(key string, value *types.Node) {
		keyStyle := KeyStyle(key)
		b.WriteString(pad)
		b.WriteString(quote(key, keyStyle))
		b.WriteByte(':')

		if isBlock(value) {
			b.WriteByte('\n')
			r.block(b, value, indent+indentWidth)
			return
		}

		b.WriteByte(' ')
		b.WriteString(r.inline(value, Position{Key: key, KeyQuoted: keyStyle != Plain}))
		b.WriteByte('\n')
	})
}

func (r *Renderer) sequence(b *strings.Builder, n *types.Node, indent int) {
	pad := strings.Repeat(" ", indent)

	for _, item := range n.Items() {
		b.WriteString(pad)
		b.WriteString("- ")

		if isBlock(item) {
			// Nested blocks start on the dash line, so render them one level
			// deeper and drop the first line's indentation.
			var nested strings.Builder
			r.block(&nested, item, indent+indentWidth)
			b.WriteString(nested.String()[indent+indentWidth:])
			continue
		}

		b.WriteString(r.inline(item, Position{InSequence: true}))
		b.WriteByte('\n')
	}
}

// inline renders a scalar or an empty container
func (r *Renderer) inline(n *types.Node, pos Position) string {
	switch n.Kind() {
	case types.KindMapping:
		return "{}"
	case types.KindSequence:
		return "[]"
	case types.KindString:
		s, _ := n.Str()
		return quote(s, r.policy(pos, s))
	default:
		return n.Literal()
	}
}

// quote writes s in the requested style, upgrading it when the style cannot
// represent s at all
func quote(s string, style Style) string {
	if needsEscapes(s) {
		style = DoubleQuoted
	} else if s == "" && style == Plain {
		style = SingleQuoted
	}

	switch style {
	case SingleQuoted:
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	case DoubleQuoted:
		return strconv.Quote(s)
	default:
		return s
	}
}
