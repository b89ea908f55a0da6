// Package convert turns MCP server configurations written for Claude Desktop,
// Cline or VS Code into the mcpServers block of a librechat.yaml file.
//
// The pipeline is parse, extract, transform and render. Every stage failure
// stops the pipeline; Convert collapses all of them into an empty string while
// Converter.Run reports the typed error.
package convert

import (
	"fmt"
	"strings"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/normalize"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/render"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

// Mode selects how the YAML text is produced
type Mode int

const (
	// ModePolicy renders with the LibreChat quoting policy
	ModePolicy Mode = iota
	// ModeRegex renders with generic quoting and rewrites the text with
	// normalize.Apply afterwards
	ModeRegex
)

func (m Mode) String() string {
	if m == ModeRegex {
		return "regex"
	}
	return "policy"
}

// ParseMode reads a mode name. An empty name selects ModePolicy.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "policy":
		return ModePolicy, nil
	case "regex":
		return ModeRegex, nil
	default:
		return ModePolicy, fmt.Errorf("unknown mode %q: expected policy or regex", name)
	}
}

// Server summarizes one converted server
type Server struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Result is a successful conversion
type Result struct {
	YAML    string   `json:"yaml"`
	Shape   Shape    `json:"-"`
	Servers []Server `json:"servers"`
}

// Converter runs the conversion pipeline. It holds no mutable state and is
// safe for concurrent use.
type Converter struct {
	policy render.Policy
	mode   Mode
}

// Option configures a Converter
type Option func(*Converter)

// WithMode selects the rendering mode
func WithMode(mode Mode) Option {
	return func(c *Converter) {
		c.mode = mode
	}
}

// WithPolicy replaces the quoting policy used in ModePolicy
func WithPolicy(policy render.Policy) Option {
	return func(c *Converter) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// New creates a Converter using the LibreChat policy by default
func New(opts ...Option) *Converter {
	c := &Converter{
		mode:   ModePolicy,
		policy: render.LibreChat,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mode returns the rendering mode of the converter
func (c *Converter) Mode() Mode {
	return c.mode
}

// Run converts input and returns the YAML together with what was found.
// The error is a *ParseError, *SchemaNotFoundError or *UnexpectedError.
func (c *Converter) Run(input string) (result *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = &UnexpectedError{Cause: r}
		}
	}()

	root, err := Parse(input)
	if err != nil {
		return nil, err
	}

	servers, shape, err := Extract(root)
	if err != nil {
		return nil, err
	}

	yaml, err := c.render(Transform(servers))
	if err != nil {
		return nil, &UnexpectedError{Cause: err}
	}

	summary := make([]Server, 0, servers.Len())
	servers.Each(func(name string, record *types.Node) {
		summary = append(summary, Server{Name: name, Type: InferType(record)})
	})

	return &Result{
		YAML:    yaml,
		Shape:   shape,
		Servers: summary,
	}, nil
}

func (c *Converter) render(doc *types.Node) (string, error) {
	if c.mode == ModeRegex {
		out, err := render.Legacy(doc)
		if err != nil {
			return "", err
		}
		return normalize.Apply(out), nil
	}
	return render.New(c.policy).Render(doc), nil
}

// Convert returns the YAML for input, or an empty string when input cannot
// be converted for any reason
func (c *Converter) Convert(input string) string {
	result, err := c.Run(input)
	if err != nil {
		return ""
	}
	return result.YAML
}

var defaultConverter = New()

// Convert converts input with the default converter
func Convert(input string) string {
	return defaultConverter.Convert(input)
}
