package convert

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/normalize"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/render"
	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

var modes = []Mode{ModePolicy, ModeRegex}

func convertAll(t *testing.T, input string, fn func(t *testing.T, out string)) {
	t.Helper()
	for _, mode := range modes {
		t.Run(mode.String(), func(t *testing.T) {
			fn(t, New(WithMode(mode)).Convert(input))
		})
	}
}

func TestConvertScenarios(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
		absent   []string
	}{
		{
			name:  "Should convert the mcpServers layout",
			input: `{"mcpServers":{"context7":{"command":"npx","args":["-y","@upstash/context7-mcp@latest"]}}}`,
			expected: []string{
				"mcpServers:\n", "  context7:\n", "    type: stdio\n", "    command: npx\n",
				"    args:\n", "- '-y'\n", "- @upstash/context7-mcp@latest\n",
			},
		},
		{
			name:     "Should convert the servers layout",
			input:    `{"servers":{"Context7":{"type":"stdio","command":"npx","args":["-y","@upstash/context7-mcp@latest"]}}}`,
			expected: []string{"mcpServers:", "Context7:", "type: stdio", "command: npx", "- '-y'", "- @upstash/context7-mcp@latest"},
		},
		{
			name:     "Should convert the mcp.servers layout",
			input:    `{"mcp":{"servers":{"context7":{"command":"npx","args":["-y","@upstash/context7-mcp@latest"],"env":{"DEFAULT_MINIMUM_TOKENS":"10000"}}}}}`,
			expected: []string{"mcpServers:", "context7:", "type: stdio", "- '-y'", "DEFAULT_MINIMUM_TOKENS: 10000"},
		},
		{
			name:     "Should convert Windows cmd wrappers",
			input:    `{"mcpServers":{"github.com/upstash/context7-mcp":{"command":"cmd","args":["/c","npx","-y","@upstash/context7-mcp@latest"]}}}`,
			expected: []string{"github.com/upstash/context7-mcp:", "command: cmd", "- /c", "- npx", "- '-y'", "- @upstash/context7-mcp@latest"},
		},
		{
			name:  "Should convert docker arguments",
			input: `{"mcpServers":{"github":{"command":"docker","args":["run","-i","--rm","-e","GITHUB_PERSONAL_ACCESS_TOKEN","mcp/github"],"env":{"GITHUB_PERSONAL_ACCESS_TOKEN":"gh_token_123"}}}}`,
			expected: []string{
				"command: docker", "- run\n", "- -i\n", "- --rm\n", "- -e\n",
				"- GITHUB_PERSONAL_ACCESS_TOKEN\n", "- mcp/github\n", "GITHUB_PERSONAL_ACCESS_TOKEN: gh_token_123",
			},
		},
		{
			name:     "Should convert the GitHub server package",
			input:    `{"mcpServers":{"github":{"command":"npx","args":["-y","@modelcontextprotocol/server-github"],"env":{"GITHUB_PERSONAL_ACCESS_TOKEN":"gh_token_456"}}}}`,
			expected: []string{"- '-y'", "- @modelcontextprotocol/server-github", "GITHUB_PERSONAL_ACCESS_TOKEN: gh_token_456"},
		},
		{
			name:     "Should drop Cline-only fields",
			input:    `{"mcpServers":{"tavily-mcp":{"command":"npx","args":["-y","tavily-mcp@0.1.4"],"env":{"TAVILY_API_KEY":"tavily_api_key_456"},"disabled":false,"autoApprove":[]}}}`,
			expected: []string{"tavily-mcp:", "- tavily-mcp@0.1.4", "TAVILY_API_KEY: tavily_api_key_456"},
			absent:   []string{"disabled", "autoApprove"},
		},
		{
			name:     "Should convert a local script path",
			input:    `{"mcpServers":{"tavily":{"command":"npx","args":["/path/to/tavily-mcp/build/index.js"],"env":{"TAVILY_API_KEY":"tavily_api_key_789"}}}}`,
			expected: []string{"- /path/to/tavily-mcp/build/index.js", "TAVILY_API_KEY: tavily_api_key_789"},
		},
		{
			name:  "Should keep header placeholders bare",
			input: `{"mcpServers":{"googlesheets":{"type":"sse","url":"https://mcp.composio.dev/googlesheets/some-endpoint","headers":{"X-User-ID":"{{LIBRECHAT_USER_ID}}","X-API-Key":"${SOME_API_KEY}"}}}}`,
			expected: []string{
				"type: sse", "url: https://mcp.composio.dev/googlesheets/some-endpoint",
				"X-User-ID: {{LIBRECHAT_USER_ID}}", "X-API-Key: ${SOME_API_KEY}",
			},
		},
		{
			name:     "Should infer websocket from the url",
			input:    `{"mcpServers":{"myWebSocketServer":{"url":"ws://localhost:8080"}}}`,
			expected: []string{"type: websocket", "url: ws://localhost:8080"},
		},
		{
			name:     "Should infer sse from the url",
			input:    `{"mcpServers":{"everything":{"url":"http://localhost:3001/sse"}}}`,
			expected: []string{"type: sse", "url: http://localhost:3001/sse"},
		},
		{
			name:  "Should copy icon and chat menu settings",
			input: `{"mcpServers":{"filesystem":{"command":"npx","args":["-y","@modelcontextprotocol/server-filesystem","/home/user/LibreChat/"],"iconPath":"/home/user/LibreChat/client/public/assets/logo.svg","chatMenu":false}}}`,
			expected: []string{
				"- @modelcontextprotocol/server-filesystem", "- /home/user/LibreChat/",
				"iconPath: /home/user/LibreChat/client/public/assets/logo.svg", "chatMenu: false",
			},
		},
		{
			name:     "Should copy timeouts and stderr",
			input:    `{"mcpServers":{"puppeteer":{"type":"stdio","command":"npx","args":["-y","@modelcontextprotocol/server-puppeteer"],"timeout":30000,"initTimeout":10000,"stderr":"inherit"}}}`,
			expected: []string{"timeout: 30000", "initTimeout: 10000", "stderr: inherit"},
		},
		{
			name:     "Should keep colons inside env values plain",
			input:    `{"mcpServers":{"puppeteer":{"command":"npx","env":{"NODE_ENV":"production","DEBUG":"puppeteer:*"}}}}`,
			expected: []string{"NODE_ENV: production", "DEBUG: puppeteer:*"},
		},
		{
			name:  "Should unquote string booleans and numbers",
			input: `{"mcpServers":{"comprehensive":{"type":"stdio","command":"npx","args":["-y","custom-mcp-server"],"env":{"API_KEY":"secret-key","DEBUG":"true"},"iconPath":"/path/to/icon.svg","chatMenu":false,"timeout":60000,"initTimeout":15000,"stderr":"pipe"}}}`,
			expected: []string{
				"- custom-mcp-server", "API_KEY: secret-key", "DEBUG: true", "iconPath: /path/to/icon.svg",
				"chatMenu: false", "timeout: 60000", "initTimeout: 15000", "stderr: pipe",
			},
		},
		{
			name:  "Should unwrap bearer tokens",
			input: `{"mcpServers":{"api-server":{"type":"sse","url":"https://api.example.com/events","headers":{"Authorization":"Bearer ${API_TOKEN}","User-ID":"{{LIBRECHAT_USER_ID}}","Custom-Header":"static-value","Content-Type":"application/json"}}}}`,
			expected: []string{
				"Authorization: Bearer ${API_TOKEN}", "User-ID: {{LIBRECHAT_USER_ID}}",
				"Custom-Header: static-value", "Content-Type: application/json",
			},
		},
		{
			name:     "Should write JSON numbers and booleans bare",
			input:    `{"mcpServers":{"numeric-test":{"command":"npx","args":["-y","test-server"],"timeout":30000,"initTimeout":5000,"env":{"PORT":3000,"MAX_CONNECTIONS":10,"ENABLE_LOGGING":true,"DEBUG_MODE":false}}}}`,
			expected: []string{"timeout: 30000", "initTimeout: 5000", "PORT: 3000", "MAX_CONNECTIONS: 10", "ENABLE_LOGGING: true", "DEBUG_MODE: false"},
		},
		{
			name:     "Should convert several servers",
			input:    `{"mcpServers":{"server1":{"command":"npx","args":["-y","server-one"]},"server2":{"type":"sse","url":"https://example.com/sse"},"server3":{"type":"websocket","url":"ws://localhost:8080"}}}`,
			expected: []string{"server1:", "server2:", "server3:", "type: stdio", "type: sse", "type: websocket", "url: https://example.com/sse", "url: ws://localhost:8080"},
		},
		{
			name:     "Should keep a numeric stderr",
			input:    `{"mcpServers":{"numeric-stderr":{"command":"npx","args":["-y","test-server"],"stderr":1}}}`,
			expected: []string{"numeric-stderr:", "stderr: 1"},
		},
		{
			name:     "Should keep falsy optional fields",
			input:    `{"mcpServers":{"s":{"command":"npx","chatMenu":false,"timeout":0,"stderr":0}}}`,
			expected: []string{"chatMenu: false", "timeout: 0", "stderr: 0"},
		},
		{
			name:     "Should leave flag-like text inside values alone",
			input:    `{"mcpServers":{"s":{"command":"npx","env":{"note":"run - -y"}}}}`,
			expected: []string{"note: run - -y\n"},
			absent:   []string{"'-y'"},
		},
		{
			name:     "Should keep YAML 1.1 boolean keys bare",
			input:    `{"mcpServers":{"s":{"command":"npx","args":["-y","pkg"],"env":{"PORT":3000,"ON":true}}}}`,
			expected: []string{"PORT: 3000", "ON: true"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			convertAll(t, tt.input, func(t *testing.T, out string) {
				require.NotEmpty(t, out)
				assert.True(t, strings.HasPrefix(out, "mcpServers:\n"))
				for _, want := range tt.expected {
					assert.Contains(t, out, want)
				}
				for _, unwanted := range tt.absent {
					assert.NotContains(t, out, unwanted)
				}
			})
		})
	}
}

func transformJSON(t *testing.T, input string) *types.Node {
	t.Helper()
	record, err := Parse(input)
	require.NoError(t, err)
	return TransformServer(record)
}

func TestTransformServer(t *testing.T) {
	t.Run("Should drop args without a command", func(t *testing.T) {
		out := transformJSON(t, `{"args":["x"],"url":"https://example.com/sse"}`)

		assert.Equal(t, []string{"type", "url"}, out.Keys())
	})

	t.Run("Should keep empty args next to a command", func(t *testing.T) {
		out := transformJSON(t, `{"command":"npx","args":[]}`)

		assert.Equal(t, []string{"type", "command", "args"}, out.Keys())
		args, _ := out.Get("args")
		assert.Equal(t, types.KindSequence, args.Kind())
		assert.Equal(t, 0, args.Len())
	})

	t.Run("Should omit empty headers and env", func(t *testing.T) {
		out := transformJSON(t, `{"command":"npx","headers":{},"env":{}}`)

		assert.Equal(t, []string{"type", "command"}, out.Keys())
	})

	t.Run("Should pass an arbitrary explicit type through", func(t *testing.T) {
		out := transformJSON(t, `{"type":"custom","command":"npx"}`)

		typ, _ := out.Get("type")
		s, _ := typ.Str()
		assert.Equal(t, "custom", s)
	})

	t.Run("Should prefer an explicit type over the url scheme", func(t *testing.T) {
		out := transformJSON(t, `{"args":["x"],"headers":{},"env":{},"type":"custom","url":"ws://x"}`)

		assert.Equal(t, []string{"type", "url"}, out.Keys())
		typ, _ := out.Get("type")
		s, _ := typ.Str()
		assert.Equal(t, "custom", s)

		out = transformJSON(t, `{"type":"stdio","url":"https://example.com"}`)
		typ, _ = out.Get("type")
		s, _ = typ.Str()
		assert.Equal(t, TypeStdio, s)
	})

	t.Run("Should copy null optional fields", func(t *testing.T) {
		out := transformJSON(t, `{"command":"npx","iconPath":null,"stderr":null}`)

		assert.Equal(t, []string{"type", "command", "iconPath", "stderr"}, out.Keys())
		icon, present := out.Get("iconPath")
		assert.True(t, present)
		assert.Nil(t, icon)
	})

	t.Run("Should infer the type from the url scheme", func(t *testing.T) {
		tests := map[string]string{
			`{"url":"wss://example.com"}`:        TypeWebsocket,
			`{"url":"http://localhost:3000"}`:    TypeSSE,
			`{"url":"ftp://example.com"}`:        TypeStdio,
			`{"type":"","url":"ws://localhost"}`: TypeWebsocket,
			`{"type":7,"command":"npx"}`:         TypeStdio,
		}
		for input, expected := range tests {
			record, err := Parse(input)
			require.NoError(t, err)
			assert.Equal(t, expected, InferType(record), input)
		}
	})
}

func TestConvertTransformRules(t *testing.T) {
	t.Run("Should render the transform rules", func(t *testing.T) {
		input := `{"mcpServers":{"s":{"args":["x"],"headers":{},"env":{},"type":"custom","url":"ws://x","iconPath":null}}}`

		convertAll(t, input, func(t *testing.T, out string) {
			assert.Equal(t, "mcpServers:\n  s:\n    type: custom\n    url: ws://x\n    iconPath: null\n", out)
		})
	})
}

func TestConvertExactOutput(t *testing.T) {
	t.Run("Should render a stdio server", func(t *testing.T) {
		input := `{"mcpServers":{"context7":{"command":"npx","args":["-y","@upstash/context7-mcp@latest"]}}}`

		expected := "mcpServers:\n" +
			"  context7:\n" +
			"    type: stdio\n" +
			"    command: npx\n" +
			"    args:\n" +
			"      - '-y'\n" +
			"      - @upstash/context7-mcp@latest\n"

		assert.Equal(t, expected, Convert(input))
	})

	t.Run("Should order fields canonically", func(t *testing.T) {
		input := `{"mcpServers":{"s":{"stderr":"pipe","env":{"A":"b"},"args":["x"],"timeout":5,"command":"node","headers":{"H":"v"},"url":"https://example.com","type":"sse","disabled":true}}}`

		expected := "mcpServers:\n" +
			"  s:\n" +
			"    type: sse\n" +
			"    url: https://example.com\n" +
			"    command: node\n" +
			"    args:\n" +
			"      - x\n" +
			"    headers:\n" +
			"      H: v\n" +
			"    env:\n" +
			"      A: b\n" +
			"    timeout: 5\n" +
			"    stderr: pipe\n"

		assert.Equal(t, expected, Convert(input))
	})

	t.Run("Should render an empty server map", func(t *testing.T) {
		assert.Equal(t, "mcpServers: {}\n", Convert(`{"servers":{}}`))
	})
}

func TestConvertFailures(t *testing.T) {
	inputs := map[string]string{
		"malformed JSON":         `{invalid json}`,
		"trailing comma":         `{"mcpServers":{},}`,
		"comment":                "// c\n{\"mcpServers\":{}}",
		"empty input":            "",
		"whitespace only":        " \n\t ",
		"unrecognized structure": `{"something":"else"}`,
		"array root":             `[{"mcpServers":{}}]`,
		"null root":              `null`,
		"array server map":       `{"mcpServers":[]}`,
		"scalar mcp":             `{"mcp":"servers"}`,
	}

	for name, input := range inputs {
		t.Run("Should return nothing for "+name, func(t *testing.T) {
			convertAll(t, input, func(t *testing.T, out string) {
				assert.Equal(t, "", out)
			})
		})
	}
}

func TestRun(t *testing.T) {
	t.Run("Should report the matched shape and servers", func(t *testing.T) {
		result, err := New().Run(`{"mcp":{"servers":{"a":{"url":"wss://x"},"b":{"command":"npx"}}}}`)
		require.NoError(t, err)

		assert.Equal(t, ShapeNestedServers, result.Shape)
		assert.Equal(t, []Server{{Name: "a", Type: "websocket"}, {Name: "b", Type: "stdio"}}, result.Servers)
	})

	t.Run("Should return a ParseError for bad JSON", func(t *testing.T) {
		_, err := New().Run(`{"a":`)

		var parseErr *ParseError
		require.True(t, errors.As(err, &parseErr))
		assert.Error(t, parseErr.Err)
	})

	t.Run("Should return a SchemaNotFoundError for unknown layouts", func(t *testing.T) {
		_, err := New().Run(`{"servers":"nope"}`)

		var schemaErr *SchemaNotFoundError
		assert.True(t, errors.As(err, &schemaErr))
	})

	t.Run("Should recover panics into an UnexpectedError", func(t *testing.T) {
		boom := func(render.Position, string) render.Style { panic("boom") }

		result, err := New(WithPolicy(boom)).Run(`{"mcpServers":{"s":{"command":"npx"}}}`)

		var unexpected *UnexpectedError
		require.True(t, errors.As(err, &unexpected))
		assert.Nil(t, result)
		assert.Equal(t, "boom", unexpected.Cause)
		assert.Equal(t, "", New(WithPolicy(boom)).Convert(`{"mcpServers":{"s":{"command":"npx"}}}`))
	})
}

func TestConvertProperties(t *testing.T) {
	record := `{"command":"npx","args":["-y","pkg"],"env":{"PORT":"8080"},"timeout":100}`

	t.Run("Should produce identical entries for every layout", func(t *testing.T) {
		a := Convert(`{"mcpServers":{"s":` + record + `}}`)
		b := Convert(`{"servers":{"s":` + record + `}}`)
		c := Convert(`{"mcp":{"servers":{"s":` + record + `}}}`)

		require.NotEmpty(t, a)
		assert.Equal(t, a, b)
		assert.Equal(t, a, c)
	})

	t.Run("Should prefer mcpServers over servers", func(t *testing.T) {
		out := Convert(`{"servers":{"second":{}},"mcpServers":{"first":{}}}`)

		assert.Contains(t, out, "first:")
		assert.NotContains(t, out, "second:")
	})

	t.Run("Should fall through a non-object candidate", func(t *testing.T) {
		out := Convert(`{"mcpServers":["x"],"servers":{"fallback":{}}}`)

		assert.Contains(t, out, "fallback:")
	})

	t.Run("Should keep server order from the input", func(t *testing.T) {
		out := Convert(`{"mcpServers":{"zeta":{},"alpha":{},"mid":{}}}`)

		assert.Less(t, strings.Index(out, "zeta:"), strings.Index(out, "alpha:"))
		assert.Less(t, strings.Index(out, "alpha:"), strings.Index(out, "mid:"))
	})

	t.Run("Should produce YAML that reads back", func(t *testing.T) {
		out := Convert(`{"mcpServers":{"s":{"command":"npx","args":["-y","it's",""],"env":{"PORT":3000,"ON":true,"N":"null"}}}}`)

		var decoded struct {
			MCPServers map[string]struct {
				Type    string         `yaml:"type"`
				Command string         `yaml:"command"`
				Args    []string       `yaml:"args"`
				Env     map[string]any `yaml:"env"`
			} `yaml:"mcpServers"`
		}
		require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))

		s := decoded.MCPServers["s"]
		assert.Equal(t, "stdio", s.Type)
		assert.Equal(t, []string{"-y", "it's", ""}, s.Args)
		assert.Equal(t, 3000, s.Env["PORT"])
		assert.Equal(t, true, s.Env["ON"])
		assert.Equal(t, "null", s.Env["N"])
	})

	t.Run("Should be left unchanged by the text normalizer", func(t *testing.T) {
		inputs := []string{
			`{"mcpServers":{"github":{"command":"docker","args":["run","-i","--rm","-e","TOKEN","mcp/github"],"env":{"PORT":"3000","ON":"true"}}}}`,
			`{"mcpServers":{"api":{"url":"https://x","headers":{"Authorization":"Bearer ${T}","U":"{{ID}}","K":"${KEY}"}}}}`,
			`{"mcpServers":{"t":{"command":"npx","args":["-y","tavily-mcp@0.1.4","@modelcontextprotocol/server-github"]}}}`,
		}
		for _, input := range inputs {
			out := Convert(input)
			assert.Equal(t, out, normalize.Apply(out))
		}
	})

	t.Run("Should be safe for concurrent use", func(t *testing.T) {
		c := New()
		input := `{"mcpServers":{"s":{"url":"https://example.com"}}}`
		expected := c.Convert(input)

		var wg sync.WaitGroup
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.Equal(t, expected, c.Convert(input))
			}()
		}
		wg.Wait()
	})
}

func TestParseMode(t *testing.T) {
	t.Run("Should parse known modes", func(t *testing.T) {
		for name, expected := range map[string]Mode{"": ModePolicy, "policy": ModePolicy, "REGEX": ModeRegex} {
			mode, err := ParseMode(name)
			require.NoError(t, err)
			assert.Equal(t, expected, mode)
		}
	})

	t.Run("Should reject unknown modes", func(t *testing.T) {
		_, err := ParseMode("yaml")
		assert.Error(t, err)
	})
}
