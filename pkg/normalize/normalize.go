// Package normalize rewrites serialized YAML text so that scalars are quoted
// the way LibreChat's configuration loader expects.
//
// The rules run in a fixed order over the whole document. Every rule is
// anchored to the start of a line and matches either a whole sequence item
// ("- ...") or a whole "key: ..." pair, never a substring inside another
// value.
package normalize

import "regexp"

// Rule is a single global text substitution
type Rule struct {
	Pattern     *regexp.Regexp
	Name        string
	Replacement string
}

const (
	// indentation, then the item dash
	itemLine = `(?m)^([ \t]*)- `
	// indentation, optionally the dash of a mapping that starts a sequence item
	keyLine = `(?m)^([ \t]*(?:- )?)`
	// plain key ending in a word character
	wordKey = `(\w|[^'"\s][^\n]*\w)`
	// plain key ending in a word character or a dash
	placeholderKey = `([\w-]|[^'"\s][^\n]*[\w-])`
	// any key, quoted or not
	anyKey = `(\S[^\n]*)`
)

var rules = []Rule{
	{
		Name:        "package-with-at",
		Pattern:     regexp.MustCompile(itemLine + `'([^'\n]*@[^'\n]*)'$`),
		Replacement: "${1}- ${2}",
	},
	{
		Name:        "github-server-package",
		Pattern:     regexp.MustCompile(itemLine + `'@modelcontextprotocol/server-github'`),
		Replacement: "${1}- @modelcontextprotocol/server-github",
	},
	{
		Name:        "tavily-mcp-package",
		Pattern:     regexp.MustCompile(itemLine + `'tavily-mcp@([\d.]+)'`),
		Replacement: "${1}- tavily-mcp@${2}",
	},
	{
		Name:        "docker-flag-i",
		Pattern:     regexp.MustCompile(itemLine + `'(-i)'$`),
		Replacement: "${1}- ${2}",
	},
	{
		Name:        "docker-flag-rm",
		Pattern:     regexp.MustCompile(itemLine + `'(--rm)'$`),
		Replacement: "${1}- ${2}",
	},
	{
		Name:        "docker-flag-e",
		Pattern:     regexp.MustCompile(itemLine + `'(-e)'$`),
		Replacement: "${1}- ${2}",
	},
	{
		// -y stays quoted: LibreChat reads a bare leading dash differently.
		Name:        "quote-y-flag",
		Pattern:     regexp.MustCompile(itemLine + `-y$`),
		Replacement: "${1}- '-y'",
	},
	{
		Name:        "numeric-values",
		Pattern:     regexp.MustCompile(keyLine + wordKey + `: '(\d+)'$`),
		Replacement: "${1}${2}: ${3}",
	},
	{
		Name:        "boolean-true",
		Pattern:     regexp.MustCompile(keyLine + anyKey + `: 'true'$`),
		Replacement: "${1}${2}: true",
	},
	{
		Name:        "boolean-false",
		Pattern:     regexp.MustCompile(keyLine + anyKey + `: 'false'$`),
		Replacement: "${1}${2}: false",
	},
	{
		Name:        "template-variables",
		Pattern:     regexp.MustCompile(keyLine + placeholderKey + `: '\{\{([A-Za-z0-9_-]+)\}\}'$`),
		Replacement: "${1}${2}: {{${3}}}",
	},
	{
		Name:        "env-variables",
		Pattern:     regexp.MustCompile(keyLine + placeholderKey + `: '\$\{([A-Za-z0-9_-]+)\}'$`),
		Replacement: "${1}${2}: $${${3}}",
	},
	{
		Name:        "bearer-token",
		Pattern:     regexp.MustCompile(keyLine + placeholderKey + `: '(Bearer \$\{[A-Za-z0-9_-]+\})'$`),
		Replacement: "${1}${2}: ${3}",
	},
}

// Rules returns the rewrite rules in the order Apply runs them
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Apply runs every rule over doc and returns the rewritten text
func Apply(doc string) string {
	for _, rule := range rules {
		doc = rule.Pattern.ReplaceAllString(doc, rule.Replacement)
	}
	return doc
}
