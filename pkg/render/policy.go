package render

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

// Style is the presentation chosen for a string scalar
type Style int

const (
	Plain Style = iota
	SingleQuoted
	DoubleQuoted
)

func (s Style) String() string {
	switch s {
	case SingleQuoted:
		return "single-quoted"
	case DoubleQuoted:
		return "double-quoted"
	default:
		return "plain"
	}
}

// Position describes where a string scalar is written
type Position struct {
	// Key is the enclosing mapping key when the scalar is a mapping value
	Key string
	// KeyQuoted reports whether Key itself had to be quoted
	KeyQuoted bool
	// InSequence is set for sequence items
	InSequence bool
}

// Policy chooses the style of a string scalar at a given position
type Policy func(pos Position, value string) Style

// Flags written bare in docker-style argument lists
var bareFlags = map[string]bool{
	"-i":   true,
	"--rm": true,
	"-e":   true,
}

// Strings YAML 1.1 readers take as booleans
var legacyBooleans = map[string]bool{
	"y": true, "Y": true, "yes": true, "Yes": true, "YES": true,
	"n": true, "N": true, "no": true, "No": true, "NO": true,
	"on": true, "On": true, "ON": true,
	"off": true, "Off": true, "OFF": true,
}

var (
	digitsPattern      = regexp.MustCompile(`^\d+$`)
	placeholderPattern = regexp.MustCompile(`^(\{\{[A-Za-z0-9_-]+\}\}|\$\{[A-Za-z0-9_-]+\}|Bearer \$\{[A-Za-z0-9_-]+\})$`)
)

// LibreChat is the quoting policy expected by LibreChat's librechat.yaml loader.
//
// Sequence items: "-y" is always single-quoted, the docker flags -i, --rm
// and -e are bare, and package references containing "@" are bare.
// Mapping values: digit strings, "true"/"false" and {{X}}, ${X} and
// "Bearer ${X}" placeholders are bare. Everything else falls back to Safe.
func LibreChat(pos Position, value string) Style {
	if pos.InSequence {
		switch {
		case value == "-y":
			return SingleQuoted
		case bareFlags[value]:
			return Plain
		case isPackageRef(value):
			return Plain
		}
		return Safe(value)
	}

	if value == "true" || value == "false" {
		return Plain
	}
	if !pos.KeyQuoted {
		switch {
		case digitsPattern.MatchString(value) && lastByteMatches(pos.Key, isWordByte):
			return Plain
		case placeholderPattern.MatchString(value) && lastByteMatches(pos.Key, isPlaceholderKeyByte):
			return Plain
		}
	}
	return Safe(value)
}

// Safe returns the least intrusive style that still reads back as the same
// string: plain when possible, single quotes when the text would otherwise be
// taken for YAML syntax or another type, double quotes when escapes are needed.
func Safe(value string) Style {
	switch {
	case needsEscapes(value):
		return DoubleQuoted
	case needsQuotes(value):
		return SingleQuoted
	default:
		return Plain
	}
}

// KeyStyle is Safe for mapping keys. YAML 1.1 boolean spellings such as ON
// stay bare since keys are always read as strings.
func KeyStyle(key string) Style {
	if legacyBooleans[key] {
		return Plain
	}
	return Safe(key)
}

func isPackageRef(value string) bool {
	return strings.Contains(value, "@") &&
		!strings.Contains(value, "'") &&
		!needsEscapes(value)
}

func needsEscapes(value string) bool {
	if !utf8.ValidString(value) {
		return true
	}
	for _, r := range value {
		if r == '\t' {
			continue
		}
		if r == '\n' || r == '\r' || !unicode.IsPrint(r) {
			return true
		}
	}
	return false
}

func needsQuotes(value string) bool {
	if value == "" || strings.TrimSpace(value) != value {
		return true
	}
	if strings.ContainsRune("-?:,[]{}#&*!|>'\"%@`=", rune(value[0])) {
		return true
	}
	if strings.Contains(value, ": ") || strings.Contains(value, " #") ||
		strings.Contains(value, ":\t") || strings.Contains(value, "\t#") ||
		strings.HasSuffix(value, ":") {
		return true
	}
	if legacyBooleans[value] {
		return true
	}
	return !readsBackAsString(value)
}

// readsBackAsString reports whether value written as a plain scalar decodes
// to the identical string
func readsBackAsString(value string) bool {
	var decoded any
	if err := yaml.Unmarshal([]byte(value), &decoded); err != nil {
		return false
	}
	s, ok := decoded.(string)
	return ok && s == value
}

func lastByteMatches(key string, match func(byte) bool) bool {
	return key != "" && match(key[len(key)-1])
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isPlaceholderKeyByte(b byte) bool {
	return b == '-' || isWordByte(b)
}
