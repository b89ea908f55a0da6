package convert

import (
	"errors"

	"github.com/bytedance/sonic"

	"github.com/BrunoKrugel/mcp-transmogrifier/pkg/types"
)

var errInvalidJSON = errors.New("invalid JSON")

// Parse decodes strict JSON into an order-preserving tree. A JSON null
// document yields a nil node.
func Parse(input string) (*types.Node, error) {
	data := []byte(input)

	if !sonic.ConfigStd.Valid(data) {
		// Decode once more only to recover the decoder's own message.
		var decoded any
		if err := sonic.ConfigStd.Unmarshal(data, &decoded); err != nil {
			return nil, &ParseError{Err: err}
		}
		return nil, &ParseError{Err: errInvalidJSON}
	}

	var root *types.Node
	if err := sonic.ConfigStd.Unmarshal(data, &root); err != nil {
		return nil, &ParseError{Err: err}
	}

	return root, nil
}
