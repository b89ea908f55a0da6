package convert

import "fmt"

// ParseError reports input that is not strict JSON
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse input: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// SchemaNotFoundError reports valid JSON with no recognized server map
type SchemaNotFoundError struct {
	Reason string
}

func (e *SchemaNotFoundError) Error() string {
	return "no server configuration found: " + e.Reason
}

// UnexpectedError wraps any other failure raised while converting,
// including recovered panics.
type UnexpectedError struct {
	Cause any
}

func (e *UnexpectedError) Error() string {
	return fmt.Sprintf("unexpected conversion failure: %v", e.Cause)
}

func (e *UnexpectedError) Unwrap() error {
	if err, ok := e.Cause.(error); ok {
		return err
	}
	return nil
}
