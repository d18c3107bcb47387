package artifact

import "fmt"

// ParseError means the model output was not valid JSON at all, i.e. the
// upstream model ignored the formatting instructions.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("output is not valid JSON: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SchemaError means the output was valid JSON but violates the structural
// contract for the artifact kind. Path points at the offending node, e.g.
// "doc.content[2].content[0]".
type SchemaError struct {
	Path   string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Path == "" {
		return "schema violation: " + e.Reason
	}
	return fmt.Sprintf("schema violation at %s: %s", e.Path, e.Reason)
}

func schemaErrorf(path, format string, args ...any) *SchemaError {
	return &SchemaError{Path: path, Reason: fmt.Sprintf(format, args...)}
}
