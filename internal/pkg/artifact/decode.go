package artifact

import (
	"bytes"
	"encoding/json"
)

// decodeStrict is the shared first half of every non-document decoder:
// ParseError for broken JSON, SchemaError for unknown keys or type
// mismatches. Required-field checks stay with the individual decoders.
func decodeStrict(raw []byte, out any) error {
	if !json.Valid(raw) {
		var probe any
		err := json.Unmarshal(raw, &probe)
		return &ParseError{Err: err}
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return schemaErrorf("", "cannot decode artifact: %v", err)
	}
	return nil
}
