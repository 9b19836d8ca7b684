// Package metadata parses NFT metadata submissions and persists them as JSON
// files in the static tree.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// ErrInvalidBody is returned when a submission is not a single well-formed
// UTF-8 JSON object.
var ErrInvalidBody = errors.New("invalid request body")

// NameRequired is the message reported when a submission lacks a name.
const NameRequired = "Name is required"

// missingSegment stands in for an absent or null field in a filename.
const missingSegment = "None"

// ValidationError reports a submission that parsed but is missing a required
// field. Its message is safe to return to the client.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Record is one metadata submission. Raw holds the body exactly as received;
// Name and Artist are the filename segments derived from it.
type Record struct {
	Raw    []byte
	Name   string
	Artist string
}

// Parse validates a submission body. The body must be a JSON object with a
// truthy "name" member. "artist" is optional and only used for the filename.
func Parse(body []byte) (*Record, error) {
	if !utf8.Valid(body) || !json.Valid(body) {
		return nil, ErrInvalidBody
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil || fields == nil {
		return nil, ErrInvalidBody
	}

	name, ok := fields["name"]
	if !ok || !truthy(name) {
		return nil, &ValidationError{Message: NameRequired}
	}

	return &Record{
		Raw:    body,
		Name:   segment(name),
		Artist: segment(fields["artist"]),
	}, nil
}

// Filename returns "<artist>-<name>.json".
func (r *Record) Filename() string {
	return r.Artist + "-" + r.Name + ".json"
}

// truthy reports whether a JSON value counts as present: not null, false,
// zero, an empty string, or an empty array or object.
func truthy(raw json.RawMessage) bool {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false
	}
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case float64:
		return x != 0
	case string:
		return x != ""
	case []any:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// segment renders a JSON value as a filename segment. Strings are used as-is,
// a missing or null value becomes "None", booleans become "True"/"False" and
// anything else keeps its compact JSON text.
func segment(raw json.RawMessage) string {
	if len(raw) == 0 {
		return missingSegment
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return missingSegment
	}
	switch x := v.(type) {
	case nil:
		return missingSegment
	case string:
		return x
	case bool:
		if x {
			return "True"
		}
		return "False"
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
