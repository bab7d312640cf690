package transcription

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// Result is the transcription response kept as an untyped document. Raw
// preserves the bytes exactly as received.
type Result struct {
	Raw    json.RawMessage
	Fields map[string]any
}

func ParseResult(raw []byte) (Result, error) {
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Result{}, fmt.Errorf("decode transcription response: %w", err)
	}
	return Result{Raw: json.RawMessage(raw), Fields: fields}, nil
}

// Text returns the "text" field, or an empty string when it is absent or
// not a string.
func (r Result) Text() string {
	text, _ := r.Fields["text"].(string)
	return text
}

// Indented returns the raw document re-indented with two spaces, keeping
// the server's key order.
func (r Result) Indented() ([]byte, error) {
	if len(r.Raw) == 0 {
		return nil, errors.New("empty transcription result")
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, r.Raw, "", "  "); err != nil {
		return nil, fmt.Errorf("format transcription result: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
