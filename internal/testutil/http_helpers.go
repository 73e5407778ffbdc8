package testutil

import (
	"encoding/json"
	"testing"
)

// Payload marshals fields into a stream payload string.
func Payload(t testing.TB, fields map[string]any) string {
	t.Helper()
	data, err := json.Marshal(fields)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return string(data)
}

// Frames renders payloads as an SSE body.
func Frames(payloads ...string) string {
	var out []byte
	for _, payload := range payloads {
		out = append(out, "data: "...)
		out = append(out, payload...)
		out = append(out, '\n', '\n')
	}
	return string(out)
}
