package stream

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func collectFrames(t *testing.T, body string) []string {
	t.Helper()
	var frames []string
	err := ReadFrames(strings.NewReader(body), func(data []byte) bool {
		frames = append(frames, string(data))
		return true
	})
	if err != nil {
		t.Fatalf("read frames: %v", err)
	}
	return frames
}

// TestReadFramesBasic verifies frame splitting and field handling.
func TestReadFramesBasic(t *testing.T) {
	body := ": keepalive\n" +
		"data: {\"type\":\"progress\"}\n\n" +
		"event: message\r\n" +
		"data:{\"type\":\"a\"}\r\n\r\n" +
		"data: line one\n" +
		"data: line two\n\n" +
		"data: [DONE]\n\n" +
		"data: trailing"
	want := []string{`{"type":"progress"}`, `{"type":"a"}`, "line one\nline two", "trailing"}
	if diff := cmp.Diff(want, collectFrames(t, body)); diff != "" {
		t.Fatalf("frames mismatch (-want +got):\n%s", diff)
	}
}

// TestReadFramesStopsEarly verifies the callback can end reading.
func TestReadFramesStopsEarly(t *testing.T) {
	calls := 0
	err := ReadFrames(strings.NewReader("data: 1\n\ndata: 2\n\n"), func([]byte) bool {
		calls++
		return false
	})
	if err != nil {
		t.Fatalf("read frames: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one call, got %d", calls)
	}
}

// TestReadFramesIgnoresEmptyFrames verifies blank lines alone yield nothing.
func TestReadFramesIgnoresEmptyFrames(t *testing.T) {
	if frames := collectFrames(t, "\n\n\n: comment\n\n"); len(frames) != 0 {
		t.Fatalf("expected no frames, got %v", frames)
	}
}
