package stream

import (
	"bufio"
	"bytes"
	"io"
)

const maxFrameBytes = 8 * 1024 * 1024

// ReadFrames reads Server-Sent Events from r and calls fn with the data of
// each frame. Multi-line data fields are joined with "\n". Comment lines and
// other fields are ignored. Reading stops at EOF, on a read error, or when fn
// returns false.
func ReadFrames(r io.Reader, fn func(data []byte) bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameBytes)

	var data bytes.Buffer
	pending := false
	flush := func() bool {
		if !pending {
			return true
		}
		payload := append([]byte(nil), data.Bytes()...)
		data.Reset()
		pending = false
		if bytes.Equal(payload, []byte("[DONE]")) {
			return true
		}
		return fn(payload)
	}

	for scanner.Scan() {
		line := bytes.TrimRight(scanner.Bytes(), "\r")
		if len(line) == 0 {
			if !flush() {
				return nil
			}
			continue
		}
		if line[0] == ':' {
			continue
		}
		field, value, found := bytes.Cut(line, []byte(":"))
		if !found || string(field) != "data" {
			continue
		}
		value = bytes.TrimPrefix(value, []byte(" "))
		if pending {
			data.WriteByte('\n')
		}
		data.Write(value)
		pending = true
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	flush()
	return nil
}
