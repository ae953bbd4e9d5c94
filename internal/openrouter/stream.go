package openrouter

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

const (
	dataPrefix   = "data: "
	doneSentinel = "[DONE]"
)

// Stream is a lazy, single-pass sequence of text fragments decoded from an
// event-stream response body. Lines may span multiple network reads; the
// reader buffers until a full line is available before parsing.
type Stream struct {
	body   io.ReadCloser
	reader *bufio.Reader
	done   bool
}

func newStream(body io.ReadCloser) *Stream {
	return &Stream{
		body:   body,
		reader: bufio.NewReader(body),
	}
}

// Recv blocks until the next non-empty fragment is available. It returns
// io.EOF when the stream terminates, either via the [DONE] sentinel or body
// exhaustion. Malformed data lines are skipped, not fatal. Any other error
// is a *TransportError.
func (s *Stream) Recv() (string, error) {
	if s.done {
		return "", io.EOF
	}

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				// A final line without a trailing newline is still decoded.
				if fragment, ok := s.decodeLine(line); ok {
					s.done = true
					return fragment, nil
				}
				s.done = true
				return "", io.EOF
			}
			s.done = true
			return "", &TransportError{Err: err}
		}

		if fragment, ok := s.decodeLine(line); ok {
			return fragment, nil
		}
		if s.done {
			return "", io.EOF
		}
	}
}

// decodeLine parses one event line, reporting whether it produced a
// fragment. Marks the stream done on the terminator sentinel.
func (s *Stream) decodeLine(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || !strings.HasPrefix(trimmed, dataPrefix) {
		return "", false
	}

	data := strings.TrimPrefix(trimmed, dataPrefix)
	if data == doneSentinel {
		s.done = true
		return "", false
	}

	var chunk streamChunk
	if err := json.Unmarshal([]byte(data), &chunk); err != nil {
		// Malformed server output is not fatal to the whole response.
		return "", false
	}

	if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
		return "", false
	}
	return chunk.Choices[0].Delta.Content, true
}

// Close releases the underlying response body. Safe to call more than once.
func (s *Stream) Close() error {
	s.done = true
	return s.body.Close()
}
