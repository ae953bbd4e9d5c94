package openrouter

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader hands out the underlying bytes in fixed-size pieces to
// simulate network reads that split event lines at arbitrary boundaries.
type chunkedReader struct {
	data  []byte
	size  int
	index int
}

func (r *chunkedReader) Read(p []byte) (int, error) {
	if r.index >= len(r.data) {
		return 0, io.EOF
	}
	end := r.index + r.size
	if end > len(r.data) {
		end = len(r.data)
	}
	n := copy(p, r.data[r.index:end])
	r.index += n
	return n, nil
}

func (r *chunkedReader) Close() error { return nil }

func collect(t *testing.T, s *Stream) []string {
	t.Helper()
	var fragments []string
	for {
		fragment, err := s.Recv()
		if err == io.EOF {
			return fragments
		}
		require.NoError(t, err)
		fragments = append(fragments, fragment)
	}
}

func deltaLine(content string) string {
	return `data: {"choices":[{"delta":{"content":"` + content + `"}}]}` + "\n"
}

func TestStreamArbitraryChunkBoundaries(t *testing.T) {
	body := deltaLine("X") + "data: [DONE]\n"

	// Every split size, including mid-line splits, must yield the same
	// fragment sequence.
	for size := 1; size <= len(body); size++ {
		s := newStream(&chunkedReader{data: []byte(body), size: size})
		got := collect(t, s)
		assert.Equal(t, []string{"X"}, got, "chunk size %d", size)
	}
}

func TestStreamMultipleFragmentsInOrder(t *testing.T) {
	body := deltaLine("Xin ") + deltaLine("chào ") + deltaLine("bạn") + "data: [DONE]\n"

	s := newStream(io.NopCloser(strings.NewReader(body)))
	got := collect(t, s)
	assert.Equal(t, []string{"Xin ", "chào ", "bạn"}, got)
}

func TestStreamSkipsMalformedLine(t *testing.T) {
	body := deltaLine("A") + "data: not-json\n" + deltaLine("B") + "data: [DONE]\n"

	s := newStream(io.NopCloser(strings.NewReader(body)))
	got := collect(t, s)
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestStreamSkipsEmptyDeltaAndBlankLines(t *testing.T) {
	body := "\n" + deltaLine("") + deltaLine("hi") + "\n" + `data: {"choices":[]}` + "\ndata: [DONE]\n"

	s := newStream(io.NopCloser(strings.NewReader(body)))
	got := collect(t, s)
	assert.Equal(t, []string{"hi"}, got)
}

func TestStreamEndsOnBodyExhaustionWithoutSentinel(t *testing.T) {
	s := newStream(io.NopCloser(strings.NewReader(deltaLine("tail"))))
	got := collect(t, s)
	assert.Equal(t, []string{"tail"}, got)
}

func TestStreamDecodesFinalLineWithoutNewline(t *testing.T) {
	body := strings.TrimSuffix(deltaLine("cuối"), "\n")

	s := newStream(io.NopCloser(strings.NewReader(body)))
	got := collect(t, s)
	assert.Equal(t, []string{"cuối"}, got)
}

func TestStreamIgnoresLinesAfterDone(t *testing.T) {
	body := deltaLine("A") + "data: [DONE]\n" + deltaLine("ghost")

	s := newStream(io.NopCloser(strings.NewReader(body)))
	got := collect(t, s)
	assert.Equal(t, []string{"A"}, got)
}

type failingReader struct{ fragmentsFirst string }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.fragmentsFirst != "" {
		n := copy(p, r.fragmentsFirst)
		r.fragmentsFirst = r.fragmentsFirst[n:]
		return n, nil
	}
	return 0, io.ErrUnexpectedEOF
}

func (r *failingReader) Close() error { return nil }

func TestStreamReadFailureIsTransportError(t *testing.T) {
	s := newStream(&failingReader{fragmentsFirst: deltaLine("A")})

	fragment, err := s.Recv()
	require.NoError(t, err)
	assert.Equal(t, "A", fragment)

	_, err = s.Recv()
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)

	// The stream stays terminated after the failure.
	_, err = s.Recv()
	assert.Equal(t, io.EOF, err)
}

func TestStreamRecvAfterCloseReturnsEOF(t *testing.T) {
	s := newStream(io.NopCloser(strings.NewReader(deltaLine("A"))))
	require.NoError(t, s.Close())

	_, err := s.Recv()
	assert.Equal(t, io.EOF, err)
}
