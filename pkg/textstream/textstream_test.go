package textstream_test

import (
	"io"
	"strings"
	"testing"

	// Packages
	agent "github.com/getherd/go-agent"
	schema "github.com/getherd/go-agent/pkg/schema"
	textstream "github.com/getherd/go-agent/pkg/textstream"
	assert "github.com/stretchr/testify/assert"
)

// chunkReader yields the input in fixed-size reads so frame boundaries
// never align with read boundaries.
type chunkReader struct {
	data []byte
	size int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.size
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func collect(t *testing.T, r io.Reader) ([]schema.Frame, error) {
	t.Helper()
	var frames []schema.Frame
	err := textstream.NewDecoder(r).Decode(func(f schema.Frame) error {
		frames = append(frames, f)
		return nil
	})
	return frames, err
}

func Test_decoder_001(t *testing.T) {
	assert := assert.New(t)
	stream := "data: {\"type\":\"start\"}\n" +
		"data: {\"type\":\"chunk\",\"content\":\"Hello\"}\n" +
		"data: {\"type\":\"chunk\",\"content\":\" world\"}\n" +
		"data: {\"type\":\"end\"}\n"

	frames, err := collect(t, strings.NewReader(stream))
	assert.NoError(err)
	if assert.Len(frames, 4) {
		assert.Equal(schema.EventStart, frames[0].Type)
		assert.Equal("Hello", frames[1].Content)
		assert.Equal(" world", frames[2].Content)
		assert.Equal(schema.EventEnd, frames[3].Type)
	}
}

func Test_decoder_002(t *testing.T) {
	// The decoded sequence is identical for any chunking of the byte stream
	assert := assert.New(t)
	stream := "data: {\"type\":\"start\"}\n" +
		"data: {\"type\":\"chunk\",\"content\":\"alpha beta\"}\n" +
		"data: {\"type\":\"chunk\",\"content\":\"gamma\"}\n" +
		"data: {\"type\":\"end\"}\n"

	whole, err := collect(t, strings.NewReader(stream))
	assert.NoError(err)

	for _, size := range []int{1, 2, 3, 7, 16, len(stream)} {
		frames, err := collect(t, &chunkReader{data: []byte(stream), size: size})
		assert.NoError(err)
		assert.Equal(whole, frames, "chunk size %d", size)
	}
}

func Test_decoder_003(t *testing.T) {
	// A data line that fails to parse is buffered and completed by the
	// following line
	assert := assert.New(t)
	stream := "data: {\"type\":\"chunk\",\"content\":\"split \n" +
		"across lines\"}\n" +
		"data: {\"type\":\"end\"}\n"

	frames, err := collect(t, strings.NewReader(stream))
	assert.NoError(err)
	if assert.Len(frames, 2) {
		assert.Equal("split across lines", frames[0].Content)
		assert.Equal(schema.EventEnd, frames[1].Type)
	}
}

func Test_decoder_004(t *testing.T) {
	// Error frames are delivered like any other frame
	assert := assert.New(t)
	stream := "data: {\"type\":\"error\",\"error\":\"backend failed\"}\n"

	frames, err := collect(t, strings.NewReader(stream))
	assert.NoError(err)
	if assert.Len(frames, 1) {
		assert.Equal(schema.EventError, frames[0].Type)
		assert.Equal("backend failed", frames[0].Error)
	}
}

func Test_decoder_005(t *testing.T) {
	// Unparseable data remaining at end-of-stream is a terminal error
	assert := assert.New(t)
	stream := "data: {\"type\":\"chunk\",\"content\":\"ok\"}\n" +
		"data: {\"type\":\"chunk\",\"content\":\"never closed\n"

	frames, err := collect(t, strings.NewReader(stream))
	assert.ErrorIs(err, agent.ErrBadStream)
	assert.Len(frames, 1)
}

func Test_decoder_006(t *testing.T) {
	// A final frame without a trailing newline is still delivered
	assert := assert.New(t)
	stream := "data: {\"type\":\"chunk\",\"content\":\"one\"}\n" +
		"data: {\"type\":\"end\"}"

	frames, err := collect(t, strings.NewReader(stream))
	assert.NoError(err)
	if assert.Len(frames, 2) {
		assert.Equal(schema.EventEnd, frames[1].Type)
	}
}

func Test_decoder_007(t *testing.T) {
	// Returning io.EOF from the callback stops decoding cleanly
	assert := assert.New(t)
	stream := "data: {\"type\":\"chunk\",\"content\":\"first\"}\n" +
		"data: {\"type\":\"chunk\",\"content\":\"second\"}\n"

	var frames []schema.Frame
	err := textstream.NewDecoder(strings.NewReader(stream)).Decode(func(f schema.Frame) error {
		frames = append(frames, f)
		return io.EOF
	})
	assert.NoError(err)
	assert.Len(frames, 1)
}

func Test_decoder_008(t *testing.T) {
	// Lines without the data prefix are ignored when nothing is pending
	assert := assert.New(t)
	stream := ": keepalive\n" +
		"\n" +
		"data: {\"type\":\"end\"}\n"

	frames, err := collect(t, strings.NewReader(stream))
	assert.NoError(err)
	if assert.Len(frames, 1) {
		assert.Equal(schema.EventEnd, frames[0].Type)
	}
}
