/*
textstream reassembles the assistant's streamed response from raw byte
chunks. The transport delivers chunks that do not align with logical event
boundaries; an event boundary is a newline-terminated "data: <json>" frame.
A frame that fails to parse as JSON is treated as a continuation of
buffered partial data rather than an error, unless the stream ends with
unconsumed buffer content.
*/
package textstream

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"

	// Packages
	agent "github.com/getherd/go-agent"
	schema "github.com/getherd/go-agent/pkg/schema"
)

///////////////////////////////////////////////////////////////////////////////
// TYPES

// FrameFn receives each decoded frame in arrival order. Returning io.EOF
// stops decoding without error; any other error aborts the decode.
type FrameFn func(schema.Frame) error

// Decoder reads a streamed response body and emits decoded frames. A
// Decoder is single-use: the underlying sequence is finite and not
// restartable.
type Decoder struct {
	r       io.Reader
	line    []byte // bytes of the current, not yet newline-terminated line
	pending []byte // frame payload awaiting continuation after a parse failure
}

///////////////////////////////////////////////////////////////////////////////
// GLOBALS

const (
	dataPrefix = "data: "
	readSize   = 4096
)

///////////////////////////////////////////////////////////////////////////////
// LIFECYCLE

// NewDecoder creates a decoder reading from r. The caller retains ownership
// of r and must close it to cancel an in-flight decode.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r}
}

///////////////////////////////////////////////////////////////////////////////
// PUBLIC METHODS

// Decode reads until the stream ends or fn stops it, emitting each decoded
// frame in order. When the reader is closed mid-decode the read error is
// returned; the decoder never continues after cancellation.
func (d *Decoder) Decode(fn FrameFn) error {
	buf := make([]byte, readSize)
	for {
		n, err := d.r.Read(buf)
		if n > 0 {
			if err := d.consume(buf[:n], fn); err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return d.finish(fn)
			}
			return err
		}
	}
}

///////////////////////////////////////////////////////////////////////////////
// PRIVATE METHODS

// consume appends a chunk to the line buffer and processes every complete
// line it now contains.
func (d *Decoder) consume(chunk []byte, fn FrameFn) error {
	d.line = append(d.line, chunk...)
	for {
		idx := bytes.IndexByte(d.line, '\n')
		if idx < 0 {
			return nil
		}
		line := d.line[:idx]
		d.line = d.line[idx+1:]
		if err := d.processLine(line, fn); err != nil {
			return err
		}
	}
}

// processLine decodes one newline-terminated line. Lines without the data
// prefix are ignored unless a partial frame is pending, in which case the
// raw line continues the pending payload.
func (d *Decoder) processLine(line []byte, fn FrameFn) error {
	var payload []byte
	if bytes.HasPrefix(line, []byte(dataPrefix)) {
		payload = line[len(dataPrefix):]
	} else if len(d.pending) > 0 {
		payload = line
	} else {
		return nil
	}

	// A pending partial frame absorbs the new payload before parsing
	candidate := payload
	if len(d.pending) > 0 {
		candidate = append(d.pending, payload...)
	}

	var frame schema.Frame
	if err := json.Unmarshal(candidate, &frame); err != nil {
		// Not yet a complete frame; retain a copy and retry on the next line
		d.pending = append(d.pending[:0:0], candidate...)
		return nil
	}
	d.pending = nil
	return fn(frame)
}

// finish runs at end-of-stream. Any remainder without a trailing newline is
// processed as a final line; leftover unparsed data is a terminal error.
func (d *Decoder) finish(fn FrameFn) error {
	if len(bytes.TrimSpace(d.line)) > 0 {
		line := d.line
		d.line = nil
		if err := d.processLine(line, fn); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	if len(d.pending) > 0 {
		return agent.ErrBadStream.Withf("%d bytes remaining", len(d.pending))
	}
	return nil
}
