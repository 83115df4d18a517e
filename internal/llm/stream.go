package llm

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"unicode/utf8"

	"notewise/backend/internal/tokens"
)

// DecoderState tracks the lifecycle of a streaming decode.
type DecoderState int

const (
	// StateOpen means the decoder is still consuming units.
	StateOpen DecoderState = iota
	// StateDone means a terminal marker was seen and the final event fired.
	StateDone
	// StateAborted means the stream was cancelled; no further callbacks fire.
	StateAborted
)

// UnitFunc parses one fully-framed unit (the payload of an NDJSON line or an
// SSE data field) into an incremental content delta, a terminal flag, and
// the backend-reported token count carried on the terminal unit. Each
// adapter supplies its own UnitFunc for its wire shape.
type UnitFunc func(data []byte) (delta string, done bool, tokenCount int, err error)

// Decoder consumes an incrementally available byte source and emits discrete
// content deltas plus a terminal completion event. It recognizes two outer
// envelope styles: newline-delimited JSON objects and textual `data: `
// prefixed event framing. Bytes after the last complete unit, including the
// bytes of a multi-byte character split across read boundaries, are held
// over to the next read cycle.
type Decoder struct {
	unit     UnitFunc
	onDelta  func(string)
	state    DecoderState
	pending  []byte
	reported int
	emitted  int // bytes of content forwarded so far
}

// NewDecoder builds a decoder in the OPEN state. onDelta is invoked once per
// non-empty content delta, in arrival order, before the unit is discarded.
func NewDecoder(unit UnitFunc, onDelta func(string)) *Decoder {
	return &Decoder{unit: unit, onDelta: onDelta}
}

// State reports the decoder's current lifecycle state.
func (d *Decoder) State() DecoderState { return d.state }

// Tokens returns the aggregated token count for the stream: the count the
// backend reported on its terminal unit when available, otherwise an
// estimate over the forwarded content.
func (d *Decoder) Tokens() int {
	if d.reported > 0 {
		return d.reported
	}
	if d.emitted == 0 {
		return 0
	}
	return (d.emitted + tokens.ApproxBytesPerToken - 1) / tokens.ApproxBytesPerToken
}

// Run reads the source to completion, feeding each read into the decoder.
// Cancellation closes the source immediately and leaves the decoder in
// ABORTED; the context error is returned. Decode failures on individual
// units are logged and skipped, never fatal.
func (d *Decoder) Run(ctx context.Context, body io.ReadCloser) error {
	defer body.Close()

	buf := make([]byte, 4096)
	for d.state == StateOpen {
		select {
		case <-ctx.Done():
			d.state = StateAborted
			return ctx.Err()
		default:
		}

		n, err := body.Read(buf)
		if n > 0 {
			d.Feed(buf[:n])
		}
		if err != nil {
			if err == io.EOF {
				d.finishEOF()
				return nil
			}
			if ctx.Err() != nil {
				d.state = StateAborted
				return ctx.Err()
			}
			d.state = StateAborted
			return err
		}
	}
	return nil
}

// Feed appends p to the decoder's buffer and processes every complete unit
// it now contains. Incomplete trailing bytes are held over.
func (d *Decoder) Feed(p []byte) {
	if d.state != StateOpen {
		return
	}
	d.pending = append(d.pending, p...)

	for d.state == StateOpen {
		idx := bytes.IndexByte(d.pending, '\n')
		if idx < 0 {
			return
		}
		line := d.pending[:idx]
		d.pending = d.pending[idx+1:]
		d.handleLine(bytes.TrimSuffix(line, []byte("\r")))
	}
}

// finishEOF handles a source that ends without an explicit terminal unit: a
// final unterminated line is processed if it holds a complete unit, then the
// stream is closed out.
func (d *Decoder) finishEOF() {
	if d.state != StateOpen {
		return
	}
	if rest := bytes.TrimSpace(d.pending); len(rest) > 0 && utf8.Valid(rest) {
		d.handleLine(rest)
	}
	d.pending = nil
	if d.state == StateOpen {
		d.state = StateDone
	}
}

func (d *Decoder) handleLine(line []byte) {
	if len(line) == 0 || line[0] == ':' {
		return // blank keep-alive or SSE comment
	}
	if bytes.HasPrefix(line, []byte("event:")) {
		return
	}
	payload := line
	if bytes.HasPrefix(line, []byte("data:")) {
		payload = bytes.TrimSpace(line[len("data:"):])
		if bytes.Equal(payload, []byte("[DONE]")) {
			d.state = StateDone
			return
		}
	}

	delta, done, tokenCount, err := d.unit(payload)
	if err != nil {
		// One corrupt unit must not abort an otherwise healthy stream.
		slog.Debug("Skipping undecodable stream unit", "error", err, "unit_bytes", len(payload))
		return
	}
	if delta != "" {
		d.emitted += len(delta)
		if d.onDelta != nil {
			d.onDelta(delta)
		}
	}
	if done {
		if tokenCount > 0 {
			d.reported = tokenCount
		}
		d.state = StateDone
	}
}
