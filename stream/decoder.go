package stream

import (
	"bufio"
	"io"
	"strconv"
	"strings"
	"time"
)

// Frame is one raw server-sent event as read off the wire.
type Frame struct {
	// Name is the value of the "event" field, empty for untagged frames.
	Name string

	// Data is the payload, with multi-line data joined by newlines.
	Data string

	// ID is the value of the last "id" field seen, if any.
	ID string

	// Retry is the server-suggested reconnection delay from the "retry"
	// field, zero when absent.
	Retry time.Duration
}

// Decoder reads server-sent event frames from a stream.
//
// It implements the text/event-stream framing rules: fields are separated
// from values by the first colon, a single leading space in the value is
// stripped, lines starting with a colon are comments, and a frame is
// dispatched on the first empty line after at least one data field.
type Decoder struct {
	scanner *bufio.Scanner
}

// maxFrameSize bounds a single line of the stream. Tool results can be
// large, so the default scanner buffer is not enough.
const maxFrameSize = 1024 * 1024

// NewDecoder creates a decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFrameSize)
	return &Decoder{scanner: scanner}
}

// Next reads the next complete frame. It returns io.EOF when the stream
// ends. Frames without any data field (comment-only keepalives, bare event
// names) are discarded rather than returned.
func (d *Decoder) Next() (*Frame, error) {
	frame := &Frame{}
	var data []string

	for d.scanner.Scan() {
		line := strings.TrimSuffix(d.scanner.Text(), "\r")

		if line == "" {
			if len(data) == 0 {
				// Nothing buffered, reset and keep reading.
				frame = &Frame{}
				continue
			}
			frame.Data = strings.Join(data, "\n")
			return frame, nil
		}

		if strings.HasPrefix(line, ":") {
			// Comment line, commonly used as a keepalive.
			continue
		}

		field, value := splitField(line)
		switch field {
		case "event":
			frame.Name = value
		case "data":
			data = append(data, value)
		case "id":
			frame.ID = value
		case "retry":
			if ms, err := strconv.Atoi(value); err == nil && ms >= 0 {
				frame.Retry = time.Duration(ms) * time.Millisecond
			}
		default:
			// Unknown fields are ignored per the SSE contract.
		}
	}

	if err := d.scanner.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// splitField splits a field line at the first colon and strips a single
// leading space from the value.
func splitField(line string) (field, value string) {
	field, value, found := strings.Cut(line, ":")
	if !found {
		// A line with no colon is a field with an empty value.
		return line, ""
	}
	value = strings.TrimPrefix(value, " ")
	return field, value
}
