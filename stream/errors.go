package stream

import "errors"

// Errors returned by the stream package.
var (
	// ErrNoTarget is returned when Connect is called with an empty target.
	ErrNoTarget = errors.New("no stream target")

	// ErrAlreadyConnected is returned when Connect is called on a client
	// that already holds a connection.
	ErrAlreadyConnected = errors.New("stream already connected")

	// ErrUnexpectedStatus is returned when the server responds with a
	// non-200 status or a non-event-stream content type.
	ErrUnexpectedStatus = errors.New("unexpected stream response")

	// ErrStreamClosed is returned when the server closes the stream.
	ErrStreamClosed = errors.New("stream closed by server")
)
