package api

import "errors"

// Protocol engine errors. Callers match them with errors.Is; the underlying
// cause (net error, noise error) is wrapped alongside.
var (
	// ErrTransport is a socket-level failure: refused, reset, EOF, or a
	// read/write error. The connection must be torn down.
	ErrTransport = errors.New("esphome: transport failure")

	// ErrTimeout means no frame header arrived within the read timeout.
	// The read loop answers it with a keepalive ping.
	ErrTimeout = errors.New("esphome: read timeout")

	// ErrHandshake is a Noise handshake failure (wrong key, malformed reply).
	ErrHandshake = errors.New("esphome: handshake failed")

	// ErrProtocol is a framing or sequencing violation: bad frame tag,
	// envelope length mismatch, malformed body, unexpected message.
	ErrProtocol = errors.New("esphome: protocol error")

	// ErrUnknownMessage is returned for a message-type id missing from the table.
	ErrUnknownMessage = errors.New("esphome: unknown message type")
)
