// Package api implements the ESPHome native API wire protocol: the outer
// frame codec, the Noise handshake, the inner message envelope and the
// message-type table.
package api

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

// Frame protocol tags.
const (
	FramePlaintext byte = 0x00
	FrameEncrypted byte = 0x01
)

const (
	// frameHeaderSize is type(1) + length(2).
	frameHeaderSize = 3

	// MaxFramePayload is the largest payload a 2-byte length can describe.
	MaxFramePayload = 0xFFFF

	defaultWriteTimeout = 10 * time.Second
)

func validFrameType(typ byte) bool {
	return typ == FramePlaintext || typ == FrameEncrypted
}

// EncodeFrame returns [type][length BE16][payload].
func EncodeFrame(typ byte, payload []byte) ([]byte, error) {
	if !validFrameType(typ) {
		return nil, fmt.Errorf("%w: frame type 0x%02X", ErrProtocol, typ)
	}
	if len(payload) > MaxFramePayload {
		return nil, fmt.Errorf("%w: frame payload %d bytes exceeds %d", ErrProtocol, len(payload), MaxFramePayload)
	}
	buf := make([]byte, frameHeaderSize+len(payload))
	buf[0] = typ
	binary.BigEndian.PutUint16(buf[1:3], uint16(len(payload)))
	copy(buf[frameHeaderSize:], payload)
	return buf, nil
}

// DecodeFrame reads exactly one frame from r. It never reads past the end
// of the frame.
func DecodeFrame(r io.Reader) (byte, []byte, error) {
	var hdr [frameHeaderSize]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return 0, nil, fmt.Errorf("%w: read frame header: %w", ErrTransport, err)
	}
	typ, size, err := parseFrameHeader(hdr)
	if err != nil {
		return 0, nil, err
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(r, payload); err != nil {
		return 0, nil, fmt.Errorf("%w: read frame payload: %w", ErrTransport, err)
	}
	return typ, payload, nil
}

func parseFrameHeader(hdr [frameHeaderSize]byte) (byte, int, error) {
	typ := hdr[0]
	if !validFrameType(typ) {
		return 0, 0, fmt.Errorf("%w: unrecognized frame type 0x%02X", ErrProtocol, typ)
	}
	return typ, int(binary.BigEndian.Uint16(hdr[1:3])), nil
}

// FrameConn reads and writes frames on a socket. Reads are bounded by a
// per-call timeout; a timeout before the first header byte is reported as
// ErrTimeout, any other failure as ErrTransport.
//
// FrameConn does no locking; the caller serializes writers.
type FrameConn struct {
	conn        net.Conn
	readTimeout time.Duration
}

// NewFrameConn wraps conn. A zero readTimeout blocks reads indefinitely.
func NewFrameConn(conn net.Conn, readTimeout time.Duration) *FrameConn {
	return &FrameConn{conn: conn, readTimeout: readTimeout}
}

// WriteFrame writes one frame in a single Write call.
func (c *FrameConn) WriteFrame(typ byte, payload []byte) error {
	buf, err := EncodeFrame(typ, payload)
	if err != nil {
		return err
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(defaultWriteTimeout)); err != nil {
		return fmt.Errorf("%w: set write deadline: %w", ErrTransport, err)
	}
	if _, err := c.conn.Write(buf); err != nil {
		return fmt.Errorf("%w: write frame: %w", ErrTransport, err)
	}
	return nil
}

// ReadFrame blocks until one complete frame has been read.
func (c *FrameConn) ReadFrame() (byte, []byte, error) {
	if err := c.setReadDeadline(); err != nil {
		return 0, nil, err
	}

	var hdr [frameHeaderSize]byte
	n, err := io.ReadFull(c.conn, hdr[:])
	if err != nil {
		var netErr net.Error
		if n == 0 && errors.As(err, &netErr) && netErr.Timeout() {
			return 0, nil, ErrTimeout
		}
		return 0, nil, fmt.Errorf("%w: read frame header: %w", ErrTransport, err)
	}

	typ, size, err := parseFrameHeader(hdr)
	if err != nil {
		return 0, nil, err
	}

	// The header arrived, so the rest of the frame gets a fresh deadline.
	// Timing out from here on leaves the stream mid-frame and is fatal.
	if err := c.setReadDeadline(); err != nil {
		return 0, nil, err
	}
	payload := make([]byte, size)
	if _, err := io.ReadFull(c.conn, payload); err != nil {
		return 0, nil, fmt.Errorf("%w: read frame payload: %w", ErrTransport, err)
	}
	return typ, payload, nil
}

func (c *FrameConn) setReadDeadline() error {
	var deadline time.Time
	if c.readTimeout > 0 {
		deadline = time.Now().Add(c.readTimeout)
	}
	if err := c.conn.SetReadDeadline(deadline); err != nil {
		return fmt.Errorf("%w: set read deadline: %w", ErrTransport, err)
	}
	return nil
}

// Close closes the underlying socket.
func (c *FrameConn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the peer address.
func (c *FrameConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
