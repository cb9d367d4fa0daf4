package device

import "errors"

var (
	// ErrAuthentication means the device rejected the API password. It is
	// permanent: the supervisor stops retrying.
	ErrAuthentication = errors.New("device: invalid password")

	// ErrNotConnected is returned by operations that need a ready session.
	ErrNotConnected = errors.New("device: not connected")

	// ErrAlreadyConnected is returned by Connect on a live session.
	ErrAlreadyConnected = errors.New("device: already connected")
)
