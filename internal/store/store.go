// Package store caches what sessions learn about devices: metadata, the
// entity catalogue and online status, keyed by device address.
package store

import "errors"

// ErrNotFound is returned for addresses with no record.
var ErrNotFound = errors.New("store: device not found")

// Store persists device records.
type Store interface {
	SaveDevice(dev *Device) error
	GetDevice(address string) (*Device, error)
	DeleteDevice(address string) error

	// ListDevices returns every record ordered by address.
	ListDevices() ([]*Device, error)

	// UpdateDevice reads, modifies and saves one record in a single
	// transaction. Returns ErrNotFound for unknown addresses.
	UpdateDevice(address string, fn func(dev *Device) error) error

	Close() error
}
