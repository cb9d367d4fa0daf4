// Package entity models the entities a device exposes and applies state
// updates to them according to each kind's rules.
package entity

import (
	"errors"
	"strconv"
	"sync"

	"esphome-go/internal/api"
)

var (
	// ErrNoSender is returned by command helpers on an entity that was
	// registered without a way to reach the device.
	ErrNoSender = errors.New("entity: no sender")

	// ErrUnsupportedKind is returned for descriptors with no entity model.
	ErrUnsupportedKind = errors.New("entity: unsupported kind")

	// ErrDuplicateKey is returned when a key is registered twice.
	ErrDuplicateKey = errors.New("entity: duplicate key")

	// ErrInvalidValue is returned when a command argument is outside what
	// the entity advertised.
	ErrInvalidValue = errors.New("entity: invalid value")
)

// Sender delivers command messages to the device.
type Sender interface {
	Send(m api.Message) error
}

// Entity is implemented by every entity kind.
type Entity interface {
	Kind() api.EntityKind
	Key() uint32
	Info() api.EntityInfo

	// FormattedState is a single human-readable rendering of the current
	// state; "-" when the state is unknown.
	FormattedState() string

	// StateValue is a JSON-friendly snapshot of the state, nil when unknown.
	StateValue() any

	// update applies a state message. It reports false if the message is
	// of the wrong type for the kind.
	update(m api.StateMessage) bool
}

// Base holds identity shared by every kind. Its mutex guards the mutable
// state of the embedding kind.
type Base struct {
	info   api.EntityInfo
	kind   api.EntityKind
	sender Sender

	mu sync.RWMutex
}

func (b *Base) init(d api.EntityDescriptor, sender Sender) {
	b.info = d.Info()
	b.kind = d.EntityKind()
	b.sender = sender
}

func (b *Base) Kind() api.EntityKind { return b.kind }
func (b *Base) Key() uint32          { return b.info.Key }
func (b *Base) Info() api.EntityInfo { return b.info }
func (b *Base) Name() string         { return b.info.Name }
func (b *Base) ObjectID() string     { return b.info.ObjectID }

func (b *Base) send(m api.Message) error {
	if b.sender == nil {
		return ErrNoSender
	}
	return b.sender.Send(m)
}

// HasDeviceClass is embedded by kinds that carry a device class.
type HasDeviceClass struct {
	deviceClass string
}

// DeviceClass returns the device class, or "" if none was advertised.
func (c HasDeviceClass) DeviceClass() string { return c.deviceClass }

// HasAssumedState is embedded by kinds whose state may be optimistic.
type HasAssumedState struct {
	assumedState bool
}

// AssumedState reports whether the device only assumes its state.
func (a HasAssumedState) AssumedState() bool { return a.assumedState }

// New builds the entity described by d.
func New(d api.EntityDescriptor, sender Sender) (Entity, error) {
	switch d := d.(type) {
	case *api.ListEntitiesBinarySensorResponse:
		return newBinarySensor(d, sender), nil
	case *api.ListEntitiesSensorResponse:
		return newSensor(d, sender), nil
	case *api.ListEntitiesTextSensorResponse:
		return newTextSensor(d, sender), nil
	case *api.ListEntitiesSwitchResponse:
		return newSwitch(d, sender), nil
	case *api.ListEntitiesButtonResponse:
		return newButton(d, sender), nil
	case *api.ListEntitiesCoverResponse:
		return newCover(d, sender), nil
	case *api.ListEntitiesFanResponse:
		return newFan(d, sender), nil
	case *api.ListEntitiesLightResponse:
		return newLight(d, sender), nil
	case *api.ListEntitiesClimateResponse:
		return newClimate(d, sender), nil
	case *api.ListEntitiesLockResponse:
		return newLock(d, sender), nil
	case *api.ListEntitiesNumberResponse:
		return newNumber(d, sender), nil
	case *api.ListEntitiesSelectResponse:
		return newSelect(d, sender), nil
	case *api.ListEntitiesTextResponse:
		return newText(d, sender), nil
	case *api.ListEntitiesDateResponse:
		return newDate(d, sender), nil
	case *api.ListEntitiesTimeResponse:
		return newTime(d, sender), nil
	case *api.ListEntitiesDateTimeResponse:
		return newDateTime(d, sender), nil
	}
	return nil, ErrUnsupportedKind
}

func formatFloat(v float32) string {
	return strconv.FormatFloat(float64(v), 'g', -1, 32)
}

func ptr[T any](v T) *T { return &v }

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
