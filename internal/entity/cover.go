package entity

import (
	"fmt"

	"esphome-go/internal/api"
)

type Cover struct {
	Base
	HasDeviceClass
	HasAssumedState
	supportsPosition bool
	supportsTilt     bool
	supportsStop     bool

	known     bool
	open      bool
	position  *float32
	tilt      *float32
	operation api.CoverOperation
}

func newCover(d *api.ListEntitiesCoverResponse, sender Sender) *Cover {
	e := &Cover{
		HasDeviceClass:   HasDeviceClass{d.DeviceClass},
		HasAssumedState:  HasAssumedState{d.AssumedState},
		supportsPosition: d.SupportsPosition,
		supportsTilt:     d.SupportsTilt,
		supportsStop:     d.SupportsStop,
	}
	e.init(d, sender)
	return e
}

func (e *Cover) SupportsPosition() bool { return e.supportsPosition }
func (e *Cover) SupportsTilt() bool     { return e.supportsTilt }
func (e *Cover) SupportsStop() bool     { return e.supportsStop }

// Position returns the position in [0, 1], 1 being fully open. It is only
// known for covers that support positioning.
func (e *Cover) Position() (float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.position == nil {
		return 0, false
	}
	return *e.position, true
}

func (e *Cover) Tilt() (float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.tilt == nil {
		return 0, false
	}
	return *e.tilt, true
}

// IsOpen reports whether the cover is not fully closed. The second result
// is false until a state has been received.
func (e *Cover) IsOpen() (bool, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.open, e.known
}

func (e *Cover) Operation() api.CoverOperation {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.operation
}

func (e *Cover) update(m api.StateMessage) bool {
	s, ok := m.(*api.CoverStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.known = true
	if e.supportsPosition {
		p := s.Position
		e.position = &p
		e.open = p > 0
	} else {
		e.open = s.LegacyState == api.LegacyCoverStateOpen
	}
	if e.supportsTilt {
		t := s.Tilt
		e.tilt = &t
	}
	e.operation = s.CurrentOperation
	return true
}

func (e *Cover) FormattedState() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.known {
		return "-"
	}
	var out string
	switch {
	case e.position != nil:
		out = fmt.Sprintf("%s%%", formatFloat(*e.position*100))
	case e.open:
		out = "open"
	default:
		out = "closed"
	}
	if e.tilt != nil {
		out += fmt.Sprintf(" - %s%%", formatFloat(*e.tilt*100))
	}
	return out + " (" + e.operation.String() + ")"
}

func (e *Cover) StateValue() any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if !e.known {
		return nil
	}
	v := map[string]any{"open": e.open, "operation": e.operation.String()}
	if e.position != nil {
		v["position"] = float64(*e.position)
	}
	if e.tilt != nil {
		v["tilt"] = float64(*e.tilt)
	}
	return v
}

func (e *Cover) Open() error  { return e.SetPosition(1) }
func (e *Cover) Close() error { return e.SetPosition(0) }

func (e *Cover) Stop() error {
	return e.send(&api.CoverCommandRequest{Key: e.Key(), Stop: true})
}

// SetPosition moves the cover to p in [0, 1].
func (e *Cover) SetPosition(p float32) error {
	if p < 0 || p > 1 {
		return fmt.Errorf("%w: cover position %v", ErrInvalidValue, p)
	}
	return e.send(&api.CoverCommandRequest{Key: e.Key(), HasPosition: true, Position: p})
}

func (e *Cover) SetTilt(t float32) error {
	if !e.supportsTilt {
		return fmt.Errorf("%w: cover %s does not tilt", ErrInvalidValue, e.ObjectID())
	}
	if t < 0 || t > 1 {
		return fmt.Errorf("%w: cover tilt %v", ErrInvalidValue, t)
	}
	return e.send(&api.CoverCommandRequest{Key: e.Key(), HasTilt: true, Tilt: t})
}
