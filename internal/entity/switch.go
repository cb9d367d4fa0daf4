package entity

import "esphome-go/internal/api"

type Switch struct {
	Base
	HasDeviceClass
	HasAssumedState

	state bool
}

func newSwitch(d *api.ListEntitiesSwitchResponse, sender Sender) *Switch {
	e := &Switch{
		HasDeviceClass:  HasDeviceClass{d.DeviceClass},
		HasAssumedState: HasAssumedState{d.AssumedState},
	}
	e.init(d, sender)
	return e
}

// State reports whether the switch is on. A switch that has not reported
// yet is off.
func (e *Switch) State() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Switch) update(m api.StateMessage) bool {
	s, ok := m.(*api.SwitchStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	e.state = s.State
	e.mu.Unlock()
	return true
}

func (e *Switch) FormattedState() string { return onOff(e.State()) }
func (e *Switch) StateValue() any        { return e.State() }

func (e *Switch) Command(on bool) error {
	return e.send(&api.SwitchCommandRequest{Key: e.Key(), State: on})
}

func (e *Switch) On() error  { return e.Command(true) }
func (e *Switch) Off() error { return e.Command(false) }

// Toggle commands the opposite of the last reported state.
func (e *Switch) Toggle() error { return e.Command(!e.State()) }

// Button is stateless; it can only be pressed.
type Button struct {
	Base
	HasDeviceClass
}

func newButton(d *api.ListEntitiesButtonResponse, sender Sender) *Button {
	e := &Button{HasDeviceClass: HasDeviceClass{d.DeviceClass}}
	e.init(d, sender)
	return e
}

func (e *Button) update(api.StateMessage) bool { return false }
func (e *Button) FormattedState() string       { return "-" }
func (e *Button) StateValue() any              { return nil }

func (e *Button) Press() error {
	return e.send(&api.ButtonCommandRequest{Key: e.Key()})
}
