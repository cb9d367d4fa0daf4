package entity

import (
	"strconv"

	"esphome-go/internal/api"
)

// binarySensorStates maps a device class to its (true, false) wording.
var binarySensorStates = map[string][2]string{
	"battery":          {"low", "normal"},
	"battery_charging": {"charging", "not charging"},
	"carbon_monoxide":  {"detected", "clear"},
	"cold":             {"cold", "normal"},
	"connectivity":     {"connected", "disconnected"},
	"door":             {"open", "closed"},
	"garage_door":      {"open", "closed"},
	"gas":              {"detected", "clear"},
	"heat":             {"hot", "normal"},
	"light":            {"detected", "not detected"},
	"lock":             {"locked", "unlocked"},
	"moisture":         {"wet", "dry"},
	"motion":           {"detected", "clear"},
	"moving":           {"moving", "stopped"},
	"occupancy":        {"occupied", "not occupied"},
	"opening":          {"open", "closed"},
	"plug":             {"plugged in", "unplugged"},
	"power":            {"detected", "no power"},
	"presence":         {"home", "away"},
	"problem":          {"problem", "ok"},
	"running":          {"running", "not running"},
	"safety":           {"unsafe", "safe"},
	"smoke":            {"detected", "clear"},
	"sound":            {"detected", "not detected"},
	"tamper":           {"tampered", "clear"},
	"update":           {"available", "up-to-date"},
	"vibration":        {"detected", "clear"},
	"window":           {"open", "closed"},
}

type BinarySensor struct {
	Base
	HasDeviceClass
	isStatus bool

	state *bool
}

func newBinarySensor(d *api.ListEntitiesBinarySensorResponse, sender Sender) *BinarySensor {
	e := &BinarySensor{HasDeviceClass: HasDeviceClass{d.DeviceClass}, isStatus: d.IsStatusBinarySensor}
	e.init(d, sender)
	return e
}

// IsStatus reports whether this is the device's own connectivity sensor.
func (e *BinarySensor) IsStatus() bool { return e.isStatus }

// State returns the current state and whether it is known.
func (e *BinarySensor) State() (bool, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return false, false
	}
	return *e.state, true
}

func (e *BinarySensor) update(m api.StateMessage) bool {
	s, ok := m.(*api.BinarySensorStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.MissingState {
		e.state = nil
	} else {
		v := s.State
		e.state = &v
	}
	return true
}

func (e *BinarySensor) FormattedState() string {
	v, ok := e.State()
	if !ok {
		return "-"
	}
	words, found := binarySensorStates[e.deviceClass]
	if !found {
		return onOff(v)
	}
	if v {
		return words[0]
	}
	return words[1]
}

func (e *BinarySensor) StateValue() any {
	if v, ok := e.State(); ok {
		return v
	}
	return nil
}

type Sensor struct {
	Base
	HasDeviceClass
	unit             string
	accuracyDecimals int32
	forceUpdate      bool
	stateClass       api.SensorStateClass

	state *float32
}

func newSensor(d *api.ListEntitiesSensorResponse, sender Sender) *Sensor {
	e := &Sensor{
		HasDeviceClass:   HasDeviceClass{d.DeviceClass},
		unit:             d.UnitOfMeasurement,
		accuracyDecimals: d.AccuracyDecimals,
		forceUpdate:      d.ForceUpdate,
		stateClass:       d.StateClass,
	}
	e.init(d, sender)
	return e
}

func (e *Sensor) UnitOfMeasurement() string        { return e.unit }
func (e *Sensor) AccuracyDecimals() int32          { return e.accuracyDecimals }
func (e *Sensor) ForceUpdate() bool                { return e.forceUpdate }
func (e *Sensor) StateClass() api.SensorStateClass { return e.stateClass }

func (e *Sensor) State() (float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return 0, false
	}
	return *e.state, true
}

func (e *Sensor) update(m api.StateMessage) bool {
	s, ok := m.(*api.SensorStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.MissingState {
		e.state = nil
	} else {
		v := s.State
		e.state = &v
	}
	return true
}

func (e *Sensor) FormattedState() string {
	v, ok := e.State()
	if !ok {
		return withUnit("-", e.unit)
	}
	return withUnit(formatDecimals(v, int(e.accuracyDecimals)), e.unit)
}

func (e *Sensor) StateValue() any {
	if v, ok := e.State(); ok {
		return float64(v)
	}
	return nil
}

type TextSensor struct {
	Base
	HasDeviceClass

	state *string
}

func newTextSensor(d *api.ListEntitiesTextSensorResponse, sender Sender) *TextSensor {
	e := &TextSensor{HasDeviceClass: HasDeviceClass{d.DeviceClass}}
	e.init(d, sender)
	return e
}

func (e *TextSensor) State() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return "", false
	}
	return *e.state, true
}

func (e *TextSensor) update(m api.StateMessage) bool {
	s, ok := m.(*api.TextSensorStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = optionalString(s.State, s.MissingState)
	return true
}

func (e *TextSensor) FormattedState() string {
	if v, ok := e.State(); ok {
		return v
	}
	return "-"
}

func (e *TextSensor) StateValue() any {
	if v, ok := e.State(); ok {
		return v
	}
	return nil
}

func optionalString(v string, missing bool) *string {
	if missing {
		return nil
	}
	return &v
}

func formatDecimals(v float32, decimals int) string {
	if decimals < 0 {
		decimals = 0
	}
	return strconv.FormatFloat(float64(v), 'f', decimals, 32)
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	return s + " " + unit
}
