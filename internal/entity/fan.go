package entity

import (
	"fmt"
	"slices"

	"esphome-go/internal/api"
)

// defaultFanSpeedCount applies to fans that support speed but advertise no
// speed count, as older firmware does.
const defaultFanSpeedCount = 3

var legacyFanSpeedLevels = map[api.FanSpeed]int32{
	api.FanSpeedLow:    1,
	api.FanSpeedMedium: 2,
	api.FanSpeedHigh:   3,
}

type Fan struct {
	Base
	supportsOscillation bool
	supportsSpeed       bool
	supportsDirection   bool
	speedCount          int32
	presetModes         []string

	known       bool
	on          bool
	oscillating bool
	speed       int32
	direction   api.FanDirection
	presetMode  string
}

func newFan(d *api.ListEntitiesFanResponse, sender Sender) *Fan {
	e := &Fan{
		supportsOscillation: d.SupportsOscillation,
		supportsSpeed:       d.SupportsSpeed,
		supportsDirection:   d.SupportsDirection,
		presetModes:         slices.Clone(d.PresetModes),
	}
	if d.SupportsSpeed {
		e.speedCount = d.SupportedSpeedCount
		if e.speedCount == 0 {
			e.speedCount = defaultFanSpeedCount
		}
	}
	e.init(d, sender)
	return e
}

func (e *Fan) SupportsOscillation() bool { return e.supportsOscillation }
func (e *Fan) SupportsSpeed() bool       { return e.supportsSpeed }
func (e *Fan) SupportsDirection() bool   { return e.supportsDirection }
func (e *Fan) SpeedCount() int32         { return e.speedCount }
func (e *Fan) PresetModes() []string     { return slices.Clone(e.presetModes) }

// FanState is a snapshot of a fan's reported state.
type FanState struct {
	On          bool
	Oscillating bool
	Speed       int32
	Direction   api.FanDirection
	PresetMode  string
}

func (e *Fan) State() (FanState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return FanState{
		On:          e.on,
		Oscillating: e.oscillating,
		Speed:       e.speed,
		Direction:   e.direction,
		PresetMode:  e.presetMode,
	}, e.known
}

func (e *Fan) update(m api.StateMessage) bool {
	s, ok := m.(*api.FanStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.known = true
	e.on = s.State
	e.oscillating = s.Oscillating
	e.speed = s.SpeedLevel
	if e.supportsSpeed && e.speed == 0 && s.State {
		e.speed = legacyFanSpeedLevels[s.Speed]
	}
	e.direction = s.Direction
	e.presetMode = s.PresetMode
	return true
}

func (e *Fan) FormattedState() string {
	st, ok := e.State()
	if !ok {
		return "-"
	}
	out := onOff(st.On)
	if e.supportsSpeed {
		if e.speedCount == 100 {
			out += fmt.Sprintf(" %d%%", st.Speed)
		} else {
			out += fmt.Sprintf(" %d/%d", st.Speed, e.speedCount)
		}
	}
	if st.Oscillating {
		out += " oscillating"
	}
	if st.Direction == api.FanDirectionReverse {
		out += " reversed"
	}
	if st.PresetMode != "" {
		out += " (" + st.PresetMode + ")"
	}
	return out
}

func (e *Fan) StateValue() any {
	st, ok := e.State()
	if !ok {
		return nil
	}
	v := map[string]any{
		"state":       st.On,
		"oscillating": st.Oscillating,
		"direction":   st.Direction.String(),
	}
	if e.supportsSpeed {
		v["speed"] = st.Speed
	}
	if st.PresetMode != "" {
		v["preset_mode"] = st.PresetMode
	}
	return v
}

// FanCommand lists the fields to change; nil fields are left alone.
type FanCommand struct {
	State       *bool
	Speed       *int32
	Oscillating *bool
	Direction   *api.FanDirection
	PresetMode  *string
}

func (e *Fan) Command(c FanCommand) error {
	req := &api.FanCommandRequest{Key: e.Key()}
	if c.State != nil {
		req.HasState, req.State = true, *c.State
	}
	if c.Speed != nil {
		if !e.supportsSpeed || *c.Speed < 0 || *c.Speed > e.speedCount {
			return fmt.Errorf("%w: fan speed %d", ErrInvalidValue, *c.Speed)
		}
		req.HasSpeedLevel, req.SpeedLevel = true, *c.Speed
	}
	if c.Oscillating != nil {
		req.HasOscillating, req.Oscillating = true, *c.Oscillating
	}
	if c.Direction != nil {
		req.HasDirection, req.Direction = true, *c.Direction
	}
	if c.PresetMode != nil {
		if !slices.Contains(e.presetModes, *c.PresetMode) {
			return fmt.Errorf("%w: fan preset %q", ErrInvalidValue, *c.PresetMode)
		}
		req.HasPresetMode, req.PresetMode = true, *c.PresetMode
	}
	return e.send(req)
}

func (e *Fan) On() error  { return e.Command(FanCommand{State: ptr(true)}) }
func (e *Fan) Off() error { return e.Command(FanCommand{State: ptr(false)}) }

func (e *Fan) SetSpeed(level int32) error {
	return e.Command(FanCommand{State: ptr(true), Speed: &level})
}
