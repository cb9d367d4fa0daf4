package entity

import (
	"fmt"
	"slices"
	"strings"

	"esphome-go/internal/api"
)

type Climate struct {
	Base
	supportsCurrentTemperature bool
	supportsTwoPoint           bool
	supportsAction             bool
	supportsCurrentHumidity    bool
	supportsTargetHumidity     bool
	modes                      []api.ClimateMode
	fanModes                   []string
	swingModes                 []api.ClimateSwingMode
	presets                    []string
	minTemperature             float32
	maxTemperature             float32
	temperatureStep            float32
	minHumidity                float32
	maxHumidity                float32

	known bool
	state ClimateState
}

// ClimateState is a snapshot of a climate device. Fan mode and preset hold
// either a standard name or a custom one; an empty preset means none.
type ClimateState struct {
	Mode                  api.ClimateMode
	CurrentTemperature    float32
	TargetTemperature     float32
	TargetTemperatureLow  float32
	TargetTemperatureHigh float32
	Action                api.ClimateAction
	FanMode               string
	SwingMode             api.ClimateSwingMode
	Preset                string
	CurrentHumidity       float32
	TargetHumidity        float32
}

func newClimate(d *api.ListEntitiesClimateResponse, sender Sender) *Climate {
	e := &Climate{
		supportsCurrentTemperature: d.SupportsCurrentTemperature,
		supportsTwoPoint:           d.SupportsTwoPointTargetTemperature,
		supportsAction:             d.SupportsAction,
		supportsCurrentHumidity:    d.SupportsCurrentHumidity,
		supportsTargetHumidity:     d.SupportsTargetHumidity,
		modes:                      slices.Clone(d.SupportedModes),
		swingModes:                 slices.Clone(d.SupportedSwingModes),
		minTemperature:             d.VisualMinTemperature,
		maxTemperature:             d.VisualMaxTemperature,
		temperatureStep:            d.VisualTargetTemperatureStep,
		minHumidity:                d.VisualMinHumidity,
		maxHumidity:                d.VisualMaxHumidity,
	}
	for _, m := range d.SupportedFanModes {
		e.fanModes = append(e.fanModes, m.String())
	}
	e.fanModes = append(e.fanModes, d.SupportedCustomFanModes...)
	for _, p := range d.SupportedPresets {
		e.presets = append(e.presets, p.String())
	}
	if d.LegacySupportsAway && !slices.Contains(e.presets, api.ClimatePresetAway.String()) {
		e.presets = append(e.presets, api.ClimatePresetAway.String())
	}
	e.presets = append(e.presets, d.SupportedCustomPresets...)
	e.init(d, sender)
	return e
}

func (e *Climate) SupportedModes() []api.ClimateMode           { return slices.Clone(e.modes) }
func (e *Climate) SupportedFanModes() []string                 { return slices.Clone(e.fanModes) }
func (e *Climate) SupportedSwingModes() []api.ClimateSwingMode { return slices.Clone(e.swingModes) }
func (e *Climate) SupportedPresets() []string                  { return slices.Clone(e.presets) }
func (e *Climate) SupportsTwoPointTargetTemperature() bool     { return e.supportsTwoPoint }
func (e *Climate) TemperatureRange() (float32, float32)        { return e.minTemperature, e.maxTemperature }
func (e *Climate) TargetTemperatureStep() float32              { return e.temperatureStep }
func (e *Climate) HumidityRange() (float32, float32)           { return e.minHumidity, e.maxHumidity }

func (e *Climate) State() (ClimateState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.known
}

func (e *Climate) update(m api.StateMessage) bool {
	s, ok := m.(*api.ClimateStateResponse)
	if !ok {
		return false
	}
	st := ClimateState{Mode: s.Mode, SwingMode: s.SwingMode}
	if e.supportsCurrentTemperature {
		st.CurrentTemperature = s.CurrentTemperature
	}
	if e.supportsTwoPoint {
		st.TargetTemperatureLow = s.TargetTemperatureLow
		st.TargetTemperatureHigh = s.TargetTemperatureHigh
	} else {
		st.TargetTemperature = s.TargetTemperature
	}
	if e.supportsAction {
		st.Action = s.Action
	}
	if s.CustomFanMode != "" {
		st.FanMode = strings.ToLower(s.CustomFanMode)
	} else {
		st.FanMode = s.FanMode.String()
	}
	switch {
	case s.CustomPreset != "":
		st.Preset = s.CustomPreset
	case s.UnusedLegacyAway:
		st.Preset = api.ClimatePresetAway.String()
	case s.Preset != api.ClimatePresetNone:
		st.Preset = s.Preset.String()
	}
	if e.supportsCurrentHumidity {
		st.CurrentHumidity = s.CurrentHumidity
	}
	if e.supportsTargetHumidity {
		st.TargetHumidity = s.TargetHumidity
	}

	e.mu.Lock()
	e.state = st
	e.known = true
	e.mu.Unlock()
	return true
}

func (e *Climate) FormattedState() string {
	st, ok := e.State()
	if !ok {
		return "-"
	}
	var b strings.Builder
	b.WriteString(st.Mode.String())
	if e.supportsAction {
		fmt.Fprintf(&b, " (%s)", st.Action)
	}
	if e.supportsCurrentTemperature {
		fmt.Fprintf(&b, " %s °C /", formatFloat(st.CurrentTemperature))
	}
	if e.supportsTwoPoint {
		fmt.Fprintf(&b, " %s °C - %s °C", formatFloat(st.TargetTemperatureLow), formatFloat(st.TargetTemperatureHigh))
	} else {
		fmt.Fprintf(&b, " %s °C", formatFloat(st.TargetTemperature))
	}
	if len(e.fanModes) > 0 {
		b.WriteString(" fan: " + st.FanMode)
	}
	if len(e.swingModes) > 0 {
		b.WriteString(" swing: " + st.SwingMode.String())
	}
	if st.Preset != "" {
		b.WriteString(" " + st.Preset)
	}
	if e.supportsCurrentHumidity {
		fmt.Fprintf(&b, " %s %%RH", formatFloat(st.CurrentHumidity))
	}
	if e.supportsCurrentHumidity && e.supportsTargetHumidity {
		b.WriteString("/")
	}
	if e.supportsTargetHumidity {
		fmt.Fprintf(&b, " %s %%RH", formatFloat(st.TargetHumidity))
	}
	return b.String()
}

func (e *Climate) StateValue() any {
	st, ok := e.State()
	if !ok {
		return nil
	}
	v := map[string]any{"mode": st.Mode.String(), "fan_mode": st.FanMode, "swing_mode": st.SwingMode.String()}
	if e.supportsCurrentTemperature {
		v["current_temperature"] = float64(st.CurrentTemperature)
	}
	if e.supportsTwoPoint {
		v["target_temperature_low"] = float64(st.TargetTemperatureLow)
		v["target_temperature_high"] = float64(st.TargetTemperatureHigh)
	} else {
		v["target_temperature"] = float64(st.TargetTemperature)
	}
	if e.supportsAction {
		v["action"] = st.Action.String()
	}
	if st.Preset != "" {
		v["preset"] = st.Preset
	}
	if e.supportsCurrentHumidity {
		v["current_humidity"] = float64(st.CurrentHumidity)
	}
	if e.supportsTargetHumidity {
		v["target_humidity"] = float64(st.TargetHumidity)
	}
	return v
}

func (e *Climate) command(req *api.ClimateCommandRequest) error {
	req.Key = e.Key()
	return e.send(req)
}

func (e *Climate) SetMode(m api.ClimateMode) error {
	if !slices.Contains(e.modes, m) {
		return fmt.Errorf("%w: climate mode %s", ErrInvalidValue, m)
	}
	return e.command(&api.ClimateCommandRequest{HasMode: true, Mode: m})
}

func (e *Climate) SetTargetTemperature(t float32) error {
	if e.supportsTwoPoint {
		return fmt.Errorf("%w: climate %s takes a target range", ErrInvalidValue, e.ObjectID())
	}
	return e.command(&api.ClimateCommandRequest{HasTargetTemperature: true, TargetTemperature: t})
}

func (e *Climate) SetTargetRange(low, high float32) error {
	if !e.supportsTwoPoint {
		return fmt.Errorf("%w: climate %s takes a single target", ErrInvalidValue, e.ObjectID())
	}
	if low > high {
		return fmt.Errorf("%w: climate range %v > %v", ErrInvalidValue, low, high)
	}
	return e.command(&api.ClimateCommandRequest{
		HasTargetTemperatureLow:  true,
		TargetTemperatureLow:     low,
		HasTargetTemperatureHigh: true,
		TargetTemperatureHigh:    high,
	})
}

// SetFanMode accepts a standard fan mode name or one of the custom modes.
func (e *Climate) SetFanMode(name string) error {
	if !slices.Contains(e.fanModes, name) {
		return fmt.Errorf("%w: climate fan mode %q", ErrInvalidValue, name)
	}
	for m := api.ClimateFanOn; m <= api.ClimateFanQuiet; m++ {
		if m.String() == name {
			return e.command(&api.ClimateCommandRequest{HasFanMode: true, FanMode: m})
		}
	}
	return e.command(&api.ClimateCommandRequest{HasCustomFanMode: true, CustomFanMode: name})
}

func (e *Climate) SetSwingMode(m api.ClimateSwingMode) error {
	if !slices.Contains(e.swingModes, m) {
		return fmt.Errorf("%w: climate swing mode %s", ErrInvalidValue, m)
	}
	return e.command(&api.ClimateCommandRequest{HasSwingMode: true, SwingMode: m})
}

// SetPreset accepts a standard preset name or one of the custom presets.
func (e *Climate) SetPreset(name string) error {
	if !slices.Contains(e.presets, name) {
		return fmt.Errorf("%w: climate preset %q", ErrInvalidValue, name)
	}
	for p := api.ClimatePresetNone; p <= api.ClimatePresetActivity; p++ {
		if p.String() == name {
			return e.command(&api.ClimateCommandRequest{HasPreset: true, Preset: p})
		}
	}
	return e.command(&api.ClimateCommandRequest{HasCustomPreset: true, CustomPreset: name})
}

func (e *Climate) SetTargetHumidity(h float32) error {
	if !e.supportsTargetHumidity {
		return fmt.Errorf("%w: climate %s has no target humidity", ErrInvalidValue, e.ObjectID())
	}
	return e.command(&api.ClimateCommandRequest{HasTargetHumidity: true, TargetHumidity: h})
}
