package entity

import (
	"fmt"
	"slices"
	"strings"

	"esphome-go/internal/api"
)

// Capability bits composed into api.ColorMode values.
const (
	capOnOff            api.ColorMode = 1 << 0
	capBrightness       api.ColorMode = 1 << 1
	capWhite            api.ColorMode = 1 << 2
	capColorTemperature api.ColorMode = 1 << 3
	capColdWarmWhite    api.ColorMode = 1 << 4
	capRGB              api.ColorMode = 1 << 5
)

// colorModeAliases shortens the longer firmware names.
var colorModeAliases = map[api.ColorMode]string{
	api.ColorModeColdWarmWhite:    "ww",
	api.ColorModeRGBWhite:         "rgbw",
	api.ColorModeRGBColdWarmWhite: "rgbww",
}

// ColorModeName returns the short name used for a color mode.
func ColorModeName(m api.ColorMode) string {
	if s, ok := colorModeAliases[m]; ok {
		return s
	}
	return m.String()
}

type Light struct {
	Base
	modes     []api.ColorMode
	caps      api.ColorMode
	minMireds float32
	maxMireds float32
	effects   []string

	known bool
	state LightState
}

// LightState is a snapshot of a light. Channels the light does not support
// stay zero.
type LightState struct {
	On               bool
	Brightness       float32
	ColorMode        api.ColorMode
	ColorBrightness  float32
	Red              float32
	Green            float32
	Blue             float32
	White            float32
	ColorTemperature float32
	ColdWhite        float32
	WarmWhite        float32
	Effect           string
}

func newLight(d *api.ListEntitiesLightResponse, sender Sender) *Light {
	e := &Light{
		modes:     supportedColorModes(d),
		minMireds: d.MinMireds,
		maxMireds: d.MaxMireds,
		effects:   slices.Clone(d.Effects),
	}
	for _, m := range e.modes {
		e.caps |= m
	}
	e.init(d, sender)
	return e
}

// supportedColorModes translates the legacy capability flags of older
// firmware into color modes.
func supportedColorModes(d *api.ListEntitiesLightResponse) []api.ColorMode {
	if len(d.SupportedColorModes) > 0 {
		return slices.Clone(d.SupportedColorModes)
	}
	var modes []api.ColorMode
	if d.LegacySupportsBrightness {
		modes = append(modes, api.ColorModeBrightness)
	}
	if d.LegacySupportsRGB {
		modes = append(modes, api.ColorModeRGB)
	}
	if d.LegacySupportsWhiteValue {
		modes = append(modes, api.ColorModeWhite)
	}
	if d.LegacySupportsColorTemperature {
		modes = append(modes, api.ColorModeColorTemperature)
	}
	if len(modes) == 0 {
		modes = []api.ColorMode{api.ColorModeOnOff}
	}
	return modes
}

func (e *Light) SupportedColorModes() []api.ColorMode { return slices.Clone(e.modes) }
func (e *Light) Effects() []string                    { return slices.Clone(e.effects) }
func (e *Light) MiredsRange() (float32, float32)      { return e.minMireds, e.maxMireds }

func (e *Light) SupportsBrightness() bool       { return e.caps&capBrightness != 0 }
func (e *Light) SupportsRGB() bool              { return e.caps&capRGB != 0 }
func (e *Light) SupportsWhite() bool            { return e.caps&capWhite != 0 }
func (e *Light) SupportsColorTemperature() bool { return e.caps&capColorTemperature != 0 }
func (e *Light) SupportsColdWarmWhite() bool    { return e.caps&capColdWarmWhite != 0 }

func (e *Light) State() (LightState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.known
}

func (e *Light) update(m api.StateMessage) bool {
	s, ok := m.(*api.LightStateResponse)
	if !ok {
		return false
	}
	st := LightState{On: s.State, ColorMode: s.ColorMode, Effect: s.Effect}
	if e.SupportsBrightness() {
		st.Brightness = s.Brightness
	}
	if e.SupportsRGB() {
		st.ColorBrightness = s.ColorBrightness
		st.Red, st.Green, st.Blue = s.Red, s.Green, s.Blue
	}
	if e.SupportsWhite() {
		st.White = s.White
	}
	if e.SupportsColorTemperature() {
		st.ColorTemperature = s.ColorTemperature
	}
	if e.SupportsColdWarmWhite() {
		st.ColdWhite, st.WarmWhite = s.ColdWhite, s.WarmWhite
	}

	e.mu.Lock()
	e.state = st
	e.known = true
	e.mu.Unlock()
	return true
}

func (e *Light) FormattedState() string {
	st, ok := e.State()
	if !ok {
		return "-"
	}
	out := onOff(st.On)
	if e.SupportsBrightness() {
		out += " " + formatFloat(st.Brightness*100) + "%"
	}
	if st.Effect != "" {
		return out + " " + st.Effect
	}
	if e.SupportsColorTemperature() {
		out += " " + formatFloat(st.ColorTemperature) + " mired"
	}
	var channels []string
	if e.SupportsRGB() {
		channels = append(channels, formatFloat(st.Red), formatFloat(st.Green), formatFloat(st.Blue))
	}
	if e.SupportsWhite() {
		channels = append(channels, formatFloat(st.White))
	}
	if e.SupportsColdWarmWhite() {
		channels = append(channels, formatFloat(st.ColdWhite), formatFloat(st.WarmWhite))
	}
	if len(channels) > 0 {
		out += " (" + strings.Join(channels, ",") + ")"
	}
	return out
}

func (e *Light) StateValue() any {
	st, ok := e.State()
	if !ok {
		return nil
	}
	v := map[string]any{"state": st.On, "color_mode": ColorModeName(st.ColorMode)}
	if e.SupportsBrightness() {
		v["brightness"] = float64(st.Brightness)
	}
	if e.SupportsRGB() {
		v["color_brightness"] = float64(st.ColorBrightness)
		v["rgb"] = []float64{float64(st.Red), float64(st.Green), float64(st.Blue)}
	}
	if e.SupportsWhite() {
		v["white"] = float64(st.White)
	}
	if e.SupportsColorTemperature() {
		v["color_temperature"] = float64(st.ColorTemperature)
	}
	if e.SupportsColdWarmWhite() {
		v["cold_white"] = float64(st.ColdWhite)
		v["warm_white"] = float64(st.WarmWhite)
	}
	if st.Effect != "" {
		v["effect"] = st.Effect
	}
	return v
}

// LightCommand lists the fields to change; nil fields are left alone.
// Lengths are in milliseconds.
type LightCommand struct {
	State            *bool
	Brightness       *float32
	ColorMode        *api.ColorMode
	ColorBrightness  *float32
	RGB              *[3]float32
	White            *float32
	ColorTemperature *float32
	ColdWhite        *float32
	WarmWhite        *float32
	TransitionLength *uint32
	FlashLength      *uint32
	Effect           *string
}

func (e *Light) Command(c LightCommand) error {
	req := &api.LightCommandRequest{Key: e.Key()}
	if c.State != nil {
		req.HasState, req.State = true, *c.State
	}
	if c.Brightness != nil {
		if !e.SupportsBrightness() {
			return fmt.Errorf("%w: light %s has no brightness", ErrInvalidValue, e.ObjectID())
		}
		req.HasBrightness, req.Brightness = true, *c.Brightness
	}
	if c.ColorMode != nil {
		if !slices.Contains(e.modes, *c.ColorMode) {
			return fmt.Errorf("%w: light color mode %s", ErrInvalidValue, ColorModeName(*c.ColorMode))
		}
		req.HasColorMode, req.ColorMode = true, *c.ColorMode
	}
	if c.ColorBrightness != nil {
		req.HasColorBrightness, req.ColorBrightness = true, *c.ColorBrightness
	}
	if c.RGB != nil {
		if !e.SupportsRGB() {
			return fmt.Errorf("%w: light %s has no rgb", ErrInvalidValue, e.ObjectID())
		}
		req.HasRGB = true
		req.Red, req.Green, req.Blue = c.RGB[0], c.RGB[1], c.RGB[2]
	}
	if c.White != nil {
		req.HasWhite, req.White = true, *c.White
	}
	if c.ColorTemperature != nil {
		if !e.SupportsColorTemperature() {
			return fmt.Errorf("%w: light %s has no color temperature", ErrInvalidValue, e.ObjectID())
		}
		req.HasColorTemperature, req.ColorTemperature = true, *c.ColorTemperature
	}
	if c.ColdWhite != nil {
		req.HasColdWhite, req.ColdWhite = true, *c.ColdWhite
	}
	if c.WarmWhite != nil {
		req.HasWarmWhite, req.WarmWhite = true, *c.WarmWhite
	}
	if c.TransitionLength != nil {
		req.HasTransitionLength, req.TransitionLength = true, *c.TransitionLength
	}
	if c.FlashLength != nil {
		req.HasFlashLength, req.FlashLength = true, *c.FlashLength
	}
	if c.Effect != nil {
		if !slices.Contains(e.effects, *c.Effect) {
			return fmt.Errorf("%w: light effect %q", ErrInvalidValue, *c.Effect)
		}
		req.HasEffect, req.Effect = true, *c.Effect
	}
	return e.send(req)
}

func (e *Light) On() error  { return e.Command(LightCommand{State: ptr(true)}) }
func (e *Light) Off() error { return e.Command(LightCommand{State: ptr(false)}) }

func (e *Light) SetBrightness(b float32) error {
	return e.Command(LightCommand{State: ptr(true), Brightness: &b})
}
