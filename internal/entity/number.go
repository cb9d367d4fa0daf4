package entity

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"esphome-go/internal/api"
)

type Number struct {
	Base
	HasDeviceClass
	min  float32
	max  float32
	step float32
	unit string
	mode api.NumberMode

	state *float32
}

func newNumber(d *api.ListEntitiesNumberResponse, sender Sender) *Number {
	e := &Number{
		HasDeviceClass: HasDeviceClass{d.DeviceClass},
		min:            d.MinValue,
		max:            d.MaxValue,
		step:           d.Step,
		unit:           d.UnitOfMeasurement,
		mode:           d.Mode,
	}
	e.init(d, sender)
	return e
}

func (e *Number) Range() (float32, float32) { return e.min, e.max }
func (e *Number) Step() float32             { return e.step }
func (e *Number) UnitOfMeasurement() string { return e.unit }
func (e *Number) Mode() api.NumberMode      { return e.mode }

// AccuracyDecimals is the number of decimals in the step.
func (e *Number) AccuracyDecimals() int {
	s := strconv.FormatFloat(float64(e.step), 'f', -1, 32)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return len(s) - i - 1
	}
	return 0
}

func (e *Number) State() (float32, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return 0, false
	}
	return *e.state, true
}

func (e *Number) update(m api.StateMessage) bool {
	s, ok := m.(*api.NumberStateResponse)
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

func (e *Number) FormattedState() string {
	v, ok := e.State()
	if !ok {
		return withUnit("-", e.unit)
	}
	return withUnit(formatDecimals(v, e.AccuracyDecimals()), e.unit)
}

func (e *Number) StateValue() any {
	if v, ok := e.State(); ok {
		return float64(v)
	}
	return nil
}

// Set sends v, which must lie within the advertised range.
func (e *Number) Set(v float32) error {
	if v < e.min || v > e.max {
		return fmt.Errorf("%w: %v outside [%v, %v]", ErrInvalidValue, v, e.min, e.max)
	}
	return e.send(&api.NumberCommandRequest{Key: e.Key(), State: v})
}

type Select struct {
	Base
	options []string

	state *string
}

func newSelect(d *api.ListEntitiesSelectResponse, sender Sender) *Select {
	e := &Select{options: slices.Clone(d.Options)}
	e.init(d, sender)
	return e
}

func (e *Select) Options() []string { return slices.Clone(e.options) }

func (e *Select) State() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return "", false
	}
	return *e.state, true
}

func (e *Select) update(m api.StateMessage) bool {
	s, ok := m.(*api.SelectStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = optionalString(s.State, s.MissingState)
	return true
}

func (e *Select) FormattedState() string {
	if v, ok := e.State(); ok {
		return v
	}
	return "-"
}

func (e *Select) StateValue() any {
	if v, ok := e.State(); ok {
		return v
	}
	return nil
}

func (e *Select) Set(option string) error {
	if !slices.Contains(e.options, option) {
		return fmt.Errorf("%w: option %q", ErrInvalidValue, option)
	}
	return e.send(&api.SelectCommandRequest{Key: e.Key(), State: option})
}

type Text struct {
	Base
	minLength uint32
	maxLength uint32
	pattern   string
	mode      api.TextMode

	state *string
}

func newText(d *api.ListEntitiesTextResponse, sender Sender) *Text {
	e := &Text{
		minLength: d.MinLength,
		maxLength: d.MaxLength,
		pattern:   d.Pattern,
		mode:      d.Mode,
	}
	e.init(d, sender)
	return e
}

func (e *Text) Length() (uint32, uint32) { return e.minLength, e.maxLength }
func (e *Text) Pattern() string          { return e.pattern }
func (e *Text) Mode() api.TextMode       { return e.mode }

func (e *Text) State() (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return "", false
	}
	return *e.state, true
}

func (e *Text) update(m api.StateMessage) bool {
	s, ok := m.(*api.TextStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = optionalString(s.State, s.MissingState)
	return true
}

func (e *Text) FormattedState() string {
	v, ok := e.State()
	switch {
	case !ok:
		return "-"
	case e.mode == api.TextModePassword:
		return strings.Repeat("*", len(v))
	}
	return v
}

func (e *Text) StateValue() any {
	if v, ok := e.State(); ok {
		return v
	}
	return nil
}

// Set sends v. Its byte length must lie within the advertised bounds; a
// zero maximum means unbounded.
func (e *Text) Set(v string) error {
	n := uint32(len(v))
	if n < e.minLength || (e.maxLength > 0 && n > e.maxLength) {
		return fmt.Errorf("%w: text length %d outside [%d, %d]", ErrInvalidValue, n, e.minLength, e.maxLength)
	}
	return e.send(&api.TextCommandRequest{Key: e.Key(), State: v})
}
