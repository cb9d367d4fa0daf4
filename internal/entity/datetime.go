package entity

import (
	"fmt"
	"time"

	"esphome-go/internal/api"
)

type Date struct {
	Base

	known            bool
	year, month, day uint32
}

func newDate(d *api.ListEntitiesDateResponse, sender Sender) *Date {
	e := &Date{}
	e.init(d, sender)
	return e
}

func (e *Date) State() (year, month, day uint32, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.year, e.month, e.day, e.known
}

func (e *Date) update(m api.StateMessage) bool {
	s, ok := m.(*api.DateStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.known = !s.MissingState
	e.year, e.month, e.day = s.Year, s.Month, s.Day
	return true
}

func (e *Date) FormattedState() string {
	y, m, d, ok := e.State()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%04d-%02d-%02d", y, m, d)
}

func (e *Date) StateValue() any {
	if _, _, _, ok := e.State(); !ok {
		return nil
	}
	return e.FormattedState()
}

func (e *Date) Set(year, month, day uint32) error {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return fmt.Errorf("%w: date %d-%d-%d", ErrInvalidValue, year, month, day)
	}
	return e.send(&api.DateCommandRequest{Key: e.Key(), Year: year, Month: month, Day: day})
}

type Time struct {
	Base

	known                bool
	hour, minute, second uint32
}

func newTime(d *api.ListEntitiesTimeResponse, sender Sender) *Time {
	e := &Time{}
	e.init(d, sender)
	return e
}

func (e *Time) State() (hour, minute, second uint32, ok bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.hour, e.minute, e.second, e.known
}

func (e *Time) update(m api.StateMessage) bool {
	s, ok := m.(*api.TimeStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.known = !s.MissingState
	e.hour, e.minute, e.second = s.Hour, s.Minute, s.Second
	return true
}

func (e *Time) FormattedState() string {
	h, m, s, ok := e.State()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

func (e *Time) StateValue() any {
	if _, _, _, ok := e.State(); !ok {
		return nil
	}
	return e.FormattedState()
}

func (e *Time) Set(hour, minute, second uint32) error {
	if hour > 23 || minute > 59 || second > 59 {
		return fmt.Errorf("%w: time %d:%d:%d", ErrInvalidValue, hour, minute, second)
	}
	return e.send(&api.TimeCommandRequest{Key: e.Key(), Hour: hour, Minute: minute, Second: second})
}

type DateTime struct {
	Base

	state *time.Time
}

func newDateTime(d *api.ListEntitiesDateTimeResponse, sender Sender) *DateTime {
	e := &DateTime{}
	e.init(d, sender)
	return e
}

func (e *DateTime) State() (time.Time, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.state == nil {
		return time.Time{}, false
	}
	return *e.state, true
}

func (e *DateTime) update(m api.StateMessage) bool {
	s, ok := m.(*api.DateTimeStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if s.MissingState {
		e.state = nil
	} else {
		t := time.Unix(int64(s.EpochSeconds), 0).UTC()
		e.state = &t
	}
	return true
}

func (e *DateTime) FormattedState() string {
	if t, ok := e.State(); ok {
		return t.Format(time.RFC3339)
	}
	return "-"
}

func (e *DateTime) StateValue() any {
	if t, ok := e.State(); ok {
		return t.Format(time.RFC3339)
	}
	return nil
}

func (e *DateTime) Set(t time.Time) error {
	if t.Unix() < 0 || t.Unix() > int64(^uint32(0)) {
		return fmt.Errorf("%w: datetime %s", ErrInvalidValue, t)
	}
	return e.send(&api.DateTimeCommandRequest{Key: e.Key(), EpochSeconds: uint32(t.Unix())})
}
