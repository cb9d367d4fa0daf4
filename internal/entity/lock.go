package entity

import (
	"fmt"

	"esphome-go/internal/api"
)

type Lock struct {
	Base
	HasAssumedState
	supportsOpen bool
	requiresCode bool
	codeFormat   string

	state api.LockState
}

func newLock(d *api.ListEntitiesLockResponse, sender Sender) *Lock {
	e := &Lock{
		HasAssumedState: HasAssumedState{d.AssumedState},
		supportsOpen:    d.SupportsOpen,
		requiresCode:    d.RequiresCode,
		codeFormat:      d.CodeFormat,
	}
	e.init(d, sender)
	return e
}

func (e *Lock) SupportsOpen() bool { return e.supportsOpen }
func (e *Lock) RequiresCode() bool { return e.requiresCode }
func (e *Lock) CodeFormat() string { return e.codeFormat }

// State returns the lock state. LockStateNone is reported as unknown.
func (e *Lock) State() (api.LockState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state, e.state != api.LockStateNone
}

func (e *Lock) update(m api.StateMessage) bool {
	s, ok := m.(*api.LockStateResponse)
	if !ok {
		return false
	}
	e.mu.Lock()
	e.state = s.State
	e.mu.Unlock()
	return true
}

func (e *Lock) FormattedState() string {
	if s, ok := e.State(); ok {
		return s.String()
	}
	return "-"
}

func (e *Lock) StateValue() any {
	if s, ok := e.State(); ok {
		return s.String()
	}
	return nil
}

// Command sends c with an optional code; an empty code is not sent.
func (e *Lock) Command(c api.LockCommand, code string) error {
	if c == api.LockCommandOpen && !e.supportsOpen {
		return fmt.Errorf("%w: lock %s cannot open", ErrInvalidValue, e.ObjectID())
	}
	req := &api.LockCommandRequest{Key: e.Key(), Command: c}
	if code != "" {
		req.HasCode, req.Code = true, code
	}
	return e.send(req)
}

func (e *Lock) Lock(code string) error   { return e.Command(api.LockCommandLock, code) }
func (e *Lock) Unlock(code string) error { return e.Command(api.LockCommandUnlock, code) }
func (e *Lock) Open(code string) error   { return e.Command(api.LockCommandOpen, code) }
