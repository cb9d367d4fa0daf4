package device

import (
	"context"
	"errors"

	"esphome-go/internal/api"
)

// RunReadLoop reads and dispatches messages until the session ends. It
// returns nil after an orderly disconnect from either side, ctx.Err() when
// ctx is cancelled and the failure otherwise. Every read timeout sends a
// keepalive ping; timeouts alone never end the session.
func (d *Device) RunReadLoop(ctx context.Context) error {
	s, _, err := d.current()
	if err != nil {
		if d.closedByDisconnect() {
			return nil
		}
		return err
	}
	stop := context.AfterFunc(ctx, func() { s.fc.Close() })
	defer stop()

	for {
		m, err := d.read(s)
		if err != nil {
			if ctx.Err() != nil {
				d.teardown(s, ctx.Err())
				return ctx.Err()
			}
			if errors.Is(err, api.ErrTimeout) {
				if err := d.ping(s); err != nil {
					d.teardown(s, err)
					return err
				}
				continue
			}
			if !d.teardown(s, err) {
				// Disconnect closed the socket under us.
				return nil
			}
			return err
		}

		done, err := d.dispatch(s, m)
		if err != nil {
			d.teardown(s, err)
			return err
		}
		if done {
			return nil
		}
	}
}

// dispatch handles one inbound message. It reports whether the session
// ended in an orderly way.
func (d *Device) dispatch(s *session, m api.Message) (bool, error) {
	switch m := m.(type) {
	case *api.PingRequest:
		return false, d.sendOn(s, &api.PingResponse{})
	case *api.PingResponse:
		return false, nil
	case *api.GetTimeRequest:
		return false, d.sendOn(s, &api.GetTimeResponse{EpochSeconds: uint32(d.now().Unix())})
	case *api.DisconnectRequest:
		if err := d.sendOn(s, &api.DisconnectResponse{}); err != nil {
			d.logger.Debug("disconnect response not sent", "err", err)
		}
		d.teardown(s, nil)
		return true, nil
	case *api.DisconnectResponse:
		d.teardown(s, nil)
		return true, nil
	case *api.SubscribeLogsResponse:
		d.notify(LogLine{Level: m.Level, Message: string(m.Message), SendFailed: m.SendFailed})
	case *api.HomeassistantServiceResponse:
		d.notify(classifyService(m))
	case *api.SubscribeHomeAssistantStateResponse:
		d.notify(StateSubscription{EntityID: m.EntityID, Attribute: m.Attribute, Once: m.Once})
	case api.StateMessage:
		reg := d.Registry()
		if reg != nil {
			if e, ok := reg.Apply(m.StateKey(), m); ok {
				d.notify(EntityUpdate{Entity: e, Message: m})
				return false, nil
			}
		}
		d.notify(RawMessage{Message: m})
	default:
		d.notify(RawMessage{Message: m})
	}
	return false, nil
}

// closedByDisconnect reports whether the last session ended through
// Disconnect rather than a failure.
func (d *Device) closedByDisconnect() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.sess == nil && d.closed
}
