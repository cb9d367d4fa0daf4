package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// RetryPolicy decides how long to wait before the next connection attempt.
// failures counts consecutive failed attempts, starting at 1. Returning
// false gives up.
type RetryPolicy interface {
	NextDelay(failures int) (time.Duration, bool)
}

const defaultRetryDelay = 5 * time.Second

// FixedDelay waits the same time between attempts. Zero MaxAttempts
// retries forever.
type FixedDelay struct {
	Delay       time.Duration
	MaxAttempts int
}

func (p FixedDelay) NextDelay(failures int) (time.Duration, bool) {
	if p.MaxAttempts > 0 && failures >= p.MaxAttempts {
		return 0, false
	}
	if p.Delay <= 0 {
		return defaultRetryDelay, true
	}
	return p.Delay, true
}

// ExponentialBackoff multiplies the delay by Factor after each failure,
// between Min and Max. A zero Min starts at five seconds.
type ExponentialBackoff struct {
	Min         time.Duration
	Max         time.Duration
	Factor      float64
	MaxAttempts int
}

func (p ExponentialBackoff) NextDelay(failures int) (time.Duration, bool) {
	if p.MaxAttempts > 0 && failures >= p.MaxAttempts {
		return 0, false
	}
	factor := p.Factor
	if factor < 1 {
		factor = 2
	}
	base := p.Min
	if base <= 0 {
		base = defaultRetryDelay
	}
	d := base
	for i := 1; i < failures && (p.Max <= 0 || d < p.Max); i++ {
		d = time.Duration(float64(d) * factor)
	}
	if p.Max > 0 && d > p.Max {
		d = p.Max
	}
	if d <= 0 {
		d = base
	}
	return d, true
}

// SetupFunc runs after each successful Connect, before the read loop; it
// typically lists entities and starts the streams.
type SetupFunc func(ctx context.Context, d *Device) error

// Supervisor keeps a device connected: Connect, setup, RunReadLoop, and
// on any end of the session wait per the retry policy and start again.
type Supervisor struct {
	device *Device
	policy RetryPolicy
	setup  SetupFunc
	logger *slog.Logger
}

// NewSupervisor creates a supervisor. A nil policy is FixedDelay{}; a nil
// setup does nothing.
func NewSupervisor(d *Device, policy RetryPolicy, setup SetupFunc, logger *slog.Logger) *Supervisor {
	if policy == nil {
		policy = FixedDelay{}
	}
	return &Supervisor{
		device: d,
		policy: policy,
		setup:  setup,
		logger: logger.With("component", "supervisor", "address", d.Address()),
	}
}

// Run blocks until ctx is cancelled, the policy gives up, or the device
// rejects the password.
func (s *Supervisor) Run(ctx context.Context) error {
	failures := 0
	for {
		ready, err := s.runSession(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if errors.Is(err, ErrAuthentication) {
			s.logger.Error("authentication failed, not retrying", "err", err)
			return err
		}
		if ready {
			failures = 1
		} else {
			failures++
		}

		delay, ok := s.policy.NextDelay(failures)
		if !ok {
			return fmt.Errorf("device: giving up after %d attempts: %w", failures, err)
		}
		if err != nil {
			s.logger.Warn("session ended", "err", err, "retry_in", delay, "attempt", failures)
		} else {
			s.logger.Info("session ended", "retry_in", delay)
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// runSession reports whether the session reached the read loop.
func (s *Supervisor) runSession(ctx context.Context) (bool, error) {
	if err := s.device.Connect(ctx); err != nil {
		return false, err
	}
	if s.setup != nil {
		if err := s.setup(ctx, s.device); err != nil {
			err = fmt.Errorf("setup: %w", err)
			s.device.abort(err)
			return false, err
		}
	}
	return true, s.device.RunReadLoop(ctx)
}
