package device

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"esphome-go/internal/api"
	"esphome-go/internal/api/apitest"
)

func TestFixedDelay(t *testing.T) {
	tests := []struct {
		name     string
		policy   FixedDelay
		failures int
		want     time.Duration
		ok       bool
	}{
		{"default", FixedDelay{}, 1, defaultRetryDelay, true},
		{"configured", FixedDelay{Delay: time.Second}, 7, time.Second, true},
		{"below limit", FixedDelay{Delay: time.Second, MaxAttempts: 3}, 2, time.Second, true},
		{"limit reached", FixedDelay{Delay: time.Second, MaxAttempts: 3}, 3, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.policy.NextDelay(tt.failures)
			if got != tt.want || ok != tt.ok {
				t.Errorf("NextDelay(%d) = %v, %v; want %v, %v", tt.failures, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestExponentialBackoff(t *testing.T) {
	p := ExponentialBackoff{Min: 100 * time.Millisecond, Max: time.Second}
	want := []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
		800 * time.Millisecond,
		time.Second,
		time.Second,
	}
	for i, w := range want {
		got, ok := p.NextDelay(i + 1)
		if !ok || got != w {
			t.Errorf("NextDelay(%d) = %v, %v; want %v", i+1, got, ok, w)
		}
	}

	p = ExponentialBackoff{Min: time.Second, Factor: 3, MaxAttempts: 3}
	if got, _ := p.NextDelay(2); got != 3*time.Second {
		t.Errorf("factor 3: NextDelay(2) = %v, want 3s", got)
	}
	if _, ok := p.NextDelay(3); ok {
		t.Error("NextDelay past MaxAttempts kept retrying")
	}

	// A zero Min must not make the supervisor spin.
	p = ExponentialBackoff{}
	for i := 1; i <= 3; i++ {
		if got, ok := p.NextDelay(i); !ok || got < defaultRetryDelay {
			t.Errorf("zero Min: NextDelay(%d) = %v, %v", i, got, ok)
		}
	}
	p = ExponentialBackoff{Max: time.Second}
	if got, _ := p.NextDelay(1); got != time.Second {
		t.Errorf("zero Min, 1s Max: NextDelay(1) = %v, want 1s", got)
	}
}

func TestSupervisorReconnects(t *testing.T) {
	stub := startStub(t, apitest.Config{
		Entities:          []api.EntityDescriptor{switchEntity()},
		RejectConnections: 1,
	})
	d := newTestDevice(stub)
	connected := make(chan struct{}, 4)
	d.OnConnect(func() { connected <- struct{}{} })

	var setups int
	setup := func(ctx context.Context, d *Device) error {
		setups++
		if _, err := d.Entities(); err != nil {
			return err
		}
		return d.StreamStates()
	}
	sup := NewSupervisor(d, FixedDelay{Delay: 10 * time.Millisecond}, setup, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sup.Run(ctx) }()

	waitConnected := func() {
		t.Helper()
		select {
		case <-connected:
		case <-time.After(3 * time.Second):
			t.Fatal("supervisor did not connect")
		}
	}

	// The first connection is refused; the retry gets through.
	waitConnected()
	if got := stub.Connections(); got != 2 {
		t.Errorf("connections = %d, want 2", got)
	}

	// A dropped session is re-established.
	stub.DropConnection()
	waitConnected()
	if got := d.Stats().Reconnects; got != 1 {
		t.Errorf("Reconnects = %d, want 1", got)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if setups != 2 {
		t.Errorf("setup ran %d times, want 2", setups)
	}
}

func TestSupervisorStopsOnAuthenticationFailure(t *testing.T) {
	stub := startStub(t, apitest.Config{Password: "secret"})
	d := newTestDevice(stub)
	sup := NewSupervisor(d, FixedDelay{Delay: time.Millisecond}, nil, testLogger())

	err := sup.Run(context.Background())
	if !errors.Is(err, ErrAuthentication) {
		t.Fatalf("Run = %v, want ErrAuthentication", err)
	}
	if got := stub.Connections(); got != 1 {
		t.Errorf("connections = %d, want 1", got)
	}
}

func TestSupervisorGivesUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	d := New(Config{Address: "127.0.0.1", Port: port, PSK: testPSK()}, testLogger())
	sup := NewSupervisor(d, FixedDelay{Delay: time.Millisecond, MaxAttempts: 3}, nil, testLogger())

	err = sup.Run(context.Background())
	if err == nil || !strings.Contains(err.Error(), "giving up after 3 attempts") {
		t.Fatalf("Run = %v, want giving up", err)
	}
	if !errors.Is(err, api.ErrTransport) {
		t.Errorf("Run = %v, want wrapped ErrTransport", err)
	}
}

func TestSupervisorSetupFailureDropsSession(t *testing.T) {
	stub := startStub(t, apitest.Config{})
	d := newTestDevice(stub)
	disconnected := make(chan error, 4)
	d.OnDisconnect(func(err error) { disconnected <- err })

	boom := errors.New("boom")
	setup := func(context.Context, *Device) error { return boom }
	sup := NewSupervisor(d, FixedDelay{Delay: time.Millisecond, MaxAttempts: 1}, setup, testLogger())

	err := sup.Run(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Run = %v, want setup error", err)
	}
	select {
	case got := <-disconnected:
		if !errors.Is(got, boom) {
			t.Errorf("OnDisconnect(%v), want setup error", got)
		}
	case <-time.After(time.Second):
		t.Fatal("OnDisconnect not called")
	}
	if d.State() != StateDisconnected {
		t.Errorf("State() = %v", d.State())
	}
}
