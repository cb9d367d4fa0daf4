package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"esphome-go/internal/api"
	"esphome-go/internal/device"
	"esphome-go/internal/entity"
)

type fakeSource struct {
	addr  string
	stats device.Stats
}

func (f fakeSource) Address() string     { return f.addr }
func (f fakeSource) Stats() device.Stats { return f.stats }

func metricCounterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	if m.Counter == nil {
		t.Fatal("expected counter metric to have Counter field")
	}
	return m.GetCounter().GetValue()
}

func metricGaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	if m.Gauge == nil {
		t.Fatal("expected gauge metric to have Gauge field")
	}
	return m.GetGauge().GetValue()
}

// gathered returns the value of every sample of family name, keyed by its
// address label.
func gathered(t *testing.T, reg *prometheus.Registry, name string) map[string]float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	out := make(map[string]float64)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			var addr string
			for _, l := range m.GetLabel() {
				if l.GetName() == "address" {
					addr = l.GetValue()
				}
			}
			switch {
			case m.Counter != nil:
				out[addr] = m.GetCounter().GetValue()
			case m.Gauge != nil:
				out[addr] = m.GetGauge().GetValue()
			}
		}
	}
	return out
}

func TestObserverCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(nil, WithRegistry(reg))

	sw, err := entity.New(&api.ListEntitiesSwitchResponse{
		EntityInfo: api.EntityInfo{ObjectID: "relay", Key: 1, Name: "Relay"},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	m.OnConnect()
	m.OnMessage(device.EntityUpdate{Entity: sw, Message: &api.SwitchStateResponse{Key: 1, State: true}})
	m.OnMessage(device.EntityUpdate{Entity: sw, Message: &api.SwitchStateResponse{Key: 1}})
	m.OnMessage(device.LogLine{Level: api.LogLevelWarn, Message: "low heap"})
	m.OnMessage(device.TagScanned{TagID: "04-A1"})

	if got := metricGaugeValue(t, m.connected); got != 1 {
		t.Errorf("sessions_connected = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.units.WithLabelValues(device.UnitEntityUpdate)); got != 2 {
		t.Errorf("units_total(entity_update) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.entityUpdates.WithLabelValues("switch")); got != 2 {
		t.Errorf("entity_updates_total(switch) = %v, want 2", got)
	}
	if got := metricCounterValue(t, m.logLines.WithLabelValues(api.LogLevelWarn.String())); got != 1 {
		t.Errorf("log_lines_total = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.units.WithLabelValues(device.UnitTagScanned)); got != 1 {
		t.Errorf("units_total(tag_scanned) = %v, want 1", got)
	}

	m.OnDisconnect(errors.New("connection reset by peer"))
	m.OnConnect()
	m.OnDisconnect(nil)
	if got := metricGaugeValue(t, m.connected); got != 0 {
		t.Errorf("sessions_connected = %v, want 0", got)
	}
	if got := metricCounterValue(t, m.disconnects.WithLabelValues("error")); got != 1 {
		t.Errorf("disconnects_total(error) = %v, want 1", got)
	}
	if got := metricCounterValue(t, m.disconnects.WithLabelValues("orderly")); got != 1 {
		t.Errorf("disconnects_total(orderly) = %v, want 1", got)
	}
}

func TestSessionCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	now := time.Unix(1700000000, 0)
	New([]StatsSource{
		fakeSource{addr: "kitchen:6053", stats: device.Stats{
			Connected:    true,
			FramesRx:     12,
			FramesTx:     7,
			PingsSent:    2,
			Connects:     3,
			Reconnects:   2,
			LastActivity: now,
		}},
		fakeSource{addr: "porch:6053", stats: device.Stats{HandshakeFailures: 4}},
	}, WithRegistry(reg), WithNamespace("test"))

	tests := []struct {
		name string
		addr string
		want float64
	}{
		{"test_session_connected", "kitchen:6053", 1},
		{"test_session_connected", "porch:6053", 0},
		{"test_session_frames_received_total", "kitchen:6053", 12},
		{"test_session_frames_sent_total", "kitchen:6053", 7},
		{"test_session_pings_sent_total", "kitchen:6053", 2},
		{"test_session_reconnects_total", "kitchen:6053", 2},
		{"test_session_handshake_failures_total", "porch:6053", 4},
		{"test_session_last_activity_timestamp_seconds", "kitchen:6053", 1700000000},
	}
	for _, tt := range tests {
		got, ok := gathered(t, reg, tt.name)[tt.addr]
		if !ok {
			t.Errorf("%s{address=%q} missing", tt.name, tt.addr)
			continue
		}
		if got != tt.want {
			t.Errorf("%s{address=%q} = %v, want %v", tt.name, tt.addr, got, tt.want)
		}
	}

	if _, ok := gathered(t, reg, "test_session_last_activity_timestamp_seconds")["porch:6053"]; ok {
		t.Error("last activity exported for a device that never sent a frame")
	}
}
