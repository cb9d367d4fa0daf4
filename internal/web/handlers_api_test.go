package web

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"esphome-go/internal/api"
	"esphome-go/internal/automation"
	"esphome-go/internal/device"
	"esphome-go/internal/entity"
	"esphome-go/internal/store"
)

// fakeNode is a connected device whose commands land in sent.
type fakeNode struct {
	reg     *entity.Registry
	sent    []api.Message
	sendErr error
}

func newFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	n := &fakeNode{}
	n.reg = entity.NewRegistry(n)
	for _, d := range []api.EntityDescriptor{
		&api.ListEntitiesSwitchResponse{EntityInfo: api.EntityInfo{Key: 1, ObjectID: "relay", Name: "Relay", Icon: "mdi:power"}},
		&api.ListEntitiesSensorResponse{EntityInfo: api.EntityInfo{Key: 2, ObjectID: "temperature", Name: "Temperature"}, UnitOfMeasurement: "°C", AccuracyDecimals: 1},
		&api.ListEntitiesButtonResponse{EntityInfo: api.EntityInfo{Key: 3, ObjectID: "restart", Name: "Restart", EntityCategory: api.EntityCategoryConfig}},
	} {
		if _, err := n.reg.Register(d); err != nil {
			t.Fatal(err)
		}
	}
	n.reg.Apply(2, &api.SensorStateResponse{Key: 2, State: 21.5})
	return n
}

func (n *fakeNode) Send(m api.Message) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.sent = append(n.sent, m)
	return nil
}

func (n *fakeNode) Address() string            { return "192.168.1.40:6053" }
func (n *fakeNode) State() device.State        { return device.StateReady }
func (n *fakeNode) Stats() device.Stats        { return device.Stats{Connected: true, Connects: 2, Reconnects: 1} }
func (n *fakeNode) Registry() *entity.Registry { return n.reg }

func (n *fakeNode) Info() (device.Info, bool) {
	return device.Info{Name: "porch", MACAddress: "AA:BB:CC:DD:EE:FF", ESPHomeVersion: "2024.6.0"}, true
}

// offlineNode has never connected.
type offlineNode struct{}

func (offlineNode) Address() string            { return "192.168.1.41:6053" }
func (offlineNode) State() device.State        { return device.StateDisconnected }
func (offlineNode) Info() (device.Info, bool)  { return device.Info{}, false }
func (offlineNode) Stats() device.Stats        { return device.Stats{} }
func (offlineNode) Registry() *entity.Registry { return nil }

func setupTestServer(t *testing.T, opts ...ServerOption) (*Server, *fakeNode, *store.BoltStore) {
	t.Helper()
	db, err := store.NewBoltStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	n := newFakeNode(t)
	opts = append([]ServerOption{
		WithNode("porch", n, device.NewEventBus(testLogger())),
		WithNode("garage", offlineNode{}, nil),
		WithStore(db),
		WithVersion("1.2.3"),
	}, opts...)
	srv := NewServer(testLogger(), opts...)
	t.Cleanup(srv.Stop)
	return srv, n, db
}

func do(t *testing.T, srv http.Handler, method, path, body string, header ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("decode %T: %v", v, err)
	}
	return v
}

func TestAPIListDevices(t *testing.T) {
	srv, _, db := setupTestServer(t)
	if err := db.SaveDevice(&store.Device{Address: "192.168.1.40:6053", Name: "porch", Online: true}); err != nil {
		t.Fatal(err)
	}

	w := do(t, srv, "GET", "/api/devices", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	devices := decode[[]deviceView](t, w)
	if len(devices) != 2 {
		t.Fatalf("devices = %d, want 2", len(devices))
	}

	garage, porch := devices[0], devices[1]
	if garage.Name != "garage" || garage.State != "disconnected" || garage.Info != nil || garage.Record != nil {
		t.Errorf("garage = %+v", garage)
	}
	if porch.Name != "porch" || porch.State != "ready" || porch.Entities != 3 {
		t.Errorf("porch = %+v", porch)
	}
	if porch.Info == nil || porch.Info.MACAddress != "AA:BB:CC:DD:EE:FF" {
		t.Errorf("porch info = %+v", porch.Info)
	}
	if porch.Record == nil || !porch.Record.Online {
		t.Errorf("porch record = %+v", porch.Record)
	}
	if !porch.Stats.Connected || porch.Stats.Reconnects != 1 || porch.Stats.LastActivity != nil {
		t.Errorf("porch stats = %+v", porch.Stats)
	}
}

func TestAPIGetDevice(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	w := do(t, srv, "GET", "/api/devices/porch", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[deviceView](t, w); got.Address != "192.168.1.40:6053" {
		t.Errorf("address = %q", got.Address)
	}

	if w := do(t, srv, "GET", "/api/devices/attic", ""); w.Code != http.StatusNotFound {
		t.Errorf("unknown device status = %d, want 404", w.Code)
	}
}

func TestAPIListEntities(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	w := do(t, srv, "GET", "/api/devices/porch/entities", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	want := []entityView{
		{Key: 3, Kind: api.KindButton, ObjectID: "restart", Name: "Restart", Category: "config", Formatted: "-"},
		{Key: 2, Kind: api.KindSensor, ObjectID: "temperature", Name: "Temperature", State: 21.5, Formatted: "21.5 °C"},
		{Key: 1, Kind: api.KindSwitch, ObjectID: "relay", Name: "Relay", Icon: "mdi:power", State: false, Formatted: "off"},
	}
	if diff := cmp.Diff(want, decode[[]entityView](t, w)); diff != "" {
		t.Errorf("entities (-want +got):\n%s", diff)
	}

	if w := do(t, srv, "GET", "/api/devices/garage/entities", ""); w.Code != http.StatusServiceUnavailable {
		t.Errorf("offline device status = %d, want 503", w.Code)
	}
}

func TestAPIGetEntity(t *testing.T) {
	srv, _, _ := setupTestServer(t)

	w := do(t, srv, "GET", "/api/devices/porch/entities/sensor/temperature", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decode[entityView](t, w); got.Formatted != "21.5 °C" {
		t.Errorf("formatted = %q", got.Formatted)
	}
	if w := do(t, srv, "GET", "/api/devices/porch/entities/switch/temperature", ""); w.Code != http.StatusNotFound {
		t.Errorf("wrong kind status = %d, want 404", w.Code)
	}
}

func TestAPIEntityCommand(t *testing.T) {
	srv, n, _ := setupTestServer(t)

	tests := []struct {
		name   string
		path   string
		body   string
		status int
	}{
		{"switch on", "/api/devices/porch/entities/switch/relay/command", `{"command":"on"}`, http.StatusAccepted},
		{"press", "/api/devices/porch/entities/button/restart/command", `{"command":"press"}`, http.StatusAccepted},
		{"bad word", "/api/devices/porch/entities/switch/relay/command", `{"command":"dim"}`, http.StatusBadRequest},
		{"read only", "/api/devices/porch/entities/sensor/temperature/command", `{"command":"on"}`, http.StatusMethodNotAllowed},
		{"bad body", "/api/devices/porch/entities/switch/relay/command", `on`, http.StatusBadRequest},
		{"unknown entity", "/api/devices/porch/entities/switch/fan/command", `{"command":"on"}`, http.StatusNotFound},
		{"offline", "/api/devices/garage/entities/switch/relay/command", `{"command":"on"}`, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if w := do(t, srv, "POST", tt.path, tt.body); w.Code != tt.status {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.status, w.Body)
			}
		})
	}

	want := []api.Message{&api.SwitchCommandRequest{Key: 1, State: true}, &api.ButtonCommandRequest{Key: 3}}
	if diff := cmp.Diff(want, n.sent); diff != "" {
		t.Errorf("sent (-want +got):\n%s", diff)
	}

	n.sendErr = device.ErrNotConnected
	if w := do(t, srv, "POST", "/api/devices/porch/entities/switch/relay/command", `{"command":"off"}`); w.Code != http.StatusServiceUnavailable {
		t.Errorf("send while disconnected status = %d, want 503", w.Code)
	}
}

func TestAPIInventory(t *testing.T) {
	srv, _, db := setupTestServer(t)
	for _, addr := range []string{"10.0.0.2:6053", "10.0.0.1:6053"} {
		if err := db.SaveDevice(&store.Device{Address: addr, Name: addr, LastSeen: time.Unix(1700000000, 0).UTC()}); err != nil {
			t.Fatal(err)
		}
	}

	w := do(t, srv, "GET", "/api/inventory", "")
	devices := decode[[]store.Device](t, w)
	if len(devices) != 2 || devices[0].Address != "10.0.0.1:6053" {
		t.Fatalf("inventory = %+v", devices)
	}

	if w := do(t, srv, "DELETE", "/api/inventory/10.0.0.1:6053", ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/inventory/10.0.0.1:6053", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
	if _, err := db.GetDevice("10.0.0.2:6053"); err != nil {
		t.Errorf("other device gone: %v", err)
	}
}

func TestAPIKeyRequired(t *testing.T) {
	srv, _, _ := setupTestServer(t, WithAPIKey("s3cret"))

	if w := do(t, srv, "GET", "/api/version", ""); w.Code != http.StatusUnauthorized {
		t.Errorf("without key status = %d, want 401", w.Code)
	}
	if w := do(t, srv, "GET", "/api/version", "", "X-API-Key", "wrong"); w.Code != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d, want 401", w.Code)
	}
	w := do(t, srv, "GET", "/api/version", "", "X-API-Key", "s3cret")
	if w.Code != http.StatusOK {
		t.Fatalf("with key status = %d", w.Code)
	}
	if got := decode[map[string]string](t, w); got["version"] != "1.2.3" {
		t.Errorf("version = %v", got)
	}
}

func TestCORS(t *testing.T) {
	srv, _, _ := setupTestServer(t, WithAllowedOrigins([]string{"http://dash.local"}))

	w := do(t, srv, "OPTIONS", "/api/devices", "", "Origin", "http://dash.local")
	if w.Code != http.StatusNoContent || w.Header().Get("Access-Control-Allow-Origin") != "http://dash.local" {
		t.Errorf("preflight = %d %v", w.Code, w.Header())
	}
	if w := do(t, srv, "OPTIONS", "/api/devices", "", "Origin", "http://evil.example"); w.Code != http.StatusForbidden {
		t.Errorf("foreign preflight status = %d, want 403", w.Code)
	}
	w = do(t, srv, "POST", "/api/devices/porch/entities/switch/relay/command", `{"command":"on"}`, "Origin", "http://evil.example")
	if w.Code != http.StatusForbidden {
		t.Errorf("foreign POST status = %d, want 403", w.Code)
	}
	if w := do(t, srv, "GET", "/api/devices", "", "Origin", "http://evil.example"); w.Code != http.StatusOK {
		t.Errorf("foreign GET status = %d, want 200", w.Code)
	}
}

func TestMetricsMounted(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "esphome_sessions_connected 1\n")
	})
	srv, _, _ := setupTestServer(t, WithMetrics(h), WithAPIKey("k"))

	w := do(t, srv, "GET", "/metrics", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "esphome_sessions_connected") {
		t.Errorf("metrics = %d %q", w.Code, w.Body)
	}
}

func TestAPIAutomations(t *testing.T) {
	mgr, err := automation.NewManager(filepath.Join(t.TempDir(), "scripts"))
	if err != nil {
		t.Fatal(err)
	}
	engine := automation.NewEngine(mgr, automation.Config{}, testLogger())
	t.Cleanup(engine.Stop)
	srv, _, _ := setupTestServer(t, WithAutomation(engine, mgr))

	w := do(t, srv, "POST", "/api/automations", `{"name":"Night Mode","lua_code":"esphome.log('hi')","enabled":true}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	created := decode[map[string]any](t, w)
	if created["id"] != "night_mode" || created["running"] != true {
		t.Errorf("created = %v", created)
	}

	if w := do(t, srv, "POST", "/api/automations", `{"lua_code":"x"}`); w.Code != http.StatusBadRequest {
		t.Errorf("nameless create status = %d, want 400", w.Code)
	}

	w = do(t, srv, "POST", "/api/automations/night_mode/toggle", "")
	if got := decode[map[string]any](t, w); got["running"] != false {
		t.Errorf("after toggle = %v", got)
	}

	w = do(t, srv, "POST", "/api/automations/night_mode/run", "")
	if got := decode[automation.RunResult](t, w); !got.OK || len(got.Logs) != 1 || got.Logs[0] != "hi" {
		t.Errorf("run = %+v", got)
	}

	body, _ := json.Marshal(map[string]string{"lua_code": `esphome.log(#esphome.devices())`})
	w = do(t, srv, "POST", "/api/automations/_inline/run", string(body))
	if got := decode[automation.RunResult](t, w); !got.OK || len(got.Logs) != 1 || got.Logs[0] != "0" {
		t.Errorf("inline run = %+v", got)
	}

	w = do(t, srv, "GET", "/api/automations", "")
	if got := decode[[]map[string]any](t, w); len(got) != 1 {
		t.Errorf("list = %v", got)
	}

	if w := do(t, srv, "DELETE", "/api/automations/night_mode", ""); w.Code != http.StatusOK {
		t.Errorf("delete status = %d", w.Code)
	}
	if w := do(t, srv, "DELETE", "/api/automations/night_mode", ""); w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}
