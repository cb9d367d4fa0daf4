package device

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"esphome-go/internal/api"
)

func TestClassifyService(t *testing.T) {
	kv := func(pairs ...string) []api.HomeassistantServiceMap {
		var out []api.HomeassistantServiceMap
		for i := 0; i < len(pairs); i += 2 {
			out = append(out, api.HomeassistantServiceMap{Key: pairs[i], Value: pairs[i+1]})
		}
		return out
	}
	empty := map[string]string{}

	tests := []struct {
		name string
		in   *api.HomeassistantServiceResponse
		want Unit
	}{
		{
			name: "action",
			in:   &api.HomeassistantServiceResponse{Service: "light.turn_on", Data: kv("entity_id", "light.hall")},
			want: Action{
				Service:      "light.turn_on",
				Data:         map[string]string{"entity_id": "light.hall"},
				DataTemplate: empty,
				Variables:    empty,
			},
		},
		{
			name: "event",
			in:   &api.HomeassistantServiceResponse{Service: "esphome.button_pressed", IsEvent: true, Data: kv("n", "2")},
			want: Event{
				Event:        "esphome.button_pressed",
				Data:         map[string]string{"n": "2"},
				DataTemplate: empty,
				Variables:    empty,
			},
		},
		{
			name: "tag scanned",
			in:   &api.HomeassistantServiceResponse{Service: "esphome.tag_scanned", IsEvent: true, Data: kv("tag_id", "04-A1")},
			want: TagScanned{TagID: "04-A1"},
		},
		{
			name: "tag event with extra data",
			in: &api.HomeassistantServiceResponse{
				Service: "esphome.tag_scanned",
				IsEvent: true,
				Data:    kv("tag_id", "04-A1", "reader", "door"),
			},
			want: Event{
				Event:        "esphome.tag_scanned",
				Data:         map[string]string{"tag_id": "04-A1", "reader": "door"},
				DataTemplate: empty,
				Variables:    empty,
			},
		},
		{
			name: "tag service that is not an event",
			in:   &api.HomeassistantServiceResponse{Service: "esphome.tag_scanned", Data: kv("tag_id", "04-A1")},
			want: Action{
				Service:      "esphome.tag_scanned",
				Data:         map[string]string{"tag_id": "04-A1"},
				DataTemplate: empty,
				Variables:    empty,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, classifyService(tt.in)); diff != "" {
				t.Errorf("classifyService mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEventBus(t *testing.T) {
	bus := NewEventBus(testLogger())

	var logs, all []string
	unsubscribe := bus.On(UnitLogLine, func(n Notification) {
		logs = append(logs, n.Data.(LogLine).Message)
	})
	bus.OnAll(func(n Notification) { all = append(all, n.Type) })
	bus.On(UnitLogLine, func(Notification) { panic("handler bug") })

	var d Observer = bus
	d.OnConnect()
	d.OnMessage(LogLine{Message: "one"})
	unsubscribe()
	d.OnMessage(LogLine{Message: "two"})
	d.OnDisconnect(errors.New("lost"))

	if diff := cmp.Diff([]string{"one"}, logs); diff != "" {
		t.Errorf("log handler (-want +got):\n%s", diff)
	}
	want := []string{NotifyConnected, UnitLogLine, UnitLogLine, NotifyDisconnected}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("all handler (-want +got):\n%s", diff)
	}
}

func TestEventBusDisconnectCarriesError(t *testing.T) {
	bus := NewEventBus(testLogger())
	var got Notification
	bus.On(NotifyDisconnected, func(n Notification) { got = n })

	cause := errors.New("connection reset by peer")
	bus.OnDisconnect(cause)
	if err, _ := got.Data.(error); !errors.Is(err, cause) {
		t.Errorf("Data = %v, want %v", got.Data, cause)
	}

	bus.OnDisconnect(nil)
	if got.Data != nil {
		t.Errorf("orderly disconnect Data = %v, want nil", got.Data)
	}
}

func TestForward(t *testing.T) {
	bus := NewEventBus(testLogger())
	var got []string
	bus.OnAll(Forward(&funcObserver{
		onConnect:    func() { got = append(got, "connect") },
		onDisconnect: func(err error) { got = append(got, "disconnect "+errString(err)) },
		onMessage:    func(u Unit) { got = append(got, u.UnitType()) },
	}))

	bus.OnConnect()
	bus.OnMessage(TagScanned{TagID: "1"})
	bus.OnDisconnect(nil)
	bus.OnDisconnect(errors.New("lost"))

	want := []string{"connect", UnitTagScanned, "disconnect <nil>", "disconnect lost"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("forwarded (-want +got):\n%s", diff)
	}
}

func errString(err error) string {
	if err == nil {
		return "<nil>"
	}
	return err.Error()
}

func TestNotificationFields(t *testing.T) {
	tests := []struct {
		name string
		in   Notification
		want map[string]any
	}{
		{
			name: "log",
			in:   Notification{Type: UnitLogLine, Data: LogLine{Level: api.LogLevelWarn, Message: "low heap"}},
			want: map[string]any{"type": "log", "level": "warn", "message": "low heap"},
		},
		{
			name: "tag",
			in:   Notification{Type: UnitTagScanned, Data: TagScanned{TagID: "04-A1"}},
			want: map[string]any{"type": "tag_scanned", "tag_id": "04-A1"},
		},
		{
			name: "disconnect with error",
			in:   Notification{Type: NotifyDisconnected, Data: errors.New("lost")},
			want: map[string]any{"type": "disconnected", "error": "lost"},
		},
		{
			name: "orderly disconnect",
			in:   Notification{Type: NotifyDisconnected},
			want: map[string]any{"type": "disconnected"},
		},
		{
			name: "raw",
			in:   Notification{Type: UnitRaw, Data: RawMessage{Message: &api.PingRequest{}}},
			want: map[string]any{"type": "raw", "message_type": uint16(7)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, tt.in.Fields()); diff != "" {
				t.Errorf("Fields (-want +got):\n%s", diff)
			}
		})
	}
}
