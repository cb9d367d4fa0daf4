package device

import (
	"esphome-go/internal/api"
	"esphome-go/internal/entity"
)

// Observer receives session events. All calls are made synchronously on
// the goroutine running the read loop, in wire order; a slow observer
// stalls the session.
type Observer interface {
	OnConnect()
	// OnDisconnect is called once per session. err is nil after an
	// orderly disconnect.
	OnDisconnect(err error)
	OnMessage(u Unit)
}

// Unit is one inbound item delivered to observers.
type Unit interface {
	UnitType() string
}

// Unit types, as used for EventBus subscriptions.
const (
	UnitEntityUpdate      = "entity_update"
	UnitLogLine           = "log"
	UnitAction            = "action"
	UnitEvent             = "event"
	UnitTagScanned        = "tag_scanned"
	UnitStateSubscription = "ha_state_subscription"
	UnitRaw               = "raw"
)

// EntityUpdate reports that an entity's state changed.
type EntityUpdate struct {
	Entity  entity.Entity
	Message api.StateMessage
}

// LogLine is one line of the device log.
type LogLine struct {
	Level      api.LogLevel
	Message    string
	SendFailed bool
}

// Action is a Home Assistant service call requested by the device.
type Action struct {
	Service      string
	Data         map[string]string
	DataTemplate map[string]string
	Variables    map[string]string
}

// Event is a Home Assistant event fired by the device.
type Event struct {
	Event        string
	Data         map[string]string
	DataTemplate map[string]string
	Variables    map[string]string
}

// TagScanned is the reserved esphome.tag_scanned event.
type TagScanned struct {
	TagID string
}

// StateSubscription asks the client to forward a Home Assistant entity
// state, or one of its attributes, with SendHomeAssistantState.
type StateSubscription struct {
	EntityID  string
	Attribute string
	Once      bool
}

// RawMessage carries any message the session does not interpret.
type RawMessage struct {
	Message api.Message
}

func (EntityUpdate) UnitType() string      { return UnitEntityUpdate }
func (LogLine) UnitType() string           { return UnitLogLine }
func (Action) UnitType() string            { return UnitAction }
func (Event) UnitType() string             { return UnitEvent }
func (TagScanned) UnitType() string        { return UnitTagScanned }
func (StateSubscription) UnitType() string { return UnitStateSubscription }
func (RawMessage) UnitType() string        { return UnitRaw }

const tagScannedService = "esphome.tag_scanned"

// classifyService turns a service call into an Action, Event or
// TagScanned unit.
func classifyService(m *api.HomeassistantServiceResponse) Unit {
	data := serviceMap(m.Data)
	if !m.IsEvent {
		return Action{
			Service:      m.Service,
			Data:         data,
			DataTemplate: serviceMap(m.DataTemplate),
			Variables:    serviceMap(m.Variables),
		}
	}
	if m.Service == tagScannedService && len(m.Data) == 1 && m.Data[0].Key == "tag_id" &&
		len(m.DataTemplate) == 0 && len(m.Variables) == 0 {
		return TagScanned{TagID: m.Data[0].Value}
	}
	return Event{
		Event:        m.Service,
		Data:         data,
		DataTemplate: serviceMap(m.DataTemplate),
		Variables:    serviceMap(m.Variables),
	}
}

func serviceMap(kvs []api.HomeassistantServiceMap) map[string]string {
	out := make(map[string]string, len(kvs))
	for _, kv := range kvs {
		out[kv.Key] = kv.Value
	}
	return out
}

// funcObserver adapts individual callbacks to Observer.
type funcObserver struct {
	onConnect    func()
	onDisconnect func(error)
	onMessage    func(Unit)
}

func (f *funcObserver) OnConnect() {
	if f.onConnect != nil {
		f.onConnect()
	}
}

func (f *funcObserver) OnDisconnect(err error) {
	if f.onDisconnect != nil {
		f.onDisconnect(err)
	}
}

func (f *funcObserver) OnMessage(u Unit) {
	if f.onMessage != nil {
		f.onMessage(u)
	}
}
