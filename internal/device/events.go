package device

import (
	"log/slog"
	"sync"
)

// Notification types besides the unit types.
const (
	NotifyConnected    = "connected"
	NotifyDisconnected = "disconnected"
)

// Notification is what EventBus handlers receive. Data is the Unit for
// unit types, nil for NotifyConnected and the error (possibly nil) for
// NotifyDisconnected.
type Notification struct {
	Type string `json:"type"`
	Data any    `json:"data"`
}

// NotificationHandler is a callback for notifications.
type NotificationHandler func(Notification)

// EventBus is an Observer that fans session events out to any number of
// subscribers.
type EventBus struct {
	mu          sync.RWMutex
	handlers    map[string]map[uint64]NotificationHandler
	allHandlers map[uint64]NotificationHandler
	nextID      uint64
	logger      *slog.Logger
}

// NewEventBus creates a new event bus.
func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		handlers:    make(map[string]map[uint64]NotificationHandler),
		allHandlers: make(map[uint64]NotificationHandler),
		logger:      logger.With("component", "events"),
	}
}

// On registers a handler for a specific notification type.
// Returns an unsubscribe function.
func (eb *EventBus) On(typ string, handler NotificationHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	id := eb.nextID
	eb.nextID++
	if eb.handlers[typ] == nil {
		eb.handlers[typ] = make(map[uint64]NotificationHandler)
	}
	eb.handlers[typ][id] = handler
	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		delete(eb.handlers[typ], id)
	}
}

// OnAll registers a handler that receives every notification.
// Returns an unsubscribe function.
func (eb *EventBus) OnAll(handler NotificationHandler) func() {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	id := eb.nextID
	eb.nextID++
	eb.allHandlers[id] = handler
	return func() {
		eb.mu.Lock()
		defer eb.mu.Unlock()
		delete(eb.allHandlers, id)
	}
}

// Emit sends n to all matching handlers.
// Handlers are called synchronously; a panicking handler is recovered.
func (eb *EventBus) Emit(n Notification) {
	eb.mu.RLock()
	handlers := make([]NotificationHandler, 0, len(eb.handlers[n.Type])+len(eb.allHandlers))
	for _, h := range eb.handlers[n.Type] {
		handlers = append(handlers, h)
	}
	for _, h := range eb.allHandlers {
		handlers = append(handlers, h)
	}
	eb.mu.RUnlock()

	for _, h := range handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					eb.logger.Error("event handler panic", "type", n.Type, "panic", r)
				}
			}()
			h(n)
		}()
	}
}

func (eb *EventBus) OnConnect()             { eb.Emit(Notification{Type: NotifyConnected}) }
func (eb *EventBus) OnDisconnect(err error) { eb.Emit(Notification{Type: NotifyDisconnected, Data: err}) }
func (eb *EventBus) OnMessage(u Unit)       { eb.Emit(Notification{Type: u.UnitType(), Data: u}) }

// Forward returns a handler that replays notifications onto o, so an
// Observer can sit on a bus next to other subscribers.
func Forward(o Observer) NotificationHandler {
	return func(n Notification) {
		switch n.Type {
		case NotifyConnected:
			o.OnConnect()
		case NotifyDisconnected:
			err, _ := n.Data.(error)
			o.OnDisconnect(err)
		default:
			if u, ok := n.Data.(Unit); ok {
				o.OnMessage(u)
			}
		}
	}
}

// Fields flattens n into JSON and script friendly values. Raw messages
// carry only their message type.
func (n Notification) Fields() map[string]any {
	f := map[string]any{"type": n.Type}
	switch d := n.Data.(type) {
	case error:
		f["error"] = d.Error()
	case EntityUpdate:
		info := d.Entity.Info()
		f["key"] = d.Entity.Key()
		f["kind"] = string(d.Entity.Kind())
		f["object_id"] = info.ObjectID
		f["name"] = info.Name
		f["state"] = d.Entity.StateValue()
		f["formatted"] = d.Entity.FormattedState()
	case LogLine:
		f["level"] = d.Level.String()
		f["message"] = d.Message
	case Action:
		f["service"] = d.Service
		f["data"] = d.Data
		f["data_template"] = d.DataTemplate
		f["variables"] = d.Variables
	case Event:
		f["event"] = d.Event
		f["data"] = d.Data
		f["data_template"] = d.DataTemplate
		f["variables"] = d.Variables
	case TagScanned:
		f["tag_id"] = d.TagID
	case StateSubscription:
		f["entity_id"] = d.EntityID
		f["attribute"] = d.Attribute
		f["once"] = d.Once
	case RawMessage:
		f["message_type"] = d.Message.MessageType()
	}
	return f
}
