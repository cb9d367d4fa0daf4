package api

import (
	"google.golang.org/protobuf/encoding/protowire"
)

// Message is one typed native-API message. The set is closed: only types
// in this package implement it, and every one has an entry in the id table.
type Message interface {
	// MessageType is the wire identifier of the message.
	MessageType() uint16

	marshal(e *encoder)
	unmarshal(b []byte) error
}

// StateMessage is a state response addressed to an entity by key.
type StateMessage interface {
	Message
	StateKey() uint32
}

// EntityDescriptor is a list-entities response describing one entity.
type EntityDescriptor interface {
	Message
	EntityKind() EntityKind
	Info() EntityInfo
}

// EntityKind names an entity type.
type EntityKind string

const (
	KindBinarySensor EntityKind = "binary_sensor"
	KindSensor       EntityKind = "sensor"
	KindTextSensor   EntityKind = "text_sensor"
	KindSwitch       EntityKind = "switch"
	KindButton       EntityKind = "button"
	KindCover        EntityKind = "cover"
	KindFan          EntityKind = "fan"
	KindLight        EntityKind = "light"
	KindClimate      EntityKind = "climate"
	KindLock         EntityKind = "lock"
	KindNumber       EntityKind = "number"
	KindSelect       EntityKind = "select"
	KindText         EntityKind = "text"
	KindDate         EntityKind = "date"
	KindTime         EntityKind = "time"
	KindDateTime     EntityKind = "datetime"
)

// EntityInfo holds the identity fields shared by every list-entities
// response. Key is the sole lookup index for an entity within a session.
type EntityInfo struct {
	ObjectID          string
	Key               uint32
	Name              string
	UniqueID          string
	Icon              string
	DisabledByDefault bool
	EntityCategory    EntityCategory
}

// Info returns a copy of the identity fields.
func (i EntityInfo) Info() EntityInfo { return i }

// infoFields locates the identity fields whose numbers differ between
// descriptor messages. Fields 1-4 are the same everywhere.
type infoFields struct {
	icon, disabled, category protowire.Number
}

func (i *EntityInfo) marshal(e *encoder, n infoFields) {
	e.string(1, i.ObjectID)
	e.fixed32(2, i.Key)
	e.string(3, i.Name)
	e.string(4, i.UniqueID)
	e.string(n.icon, i.Icon)
	e.bool(n.disabled, i.DisabledByDefault)
	encodeEnum(e, n.category, i.EntityCategory)
}

// unmarshalField consumes f if it is an identity field.
func (i *EntityInfo) unmarshalField(f field, n infoFields) (bool, error) {
	switch f.num {
	case 1:
		return true, f.string(&i.ObjectID)
	case 2:
		return true, f.fixed32(&i.Key)
	case 3:
		return true, f.string(&i.Name)
	case 4:
		return true, f.string(&i.UniqueID)
	case n.icon:
		return true, f.string(&i.Icon)
	case n.disabled:
		return true, f.bool(&i.DisabledByDefault)
	case n.category:
		return true, decodeEnum(f, &i.EntityCategory)
	}
	return false, nil
}

// skipFields validates a body whose fields are all ignored.
func skipFields(b []byte) error {
	return walkFields(b, func(field) error { return nil })
}

type HelloRequest struct {
	ClientInfo      string
	APIVersionMajor uint32
	APIVersionMinor uint32
}

func (*HelloRequest) MessageType() uint16 { return 1 }

func (m *HelloRequest) marshal(e *encoder) {
	e.string(1, m.ClientInfo)
	e.uint32(2, m.APIVersionMajor)
	e.uint32(3, m.APIVersionMinor)
}

func (m *HelloRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.string(&m.ClientInfo)
		case 2:
			return f.uint32(&m.APIVersionMajor)
		case 3:
			return f.uint32(&m.APIVersionMinor)
		}
		return nil
	})
}

type HelloResponse struct {
	APIVersionMajor uint32
	APIVersionMinor uint32
	ServerInfo      string
	Name            string
}

func (*HelloResponse) MessageType() uint16 { return 2 }

func (m *HelloResponse) marshal(e *encoder) {
	e.uint32(1, m.APIVersionMajor)
	e.uint32(2, m.APIVersionMinor)
	e.string(3, m.ServerInfo)
	e.string(4, m.Name)
}

func (m *HelloResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.uint32(&m.APIVersionMajor)
		case 2:
			return f.uint32(&m.APIVersionMinor)
		case 3:
			return f.string(&m.ServerInfo)
		case 4:
			return f.string(&m.Name)
		}
		return nil
	})
}

type ConnectRequest struct {
	Password string
}

func (*ConnectRequest) MessageType() uint16 { return 3 }

func (m *ConnectRequest) marshal(e *encoder) { e.string(1, m.Password) }

func (m *ConnectRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if f.num == 1 {
			return f.string(&m.Password)
		}
		return nil
	})
}

type ConnectResponse struct {
	InvalidPassword bool
}

func (*ConnectResponse) MessageType() uint16 { return 4 }

func (m *ConnectResponse) marshal(e *encoder) { e.bool(1, m.InvalidPassword) }

func (m *ConnectResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if f.num == 1 {
			return f.bool(&m.InvalidPassword)
		}
		return nil
	})
}

type DisconnectRequest struct{}

func (*DisconnectRequest) MessageType() uint16      { return 5 }
func (*DisconnectRequest) marshal(*encoder)         {}
func (*DisconnectRequest) unmarshal(b []byte) error { return skipFields(b) }

type DisconnectResponse struct{}

func (*DisconnectResponse) MessageType() uint16      { return 6 }
func (*DisconnectResponse) marshal(*encoder)         {}
func (*DisconnectResponse) unmarshal(b []byte) error { return skipFields(b) }

type PingRequest struct{}

func (*PingRequest) MessageType() uint16      { return 7 }
func (*PingRequest) marshal(*encoder)         {}
func (*PingRequest) unmarshal(b []byte) error { return skipFields(b) }

type PingResponse struct{}

func (*PingResponse) MessageType() uint16      { return 8 }
func (*PingResponse) marshal(*encoder)         {}
func (*PingResponse) unmarshal(b []byte) error { return skipFields(b) }

type DeviceInfoRequest struct{}

func (*DeviceInfoRequest) MessageType() uint16      { return 9 }
func (*DeviceInfoRequest) marshal(*encoder)         {}
func (*DeviceInfoRequest) unmarshal(b []byte) error { return skipFields(b) }

type DeviceInfoResponse struct {
	UsesPassword           bool
	Name                   string
	MACAddress             string
	ESPHomeVersion         string
	CompilationTime        string
	Model                  string
	HasDeepSleep           bool
	ProjectName            string
	ProjectVersion         string
	WebserverPort          uint32
	Manufacturer           string
	FriendlyName           string
	SuggestedArea          string
	BluetoothMACAddress    string
	APIEncryptionSupported bool
}

func (*DeviceInfoResponse) MessageType() uint16 { return 10 }

func (m *DeviceInfoResponse) marshal(e *encoder) {
	e.bool(1, m.UsesPassword)
	e.string(2, m.Name)
	e.string(3, m.MACAddress)
	e.string(4, m.ESPHomeVersion)
	e.string(5, m.CompilationTime)
	e.string(6, m.Model)
	e.bool(7, m.HasDeepSleep)
	e.string(8, m.ProjectName)
	e.string(9, m.ProjectVersion)
	e.uint32(10, m.WebserverPort)
	e.string(12, m.Manufacturer)
	e.string(13, m.FriendlyName)
	e.string(16, m.SuggestedArea)
	e.string(18, m.BluetoothMACAddress)
	e.bool(19, m.APIEncryptionSupported)
}

func (m *DeviceInfoResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.bool(&m.UsesPassword)
		case 2:
			return f.string(&m.Name)
		case 3:
			return f.string(&m.MACAddress)
		case 4:
			return f.string(&m.ESPHomeVersion)
		case 5:
			return f.string(&m.CompilationTime)
		case 6:
			return f.string(&m.Model)
		case 7:
			return f.bool(&m.HasDeepSleep)
		case 8:
			return f.string(&m.ProjectName)
		case 9:
			return f.string(&m.ProjectVersion)
		case 10:
			return f.uint32(&m.WebserverPort)
		case 12:
			return f.string(&m.Manufacturer)
		case 13:
			return f.string(&m.FriendlyName)
		case 16:
			return f.string(&m.SuggestedArea)
		case 18:
			return f.string(&m.BluetoothMACAddress)
		case 19:
			return f.bool(&m.APIEncryptionSupported)
		}
		return nil
	})
}

type ListEntitiesRequest struct{}

func (*ListEntitiesRequest) MessageType() uint16      { return 11 }
func (*ListEntitiesRequest) marshal(*encoder)         {}
func (*ListEntitiesRequest) unmarshal(b []byte) error { return skipFields(b) }

type ListEntitiesDoneResponse struct{}

func (*ListEntitiesDoneResponse) MessageType() uint16      { return 19 }
func (*ListEntitiesDoneResponse) marshal(*encoder)         {}
func (*ListEntitiesDoneResponse) unmarshal(b []byte) error { return skipFields(b) }

type SubscribeStatesRequest struct{}

func (*SubscribeStatesRequest) MessageType() uint16      { return 20 }
func (*SubscribeStatesRequest) marshal(*encoder)         {}
func (*SubscribeStatesRequest) unmarshal(b []byte) error { return skipFields(b) }

type SubscribeLogsRequest struct {
	Level      LogLevel
	DumpConfig bool
}

func (*SubscribeLogsRequest) MessageType() uint16 { return 28 }

func (m *SubscribeLogsRequest) marshal(e *encoder) {
	encodeEnum(e, 1, m.Level)
	e.bool(2, m.DumpConfig)
}

func (m *SubscribeLogsRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return decodeEnum(f, &m.Level)
		case 2:
			return f.bool(&m.DumpConfig)
		}
		return nil
	})
}

type SubscribeLogsResponse struct {
	Level      LogLevel
	Message    []byte
	SendFailed bool
}

func (*SubscribeLogsResponse) MessageType() uint16 { return 29 }

func (m *SubscribeLogsResponse) marshal(e *encoder) {
	encodeEnum(e, 1, m.Level)
	e.bytes(3, m.Message)
	e.bool(4, m.SendFailed)
}

func (m *SubscribeLogsResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return decodeEnum(f, &m.Level)
		case 3:
			return f.bytes(&m.Message)
		case 4:
			return f.bool(&m.SendFailed)
		}
		return nil
	})
}

type SubscribeHomeassistantServicesRequest struct{}

func (*SubscribeHomeassistantServicesRequest) MessageType() uint16      { return 34 }
func (*SubscribeHomeassistantServicesRequest) marshal(*encoder)         {}
func (*SubscribeHomeassistantServicesRequest) unmarshal(b []byte) error { return skipFields(b) }

// HomeassistantServiceMap is one key/value pair of a service call.
type HomeassistantServiceMap struct {
	Key   string
	Value string
}

func (m *HomeassistantServiceMap) marshal(e *encoder) {
	e.string(1, m.Key)
	e.string(2, m.Value)
}

func (m *HomeassistantServiceMap) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.string(&m.Key)
		case 2:
			return f.string(&m.Value)
		}
		return nil
	})
}

type HomeassistantServiceResponse struct {
	Service      string
	Data         []HomeassistantServiceMap
	DataTemplate []HomeassistantServiceMap
	Variables    []HomeassistantServiceMap
	IsEvent      bool
}

func (*HomeassistantServiceResponse) MessageType() uint16 { return 35 }

func marshalServiceMaps(e *encoder, num protowire.Number, maps []HomeassistantServiceMap) {
	for i := range maps {
		var sub encoder
		maps[i].marshal(&sub)
		e.message(num, sub.b)
	}
}

func appendServiceMap(f field, dst *[]HomeassistantServiceMap) error {
	var raw []byte
	if err := f.bytes(&raw); err != nil {
		return err
	}
	var kv HomeassistantServiceMap
	if err := kv.unmarshal(raw); err != nil {
		return err
	}
	*dst = append(*dst, kv)
	return nil
}

func (m *HomeassistantServiceResponse) marshal(e *encoder) {
	e.string(1, m.Service)
	marshalServiceMaps(e, 2, m.Data)
	marshalServiceMaps(e, 3, m.DataTemplate)
	marshalServiceMaps(e, 4, m.Variables)
	e.bool(5, m.IsEvent)
}

func (m *HomeassistantServiceResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.string(&m.Service)
		case 2:
			return appendServiceMap(f, &m.Data)
		case 3:
			return appendServiceMap(f, &m.DataTemplate)
		case 4:
			return appendServiceMap(f, &m.Variables)
		case 5:
			return f.bool(&m.IsEvent)
		}
		return nil
	})
}

type GetTimeRequest struct{}

func (*GetTimeRequest) MessageType() uint16      { return 36 }
func (*GetTimeRequest) marshal(*encoder)         {}
func (*GetTimeRequest) unmarshal(b []byte) error { return skipFields(b) }

type GetTimeResponse struct {
	EpochSeconds uint32
}

func (*GetTimeResponse) MessageType() uint16 { return 37 }

func (m *GetTimeResponse) marshal(e *encoder) { e.fixed32(1, m.EpochSeconds) }

func (m *GetTimeResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if f.num == 1 {
			return f.fixed32(&m.EpochSeconds)
		}
		return nil
	})
}

type SubscribeHomeAssistantStatesRequest struct{}

func (*SubscribeHomeAssistantStatesRequest) MessageType() uint16      { return 38 }
func (*SubscribeHomeAssistantStatesRequest) marshal(*encoder)         {}
func (*SubscribeHomeAssistantStatesRequest) unmarshal(b []byte) error { return skipFields(b) }

// SubscribeHomeAssistantStateResponse asks the client to forward a Home
// Assistant entity state (or one of its attributes) to the device.
type SubscribeHomeAssistantStateResponse struct {
	EntityID  string
	Attribute string
	Once      bool
}

func (*SubscribeHomeAssistantStateResponse) MessageType() uint16 { return 39 }

func (m *SubscribeHomeAssistantStateResponse) marshal(e *encoder) {
	e.string(1, m.EntityID)
	e.string(2, m.Attribute)
	e.bool(3, m.Once)
}

func (m *SubscribeHomeAssistantStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.string(&m.EntityID)
		case 2:
			return f.string(&m.Attribute)
		case 3:
			return f.bool(&m.Once)
		}
		return nil
	})
}

type HomeAssistantStateResponse struct {
	EntityID  string
	State     string
	Attribute string
}

func (*HomeAssistantStateResponse) MessageType() uint16 { return 40 }

func (m *HomeAssistantStateResponse) marshal(e *encoder) {
	e.string(1, m.EntityID)
	e.string(2, m.State)
	e.string(3, m.Attribute)
}

func (m *HomeAssistantStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.string(&m.EntityID)
		case 2:
			return f.string(&m.State)
		case 3:
			return f.string(&m.Attribute)
		}
		return nil
	})
}
