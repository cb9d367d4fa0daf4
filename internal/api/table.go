package api

import (
	"encoding/binary"
	"fmt"
)

type tableEntry struct {
	name string
	new  func() Message
}

// table maps wire ids to messages. Index 0 is reserved. Entries without a
// constructor are carried as RawMessage.
var table = [...]tableEntry{
	0:   {name: "Reserved"},
	1:   {name: "HelloRequest", new: func() Message { return new(HelloRequest) }},
	2:   {name: "HelloResponse", new: func() Message { return new(HelloResponse) }},
	3:   {name: "ConnectRequest", new: func() Message { return new(ConnectRequest) }},
	4:   {name: "ConnectResponse", new: func() Message { return new(ConnectResponse) }},
	5:   {name: "DisconnectRequest", new: func() Message { return new(DisconnectRequest) }},
	6:   {name: "DisconnectResponse", new: func() Message { return new(DisconnectResponse) }},
	7:   {name: "PingRequest", new: func() Message { return new(PingRequest) }},
	8:   {name: "PingResponse", new: func() Message { return new(PingResponse) }},
	9:   {name: "DeviceInfoRequest", new: func() Message { return new(DeviceInfoRequest) }},
	10:  {name: "DeviceInfoResponse", new: func() Message { return new(DeviceInfoResponse) }},
	11:  {name: "ListEntitiesRequest", new: func() Message { return new(ListEntitiesRequest) }},
	12:  {name: "ListEntitiesBinarySensorResponse", new: func() Message { return new(ListEntitiesBinarySensorResponse) }},
	13:  {name: "ListEntitiesCoverResponse", new: func() Message { return new(ListEntitiesCoverResponse) }},
	14:  {name: "ListEntitiesFanResponse", new: func() Message { return new(ListEntitiesFanResponse) }},
	15:  {name: "ListEntitiesLightResponse", new: func() Message { return new(ListEntitiesLightResponse) }},
	16:  {name: "ListEntitiesSensorResponse", new: func() Message { return new(ListEntitiesSensorResponse) }},
	17:  {name: "ListEntitiesSwitchResponse", new: func() Message { return new(ListEntitiesSwitchResponse) }},
	18:  {name: "ListEntitiesTextSensorResponse", new: func() Message { return new(ListEntitiesTextSensorResponse) }},
	19:  {name: "ListEntitiesDoneResponse", new: func() Message { return new(ListEntitiesDoneResponse) }},
	20:  {name: "SubscribeStatesRequest", new: func() Message { return new(SubscribeStatesRequest) }},
	21:  {name: "BinarySensorStateResponse", new: func() Message { return new(BinarySensorStateResponse) }},
	22:  {name: "CoverStateResponse", new: func() Message { return new(CoverStateResponse) }},
	23:  {name: "FanStateResponse", new: func() Message { return new(FanStateResponse) }},
	24:  {name: "LightStateResponse", new: func() Message { return new(LightStateResponse) }},
	25:  {name: "SensorStateResponse", new: func() Message { return new(SensorStateResponse) }},
	26:  {name: "SwitchStateResponse", new: func() Message { return new(SwitchStateResponse) }},
	27:  {name: "TextSensorStateResponse", new: func() Message { return new(TextSensorStateResponse) }},
	28:  {name: "SubscribeLogsRequest", new: func() Message { return new(SubscribeLogsRequest) }},
	29:  {name: "SubscribeLogsResponse", new: func() Message { return new(SubscribeLogsResponse) }},
	30:  {name: "CoverCommandRequest", new: func() Message { return new(CoverCommandRequest) }},
	31:  {name: "FanCommandRequest", new: func() Message { return new(FanCommandRequest) }},
	32:  {name: "LightCommandRequest", new: func() Message { return new(LightCommandRequest) }},
	33:  {name: "SwitchCommandRequest", new: func() Message { return new(SwitchCommandRequest) }},
	34:  {name: "SubscribeHomeassistantServicesRequest", new: func() Message { return new(SubscribeHomeassistantServicesRequest) }},
	35:  {name: "HomeassistantServiceResponse", new: func() Message { return new(HomeassistantServiceResponse) }},
	36:  {name: "GetTimeRequest", new: func() Message { return new(GetTimeRequest) }},
	37:  {name: "GetTimeResponse", new: func() Message { return new(GetTimeResponse) }},
	38:  {name: "SubscribeHomeAssistantStatesRequest", new: func() Message { return new(SubscribeHomeAssistantStatesRequest) }},
	39:  {name: "SubscribeHomeAssistantStateResponse", new: func() Message { return new(SubscribeHomeAssistantStateResponse) }},
	40:  {name: "HomeAssistantStateResponse", new: func() Message { return new(HomeAssistantStateResponse) }},
	41:  {name: "ListEntitiesServicesResponse"},
	42:  {name: "ExecuteServiceRequest"},
	43:  {name: "ListEntitiesCameraResponse"},
	44:  {name: "CameraImageResponse"},
	45:  {name: "CameraImageRequest"},
	46:  {name: "ListEntitiesClimateResponse", new: func() Message { return new(ListEntitiesClimateResponse) }},
	47:  {name: "ClimateStateResponse", new: func() Message { return new(ClimateStateResponse) }},
	48:  {name: "ClimateCommandRequest", new: func() Message { return new(ClimateCommandRequest) }},
	49:  {name: "ListEntitiesNumberResponse", new: func() Message { return new(ListEntitiesNumberResponse) }},
	50:  {name: "NumberStateResponse", new: func() Message { return new(NumberStateResponse) }},
	51:  {name: "NumberCommandRequest", new: func() Message { return new(NumberCommandRequest) }},
	52:  {name: "ListEntitiesSelectResponse", new: func() Message { return new(ListEntitiesSelectResponse) }},
	53:  {name: "SelectStateResponse", new: func() Message { return new(SelectStateResponse) }},
	54:  {name: "SelectCommandRequest", new: func() Message { return new(SelectCommandRequest) }},
	55:  {name: "ListEntitiesSirenResponse"},
	56:  {name: "SirenStateResponse"},
	57:  {name: "SirenCommandRequest"},
	58:  {name: "ListEntitiesLockResponse", new: func() Message { return new(ListEntitiesLockResponse) }},
	59:  {name: "LockStateResponse", new: func() Message { return new(LockStateResponse) }},
	60:  {name: "LockCommandRequest", new: func() Message { return new(LockCommandRequest) }},
	61:  {name: "ListEntitiesButtonResponse", new: func() Message { return new(ListEntitiesButtonResponse) }},
	62:  {name: "ButtonCommandRequest", new: func() Message { return new(ButtonCommandRequest) }},
	63:  {name: "ListEntitiesMediaPlayerResponse"},
	64:  {name: "MediaPlayerStateResponse"},
	65:  {name: "MediaPlayerCommandRequest"},
	66:  {name: "SubscribeBluetoothLEAdvertisementsRequest"},
	67:  {name: "BluetoothLEAdvertisementResponse"},
	68:  {name: "BluetoothDeviceRequest"},
	69:  {name: "BluetoothDeviceConnectionResponse"},
	70:  {name: "BluetoothGATTGetServicesRequest"},
	71:  {name: "BluetoothGATTGetServicesResponse"},
	72:  {name: "BluetoothGATTGetServicesDoneResponse"},
	73:  {name: "BluetoothGATTReadRequest"},
	74:  {name: "BluetoothGATTReadResponse"},
	75:  {name: "BluetoothGATTWriteRequest"},
	76:  {name: "BluetoothGATTReadDescriptorRequest"},
	77:  {name: "BluetoothGATTWriteDescriptorRequest"},
	78:  {name: "BluetoothGATTNotifyRequest"},
	79:  {name: "BluetoothGATTNotifyDataResponse"},
	80:  {name: "SubscribeBluetoothConnectionsFreeRequest"},
	81:  {name: "BluetoothConnectionsFreeResponse"},
	82:  {name: "BluetoothGATTErrorResponse"},
	83:  {name: "BluetoothGATTWriteResponse"},
	84:  {name: "BluetoothGATTNotifyResponse"},
	85:  {name: "BluetoothDevicePairingResponse"},
	86:  {name: "BluetoothDeviceUnpairingResponse"},
	87:  {name: "UnsubscribeBluetoothLEAdvertisementsRequest"},
	88:  {name: "BluetoothDeviceClearCacheResponse"},
	89:  {name: "SubscribeVoiceAssistantRequest"},
	90:  {name: "VoiceAssistantRequest"},
	91:  {name: "VoiceAssistantResponse"},
	92:  {name: "VoiceAssistantEventResponse"},
	93:  {name: "BluetoothLERawAdvertisementsResponse"},
	94:  {name: "ListEntitiesAlarmControlPanelResponse"},
	95:  {name: "AlarmControlPanelStateResponse"},
	96:  {name: "AlarmControlPanelCommandRequest"},
	97:  {name: "ListEntitiesTextResponse", new: func() Message { return new(ListEntitiesTextResponse) }},
	98:  {name: "TextStateResponse", new: func() Message { return new(TextStateResponse) }},
	99:  {name: "TextCommandRequest", new: func() Message { return new(TextCommandRequest) }},
	100: {name: "ListEntitiesDateResponse", new: func() Message { return new(ListEntitiesDateResponse) }},
	101: {name: "DateStateResponse", new: func() Message { return new(DateStateResponse) }},
	102: {name: "DateCommandRequest", new: func() Message { return new(DateCommandRequest) }},
	103: {name: "ListEntitiesTimeResponse", new: func() Message { return new(ListEntitiesTimeResponse) }},
	104: {name: "TimeStateResponse", new: func() Message { return new(TimeStateResponse) }},
	105: {name: "TimeCommandRequest", new: func() Message { return new(TimeCommandRequest) }},
	106: {name: "VoiceAssistantAudio"},
	107: {name: "ListEntitiesEventResponse"},
	108: {name: "EventResponse"},
	109: {name: "ListEntitiesValveResponse"},
	110: {name: "ValveStateResponse"},
	111: {name: "ValveCommandRequest"},
	112: {name: "ListEntitiesDateTimeResponse", new: func() Message { return new(ListEntitiesDateTimeResponse) }},
	113: {name: "DateTimeStateResponse", new: func() Message { return new(DateTimeStateResponse) }},
	114: {name: "DateTimeCommandRequest", new: func() Message { return new(DateTimeCommandRequest) }},
	115: {name: "VoiceAssistantTimerEventResponse"},
	116: {name: "ListEntitiesUpdateResponse"},
	117: {name: "UpdateStateResponse"},
	118: {name: "UpdateCommandRequest"},
	119: {name: "VoiceAssistantAnnounceRequest"},
	120: {name: "VoiceAssistantAnnounceFinished"},
	121: {name: "VoiceAssistantConfigurationRequest"},
	122: {name: "VoiceAssistantConfigurationResponse"},
	123: {name: "VoiceAssistantSetConfiguration"},
	124: {name: "NoiseEncryptionSetKeyRequest"},
	125: {name: "NoiseEncryptionSetKeyResponse"},
	126: {name: "BluetoothScannerStateResponse"},
	127: {name: "BluetoothScannerSetModeRequest"},
}

// envelopeHeaderSize is id(2) + length(2).
const envelopeHeaderSize = 4

// MessageName returns the table name for id, or "" if id is out of range.
func MessageName(id uint16) string {
	if int(id) >= len(table) {
		return ""
	}
	return table[id].name
}

// Name returns the table name of m.
func Name(m Message) string {
	if name := MessageName(m.MessageType()); name != "" {
		return name
	}
	return fmt.Sprintf("Message(%d)", m.MessageType())
}

// Encode serializes the body of m.
func Encode(m Message) []byte {
	var e encoder
	m.marshal(&e)
	return e.b
}

// Decode parses body as the message registered under id. Ids without a
// modeled message decode to *RawMessage.
func Decode(id uint16, body []byte) (Message, error) {
	if id == 0 || int(id) >= len(table) {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownMessage, id)
	}
	entry := table[id]
	var m Message
	if entry.new == nil {
		m = &RawMessage{Type: id}
	} else {
		m = entry.new()
	}
	if err := m.unmarshal(body); err != nil {
		return nil, fmt.Errorf("decode %s: %w", entry.name, err)
	}
	return m, nil
}

// EncodeEnvelope returns [id BE16][length BE16][body].
func EncodeEnvelope(m Message) ([]byte, error) {
	body := Encode(m)
	if len(body) > 0xFFFF {
		return nil, fmt.Errorf("%w: %s body %d bytes exceeds envelope limit", ErrProtocol, Name(m), len(body))
	}
	buf := make([]byte, envelopeHeaderSize+len(body))
	binary.BigEndian.PutUint16(buf[0:2], m.MessageType())
	binary.BigEndian.PutUint16(buf[2:4], uint16(len(body)))
	copy(buf[envelopeHeaderSize:], body)
	return buf, nil
}

// DecodeEnvelope parses one envelope. The declared length must match the
// body exactly.
func DecodeEnvelope(b []byte) (Message, error) {
	if len(b) < envelopeHeaderSize {
		return nil, fmt.Errorf("%w: envelope of %d bytes is shorter than its header", ErrProtocol, len(b))
	}
	id := binary.BigEndian.Uint16(b[0:2])
	size := int(binary.BigEndian.Uint16(b[2:4]))
	body := b[envelopeHeaderSize:]
	if size != len(body) {
		return nil, fmt.Errorf("%w: envelope declares %d body bytes, got %d", ErrProtocol, size, len(body))
	}
	return Decode(id, body)
}
