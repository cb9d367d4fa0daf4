package api

import (
	"bytes"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/protobuf/encoding/protowire"
)

func populatedMessages() []Message {
	info := EntityInfo{
		ObjectID:          "kitchen_light",
		Key:               0xDEADBEEF,
		Name:              "Kitchen Light",
		UniqueID:          "aabbccddeeff-light",
		Icon:              "mdi:lightbulb",
		DisabledByDefault: true,
		EntityCategory:    EntityCategoryConfig,
	}
	kv := []HomeassistantServiceMap{{Key: "entity_id", Value: "light.hall"}, {Key: "", Value: "empty key"}}

	return []Message{
		&HelloRequest{ClientInfo: "esphome-go", APIVersionMajor: 1, APIVersionMinor: 9},
		&HelloResponse{APIVersionMajor: 1, APIVersionMinor: 10, ServerInfo: "esphome v2024.6", Name: "node"},
		&ConnectRequest{Password: "secret"},
		&ConnectResponse{InvalidPassword: true},
		&DeviceInfoResponse{
			UsesPassword: true, Name: "node", MACAddress: "AA:BB:CC:DD:EE:FF",
			ESPHomeVersion: "2024.6.0", CompilationTime: "Jun 1 2024, 10:00:00", Model: "esp32dev",
			HasDeepSleep: true, ProjectName: "acme.thing", ProjectVersion: "1.2", WebserverPort: 80,
			Manufacturer: "Espressif", FriendlyName: "Node", SuggestedArea: "Kitchen",
			BluetoothMACAddress: "11:22:33:44:55:66", APIEncryptionSupported: true,
		},
		&SubscribeLogsRequest{Level: LogLevelVeryVerbose, DumpConfig: true},
		&SubscribeLogsResponse{Level: LogLevelWarn, Message: []byte("[W][wifi]: weak signal"), SendFailed: true},
		&HomeassistantServiceResponse{Service: "light.turn_on", Data: kv, DataTemplate: kv[:1], Variables: kv[1:], IsEvent: true},
		&GetTimeResponse{EpochSeconds: 1718000000},
		&SubscribeHomeAssistantStateResponse{EntityID: "sun.sun", Attribute: "elevation", Once: true},
		&HomeAssistantStateResponse{EntityID: "sun.sun", State: "above_horizon", Attribute: "elevation"},

		&ListEntitiesBinarySensorResponse{EntityInfo: info, DeviceClass: "door", IsStatusBinarySensor: true},
		&ListEntitiesCoverResponse{EntityInfo: info, AssumedState: true, SupportsPosition: true, SupportsTilt: true, DeviceClass: "blind", SupportsStop: true},
		&ListEntitiesFanResponse{EntityInfo: info, SupportsOscillation: true, SupportsSpeed: true, SupportsDirection: true, SupportedSpeedCount: 100, PresetModes: []string{"eco", ""}},
		&ListEntitiesLightResponse{
			EntityInfo: info, SupportedColorModes: []ColorMode{ColorModeOnOff, ColorModeRGBColdWarmWhite},
			LegacySupportsBrightness: true, LegacySupportsRGB: true, LegacySupportsWhiteValue: true,
			LegacySupportsColorTemperature: true, MinMireds: 153, MaxMireds: 500, Effects: []string{"None", "Rainbow"},
		},
		&ListEntitiesSensorResponse{EntityInfo: info, UnitOfMeasurement: "°C", AccuracyDecimals: -1, ForceUpdate: true, DeviceClass: "temperature", StateClass: SensorStateClassTotalIncreasing},
		&ListEntitiesSwitchResponse{EntityInfo: info, AssumedState: true, DeviceClass: "outlet"},
		&ListEntitiesTextSensorResponse{EntityInfo: info, DeviceClass: "timestamp"},
		&ListEntitiesClimateResponse{
			EntityInfo: info, SupportsCurrentTemperature: true, SupportsTwoPointTargetTemperature: true,
			SupportedModes: []ClimateMode{ClimateModeOff, ClimateModeHeatCool, ClimateModeAuto},
			VisualMinTemperature: 7, VisualMaxTemperature: 35, VisualTargetTemperatureStep: 0.5,
			LegacySupportsAway: true, SupportsAction: true,
			SupportedFanModes:       []ClimateFanMode{ClimateFanAuto, ClimateFanQuiet},
			SupportedSwingModes:     []ClimateSwingMode{ClimateSwingBoth},
			SupportedCustomFanModes: []string{"turbo"},
			SupportedPresets:        []ClimatePreset{ClimatePresetEco, ClimatePresetSleep},
			SupportedCustomPresets:  []string{"vacation"},
			VisualCurrentTemperatureStep: 0.25, SupportsCurrentHumidity: true, SupportsTargetHumidity: true,
			VisualMinHumidity: 30, VisualMaxHumidity: 70,
		},
		&ListEntitiesNumberResponse{EntityInfo: info, MinValue: -10, MaxValue: 10, Step: 0.5, UnitOfMeasurement: "%", Mode: NumberModeSlider, DeviceClass: "humidity"},
		&ListEntitiesSelectResponse{EntityInfo: info, Options: []string{"a", "b"}},
		&ListEntitiesLockResponse{EntityInfo: info, AssumedState: true, SupportsOpen: true, RequiresCode: true, CodeFormat: `^\d{4}$`},
		&ListEntitiesButtonResponse{EntityInfo: info, DeviceClass: "restart"},
		&ListEntitiesTextResponse{EntityInfo: info, MinLength: 1, MaxLength: 64, Pattern: "[a-z]+", Mode: TextModePassword},
		&ListEntitiesDateResponse{EntityInfo: info},
		&ListEntitiesTimeResponse{EntityInfo: info},
		&ListEntitiesDateTimeResponse{EntityInfo: info},

		&BinarySensorStateResponse{Key: 1, State: true, MissingState: true},
		&CoverStateResponse{Key: 2, LegacyState: LegacyCoverStateClosed, Position: 0.5, Tilt: 0.25, CurrentOperation: CoverOperationIsClosing},
		&FanStateResponse{Key: 3, State: true, Oscillating: true, Speed: FanSpeedHigh, Direction: FanDirectionReverse, SpeedLevel: 42, PresetMode: "eco"},
		&LightStateResponse{
			Key: 4, State: true, Brightness: 0.75, ColorMode: ColorModeRGB, ColorBrightness: 1,
			Red: 1, Green: 0.5, Blue: 0.25, White: 0.125, ColorTemperature: 300, ColdWhite: 0.5, WarmWhite: 0.5, Effect: "Rainbow",
		},
		&SensorStateResponse{Key: 5, State: -12.5, MissingState: true},
		&SwitchStateResponse{Key: 6, State: true},
		&TextSensorStateResponse{Key: 7, State: "hello", MissingState: true},
		&ClimateStateResponse{
			Key: 8, Mode: ClimateModeHeat, CurrentTemperature: 20.5, TargetTemperature: 21,
			TargetTemperatureLow: 18, TargetTemperatureHigh: 24, UnusedLegacyAway: true,
			Action: ClimateActionHeating, FanMode: ClimateFanLow, SwingMode: ClimateSwingVertical,
			CustomFanMode: "turbo", Preset: ClimatePresetBoost, CustomPreset: "vacation",
			CurrentHumidity: 45, TargetHumidity: 50,
		},
		&NumberStateResponse{Key: 9, State: 3.5, MissingState: true},
		&SelectStateResponse{Key: 10, State: "b"},
		&LockStateResponse{Key: 11, State: LockStateJammed},
		&TextStateResponse{Key: 12, State: "text"},
		&DateStateResponse{Key: 13, MissingState: true, Year: 2024, Month: 6, Day: 30},
		&TimeStateResponse{Key: 14, Hour: 23, Minute: 59, Second: 58},
		&DateTimeStateResponse{Key: 15, EpochSeconds: 1718000000},

		&CoverCommandRequest{Key: 2, HasLegacyCommand: true, LegacyCommand: LegacyCoverCommandStop, HasPosition: true, Position: 1, HasTilt: true, Tilt: 0.5, Stop: true},
		&FanCommandRequest{
			Key: 3, HasState: true, State: true, HasSpeed: true, Speed: FanSpeedMedium, HasOscillating: true, Oscillating: true,
			HasDirection: true, Direction: FanDirectionReverse, HasSpeedLevel: true, SpeedLevel: 2, HasPresetMode: true, PresetMode: "eco",
		},
		&LightCommandRequest{
			Key: 4, HasState: true, State: true, HasBrightness: true, Brightness: 0.5, HasColorMode: true, ColorMode: ColorModeRGBWhite,
			HasColorBrightness: true, ColorBrightness: 1, HasRGB: true, Red: 1, Green: 0.5, Blue: 0.25, HasWhite: true, White: 0.5,
			HasColorTemperature: true, ColorTemperature: 250, HasColdWhite: true, ColdWhite: 0.5, HasWarmWhite: true, WarmWhite: 0.25,
			HasTransitionLength: true, TransitionLength: 1000, HasFlashLength: true, FlashLength: 200, HasEffect: true, Effect: "Strobe",
		},
		&SwitchCommandRequest{Key: 6, State: true},
		&ClimateCommandRequest{
			Key: 8, HasMode: true, Mode: ClimateModeCool, HasTargetTemperature: true, TargetTemperature: 22,
			HasTargetTemperatureLow: true, TargetTemperatureLow: 19, HasTargetTemperatureHigh: true, TargetTemperatureHigh: 25,
			HasFanMode: true, FanMode: ClimateFanDiffuse, HasSwingMode: true, SwingMode: ClimateSwingHorizontal,
			HasCustomFanMode: true, CustomFanMode: "turbo", HasPreset: true, Preset: ClimatePresetActivity,
			HasCustomPreset: true, CustomPreset: "vacation", HasTargetHumidity: true, TargetHumidity: 55,
		},
		&NumberCommandRequest{Key: 9, State: -0.5},
		&SelectCommandRequest{Key: 10, State: "a"},
		&LockCommandRequest{Key: 11, Command: LockCommandOpen, HasCode: true, Code: "1234"},
		&ButtonCommandRequest{Key: 12},
		&TextCommandRequest{Key: 13, State: "new"},
		&DateCommandRequest{Key: 14, Year: 2025, Month: 1, Day: 2},
		&TimeCommandRequest{Key: 15, Hour: 7, Minute: 30, Second: 5},
		&DateTimeCommandRequest{Key: 16, EpochSeconds: 1},

		&RawMessage{Type: 44, Body: []byte{0x08, 0x01, 0x12, 0x02, 0xFF, 0xD8}},
	}
}

func TestMessageRoundTrip(t *testing.T) {
	for _, m := range populatedMessages() {
		t.Run(Name(m), func(t *testing.T) {
			env, err := EncodeEnvelope(m)
			if err != nil {
				t.Fatalf("EncodeEnvelope: %v", err)
			}
			got, err := DecodeEnvelope(env)
			if err != nil {
				t.Fatalf("DecodeEnvelope: %v", err)
			}
			if diff := cmp.Diff(m, got); diff != "" {
				t.Errorf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// Every modeled id must decode a zero-length body to the zero value of its
// type and encode that zero value back to zero bytes.
func TestEmptyMessageRoundTrip(t *testing.T) {
	for id := 1; id < len(table); id++ {
		entry := table[id]
		if entry.new == nil {
			continue
		}
		t.Run(entry.name, func(t *testing.T) {
			m, err := Decode(uint16(id), nil)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if diff := cmp.Diff(entry.new(), m); diff != "" {
				t.Errorf("empty decode mismatch (-want +got):\n%s", diff)
			}
			if b := Encode(m); len(b) != 0 {
				t.Errorf("zero value encoded to % X", b)
			}
		})
	}
}

func TestTableConsistency(t *testing.T) {
	if len(table) != 128 {
		t.Fatalf("table has %d entries, want 128", len(table))
	}
	seen := make(map[string]int)
	for id := 1; id < len(table); id++ {
		entry := table[id]
		if entry.name == "" {
			t.Errorf("id %d has no name", id)
		}
		if prev, ok := seen[entry.name]; ok {
			t.Errorf("name %s used by ids %d and %d", entry.name, prev, id)
		}
		seen[entry.name] = id
		if entry.new != nil {
			if got := entry.new().MessageType(); got != uint16(id) {
				t.Errorf("%s: MessageType() = %d, want %d", entry.name, got, id)
			}
		}
	}
}

func TestMessageNames(t *testing.T) {
	tests := []struct {
		id   uint16
		want string
	}{
		{1, "HelloRequest"},
		{7, "PingRequest"},
		{35, "HomeassistantServiceResponse"},
		{65, "MediaPlayerCommandRequest"},
		{93, "BluetoothLERawAdvertisementsResponse"},
		{127, "BluetoothScannerSetModeRequest"},
		{128, ""},
	}
	for _, tt := range tests {
		if got := MessageName(tt.id); got != tt.want {
			t.Errorf("MessageName(%d) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestDecodeUnknownID(t *testing.T) {
	for _, id := range []uint16{0, 128, 0xFFFF} {
		if _, err := Decode(id, nil); !errors.Is(err, ErrUnknownMessage) {
			t.Errorf("Decode(%d): err = %v, want ErrUnknownMessage", id, err)
		}
	}
}

func TestDecodeUnmodeledIsRaw(t *testing.T) {
	body := []byte{0x0A, 0x03, 'c', 'a', 'm'}
	m, err := Decode(43, body)
	if err != nil {
		t.Fatal(err)
	}
	raw, ok := m.(*RawMessage)
	if !ok {
		t.Fatalf("got %T, want *RawMessage", m)
	}
	if raw.Type != 43 || !bytes.Equal(raw.Body, body) {
		t.Errorf("got %+v", raw)
	}
	if !bytes.Equal(Encode(raw), body) {
		t.Errorf("raw re-encode mismatch")
	}
}

func TestEnvelopeLayout(t *testing.T) {
	env, err := EncodeEnvelope(&SwitchCommandRequest{Key: 0x01020304, State: true})
	if err != nil {
		t.Fatal(err)
	}
	want := []byte{
		0x00, 0x21, // id 33
		0x00, 0x07, // body length
		0x0D, 0x04, 0x03, 0x02, 0x01, // field 1 fixed32, little endian
		0x10, 0x01, // field 2 varint true
	}
	if !bytes.Equal(env, want) {
		t.Errorf("got % X\nwant % X", env, want)
	}
}

func TestDecodeEnvelopeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"short header", []byte{0x00, 0x07, 0x00}, ErrProtocol},
		{"length too long", []byte{0x00, 0x07, 0x00, 0x02, 0x08}, ErrProtocol},
		{"length too short", []byte{0x00, 0x1A, 0x00, 0x00, 0x10, 0x01}, ErrProtocol},
		{"unknown id", []byte{0x00, 0x00, 0x00, 0x00}, ErrUnknownMessage},
		{"id past table", []byte{0x01, 0x00, 0x00, 0x00}, ErrUnknownMessage},
		{"truncated varint", []byte{0x00, 0x1A, 0x00, 0x02, 0x10, 0x80}, ErrProtocol},
		{"wrong wire type", []byte{0x00, 0x1A, 0x00, 0x02, 0x08, 0x01}, ErrProtocol},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEnvelope(tt.input)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecodeAcceptsUnpackedEnums(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 12, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ColorModeRGB))
	b = protowire.AppendTag(b, 12, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(ColorModeWhite))

	m, err := Decode(15, b)
	if err != nil {
		t.Fatal(err)
	}
	got := m.(*ListEntitiesLightResponse).SupportedColorModes
	want := []ColorMode{ColorModeRGB, ColorModeWhite}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("color modes (-want +got):\n%s", diff)
	}
}

func TestDecodeSkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, 1, protowire.Fixed32Type)
	b = protowire.AppendFixed32(b, 7)
	b = protowire.AppendTag(b, 99, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, 98, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, 1)
	b = protowire.AppendTag(b, 2, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)

	m, err := Decode(26, b)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(&SwitchStateResponse{Key: 7, State: true}, m); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestNegativeInt32Encoding(t *testing.T) {
	m := &ListEntitiesSensorResponse{AccuracyDecimals: -1}
	b := Encode(m)
	// Negative int32 values are sign-extended to ten varint bytes.
	if len(b) != 11 {
		t.Errorf("encoded length = %d, want 11", len(b))
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ClimateModeHeatCool.String(), "heat_cool"},
		{ClimateActionFan.String(), "fan"},
		{ClimateAction(1).String(), "1"},
		{ColorModeRGBColdWarmWhite.String(), "rgb_cold_warm_white"},
		{ColorMode(2).String(), "2"},
		{LockStateUnlocking.String(), "unlocking"},
		{LogLevelVeryVerbose.String(), "very_verbose"},
		{CoverOperationIsOpening.String(), "opening"},
		{EntityCategoryDiagnostic.String(), "diagnostic"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}

	if lvl, ok := ParseLogLevel("debug"); !ok || lvl != LogLevelDebug {
		t.Errorf("ParseLogLevel(debug) = %v, %v", lvl, ok)
	}
	if _, ok := ParseLogLevel("loud"); ok {
		t.Error("ParseLogLevel(loud) succeeded")
	}
}
