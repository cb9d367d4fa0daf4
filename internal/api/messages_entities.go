package api

// List-entities responses. Each embeds EntityInfo and carries the
// capability fields fixed for the lifetime of the entity.

type ListEntitiesBinarySensorResponse struct {
	EntityInfo
	DeviceClass          string
	IsStatusBinarySensor bool
}

var binarySensorInfo = infoFields{icon: 8, disabled: 7, category: 9}

func (*ListEntitiesBinarySensorResponse) MessageType() uint16    { return 12 }
func (*ListEntitiesBinarySensorResponse) EntityKind() EntityKind { return KindBinarySensor }

func (m *ListEntitiesBinarySensorResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, binarySensorInfo)
	e.string(5, m.DeviceClass)
	e.bool(6, m.IsStatusBinarySensor)
}

func (m *ListEntitiesBinarySensorResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, binarySensorInfo); ok {
			return err
		}
		switch f.num {
		case 5:
			return f.string(&m.DeviceClass)
		case 6:
			return f.bool(&m.IsStatusBinarySensor)
		}
		return nil
	})
}

type ListEntitiesCoverResponse struct {
	EntityInfo
	AssumedState     bool
	SupportsPosition bool
	SupportsTilt     bool
	DeviceClass      string
	SupportsStop     bool
}

var coverInfo = infoFields{icon: 10, disabled: 9, category: 11}

func (*ListEntitiesCoverResponse) MessageType() uint16    { return 13 }
func (*ListEntitiesCoverResponse) EntityKind() EntityKind { return KindCover }

func (m *ListEntitiesCoverResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, coverInfo)
	e.bool(5, m.AssumedState)
	e.bool(6, m.SupportsPosition)
	e.bool(7, m.SupportsTilt)
	e.string(8, m.DeviceClass)
	e.bool(12, m.SupportsStop)
}

func (m *ListEntitiesCoverResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, coverInfo); ok {
			return err
		}
		switch f.num {
		case 5:
			return f.bool(&m.AssumedState)
		case 6:
			return f.bool(&m.SupportsPosition)
		case 7:
			return f.bool(&m.SupportsTilt)
		case 8:
			return f.string(&m.DeviceClass)
		case 12:
			return f.bool(&m.SupportsStop)
		}
		return nil
	})
}

type ListEntitiesFanResponse struct {
	EntityInfo
	SupportsOscillation bool
	SupportsSpeed       bool
	SupportsDirection   bool
	SupportedSpeedCount int32
	PresetModes         []string
}

var fanInfo = infoFields{icon: 10, disabled: 9, category: 11}

func (*ListEntitiesFanResponse) MessageType() uint16    { return 14 }
func (*ListEntitiesFanResponse) EntityKind() EntityKind { return KindFan }

func (m *ListEntitiesFanResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, fanInfo)
	e.bool(5, m.SupportsOscillation)
	e.bool(6, m.SupportsSpeed)
	e.bool(7, m.SupportsDirection)
	e.int32(8, m.SupportedSpeedCount)
	e.strings(12, m.PresetModes)
}

func (m *ListEntitiesFanResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, fanInfo); ok {
			return err
		}
		switch f.num {
		case 5:
			return f.bool(&m.SupportsOscillation)
		case 6:
			return f.bool(&m.SupportsSpeed)
		case 7:
			return f.bool(&m.SupportsDirection)
		case 8:
			return f.int32(&m.SupportedSpeedCount)
		case 12:
			return f.appendString(&m.PresetModes)
		}
		return nil
	})
}

type ListEntitiesLightResponse struct {
	EntityInfo
	SupportedColorModes            []ColorMode
	LegacySupportsBrightness       bool
	LegacySupportsRGB              bool
	LegacySupportsWhiteValue       bool
	LegacySupportsColorTemperature bool
	MinMireds                      float32
	MaxMireds                      float32
	Effects                        []string
}

var lightInfo = infoFields{icon: 14, disabled: 13, category: 15}

func (*ListEntitiesLightResponse) MessageType() uint16    { return 15 }
func (*ListEntitiesLightResponse) EntityKind() EntityKind { return KindLight }

func (m *ListEntitiesLightResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, lightInfo)
	e.bool(5, m.LegacySupportsBrightness)
	e.bool(6, m.LegacySupportsRGB)
	e.bool(7, m.LegacySupportsWhiteValue)
	e.bool(8, m.LegacySupportsColorTemperature)
	e.float(9, m.MinMireds)
	e.float(10, m.MaxMireds)
	e.strings(11, m.Effects)
	encodeEnums(e, 12, m.SupportedColorModes)
}

func (m *ListEntitiesLightResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, lightInfo); ok {
			return err
		}
		switch f.num {
		case 5:
			return f.bool(&m.LegacySupportsBrightness)
		case 6:
			return f.bool(&m.LegacySupportsRGB)
		case 7:
			return f.bool(&m.LegacySupportsWhiteValue)
		case 8:
			return f.bool(&m.LegacySupportsColorTemperature)
		case 9:
			return f.float(&m.MinMireds)
		case 10:
			return f.float(&m.MaxMireds)
		case 11:
			return f.appendString(&m.Effects)
		case 12:
			return decodeEnums(f, &m.SupportedColorModes)
		}
		return nil
	})
}

type ListEntitiesSensorResponse struct {
	EntityInfo
	UnitOfMeasurement string
	AccuracyDecimals  int32
	ForceUpdate       bool
	DeviceClass       string
	StateClass        SensorStateClass
}

var sensorInfo = infoFields{icon: 5, disabled: 12, category: 13}

func (*ListEntitiesSensorResponse) MessageType() uint16    { return 16 }
func (*ListEntitiesSensorResponse) EntityKind() EntityKind { return KindSensor }

func (m *ListEntitiesSensorResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, sensorInfo)
	e.string(6, m.UnitOfMeasurement)
	e.int32(7, m.AccuracyDecimals)
	e.bool(8, m.ForceUpdate)
	e.string(9, m.DeviceClass)
	encodeEnum(e, 10, m.StateClass)
}

func (m *ListEntitiesSensorResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, sensorInfo); ok {
			return err
		}
		switch f.num {
		case 6:
			return f.string(&m.UnitOfMeasurement)
		case 7:
			return f.int32(&m.AccuracyDecimals)
		case 8:
			return f.bool(&m.ForceUpdate)
		case 9:
			return f.string(&m.DeviceClass)
		case 10:
			return decodeEnum(f, &m.StateClass)
		}
		return nil
	})
}

type ListEntitiesSwitchResponse struct {
	EntityInfo
	AssumedState bool
	DeviceClass  string
}

var switchInfo = infoFields{icon: 5, disabled: 7, category: 8}

func (*ListEntitiesSwitchResponse) MessageType() uint16    { return 17 }
func (*ListEntitiesSwitchResponse) EntityKind() EntityKind { return KindSwitch }

func (m *ListEntitiesSwitchResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, switchInfo)
	e.bool(6, m.AssumedState)
	e.string(9, m.DeviceClass)
}

func (m *ListEntitiesSwitchResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, switchInfo); ok {
			return err
		}
		switch f.num {
		case 6:
			return f.bool(&m.AssumedState)
		case 9:
			return f.string(&m.DeviceClass)
		}
		return nil
	})
}

type ListEntitiesTextSensorResponse struct {
	EntityInfo
	DeviceClass string
}

var textSensorInfo = infoFields{icon: 5, disabled: 6, category: 7}

func (*ListEntitiesTextSensorResponse) MessageType() uint16    { return 18 }
func (*ListEntitiesTextSensorResponse) EntityKind() EntityKind { return KindTextSensor }

func (m *ListEntitiesTextSensorResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, textSensorInfo)
	e.string(8, m.DeviceClass)
}

func (m *ListEntitiesTextSensorResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, textSensorInfo); ok {
			return err
		}
		if f.num == 8 {
			return f.string(&m.DeviceClass)
		}
		return nil
	})
}

type ListEntitiesClimateResponse struct {
	EntityInfo
	SupportsCurrentTemperature        bool
	SupportsTwoPointTargetTemperature bool
	SupportedModes                    []ClimateMode
	VisualMinTemperature              float32
	VisualMaxTemperature              float32
	VisualTargetTemperatureStep       float32
	LegacySupportsAway                bool
	SupportsAction                    bool
	SupportedFanModes                 []ClimateFanMode
	SupportedSwingModes               []ClimateSwingMode
	SupportedCustomFanModes           []string
	SupportedPresets                  []ClimatePreset
	SupportedCustomPresets            []string
	VisualCurrentTemperatureStep      float32
	SupportsCurrentHumidity           bool
	SupportsTargetHumidity            bool
	VisualMinHumidity                 float32
	VisualMaxHumidity                 float32
}

var climateInfo = infoFields{icon: 19, disabled: 18, category: 20}

func (*ListEntitiesClimateResponse) MessageType() uint16    { return 46 }
func (*ListEntitiesClimateResponse) EntityKind() EntityKind { return KindClimate }

func (m *ListEntitiesClimateResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, climateInfo)
	e.bool(5, m.SupportsCurrentTemperature)
	e.bool(6, m.SupportsTwoPointTargetTemperature)
	encodeEnums(e, 7, m.SupportedModes)
	e.float(8, m.VisualMinTemperature)
	e.float(9, m.VisualMaxTemperature)
	e.float(10, m.VisualTargetTemperatureStep)
	e.bool(11, m.LegacySupportsAway)
	e.bool(12, m.SupportsAction)
	encodeEnums(e, 13, m.SupportedFanModes)
	encodeEnums(e, 14, m.SupportedSwingModes)
	e.strings(15, m.SupportedCustomFanModes)
	encodeEnums(e, 16, m.SupportedPresets)
	e.strings(17, m.SupportedCustomPresets)
	e.float(21, m.VisualCurrentTemperatureStep)
	e.bool(22, m.SupportsCurrentHumidity)
	e.bool(23, m.SupportsTargetHumidity)
	e.float(24, m.VisualMinHumidity)
	e.float(25, m.VisualMaxHumidity)
}

func (m *ListEntitiesClimateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, climateInfo); ok {
			return err
		}
		switch f.num {
		case 5:
			return f.bool(&m.SupportsCurrentTemperature)
		case 6:
			return f.bool(&m.SupportsTwoPointTargetTemperature)
		case 7:
			return decodeEnums(f, &m.SupportedModes)
		case 8:
			return f.float(&m.VisualMinTemperature)
		case 9:
			return f.float(&m.VisualMaxTemperature)
		case 10:
			return f.float(&m.VisualTargetTemperatureStep)
		case 11:
			return f.bool(&m.LegacySupportsAway)
		case 12:
			return f.bool(&m.SupportsAction)
		case 13:
			return decodeEnums(f, &m.SupportedFanModes)
		case 14:
			return decodeEnums(f, &m.SupportedSwingModes)
		case 15:
			return f.appendString(&m.SupportedCustomFanModes)
		case 16:
			return decodeEnums(f, &m.SupportedPresets)
		case 17:
			return f.appendString(&m.SupportedCustomPresets)
		case 21:
			return f.float(&m.VisualCurrentTemperatureStep)
		case 22:
			return f.bool(&m.SupportsCurrentHumidity)
		case 23:
			return f.bool(&m.SupportsTargetHumidity)
		case 24:
			return f.float(&m.VisualMinHumidity)
		case 25:
			return f.float(&m.VisualMaxHumidity)
		}
		return nil
	})
}

type ListEntitiesNumberResponse struct {
	EntityInfo
	MinValue          float32
	MaxValue          float32
	Step              float32
	UnitOfMeasurement string
	Mode              NumberMode
	DeviceClass       string
}

var numberInfo = infoFields{icon: 5, disabled: 9, category: 10}

func (*ListEntitiesNumberResponse) MessageType() uint16    { return 49 }
func (*ListEntitiesNumberResponse) EntityKind() EntityKind { return KindNumber }

func (m *ListEntitiesNumberResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, numberInfo)
	e.float(6, m.MinValue)
	e.float(7, m.MaxValue)
	e.float(8, m.Step)
	e.string(11, m.UnitOfMeasurement)
	encodeEnum(e, 12, m.Mode)
	e.string(13, m.DeviceClass)
}

func (m *ListEntitiesNumberResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, numberInfo); ok {
			return err
		}
		switch f.num {
		case 6:
			return f.float(&m.MinValue)
		case 7:
			return f.float(&m.MaxValue)
		case 8:
			return f.float(&m.Step)
		case 11:
			return f.string(&m.UnitOfMeasurement)
		case 12:
			return decodeEnum(f, &m.Mode)
		case 13:
			return f.string(&m.DeviceClass)
		}
		return nil
	})
}

type ListEntitiesSelectResponse struct {
	EntityInfo
	Options []string
}

var selectInfo = infoFields{icon: 5, disabled: 7, category: 8}

func (*ListEntitiesSelectResponse) MessageType() uint16    { return 52 }
func (*ListEntitiesSelectResponse) EntityKind() EntityKind { return KindSelect }

func (m *ListEntitiesSelectResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, selectInfo)
	e.strings(6, m.Options)
}

func (m *ListEntitiesSelectResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, selectInfo); ok {
			return err
		}
		if f.num == 6 {
			return f.appendString(&m.Options)
		}
		return nil
	})
}

type ListEntitiesLockResponse struct {
	EntityInfo
	AssumedState bool
	SupportsOpen bool
	RequiresCode bool
	CodeFormat   string
}

var lockInfo = infoFields{icon: 5, disabled: 6, category: 7}

func (*ListEntitiesLockResponse) MessageType() uint16    { return 58 }
func (*ListEntitiesLockResponse) EntityKind() EntityKind { return KindLock }

func (m *ListEntitiesLockResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, lockInfo)
	e.bool(8, m.AssumedState)
	e.bool(9, m.SupportsOpen)
	e.bool(10, m.RequiresCode)
	e.string(11, m.CodeFormat)
}

func (m *ListEntitiesLockResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, lockInfo); ok {
			return err
		}
		switch f.num {
		case 8:
			return f.bool(&m.AssumedState)
		case 9:
			return f.bool(&m.SupportsOpen)
		case 10:
			return f.bool(&m.RequiresCode)
		case 11:
			return f.string(&m.CodeFormat)
		}
		return nil
	})
}

type ListEntitiesButtonResponse struct {
	EntityInfo
	DeviceClass string
}

var buttonInfo = infoFields{icon: 5, disabled: 6, category: 7}

func (*ListEntitiesButtonResponse) MessageType() uint16    { return 61 }
func (*ListEntitiesButtonResponse) EntityKind() EntityKind { return KindButton }

func (m *ListEntitiesButtonResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, buttonInfo)
	e.string(8, m.DeviceClass)
}

func (m *ListEntitiesButtonResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, buttonInfo); ok {
			return err
		}
		if f.num == 8 {
			return f.string(&m.DeviceClass)
		}
		return nil
	})
}

type ListEntitiesTextResponse struct {
	EntityInfo
	MinLength uint32
	MaxLength uint32
	Pattern   string
	Mode      TextMode
}

var textInfo = infoFields{icon: 5, disabled: 6, category: 7}

func (*ListEntitiesTextResponse) MessageType() uint16    { return 97 }
func (*ListEntitiesTextResponse) EntityKind() EntityKind { return KindText }

func (m *ListEntitiesTextResponse) marshal(e *encoder) {
	m.EntityInfo.marshal(e, textInfo)
	e.uint32(8, m.MinLength)
	e.uint32(9, m.MaxLength)
	e.string(10, m.Pattern)
	encodeEnum(e, 11, m.Mode)
}

func (m *ListEntitiesTextResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if ok, err := m.EntityInfo.unmarshalField(f, textInfo); ok {
			return err
		}
		switch f.num {
		case 8:
			return f.uint32(&m.MinLength)
		case 9:
			return f.uint32(&m.MaxLength)
		case 10:
			return f.string(&m.Pattern)
		case 11:
			return decodeEnum(f, &m.Mode)
		}
		return nil
	})
}

// dateTimeInfo covers the date, time and date-time descriptors, which
// carry nothing beyond identity.
var dateTimeInfo = infoFields{icon: 5, disabled: 6, category: 7}

type ListEntitiesDateResponse struct{ EntityInfo }

func (*ListEntitiesDateResponse) MessageType() uint16    { return 100 }
func (*ListEntitiesDateResponse) EntityKind() EntityKind { return KindDate }

func (m *ListEntitiesDateResponse) marshal(e *encoder) { m.EntityInfo.marshal(e, dateTimeInfo) }

func (m *ListEntitiesDateResponse) unmarshal(b []byte) error {
	return unmarshalInfoOnly(b, &m.EntityInfo)
}

type ListEntitiesTimeResponse struct{ EntityInfo }

func (*ListEntitiesTimeResponse) MessageType() uint16    { return 103 }
func (*ListEntitiesTimeResponse) EntityKind() EntityKind { return KindTime }

func (m *ListEntitiesTimeResponse) marshal(e *encoder) { m.EntityInfo.marshal(e, dateTimeInfo) }

func (m *ListEntitiesTimeResponse) unmarshal(b []byte) error {
	return unmarshalInfoOnly(b, &m.EntityInfo)
}

type ListEntitiesDateTimeResponse struct{ EntityInfo }

func (*ListEntitiesDateTimeResponse) MessageType() uint16    { return 112 }
func (*ListEntitiesDateTimeResponse) EntityKind() EntityKind { return KindDateTime }

func (m *ListEntitiesDateTimeResponse) marshal(e *encoder) { m.EntityInfo.marshal(e, dateTimeInfo) }

func (m *ListEntitiesDateTimeResponse) unmarshal(b []byte) error {
	return unmarshalInfoOnly(b, &m.EntityInfo)
}

func unmarshalInfoOnly(b []byte, info *EntityInfo) error {
	return walkFields(b, func(f field) error {
		_, err := info.unmarshalField(f, dateTimeInfo)
		return err
	})
}
