package api

// State responses. Each is addressed to an entity by its fixed32 key.

type BinarySensorStateResponse struct {
	Key          uint32
	State        bool
	MissingState bool
}

func (*BinarySensorStateResponse) MessageType() uint16 { return 21 }
func (m *BinarySensorStateResponse) StateKey() uint32  { return m.Key }

func (m *BinarySensorStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.State)
	e.bool(3, m.MissingState)
}

func (m *BinarySensorStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.State)
		case 3:
			return f.bool(&m.MissingState)
		}
		return nil
	})
}

type CoverStateResponse struct {
	Key              uint32
	LegacyState      LegacyCoverState
	Position         float32
	Tilt             float32
	CurrentOperation CoverOperation
}

func (*CoverStateResponse) MessageType() uint16 { return 22 }
func (m *CoverStateResponse) StateKey() uint32  { return m.Key }

func (m *CoverStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	encodeEnum(e, 2, m.LegacyState)
	e.float(3, m.Position)
	e.float(4, m.Tilt)
	encodeEnum(e, 5, m.CurrentOperation)
}

func (m *CoverStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return decodeEnum(f, &m.LegacyState)
		case 3:
			return f.float(&m.Position)
		case 4:
			return f.float(&m.Tilt)
		case 5:
			return decodeEnum(f, &m.CurrentOperation)
		}
		return nil
	})
}

type FanStateResponse struct {
	Key         uint32
	State       bool
	Oscillating bool
	Speed       FanSpeed
	Direction   FanDirection
	SpeedLevel  int32
	PresetMode  string
}

func (*FanStateResponse) MessageType() uint16 { return 23 }
func (m *FanStateResponse) StateKey() uint32  { return m.Key }

func (m *FanStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.State)
	e.bool(3, m.Oscillating)
	encodeEnum(e, 4, m.Speed)
	encodeEnum(e, 5, m.Direction)
	e.int32(6, m.SpeedLevel)
	e.string(7, m.PresetMode)
}

func (m *FanStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.State)
		case 3:
			return f.bool(&m.Oscillating)
		case 4:
			return decodeEnum(f, &m.Speed)
		case 5:
			return decodeEnum(f, &m.Direction)
		case 6:
			return f.int32(&m.SpeedLevel)
		case 7:
			return f.string(&m.PresetMode)
		}
		return nil
	})
}

type LightStateResponse struct {
	Key              uint32
	State            bool
	Brightness       float32
	ColorMode        ColorMode
	ColorBrightness  float32
	Red              float32
	Green            float32
	Blue             float32
	White            float32
	ColorTemperature float32
	ColdWhite        float32
	WarmWhite        float32
	Effect           string
}

func (*LightStateResponse) MessageType() uint16 { return 24 }
func (m *LightStateResponse) StateKey() uint32  { return m.Key }

func (m *LightStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.State)
	e.float(3, m.Brightness)
	e.float(4, m.Red)
	e.float(5, m.Green)
	e.float(6, m.Blue)
	e.float(7, m.White)
	e.float(8, m.ColorTemperature)
	e.string(9, m.Effect)
	e.float(10, m.ColorBrightness)
	encodeEnum(e, 11, m.ColorMode)
	e.float(12, m.ColdWhite)
	e.float(13, m.WarmWhite)
}

func (m *LightStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.State)
		case 3:
			return f.float(&m.Brightness)
		case 4:
			return f.float(&m.Red)
		case 5:
			return f.float(&m.Green)
		case 6:
			return f.float(&m.Blue)
		case 7:
			return f.float(&m.White)
		case 8:
			return f.float(&m.ColorTemperature)
		case 9:
			return f.string(&m.Effect)
		case 10:
			return f.float(&m.ColorBrightness)
		case 11:
			return decodeEnum(f, &m.ColorMode)
		case 12:
			return f.float(&m.ColdWhite)
		case 13:
			return f.float(&m.WarmWhite)
		}
		return nil
	})
}

type SensorStateResponse struct {
	Key          uint32
	State        float32
	MissingState bool
}

func (*SensorStateResponse) MessageType() uint16 { return 25 }
func (m *SensorStateResponse) StateKey() uint32  { return m.Key }

func (m *SensorStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.float(2, m.State)
	e.bool(3, m.MissingState)
}

func (m *SensorStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.float(&m.State)
		case 3:
			return f.bool(&m.MissingState)
		}
		return nil
	})
}

type SwitchStateResponse struct {
	Key   uint32
	State bool
}

func (*SwitchStateResponse) MessageType() uint16 { return 26 }
func (m *SwitchStateResponse) StateKey() uint32  { return m.Key }

func (m *SwitchStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.State)
}

func (m *SwitchStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.State)
		}
		return nil
	})
}

func marshalStringState(e *encoder, key uint32, state string, missing bool) {
	e.fixed32(1, key)
	e.string(2, state)
	e.bool(3, missing)
}

func unmarshalStringState(b []byte, key *uint32, state *string, missing *bool) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(key)
		case 2:
			return f.string(state)
		case 3:
			return f.bool(missing)
		}
		return nil
	})
}

type TextSensorStateResponse struct {
	Key          uint32
	State        string
	MissingState bool
}

func (*TextSensorStateResponse) MessageType() uint16 { return 27 }
func (m *TextSensorStateResponse) StateKey() uint32  { return m.Key }

func (m *TextSensorStateResponse) marshal(e *encoder) {
	marshalStringState(e, m.Key, m.State, m.MissingState)
}

func (m *TextSensorStateResponse) unmarshal(b []byte) error {
	return unmarshalStringState(b, &m.Key, &m.State, &m.MissingState)
}

type ClimateStateResponse struct {
	Key                   uint32
	Mode                  ClimateMode
	CurrentTemperature    float32
	TargetTemperature     float32
	TargetTemperatureLow  float32
	TargetTemperatureHigh float32
	UnusedLegacyAway      bool
	Action                ClimateAction
	FanMode               ClimateFanMode
	SwingMode             ClimateSwingMode
	CustomFanMode         string
	Preset                ClimatePreset
	CustomPreset          string
	CurrentHumidity       float32
	TargetHumidity        float32
}

func (*ClimateStateResponse) MessageType() uint16 { return 47 }
func (m *ClimateStateResponse) StateKey() uint32  { return m.Key }

func (m *ClimateStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	encodeEnum(e, 2, m.Mode)
	e.float(3, m.CurrentTemperature)
	e.float(4, m.TargetTemperature)
	e.float(5, m.TargetTemperatureLow)
	e.float(6, m.TargetTemperatureHigh)
	e.bool(7, m.UnusedLegacyAway)
	encodeEnum(e, 8, m.Action)
	encodeEnum(e, 9, m.FanMode)
	encodeEnum(e, 10, m.SwingMode)
	e.string(11, m.CustomFanMode)
	encodeEnum(e, 12, m.Preset)
	e.string(13, m.CustomPreset)
	e.float(14, m.CurrentHumidity)
	e.float(15, m.TargetHumidity)
}

func (m *ClimateStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return decodeEnum(f, &m.Mode)
		case 3:
			return f.float(&m.CurrentTemperature)
		case 4:
			return f.float(&m.TargetTemperature)
		case 5:
			return f.float(&m.TargetTemperatureLow)
		case 6:
			return f.float(&m.TargetTemperatureHigh)
		case 7:
			return f.bool(&m.UnusedLegacyAway)
		case 8:
			return decodeEnum(f, &m.Action)
		case 9:
			return decodeEnum(f, &m.FanMode)
		case 10:
			return decodeEnum(f, &m.SwingMode)
		case 11:
			return f.string(&m.CustomFanMode)
		case 12:
			return decodeEnum(f, &m.Preset)
		case 13:
			return f.string(&m.CustomPreset)
		case 14:
			return f.float(&m.CurrentHumidity)
		case 15:
			return f.float(&m.TargetHumidity)
		}
		return nil
	})
}

type NumberStateResponse struct {
	Key          uint32
	State        float32
	MissingState bool
}

func (*NumberStateResponse) MessageType() uint16 { return 50 }
func (m *NumberStateResponse) StateKey() uint32  { return m.Key }

func (m *NumberStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.float(2, m.State)
	e.bool(3, m.MissingState)
}

func (m *NumberStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.float(&m.State)
		case 3:
			return f.bool(&m.MissingState)
		}
		return nil
	})
}

type SelectStateResponse struct {
	Key          uint32
	State        string
	MissingState bool
}

func (*SelectStateResponse) MessageType() uint16 { return 53 }
func (m *SelectStateResponse) StateKey() uint32  { return m.Key }

func (m *SelectStateResponse) marshal(e *encoder) {
	marshalStringState(e, m.Key, m.State, m.MissingState)
}

func (m *SelectStateResponse) unmarshal(b []byte) error {
	return unmarshalStringState(b, &m.Key, &m.State, &m.MissingState)
}

type LockStateResponse struct {
	Key   uint32
	State LockState
}

func (*LockStateResponse) MessageType() uint16 { return 59 }
func (m *LockStateResponse) StateKey() uint32  { return m.Key }

func (m *LockStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	encodeEnum(e, 2, m.State)
}

func (m *LockStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return decodeEnum(f, &m.State)
		}
		return nil
	})
}

type TextStateResponse struct {
	Key          uint32
	State        string
	MissingState bool
}

func (*TextStateResponse) MessageType() uint16 { return 98 }
func (m *TextStateResponse) StateKey() uint32  { return m.Key }

func (m *TextStateResponse) marshal(e *encoder) {
	marshalStringState(e, m.Key, m.State, m.MissingState)
}

func (m *TextStateResponse) unmarshal(b []byte) error {
	return unmarshalStringState(b, &m.Key, &m.State, &m.MissingState)
}

type DateStateResponse struct {
	Key          uint32
	MissingState bool
	Year         uint32
	Month        uint32
	Day          uint32
}

func (*DateStateResponse) MessageType() uint16 { return 101 }
func (m *DateStateResponse) StateKey() uint32  { return m.Key }

func (m *DateStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.MissingState)
	e.uint32(3, m.Year)
	e.uint32(4, m.Month)
	e.uint32(5, m.Day)
}

func (m *DateStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.MissingState)
		case 3:
			return f.uint32(&m.Year)
		case 4:
			return f.uint32(&m.Month)
		case 5:
			return f.uint32(&m.Day)
		}
		return nil
	})
}

type TimeStateResponse struct {
	Key          uint32
	MissingState bool
	Hour         uint32
	Minute       uint32
	Second       uint32
}

func (*TimeStateResponse) MessageType() uint16 { return 104 }
func (m *TimeStateResponse) StateKey() uint32  { return m.Key }

func (m *TimeStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.MissingState)
	e.uint32(3, m.Hour)
	e.uint32(4, m.Minute)
	e.uint32(5, m.Second)
}

func (m *TimeStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.MissingState)
		case 3:
			return f.uint32(&m.Hour)
		case 4:
			return f.uint32(&m.Minute)
		case 5:
			return f.uint32(&m.Second)
		}
		return nil
	})
}

type DateTimeStateResponse struct {
	Key          uint32
	MissingState bool
	EpochSeconds uint32
}

func (*DateTimeStateResponse) MessageType() uint16 { return 113 }
func (m *DateTimeStateResponse) StateKey() uint32  { return m.Key }

func (m *DateTimeStateResponse) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.MissingState)
	e.fixed32(3, m.EpochSeconds)
}

func (m *DateTimeStateResponse) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.MissingState)
		case 3:
			return f.fixed32(&m.EpochSeconds)
		}
		return nil
	})
}
