package api

// Command requests. Optional fields are guarded by Has* flags, as on the
// wire; a field is only honoured by the device when its flag is set.

type CoverCommandRequest struct {
	Key              uint32
	HasLegacyCommand bool
	LegacyCommand    LegacyCoverCommand
	HasPosition      bool
	Position         float32
	HasTilt          bool
	Tilt             float32
	Stop             bool
}

func (*CoverCommandRequest) MessageType() uint16 { return 30 }

func (m *CoverCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.HasLegacyCommand)
	encodeEnum(e, 3, m.LegacyCommand)
	e.bool(4, m.HasPosition)
	e.float(5, m.Position)
	e.bool(6, m.HasTilt)
	e.float(7, m.Tilt)
	e.bool(8, m.Stop)
}

func (m *CoverCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.HasLegacyCommand)
		case 3:
			return decodeEnum(f, &m.LegacyCommand)
		case 4:
			return f.bool(&m.HasPosition)
		case 5:
			return f.float(&m.Position)
		case 6:
			return f.bool(&m.HasTilt)
		case 7:
			return f.float(&m.Tilt)
		case 8:
			return f.bool(&m.Stop)
		}
		return nil
	})
}

type FanCommandRequest struct {
	Key            uint32
	HasState       bool
	State          bool
	HasSpeed       bool
	Speed          FanSpeed
	HasOscillating bool
	Oscillating    bool
	HasDirection   bool
	Direction      FanDirection
	HasSpeedLevel  bool
	SpeedLevel     int32
	HasPresetMode  bool
	PresetMode     string
}

func (*FanCommandRequest) MessageType() uint16 { return 31 }

func (m *FanCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.HasState)
	e.bool(3, m.State)
	e.bool(4, m.HasSpeed)
	encodeEnum(e, 5, m.Speed)
	e.bool(6, m.HasOscillating)
	e.bool(7, m.Oscillating)
	e.bool(8, m.HasDirection)
	encodeEnum(e, 9, m.Direction)
	e.bool(10, m.HasSpeedLevel)
	e.int32(11, m.SpeedLevel)
	e.bool(12, m.HasPresetMode)
	e.string(13, m.PresetMode)
}

func (m *FanCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.HasState)
		case 3:
			return f.bool(&m.State)
		case 4:
			return f.bool(&m.HasSpeed)
		case 5:
			return decodeEnum(f, &m.Speed)
		case 6:
			return f.bool(&m.HasOscillating)
		case 7:
			return f.bool(&m.Oscillating)
		case 8:
			return f.bool(&m.HasDirection)
		case 9:
			return decodeEnum(f, &m.Direction)
		case 10:
			return f.bool(&m.HasSpeedLevel)
		case 11:
			return f.int32(&m.SpeedLevel)
		case 12:
			return f.bool(&m.HasPresetMode)
		case 13:
			return f.string(&m.PresetMode)
		}
		return nil
	})
}

type LightCommandRequest struct {
	Key                 uint32
	HasState            bool
	State               bool
	HasBrightness       bool
	Brightness          float32
	HasColorMode        bool
	ColorMode           ColorMode
	HasColorBrightness  bool
	ColorBrightness     float32
	HasRGB              bool
	Red                 float32
	Green               float32
	Blue                float32
	HasWhite            bool
	White               float32
	HasColorTemperature bool
	ColorTemperature    float32
	HasColdWhite        bool
	ColdWhite           float32
	HasWarmWhite        bool
	WarmWhite           float32
	HasTransitionLength bool
	TransitionLength    uint32
	HasFlashLength      bool
	FlashLength         uint32
	HasEffect           bool
	Effect              string
}

func (*LightCommandRequest) MessageType() uint16 { return 32 }

func (m *LightCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.HasState)
	e.bool(3, m.State)
	e.bool(4, m.HasBrightness)
	e.float(5, m.Brightness)
	e.bool(6, m.HasRGB)
	e.float(7, m.Red)
	e.float(8, m.Green)
	e.float(9, m.Blue)
	e.bool(10, m.HasWhite)
	e.float(11, m.White)
	e.bool(12, m.HasColorTemperature)
	e.float(13, m.ColorTemperature)
	e.bool(14, m.HasTransitionLength)
	e.uint32(15, m.TransitionLength)
	e.bool(16, m.HasFlashLength)
	e.uint32(17, m.FlashLength)
	e.bool(18, m.HasEffect)
	e.string(19, m.Effect)
	e.bool(20, m.HasColorBrightness)
	e.float(21, m.ColorBrightness)
	e.bool(22, m.HasColorMode)
	encodeEnum(e, 23, m.ColorMode)
	e.bool(24, m.HasColdWhite)
	e.float(25, m.ColdWhite)
	e.bool(26, m.HasWarmWhite)
	e.float(27, m.WarmWhite)
}

func (m *LightCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.HasState)
		case 3:
			return f.bool(&m.State)
		case 4:
			return f.bool(&m.HasBrightness)
		case 5:
			return f.float(&m.Brightness)
		case 6:
			return f.bool(&m.HasRGB)
		case 7:
			return f.float(&m.Red)
		case 8:
			return f.float(&m.Green)
		case 9:
			return f.float(&m.Blue)
		case 10:
			return f.bool(&m.HasWhite)
		case 11:
			return f.float(&m.White)
		case 12:
			return f.bool(&m.HasColorTemperature)
		case 13:
			return f.float(&m.ColorTemperature)
		case 14:
			return f.bool(&m.HasTransitionLength)
		case 15:
			return f.uint32(&m.TransitionLength)
		case 16:
			return f.bool(&m.HasFlashLength)
		case 17:
			return f.uint32(&m.FlashLength)
		case 18:
			return f.bool(&m.HasEffect)
		case 19:
			return f.string(&m.Effect)
		case 20:
			return f.bool(&m.HasColorBrightness)
		case 21:
			return f.float(&m.ColorBrightness)
		case 22:
			return f.bool(&m.HasColorMode)
		case 23:
			return decodeEnum(f, &m.ColorMode)
		case 24:
			return f.bool(&m.HasColdWhite)
		case 25:
			return f.float(&m.ColdWhite)
		case 26:
			return f.bool(&m.HasWarmWhite)
		case 27:
			return f.float(&m.WarmWhite)
		}
		return nil
	})
}

type SwitchCommandRequest struct {
	Key   uint32
	State bool
}

func (*SwitchCommandRequest) MessageType() uint16 { return 33 }

func (m *SwitchCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.State)
}

func (m *SwitchCommandRequest) unmarshal(b []byte) error {
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

type ClimateCommandRequest struct {
	Key                      uint32
	HasMode                  bool
	Mode                     ClimateMode
	HasTargetTemperature     bool
	TargetTemperature        float32
	HasTargetTemperatureLow  bool
	TargetTemperatureLow     float32
	HasTargetTemperatureHigh bool
	TargetTemperatureHigh    float32
	HasFanMode               bool
	FanMode                  ClimateFanMode
	HasSwingMode             bool
	SwingMode                ClimateSwingMode
	HasCustomFanMode         bool
	CustomFanMode            string
	HasPreset                bool
	Preset                   ClimatePreset
	HasCustomPreset          bool
	CustomPreset             string
	HasTargetHumidity        bool
	TargetHumidity           float32
}

func (*ClimateCommandRequest) MessageType() uint16 { return 48 }

func (m *ClimateCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.bool(2, m.HasMode)
	encodeEnum(e, 3, m.Mode)
	e.bool(4, m.HasTargetTemperature)
	e.float(5, m.TargetTemperature)
	e.bool(6, m.HasTargetTemperatureLow)
	e.float(7, m.TargetTemperatureLow)
	e.bool(8, m.HasTargetTemperatureHigh)
	e.float(9, m.TargetTemperatureHigh)
	e.bool(12, m.HasFanMode)
	encodeEnum(e, 13, m.FanMode)
	e.bool(14, m.HasSwingMode)
	encodeEnum(e, 15, m.SwingMode)
	e.bool(16, m.HasCustomFanMode)
	e.string(17, m.CustomFanMode)
	e.bool(18, m.HasPreset)
	encodeEnum(e, 19, m.Preset)
	e.bool(20, m.HasCustomPreset)
	e.string(21, m.CustomPreset)
	e.bool(22, m.HasTargetHumidity)
	e.float(23, m.TargetHumidity)
}

func (m *ClimateCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.bool(&m.HasMode)
		case 3:
			return decodeEnum(f, &m.Mode)
		case 4:
			return f.bool(&m.HasTargetTemperature)
		case 5:
			return f.float(&m.TargetTemperature)
		case 6:
			return f.bool(&m.HasTargetTemperatureLow)
		case 7:
			return f.float(&m.TargetTemperatureLow)
		case 8:
			return f.bool(&m.HasTargetTemperatureHigh)
		case 9:
			return f.float(&m.TargetTemperatureHigh)
		case 12:
			return f.bool(&m.HasFanMode)
		case 13:
			return decodeEnum(f, &m.FanMode)
		case 14:
			return f.bool(&m.HasSwingMode)
		case 15:
			return decodeEnum(f, &m.SwingMode)
		case 16:
			return f.bool(&m.HasCustomFanMode)
		case 17:
			return f.string(&m.CustomFanMode)
		case 18:
			return f.bool(&m.HasPreset)
		case 19:
			return decodeEnum(f, &m.Preset)
		case 20:
			return f.bool(&m.HasCustomPreset)
		case 21:
			return f.string(&m.CustomPreset)
		case 22:
			return f.bool(&m.HasTargetHumidity)
		case 23:
			return f.float(&m.TargetHumidity)
		}
		return nil
	})
}

type NumberCommandRequest struct {
	Key   uint32
	State float32
}

func (*NumberCommandRequest) MessageType() uint16 { return 51 }

func (m *NumberCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.float(2, m.State)
}

func (m *NumberCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.float(&m.State)
		}
		return nil
	})
}

type SelectCommandRequest struct {
	Key   uint32
	State string
}

func (*SelectCommandRequest) MessageType() uint16 { return 54 }

func (m *SelectCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.string(2, m.State)
}

func (m *SelectCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.string(&m.State)
		}
		return nil
	})
}

type LockCommandRequest struct {
	Key     uint32
	Command LockCommand
	HasCode bool
	Code    string
}

func (*LockCommandRequest) MessageType() uint16 { return 60 }

func (m *LockCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	encodeEnum(e, 2, m.Command)
	e.bool(3, m.HasCode)
	e.string(4, m.Code)
}

func (m *LockCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return decodeEnum(f, &m.Command)
		case 3:
			return f.bool(&m.HasCode)
		case 4:
			return f.string(&m.Code)
		}
		return nil
	})
}

type ButtonCommandRequest struct {
	Key uint32
}

func (*ButtonCommandRequest) MessageType() uint16 { return 62 }

func (m *ButtonCommandRequest) marshal(e *encoder) { e.fixed32(1, m.Key) }

func (m *ButtonCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		if f.num == 1 {
			return f.fixed32(&m.Key)
		}
		return nil
	})
}

type TextCommandRequest struct {
	Key   uint32
	State string
}

func (*TextCommandRequest) MessageType() uint16 { return 99 }

func (m *TextCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.string(2, m.State)
}

func (m *TextCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.string(&m.State)
		}
		return nil
	})
}

type DateCommandRequest struct {
	Key   uint32
	Year  uint32
	Month uint32
	Day   uint32
}

func (*DateCommandRequest) MessageType() uint16 { return 102 }

func (m *DateCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.uint32(2, m.Year)
	e.uint32(3, m.Month)
	e.uint32(4, m.Day)
}

func (m *DateCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.uint32(&m.Year)
		case 3:
			return f.uint32(&m.Month)
		case 4:
			return f.uint32(&m.Day)
		}
		return nil
	})
}

type TimeCommandRequest struct {
	Key    uint32
	Hour   uint32
	Minute uint32
	Second uint32
}

func (*TimeCommandRequest) MessageType() uint16 { return 105 }

func (m *TimeCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.uint32(2, m.Hour)
	e.uint32(3, m.Minute)
	e.uint32(4, m.Second)
}

func (m *TimeCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.uint32(&m.Hour)
		case 3:
			return f.uint32(&m.Minute)
		case 4:
			return f.uint32(&m.Second)
		}
		return nil
	})
}

type DateTimeCommandRequest struct {
	Key          uint32
	EpochSeconds uint32
}

func (*DateTimeCommandRequest) MessageType() uint16 { return 114 }

func (m *DateTimeCommandRequest) marshal(e *encoder) {
	e.fixed32(1, m.Key)
	e.fixed32(2, m.EpochSeconds)
}

func (m *DateTimeCommandRequest) unmarshal(b []byte) error {
	return walkFields(b, func(f field) error {
		switch f.num {
		case 1:
			return f.fixed32(&m.Key)
		case 2:
			return f.fixed32(&m.EpochSeconds)
		}
		return nil
	})
}
