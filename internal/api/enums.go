package api

import "strconv"

func enumString(names []string, v int32) string {
	if v >= 0 && int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return strconv.Itoa(int(v))
}

// EntityCategory groups entities in Home Assistant.
type EntityCategory int32

const (
	EntityCategoryNone EntityCategory = iota
	EntityCategoryConfig
	EntityCategoryDiagnostic
)

func (c EntityCategory) String() string {
	return enumString([]string{"none", "config", "diagnostic"}, int32(c))
}

// LogLevel is the device log level used by SubscribeLogsRequest and
// SubscribeLogsResponse.
type LogLevel int32

const (
	LogLevelNone LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelConfig
	LogLevelDebug
	LogLevelVerbose
	LogLevelVeryVerbose
)

var logLevelNames = []string{"none", "error", "warn", "info", "config", "debug", "verbose", "very_verbose"}

func (l LogLevel) String() string {
	return enumString(logLevelNames, int32(l))
}

// ParseLogLevel maps a level name ("debug", "very_verbose", ...) to a LogLevel.
func ParseLogLevel(s string) (LogLevel, bool) {
	for i, name := range logLevelNames {
		if name == s {
			return LogLevel(i), true
		}
	}
	return LogLevelNone, false
}

type CoverOperation int32

const (
	CoverOperationIdle CoverOperation = iota
	CoverOperationIsOpening
	CoverOperationIsClosing
)

func (o CoverOperation) String() string {
	return enumString([]string{"idle", "opening", "closing"}, int32(o))
}

// LegacyCoverState is the pre-position open/closed cover state.
type LegacyCoverState int32

const (
	LegacyCoverStateOpen LegacyCoverState = iota
	LegacyCoverStateClosed
)

// LegacyCoverCommand is the pre-position cover command.
type LegacyCoverCommand int32

const (
	LegacyCoverCommandOpen LegacyCoverCommand = iota
	LegacyCoverCommandClose
	LegacyCoverCommandStop
)

type FanSpeed int32

const (
	FanSpeedLow FanSpeed = iota
	FanSpeedMedium
	FanSpeedHigh
)

func (s FanSpeed) String() string {
	return enumString([]string{"low", "medium", "high"}, int32(s))
}

type FanDirection int32

const (
	FanDirectionForward FanDirection = iota
	FanDirectionReverse
)

func (d FanDirection) String() string {
	return enumString([]string{"forward", "reverse"}, int32(d))
}

// ColorMode is a bit-composed light color mode.
type ColorMode int32

const (
	ColorModeUnknown             ColorMode = 0
	ColorModeOnOff               ColorMode = 1
	ColorModeBrightness          ColorMode = 3
	ColorModeWhite               ColorMode = 7
	ColorModeColorTemperature    ColorMode = 11
	ColorModeColdWarmWhite       ColorMode = 19
	ColorModeRGB                 ColorMode = 35
	ColorModeRGBWhite            ColorMode = 39
	ColorModeRGBColorTemperature ColorMode = 47
	ColorModeRGBColdWarmWhite    ColorMode = 51
)

var colorModeNames = map[ColorMode]string{
	ColorModeUnknown:             "unknown",
	ColorModeOnOff:               "on_off",
	ColorModeBrightness:          "brightness",
	ColorModeWhite:               "white",
	ColorModeColorTemperature:    "color_temperature",
	ColorModeColdWarmWhite:       "cold_warm_white",
	ColorModeRGB:                 "rgb",
	ColorModeRGBWhite:            "rgb_white",
	ColorModeRGBColorTemperature: "rgb_color_temperature",
	ColorModeRGBColdWarmWhite:    "rgb_cold_warm_white",
}

func (m ColorMode) String() string {
	if s, ok := colorModeNames[m]; ok {
		return s
	}
	return strconv.Itoa(int(m))
}

type SensorStateClass int32

const (
	SensorStateClassNone SensorStateClass = iota
	SensorStateClassMeasurement
	SensorStateClassTotalIncreasing
	SensorStateClassTotal
)

func (c SensorStateClass) String() string {
	return enumString([]string{"none", "measurement", "total_increasing", "total"}, int32(c))
}

type ClimateMode int32

const (
	ClimateModeOff ClimateMode = iota
	ClimateModeHeatCool
	ClimateModeCool
	ClimateModeHeat
	ClimateModeFanOnly
	ClimateModeDry
	ClimateModeAuto
)

func (m ClimateMode) String() string {
	return enumString([]string{"off", "heat_cool", "cool", "heat", "fan_only", "dry", "auto"}, int32(m))
}

type ClimateFanMode int32

const (
	ClimateFanOn ClimateFanMode = iota
	ClimateFanOff
	ClimateFanAuto
	ClimateFanLow
	ClimateFanMedium
	ClimateFanHigh
	ClimateFanMiddle
	ClimateFanFocus
	ClimateFanDiffuse
	ClimateFanQuiet
)

func (m ClimateFanMode) String() string {
	return enumString([]string{"on", "off", "auto", "low", "medium", "high", "middle", "focus", "diffuse", "quiet"}, int32(m))
}

type ClimateSwingMode int32

const (
	ClimateSwingOff ClimateSwingMode = iota
	ClimateSwingBoth
	ClimateSwingVertical
	ClimateSwingHorizontal
)

func (m ClimateSwingMode) String() string {
	return enumString([]string{"off", "both", "vertical", "horizontal"}, int32(m))
}

// ClimateAction has a gap at 1.
type ClimateAction int32

const (
	ClimateActionOff     ClimateAction = 0
	ClimateActionCooling ClimateAction = 2
	ClimateActionHeating ClimateAction = 3
	ClimateActionIdle    ClimateAction = 4
	ClimateActionDrying  ClimateAction = 5
	ClimateActionFan     ClimateAction = 6
)

func (a ClimateAction) String() string {
	return enumString([]string{"off", "", "cooling", "heating", "idle", "drying", "fan"}, int32(a))
}

type ClimatePreset int32

const (
	ClimatePresetNone ClimatePreset = iota
	ClimatePresetHome
	ClimatePresetAway
	ClimatePresetBoost
	ClimatePresetComfort
	ClimatePresetEco
	ClimatePresetSleep
	ClimatePresetActivity
)

func (p ClimatePreset) String() string {
	return enumString([]string{"none", "home", "away", "boost", "comfort", "eco", "sleep", "activity"}, int32(p))
}

type NumberMode int32

const (
	NumberModeAuto NumberMode = iota
	NumberModeBox
	NumberModeSlider
)

func (m NumberMode) String() string {
	return enumString([]string{"auto", "box", "slider"}, int32(m))
}

type LockState int32

const (
	LockStateNone LockState = iota
	LockStateLocked
	LockStateUnlocked
	LockStateJammed
	LockStateLocking
	LockStateUnlocking
)

func (s LockState) String() string {
	return enumString([]string{"none", "locked", "unlocked", "jammed", "locking", "unlocking"}, int32(s))
}

type LockCommand int32

const (
	LockCommandUnlock LockCommand = iota
	LockCommandLock
	LockCommandOpen
)

func (c LockCommand) String() string {
	return enumString([]string{"unlock", "lock", "open"}, int32(c))
}

type TextMode int32

const (
	TextModeText TextMode = iota
	TextModePassword
)

func (m TextMode) String() string {
	return enumString([]string{"text", "password"}, int32(m))
}
