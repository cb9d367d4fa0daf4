package store

import "time"

// Device is the cached record of one ESPHome device, keyed by address.
type Device struct {
	Address         string    `json:"address"`
	Name            string    `json:"name"`
	FriendlyName    string    `json:"friendly_name,omitempty"`
	MACAddress      string    `json:"mac_address,omitempty"`
	Manufacturer    string    `json:"manufacturer,omitempty"`
	Model           string    `json:"model,omitempty"`
	ESPHomeVersion  string    `json:"esphome_version,omitempty"`
	CompilationTime string    `json:"compilation_time,omitempty"`
	ProjectName     string    `json:"project_name,omitempty"`
	ProjectVersion  string    `json:"project_version,omitempty"`
	APIVersion      string    `json:"api_version,omitempty"`
	Entities        []Entity  `json:"entities,omitempty"`
	FirstSeen       time.Time `json:"first_seen"`
	LastSeen        time.Time `json:"last_seen"`
	Online          bool      `json:"online"`
	LastError       string    `json:"last_error,omitempty"`
}

// Entity is one entry of a device's entity catalogue.
type Entity struct {
	Key               uint32 `json:"key"`
	Kind              string `json:"kind"`
	ObjectID          string `json:"object_id"`
	Name              string `json:"name"`
	UniqueID          string `json:"unique_id,omitempty"`
	Icon              string `json:"icon,omitempty"`
	DeviceClass       string `json:"device_class,omitempty"`
	Unit              string `json:"unit,omitempty"`
	Category          string `json:"category,omitempty"`
	DisabledByDefault bool   `json:"disabled_by_default,omitempty"`

	// Kind specific.
	ColorModes []string `json:"color_modes,omitempty"`
	Options    []string `json:"options,omitempty"`
	Min        float32  `json:"min,omitempty"`
	Max        float32  `json:"max,omitempty"`
	Step       float32  `json:"step,omitempty"`
}
