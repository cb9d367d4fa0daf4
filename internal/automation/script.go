//go:build !no_automation

package automation

// ScriptMeta holds the metadata kept in a script's header line.
type ScriptMeta struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Enabled     bool   `json:"enabled"`

	// Devices limits the notifications a script sees to these device
	// names. Empty means every device.
	Devices []string `json:"devices,omitempty"`
}

// Script is one automation script stored on disk.
type Script struct {
	ID       string     `json:"id"` // filename stem (no .lua)
	Meta     ScriptMeta `json:"meta"`
	LuaCode  string     `json:"lua_code"`
	FilePath string     `json:"-"`
}
