//go:build no_automation

package automation

import (
	"errors"
	"log/slog"
	"time"

	"esphome-go/internal/device"
	"esphome-go/internal/entity"
)

// ErrScriptNotFound is returned for ids with no script file.
var ErrScriptNotFound = errors.New("automation: script not found")

// ScriptMeta holds the metadata kept in a script's header line.
type ScriptMeta struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Enabled     bool     `json:"enabled"`
	Devices     []string `json:"devices,omitempty"`
}

// Script is one automation script stored on disk.
type Script struct {
	ID       string     `json:"id"`
	Meta     ScriptMeta `json:"meta"`
	LuaCode  string     `json:"lua_code"`
	FilePath string     `json:"-"`
}

// RunResult is the result of a one-shot script execution.
type RunResult struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Logs     []string `json:"logs"`
	Duration string   `json:"duration"`
}

// Target is the part of a device client scripts can reach.
type Target interface {
	Registry() *entity.Registry
	SendHomeAssistantState(entityID, attribute, state string) error
}

// Config holds engine settings (stub).
type Config struct {
	ExecAllowlist []string
	ExecTimeout   time.Duration
	RunTimeout    time.Duration
}

// Manager is a no-op stub when automation is disabled.
type Manager struct{}

// NewManager returns a nil manager when automation is disabled.
func NewManager(_ string) (*Manager, error) { return nil, nil }

func (m *Manager) Dir() string                     { return "" }
func (m *Manager) List() ([]*Script, error)        { return nil, nil }
func (m *Manager) Get(_ string) (*Script, error)   { return nil, ErrScriptNotFound }
func (m *Manager) Save(s *Script) (*Script, error) { return s, nil }
func (m *Manager) Delete(_ string) error           { return nil }

// Engine is a no-op stub when automation is disabled.
type Engine struct{}

// NewEngine returns a no-op engine when automation is disabled.
func NewEngine(_ *Manager, _ Config, _ *slog.Logger) *Engine { return &Engine{} }

func (e *Engine) AddDevice(_ string, _ Target, _ *device.EventBus) {}
func (e *Engine) Start()                                           {}
func (e *Engine) Stop()                                            {}
func (e *Engine) Running() []string                                { return nil }
func (e *Engine) ReloadScript(_ string) error                      { return nil }
func (e *Engine) StopScript(_ string)                              {}

// RunScript returns a stub result.
func (e *Engine) RunScript(_ string) *RunResult {
	return &RunResult{Error: "automation disabled"}
}

// RunLuaCode returns a stub result.
func (e *Engine) RunLuaCode(_ string) *RunResult {
	return &RunResult{Error: "automation disabled"}
}
