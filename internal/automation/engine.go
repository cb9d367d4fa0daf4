//go:build !no_automation

// Package automation runs Lua scripts that react to device notifications
// and drive entities.
package automation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	lua "github.com/yuin/gopher-lua"

	"esphome-go/internal/device"
	"esphome-go/internal/entity"
)

const (
	defaultRunTimeout = 5 * time.Second
	commandQueueSize  = 64
)

// Target is the part of a device client scripts can reach.
type Target interface {
	Registry() *entity.Registry
	SendHomeAssistantState(entityID, attribute, state string) error
}

// Config holds engine settings.
type Config struct {
	ExecAllowlist []string      // absolute paths system.exec may run
	ExecTimeout   time.Duration // per system.exec call; default 10s
	RunTimeout    time.Duration // one-shot runs; default 5s
}

// RunResult is the result of a one-shot script execution.
type RunResult struct {
	OK       bool     `json:"ok"`
	Error    string   `json:"error,omitempty"`
	Logs     []string `json:"logs"`
	Duration string   `json:"duration"`
}

// luaEventHandler is a callback registered with esphome.on.
type luaEventHandler struct {
	eventType string
	filter    map[string]string
	fn        *lua.LFunction
}

// scriptVM is the Lua state of one running script. Every access to state
// after startup goes through commands.
type scriptVM struct {
	id       string
	devices  []string
	state    *lua.LState
	commands chan func(*lua.LState)
	ctx      context.Context
	cancel   context.CancelFunc

	mu       sync.Mutex // protects handlers
	handlers []luaEventHandler

	// capture collects log output of one-shot runs.
	capture func(string)
}

// Engine manages script VMs and dispatches device notifications to them.
type Engine struct {
	manager *Manager
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	vms     map[string]*scriptVM
	targets map[string]Target
	unsubs  []func()
}

// NewEngine creates an engine for the scripts of mgr.
func NewEngine(mgr *Manager, cfg Config, logger *slog.Logger) *Engine {
	if cfg.RunTimeout == 0 {
		cfg.RunTimeout = defaultRunTimeout
	}
	return &Engine{
		manager: mgr,
		cfg:     cfg,
		logger:  logger.With("component", "automation"),
		now:     time.Now,
		vms:     make(map[string]*scriptVM),
		targets: make(map[string]Target),
	}
}

// AddDevice makes a device reachable by name from scripts and routes its
// notifications to them.
func (e *Engine) AddDevice(name string, t Target, bus *device.EventBus) {
	e.mu.Lock()
	e.targets[name] = t
	e.mu.Unlock()
	if bus == nil {
		return
	}
	unsub := bus.OnAll(func(n device.Notification) { e.dispatch(name, n) })
	e.mu.Lock()
	e.unsubs = append(e.unsubs, unsub)
	e.mu.Unlock()
}

// Start loads every enabled script.
func (e *Engine) Start() {
	scripts, err := e.manager.List()
	if err != nil {
		e.logger.Error("load scripts", "err", err)
		return
	}
	for _, s := range scripts {
		if !s.Meta.Enabled {
			continue
		}
		if err := e.startScript(s); err != nil {
			e.logger.Error("start script", "id", s.ID, "err", err)
		}
	}
	e.logger.Info("automation engine started", "scripts", len(e.Running()))
}

// Stop cancels all VMs and unsubscribes from the event buses.
func (e *Engine) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, vm := range e.vms {
		vm.cancel()
		delete(e.vms, id)
	}
	for _, unsub := range e.unsubs {
		unsub()
	}
	e.unsubs = nil
	e.logger.Info("automation engine stopped")
}

// Running returns the IDs of running scripts, sorted.
func (e *Engine) Running() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	ids := make([]string, 0, len(e.vms))
	for id := range e.vms {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// ReloadScript stops the script's VM, if any, and starts it again when it
// is enabled.
func (e *Engine) ReloadScript(id string) error {
	e.StopScript(id)
	s, err := e.manager.Get(id)
	if err != nil {
		return fmt.Errorf("get script: %w", err)
	}
	if !s.Meta.Enabled {
		return nil
	}
	return e.startScript(s)
}

// StopScript stops a running script.
func (e *Engine) StopScript(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if vm, ok := e.vms[id]; ok {
		vm.cancel()
		delete(e.vms, id)
		e.logger.Info("script stopped", "id", id)
	}
}

// RunScript executes a stored script once in a throwaway VM.
func (e *Engine) RunScript(id string) *RunResult {
	s, err := e.manager.Get(id)
	if err != nil {
		return &RunResult{Error: err.Error(), Duration: "0s"}
	}
	return e.RunLuaCode(s.LuaCode)
}

// RunLuaCode executes code once in a throwaway VM, capturing its log
// output. Handlers the code registers are each invoked with a synthetic
// event built from their filter, so their actions run too.
func (e *Engine) RunLuaCode(code string) *RunResult {
	start := e.now()
	ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RunTimeout)
	defer cancel()

	var (
		logMu sync.Mutex
		logs  = []string{}
	)
	vm := e.newVM(ctx, cancel, "_run")
	vm.capture = func(line string) {
		logMu.Lock()
		logs = append(logs, line)
		logMu.Unlock()
	}
	L := vm.state
	defer L.Close()

	result := func(err error) *RunResult {
		logMu.Lock()
		defer logMu.Unlock()
		r := &RunResult{OK: err == nil, Logs: slices.Clone(logs), Duration: e.now().Sub(start).String()}
		if err != nil {
			r.Error = err.Error()
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				r.Error = "timeout (" + e.cfg.RunTimeout.String() + ")"
			}
		}
		return r
	}

	if err := L.DoString(code); err != nil {
		return result(err)
	}
	for _, h := range vm.snapshotHandlers() {
		event := L.NewTable()
		event.RawSetString("type", lua.LString(h.eventType))
		for k, v := range h.filter {
			event.RawSetString(k, lua.LString(v))
		}
		if err := L.CallByParam(lua.P{Fn: h.fn, NRet: 0, Protect: true}, event); err != nil {
			return result(err)
		}
	}
	return result(nil)
}

func (e *Engine) newVM(ctx context.Context, cancel context.CancelFunc, id string) *scriptVM {
	L := lua.NewState()
	L.SetContext(ctx)
	for _, name := range []string{"os", "io", "loadfile", "dofile", "require", "load", "debug", "package"} {
		L.SetGlobal(name, lua.LNil)
	}
	vm := &scriptVM{
		id:       id,
		state:    L,
		commands: make(chan func(*lua.LState), commandQueueSize),
		ctx:      ctx,
		cancel:   cancel,
	}
	registerESPHomeModule(L, vm, e)
	registerSystemModule(L, vm, e)
	return vm
}

func (e *Engine) startScript(s *Script) error {
	ctx, cancel := context.WithCancel(context.Background())
	vm := e.newVM(ctx, cancel, s.ID)
	vm.devices = s.Meta.Devices
	L := vm.state

	// Top-level code only registers handlers; it must not block.
	runCtx, runCancel := context.WithTimeout(ctx, e.cfg.RunTimeout)
	L.SetContext(runCtx)
	err := L.DoString(s.LuaCode)
	runCancel()
	if err != nil {
		cancel()
		L.Close()
		return fmt.Errorf("execute script %s: %w", s.ID, err)
	}
	L.SetContext(ctx)

	e.mu.Lock()
	if old, ok := e.vms[s.ID]; ok {
		old.cancel()
	}
	e.vms[s.ID] = vm
	e.mu.Unlock()

	go func() {
		defer L.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case fn := <-vm.commands:
				fn(L)
			}
		}
	}()

	e.logger.Info("script started", "id", s.ID, "name", s.Meta.Name)
	return nil
}

// enqueue runs fn on the VM goroutine. It reports false when the VM is
// stopped or its queue is full.
func (vm *scriptVM) enqueue(fn func(*lua.LState)) bool {
	select {
	case <-vm.ctx.Done():
		return false
	default:
	}
	select {
	case vm.commands <- fn:
		return true
	default:
		return false
	}
}

func (vm *scriptVM) snapshotHandlers() []luaEventHandler {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return slices.Clone(vm.handlers)
}

func (vm *scriptVM) watches(deviceName string) bool {
	return len(vm.devices) == 0 || slices.Contains(vm.devices, deviceName)
}

// dispatch routes a notification from the named device to every matching
// handler.
func (e *Engine) dispatch(deviceName string, n device.Notification) {
	if n.Type == device.UnitRaw {
		return
	}
	fields := eventFields(deviceName, n)

	e.mu.Lock()
	vms := make([]*scriptVM, 0, len(e.vms))
	for _, vm := range e.vms {
		vms = append(vms, vm)
	}
	e.mu.Unlock()

	for _, vm := range vms {
		if !vm.watches(deviceName) {
			continue
		}
		for _, h := range vm.snapshotHandlers() {
			if !matchesHandler(h, n.Type, fields) {
				continue
			}
			fn := h.fn
			if !vm.enqueue(func(L *lua.LState) { e.callHandler(L, fn, fields) }) {
				e.logger.Warn("script busy, dropping event", "script", vm.id, "type", n.Type)
			}
		}
	}
}

// eventFields is the event table handed to scripts: the notification
// fields plus the device name and, for entity updates, "kind.object_id".
func eventFields(deviceName string, n device.Notification) map[string]any {
	fields := n.Fields()
	fields["device"] = deviceName
	if kind, ok := fields["kind"].(string); ok {
		fields["entity"] = kind + "." + fmt.Sprint(fields["object_id"])
	}
	return fields
}

func matchesHandler(h luaEventHandler, typ string, fields map[string]any) bool {
	if h.eventType != typ {
		return false
	}
	for k, want := range h.filter {
		v, ok := fields[k]
		if !ok || fmt.Sprint(v) != want {
			return false
		}
	}
	return true
}

func (e *Engine) callHandler(L *lua.LState, fn *lua.LFunction, fields map[string]any) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("lua handler panic", "err", r)
		}
	}()
	if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}, goToLua(L, fields)); err != nil {
		e.logger.Error("lua handler error", "err", err)
	}
}

// target returns the device registered under name.
func (e *Engine) target(name string) (Target, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.targets[name]
	return t, ok
}

func (e *Engine) deviceNames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.targets))
	for name := range e.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findEntity resolves "kind.object_id", or a bare object_id when only one
// entity carries it.
func findEntity(reg *entity.Registry, ref string) (entity.Entity, error) {
	if reg == nil {
		return nil, errors.New("device not connected")
	}
	var match entity.Entity
	for _, en := range reg.Sorted() {
		id := en.Info().ObjectID
		if string(en.Kind())+"."+id == ref {
			return en, nil
		}
		if id == ref {
			if match != nil {
				return nil, fmt.Errorf("entity %q is ambiguous", ref)
			}
			match = en
		}
	}
	if match == nil {
		return nil, fmt.Errorf("entity %q not found", ref)
	}
	return match, nil
}

// goToLua converts a Go value to a Lua value.
func goToLua(L *lua.LState, v any) lua.LValue {
	switch val := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(val)
	case string:
		return lua.LString(val)
	case int:
		return lua.LNumber(val)
	case int32:
		return lua.LNumber(val)
	case int64:
		return lua.LNumber(val)
	case uint16:
		return lua.LNumber(val)
	case uint32:
		return lua.LNumber(val)
	case uint64:
		return lua.LNumber(val)
	case float32:
		return lua.LNumber(val)
	case float64:
		return lua.LNumber(val)
	case map[string]any:
		t := L.NewTable()
		for k, vv := range val {
			t.RawSetString(k, goToLua(L, vv))
		}
		return t
	case map[string]string:
		t := L.NewTable()
		for k, vv := range val {
			t.RawSetString(k, lua.LString(vv))
		}
		return t
	case []any:
		t := L.NewTable()
		for i, vv := range val {
			t.RawSetInt(i+1, goToLua(L, vv))
		}
		return t
	case []string:
		t := L.NewTable()
		for i, vv := range val {
			t.RawSetInt(i+1, lua.LString(vv))
		}
		return t
	case fmt.Stringer:
		return lua.LString(val.String())
	default:
		return lua.LString(fmt.Sprintf("%v", val))
	}
}

// luaToString renders a filter value the way fmt.Sprint renders the
// matching Go field.
func luaToString(v lua.LValue) string {
	switch v := v.(type) {
	case lua.LBool:
		if v {
			return "true"
		}
		return "false"
	case lua.LNumber:
		return fmt.Sprint(float64(v))
	default:
		return strings.TrimSpace(v.String())
	}
}
