//go:build !no_automation

package automation

import (
	"time"

	lua "github.com/yuin/gopher-lua"

	"esphome-go/internal/entity"
)

const maxHandlersPerScript = 100

// registerESPHomeModule installs the `esphome` global table.
func registerESPHomeModule(L *lua.LState, vm *scriptVM, e *Engine) {
	fns := map[string]lua.LGFunction{
		"on":            func(L *lua.LState) int { return esphomeOn(L, vm) },
		"command":       func(L *lua.LState) int { return esphomeCommand(L, e) },
		"state":         func(L *lua.LState) int { return esphomeState(L, e) },
		"entities":      func(L *lua.LState) int { return esphomeEntities(L, e) },
		"devices":       func(L *lua.LState) int { return esphomeDevices(L, e) },
		"send_ha_state": func(L *lua.LState) int { return esphomeSendHAState(L, e) },
		"after":         func(L *lua.LState) int { return esphomeAfter(L, vm, e) },
		"log": func(L *lua.LState) int {
			e.scriptLog(vm, "info", L.CheckString(1))
			return 0
		},
	}
	L.SetGlobal("esphome", L.SetFuncs(L.NewTable(), fns))
}

// esphome.on(type, [filter], callback)
func esphomeOn(L *lua.LState, vm *scriptVM) int {
	h := luaEventHandler{eventType: L.CheckString(1)}
	if fn, ok := L.Get(2).(*lua.LFunction); ok {
		h.fn = fn
	} else {
		filter := L.CheckTable(2)
		h.fn = L.CheckFunction(3)
		h.filter = map[string]string{}
		filter.ForEach(func(k, v lua.LValue) {
			h.filter[k.String()] = luaToString(v)
		})
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	if len(vm.handlers) >= maxHandlersPerScript {
		L.RaiseError("too many handlers (max %d)", maxHandlersPerScript)
		return 0
	}
	vm.handlers = append(vm.handlers, h)
	return 0
}

// lookup resolves the (device, entity) arguments at positions 1 and 2.
func lookup(L *lua.LState, e *Engine) (entity.Entity, string) {
	name := L.CheckString(1)
	ref := L.CheckString(2)
	t, ok := e.target(name)
	if !ok {
		return nil, "unknown device " + name
	}
	en, err := findEntity(t.Registry(), ref)
	if err != nil {
		return nil, name + ": " + err.Error()
	}
	return en, ""
}

// esphome.command(device, entity, command) -> true | nil, err
func esphomeCommand(L *lua.LState, e *Engine) int {
	en, msg := lookup(L, e)
	command := L.OptString(3, "")
	if en == nil {
		return pushError(L, e, msg)
	}
	if err := entity.Execute(en, command); err != nil {
		return pushError(L, e, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// esphome.state(device, entity) -> value, formatted
func esphomeState(L *lua.LState, e *Engine) int {
	en, msg := lookup(L, e)
	if en == nil {
		return pushError(L, e, msg)
	}
	L.Push(goToLua(L, en.StateValue()))
	L.Push(lua.LString(en.FormattedState()))
	return 2
}

// esphome.entities(device) -> list of entity tables
func esphomeEntities(L *lua.LState, e *Engine) int {
	name := L.CheckString(1)
	t, ok := e.target(name)
	out := L.NewTable()
	if !ok || t.Registry() == nil {
		L.Push(out)
		return 1
	}
	for _, en := range t.Registry().Sorted() {
		info := en.Info()
		out.Append(goToLua(L, map[string]any{
			"key":       en.Key(),
			"kind":      string(en.Kind()),
			"object_id": info.ObjectID,
			"name":      info.Name,
			"entity":    string(en.Kind()) + "." + info.ObjectID,
			"state":     en.StateValue(),
			"formatted": en.FormattedState(),
		}))
	}
	L.Push(out)
	return 1
}

// esphome.devices() -> list of device names
func esphomeDevices(L *lua.LState, e *Engine) int {
	L.Push(goToLua(L, e.deviceNames()))
	return 1
}

// esphome.send_ha_state(device, entity_id, state, [attribute]) -> true | nil, err
func esphomeSendHAState(L *lua.LState, e *Engine) int {
	name := L.CheckString(1)
	entityID := L.CheckString(2)
	state := L.CheckString(3)
	attribute := L.OptString(4, "")
	t, ok := e.target(name)
	if !ok {
		return pushError(L, e, "unknown device "+name)
	}
	if err := t.SendHomeAssistantState(entityID, attribute, state); err != nil {
		return pushError(L, e, err.Error())
	}
	L.Push(lua.LTrue)
	return 1
}

// esphome.after(seconds, callback) runs callback on the script's VM later.
func esphomeAfter(L *lua.LState, vm *scriptVM, e *Engine) int {
	delay := time.Duration(float64(L.CheckNumber(1)) * float64(time.Second))
	fn := L.CheckFunction(2)

	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-vm.ctx.Done():
			return
		}
		ok := vm.enqueue(func(L *lua.LState) {
			if err := L.CallByParam(lua.P{Fn: fn, NRet: 0, Protect: true}); err != nil {
				e.logger.Error("after callback error", "script", vm.id, "err", err)
			}
		})
		if !ok {
			e.logger.Warn("after: script busy or stopped", "script", vm.id)
		}
	}()
	return 0
}

func pushError(L *lua.LState, e *Engine, msg string) int {
	e.logger.Warn("script call failed", "err", msg)
	L.Push(lua.LNil)
	L.Push(lua.LString(msg))
	return 2
}
