package entity

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"esphome-go/internal/api"
)

func TestExecute(t *testing.T) {
	rec := &recorder{}
	r := NewRegistry(rec)
	register(t, r, &api.ListEntitiesSwitchResponse{EntityInfo: info(1, "relay")})
	register(t, r, &api.ListEntitiesButtonResponse{EntityInfo: info(2, "restart")})
	register(t, r, &api.ListEntitiesFanResponse{EntityInfo: info(3, "fan")})
	register(t, r, &api.ListEntitiesLockResponse{EntityInfo: info(4, "door"), SupportsOpen: true})
	register(t, r, &api.ListEntitiesCoverResponse{EntityInfo: info(5, "blind"), SupportsPosition: true, SupportsStop: true})
	register(t, r, &api.ListEntitiesNumberResponse{EntityInfo: info(6, "target"), MinValue: 0, MaxValue: 30, Step: 0.5})
	register(t, r, &api.ListEntitiesSelectResponse{EntityInfo: info(7, "mode"), Options: []string{"eco", "boost"}})
	register(t, r, &api.ListEntitiesTextResponse{EntityInfo: info(8, "label"), MaxLength: 16})
	register(t, r, &api.ListEntitiesSensorResponse{EntityInfo: info(9, "temp")})
	register(t, r, &api.ListEntitiesLightResponse{EntityInfo: info(10, "lamp"), SupportedColorModes: []api.ColorMode{api.ColorModeOnOff}})

	tests := []struct {
		key     uint32
		command string
		want    api.Message
	}{
		{1, "on", &api.SwitchCommandRequest{Key: 1, State: true}},
		{1, " TOGGLE ", &api.SwitchCommandRequest{Key: 1, State: true}},
		{2, "press", &api.ButtonCommandRequest{Key: 2}},
		{3, "Off", &api.FanCommandRequest{Key: 3, HasState: true}},
		{4, "unlock", &api.LockCommandRequest{Key: 4, Command: api.LockCommandUnlock}},
		{4, "open", &api.LockCommandRequest{Key: 4, Command: api.LockCommandOpen}},
		{5, "close", &api.CoverCommandRequest{Key: 5, HasPosition: true, Position: 0}},
		{5, "stop", &api.CoverCommandRequest{Key: 5, Stop: true}},
		{6, "21.5", &api.NumberCommandRequest{Key: 6, State: 21.5}},
		{7, "boost", &api.SelectCommandRequest{Key: 7, State: "boost"}},
		{8, "hello", &api.TextCommandRequest{Key: 8, State: "hello"}},
		{10, "toggle", &api.LightCommandRequest{Key: 10, HasState: true, State: true}},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			e, ok := r.Get(tt.key)
			if !ok {
				t.Fatalf("no entity %d", tt.key)
			}
			if err := Execute(e, tt.command); err != nil {
				t.Fatalf("Execute: %v", err)
			}
			if diff := cmp.Diff(tt.want, rec.last(t)); diff != "" {
				t.Errorf("sent (-want +got):\n%s", diff)
			}
		})
	}
}

func TestExecuteRejects(t *testing.T) {
	r := NewRegistry(&recorder{})
	register(t, r, &api.ListEntitiesSwitchResponse{EntityInfo: info(1, "relay")})
	register(t, r, &api.ListEntitiesNumberResponse{EntityInfo: info(2, "target"), MinValue: 0, MaxValue: 30, Step: 1})
	register(t, r, &api.ListEntitiesSensorResponse{EntityInfo: info(3, "temp")})
	register(t, r, &api.ListEntitiesSelectResponse{EntityInfo: info(4, "mode"), Options: []string{"eco"}})

	tests := []struct {
		key     uint32
		command string
		want    error
	}{
		{1, "dim", ErrInvalidValue},
		{2, "warm", ErrInvalidValue},
		{2, "31", ErrInvalidValue},
		{3, "on", ErrReadOnly},
		{4, "turbo", ErrInvalidValue},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			e, _ := r.Get(tt.key)
			if err := Execute(e, tt.command); !errors.Is(err, tt.want) {
				t.Errorf("Execute(%q) = %v, want %v", tt.command, err, tt.want)
			}
		})
	}
}
