//go:build !no_mqtt

package mqtt

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"esphome-go/internal/api"
	"esphome-go/internal/entity"
)

// statePayload renders an entity's state for its state topic: the fields of
// StateValue with booleans as ON/OFF, plus the formatted state.
func statePayload(e entity.Entity) []byte {
	out := map[string]any{}
	switch v := e.StateValue().(type) {
	case map[string]any:
		for k, val := range v {
			out[k] = val
		}
	default:
		out["state"] = v
	}
	if on, ok := out["state"].(bool); ok {
		out["state"] = onOff(on)
	}
	if _, ok := e.(*entity.Light); ok {
		if b, ok := out["brightness"].(float64); ok {
			out["brightness"] = int(math.Round(b * 255))
		}
	}
	out["formatted"] = e.FormattedState()
	return mustJSON(out)
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}

// lightCommand is the HA JSON schema light command.
type lightCommand struct {
	State      string   `json:"state"`
	Brightness *float64 `json:"brightness"`
	Effect     *string  `json:"effect"`
	Transition *float64 `json:"transition"`
}

// applyCommand runs a command received on an entity's set topic. Lights
// take the JSON schema; everything else the plain command words.
func applyCommand(e entity.Entity, payload []byte) error {
	if l, ok := e.(*entity.Light); ok {
		return applyLightCommand(l, payload)
	}
	return entity.Execute(e, string(payload))
}

func applyLightCommand(e *entity.Light, payload []byte) error {
	var in lightCommand
	if err := json.Unmarshal(payload, &in); err != nil {
		// Plain ON/OFF is accepted too.
		in.State = strings.TrimSpace(string(payload))
	}

	var cmd entity.LightCommand
	switch strings.ToUpper(in.State) {
	case "ON":
		on := true
		cmd.State = &on
	case "OFF":
		off := false
		cmd.State = &off
	default:
		return fmt.Errorf("light %s: unknown state %q", e.ObjectID(), in.State)
	}
	if in.Brightness != nil {
		b := float32(*in.Brightness / 255)
		cmd.Brightness = &b
	}
	if in.Effect != nil {
		cmd.Effect = in.Effect
	}
	if in.Transition != nil {
		ms := uint32(*in.Transition * 1000)
		cmd.TransitionLength = &ms
	}
	return e.Command(cmd)
}

// splitCommandTopic parses "<base>/<kind>/<object_id>/set".
func splitCommandTopic(base, topic string) (api.EntityKind, string, bool) {
	rest, ok := strings.CutPrefix(topic, base+"/")
	if !ok {
		return "", "", false
	}
	parts := strings.Split(rest, "/")
	if len(parts) != 3 || parts[2] != "set" || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return api.EntityKind(parts[0]), parts[1], true
}

func mustJSON(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
