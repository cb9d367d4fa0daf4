package entity

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrReadOnly is returned by Execute for kinds that accept no commands.
var ErrReadOnly = errors.New("entity: accepts no commands")

// Execute runs a textual command against an entity. Words are matched
// case-insensitively: ON, OFF and TOGGLE for switches, fans and lights;
// PRESS (or anything) for buttons; LOCK, UNLOCK and OPEN for locks; OPEN,
// CLOSE and STOP for covers. Numbers take a decimal value, selects an
// option and texts the raw argument.
func Execute(e Entity, command string) error {
	text := strings.TrimSpace(command)
	word := strings.ToUpper(text)

	switch e := e.(type) {
	case *Switch:
		switch word {
		case "ON":
			return e.On()
		case "OFF":
			return e.Off()
		case "TOGGLE":
			return e.Toggle()
		}
	case *Button:
		return e.Press()
	case *Fan:
		switch word {
		case "ON":
			return e.On()
		case "OFF":
			return e.Off()
		case "TOGGLE":
			s, _ := e.State()
			if s.On {
				return e.Off()
			}
			return e.On()
		}
	case *Light:
		switch word {
		case "ON":
			return e.On()
		case "OFF":
			return e.Off()
		case "TOGGLE":
			s, _ := e.State()
			if s.On {
				return e.Off()
			}
			return e.On()
		}
	case *Lock:
		switch word {
		case "LOCK":
			return e.Lock("")
		case "UNLOCK":
			return e.Unlock("")
		case "OPEN":
			return e.Open("")
		}
	case *Cover:
		switch word {
		case "OPEN":
			return e.Open()
		case "CLOSE":
			return e.Close()
		case "STOP":
			return e.Stop()
		}
	case *Number:
		v, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return fmt.Errorf("number %s: %w: %q", e.ObjectID(), ErrInvalidValue, text)
		}
		return e.Set(float32(v))
	case *Select:
		return e.Set(text)
	case *Text:
		return e.Set(command)
	default:
		return fmt.Errorf("%s %s: %w", e.Kind(), e.Info().ObjectID, ErrReadOnly)
	}
	return fmt.Errorf("%s %s: %w: unknown command %q", e.Kind(), e.Info().ObjectID, ErrInvalidValue, text)
}
