package model

import "github.com/Carmen-Shannon/oxy-scene/common"

// ControlBindings assigns keys to the rotations and movements applied by Model.Control.
type ControlBindings struct {
	TurnUp, TurnDown    common.Key // about X
	TurnRight, TurnLeft common.Key // about Y
	TurnCW, TurnCCW     common.Key // about Z
	MoveForward         common.Key // along local +Z
	MoveBackward        common.Key // along local -Z
}

// DefaultControlBindings returns the object keys: I/K, J/L and U/O rotate, Period/Comma move.
//
// Returns:
//   - ControlBindings: the default assignments
func DefaultControlBindings() ControlBindings {
	return ControlBindings{
		TurnUp:       common.KeyI,
		TurnDown:     common.KeyK,
		TurnRight:    common.KeyJ,
		TurnLeft:     common.KeyL,
		TurnCW:       common.KeyU,
		TurnCCW:      common.KeyO,
		MoveForward:  common.KeyPeriod,
		MoveBackward: common.KeyComma,
	}
}
