// Package animator holds the procedural rules that move and recolour lights each tick. Every
// rule is a deterministic function of elapsed time, the tick length, key hits, and the state
// the rule itself carries.
package animator

import (
	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/Carmen-Shannon/oxy-scene/engine/light"
)

// Tick is the input of one rule application.
type Tick struct {
	// Elapsed is the total simulated time in seconds, including this tick.
	Elapsed float32
	// Delta is the length of this tick in seconds.
	Delta float32
	// Keys is the key state polled for this tick. May be nil.
	Keys common.KeyState
}

// Rule animates one light.
type Rule interface {
	// Apply advances the rule by one tick and writes the result into the light.
	//
	// Parameters:
	//   - l: the light to animate
	//   - tick: the tick input
	Apply(l light.Light, tick Tick)

	// Name returns the rule kind, used in logs.
	//
	// Returns:
	//   - string: the rule kind
	Name() string
}

// keyHit reports whether key was hit this tick, treating a nil key state as no input.
func keyHit(keys common.KeyState, key common.Key) bool {
	return keys != nil && keys.KeyHit(key)
}
