package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-scene/common"
)

// tracker is the implementation of the Tracker interface.
type tracker struct {
	mu   sync.Mutex
	held map[common.Key]bool
	hit  map[common.Key]bool
}

// Tracker records key transitions delivered by a window and answers level-triggered and
// edge-triggered queries for the current tick.
type Tracker interface {
	common.KeyState

	// KeyDown records a key press. A press of a key that is already held is ignored so OS key
	// repeat never produces extra hits.
	//
	// Parameters:
	//   - k: the key that went down
	KeyDown(k common.Key)

	// KeyUp records a key release.
	//
	// Parameters:
	//   - k: the key that went up
	KeyUp(k common.Key)

	// EndTick clears the edge-triggered hits. Called once after each update.
	EndTick()
}

var _ Tracker = &tracker{}

// NewTracker creates an empty key tracker.
//
// Returns:
//   - Tracker: a tracker with no keys held
func NewTracker() Tracker {
	return &tracker{
		held: make(map[common.Key]bool),
		hit:  make(map[common.Key]bool),
	}
}

func (t *tracker) KeyHeld(k common.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.held[k]
}

func (t *tracker) KeyHit(k common.Key) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.hit[k]
}

func (t *tracker) KeyDown(k common.Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.held[k] {
		t.hit[k] = true
	}
	t.held[k] = true
}

func (t *tracker) KeyUp(k common.Key) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.held, k)
}

func (t *tracker) EndTick() {
	t.mu.Lock()
	defer t.mu.Unlock()
	clear(t.hit)
}
