package input

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-scene/common"
	"github.com/stretchr/testify/assert"
)

func TestKeyHitIsEdgeTriggered(t *testing.T) {
	tr := NewTracker()

	tr.KeyDown(common.Key1)
	assert.True(t, tr.KeyHit(common.Key1))
	assert.True(t, tr.KeyHeld(common.Key1))

	tr.EndTick()
	assert.False(t, tr.KeyHit(common.Key1))
	assert.True(t, tr.KeyHeld(common.Key1))

	// repeat while held is not a new hit
	tr.KeyDown(common.Key1)
	assert.False(t, tr.KeyHit(common.Key1))

	tr.KeyUp(common.Key1)
	assert.False(t, tr.KeyHeld(common.Key1))

	tr.KeyDown(common.Key1)
	assert.True(t, tr.KeyHit(common.Key1))
}

func TestPressAndReleaseWithinOneTickStillHits(t *testing.T) {
	tr := NewTracker()
	tr.KeyDown(common.KeyP)
	tr.KeyUp(common.KeyP)
	assert.True(t, tr.KeyHit(common.KeyP))
	assert.False(t, tr.KeyHeld(common.KeyP))
}
