package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWindowOptions(t *testing.T) {
	w := &engineWindow{title: "Oxy Scene", width: 1280, height: 720}

	WithTitle("")(w)
	WithSize(0, -5)(w)
	assert.Equal(t, "Oxy Scene", w.title)
	assert.Equal(t, 1280, w.width)
	assert.Equal(t, 720, w.height)

	WithTitle("night")(w)
	WithSize(800, 600)(w)
	assert.Equal(t, "night", w.title)
	assert.Equal(t, 800, w.width)
	assert.Equal(t, 600, w.height)
}
