package common

// Key is a virtual key code. Values match GLFW key codes, which use ASCII for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
type Key int

const (
	KeyW      Key = 87 // W key (ASCII)
	KeyA      Key = 65 // A key (ASCII)
	KeyS      Key = 83 // S key (ASCII)
	KeyD      Key = 68 // D key (ASCII)
	KeyI      Key = 73 // I key (ASCII)
	KeyJ      Key = 74 // J key (ASCII)
	KeyK      Key = 75 // K key (ASCII)
	KeyL      Key = 76 // L key (ASCII)
	KeyO      Key = 79 // O key (ASCII)
	KeyP      Key = 80 // P key (ASCII)
	KeyU      Key = 85 // U key (ASCII)
	KeyComma  Key = 44 // , key (ASCII)
	KeyPeriod Key = 46 // . key (ASCII)
	KeySpace  Key = 32 // Spacebar (ASCII)

	Key0 Key = 48 // 0 key (ASCII)
	Key1 Key = 49 // 1 key (ASCII)
	Key2 Key = 50 // 2 key (ASCII)
)

// Non-printable keys
const (
	KeyEsc   Key = 256 // Escape key (GLFW)
	KeyRight Key = 262 // Right arrow (GLFW)
	KeyLeft  Key = 263 // Left arrow (GLFW)
	KeyDown  Key = 264 // Down arrow (GLFW)
	KeyUp    Key = 265 // Up arrow (GLFW)

	KeyLeftShift  Key = 340 // Left Shift (GLFW)
	KeyRightShift Key = 344 // Right Shift (GLFW)
)

// KeyState is the read side of an input layer, polled once per tick.
type KeyState interface {
	// KeyHeld reports whether the key is currently down (level-triggered).
	//
	// Parameters:
	//   - k: the key to query
	//
	// Returns:
	//   - bool: true while the key is held
	KeyHeld(k Key) bool

	// KeyHit reports whether the key went down since the previous tick (edge-triggered).
	//
	// Parameters:
	//   - k: the key to query
	//
	// Returns:
	//   - bool: true on exactly one tick per press
	KeyHit(k Key) bool
}
