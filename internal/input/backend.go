package input

// Button identifies a mouse button.
type Button int

const (
	// ButtonLeft is the primary mouse button.
	ButtonLeft Button = iota
	// ButtonRight is the secondary mouse button.
	ButtonRight
)

func (b Button) String() string {
	if b == ButtonRight {
		return "right"
	}
	return "left"
}

// Backend injects input events into the operating system.
// Coordinates are absolute screen pixels.
type Backend interface {
	// PressKey sends a key-down event. Repeating it for a held key is allowed.
	PressKey(c Code) error

	// ReleaseKey sends a key-up event.
	ReleaseKey(c Code) error

	// MoveCursor moves the pointer without pressing any button.
	MoveCursor(x, y int) error

	// MouseDown presses b at (x, y).
	MouseDown(b Button, x, y int) error

	// MouseUp releases b at (x, y).
	MouseUp(b Button, x, y int) error

	// DoubleClick sends two left clicks at (x, y).
	DoubleClick(x, y int) error

	// ScreenSize returns the main display size in pixels.
	ScreenSize() (width, height int)
}
