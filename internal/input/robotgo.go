package input

import (
	"errors"
	"fmt"

	"github.com/go-vgo/robotgo"
)

// ErrUnsupportedKey is returned when a code has no mapping on the current platform.
var ErrUnsupportedKey = errors.New("key not supported by backend")

// RobotgoBackend injects events through robotgo.
type RobotgoBackend struct{}

// NewRobotgoBackend creates a backend bound to the local display.
func NewRobotgoBackend() *RobotgoBackend {
	return &RobotgoBackend{}
}

// PressKey sends a key-down event.
func (b *RobotgoBackend) PressKey(c Code) error {
	name, err := robotgoKey(c)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, "down")
}

// ReleaseKey sends a key-up event.
func (b *RobotgoBackend) ReleaseKey(c Code) error {
	name, err := robotgoKey(c)
	if err != nil {
		return err
	}
	return robotgo.KeyToggle(name, "up")
}

// MoveCursor moves the pointer.
func (b *RobotgoBackend) MoveCursor(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// MouseDown moves to (x, y) and presses the button.
func (b *RobotgoBackend) MouseDown(btn Button, x, y int) error {
	robotgo.Move(x, y)
	return robotgo.Toggle(btn.String(), "down")
}

// MouseUp moves to (x, y) and releases the button.
func (b *RobotgoBackend) MouseUp(btn Button, x, y int) error {
	robotgo.Move(x, y)
	return robotgo.Toggle(btn.String(), "up")
}

// DoubleClick moves to (x, y) and double clicks the left button.
func (b *RobotgoBackend) DoubleClick(x, y int) error {
	robotgo.Move(x, y)
	robotgo.Click("left", true)
	return nil
}

// ScreenSize returns the main display size.
func (b *RobotgoBackend) ScreenSize() (int, int) {
	return robotgo.GetScreenSize()
}

func robotgoKey(c Code) (string, error) {
	name, ok := robotgoKeys[c]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedKey, c)
	}
	return name, nil
}

var robotgoKeys = map[Code]string{
	KeyA: "a", KeyB: "b", KeyC: "c", KeyD: "d", KeyE: "e", KeyF: "f", KeyG: "g",
	KeyH: "h", KeyI: "i", KeyJ: "j", KeyK: "k", KeyL: "l", KeyM: "m", KeyN: "n",
	KeyO: "o", KeyP: "p", KeyQ: "q", KeyR: "r", KeyS: "s", KeyT: "t", KeyU: "u",
	KeyV: "v", KeyW: "w", KeyX: "x", KeyY: "y", KeyZ: "z",

	Key0: "0", Key1: "1", Key2: "2", Key3: "3", Key4: "4",
	Key5: "5", Key6: "6", Key7: "7", Key8: "8", Key9: "9",

	KeyEqual:        "=",
	KeyMinus:        "-",
	KeyLeftBracket:  "[",
	KeyRightBracket: "]",
	KeyQuote:        "'",
	KeySemicolon:    ";",
	KeyBackslash:    "\\",
	KeyComma:        ",",
	KeySlash:        "/",
	KeyPeriod:       ".",
	KeyGrave:        "`",

	KeyKeypad0: "num0", KeyKeypad1: "num1", KeyKeypad2: "num2", KeyKeypad3: "num3",
	KeyKeypad4: "num4", KeyKeypad5: "num5", KeyKeypad6: "num6", KeyKeypad7: "num7",
	KeyKeypad8: "num8", KeyKeypad9: "num9",

	KeyKeypadDecimal:  "num.",
	KeyKeypadMultiply: "num*",
	KeyKeypadPlus:     "num+",
	KeyKeypadClear:    "num_clear",
	KeyKeypadDivide:   "num/",
	KeyKeypadEnter:    "num_enter",
	KeyKeypadMinus:    "num-",
	KeyKeypadEquals:   "num_equal",

	KeyReturn:        "enter",
	KeyTab:           "tab",
	KeySpace:         "space",
	KeyDelete:        "backspace",
	KeyForwardDelete: "delete",
	KeyEscape:        "esc",
	KeyCommand:       "cmd",
	KeyShift:         "shift",
	KeyCapsLock:      "capslock",
	KeyOption:        "alt",
	KeyControl:       "ctrl",
	KeyRightShift:    "rshift",
	KeyRightOption:   "ralt",
	KeyRightControl:  "rctrl",
	KeyHelp:          "insert",
	KeyHome:          "home",
	KeyEnd:           "end",
	KeyPageUp:        "pageup",
	KeyPageDown:      "pagedown",
	KeyLeft:          "left",
	KeyRight:         "right",
	KeyDown:          "down",
	KeyUp:            "up",
	KeyVolumeUp:      "audio_vol_up",
	KeyVolumeDown:    "audio_vol_down",
	KeyMute:          "audio_mute",

	KeyF1: "f1", KeyF2: "f2", KeyF3: "f3", KeyF4: "f4", KeyF5: "f5",
	KeyF6: "f6", KeyF7: "f7", KeyF8: "f8", KeyF9: "f9", KeyF10: "f10",
	KeyF11: "f11", KeyF12: "f12", KeyF13: "f13", KeyF14: "f14", KeyF15: "f15",
	KeyF16: "f16", KeyF17: "f17", KeyF18: "f18", KeyF19: "f19", KeyF20: "f20",
}
