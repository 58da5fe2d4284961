// Package input defines the symbolic keyboard and mouse codes used by keymaps
// and the backends that inject them into the operating system.
package input

import (
	"fmt"
)

// Code is a symbolic input code. Keyboard keys occupy the values below
// MouseBase; mouse actions use the reserved values from MouseBase up.
type Code uint8

// MouseBase is the first code reserved for mouse actions.
const MouseBase Code = 0xF0

// Mouse action codes.
const (
	MouseDoubleLeftClick Code = 0xFB
	MouseDrag            Code = 0xFC
	MouseRightClick      Code = 0xFD
	MouseLeftClick       Code = 0xFE
	MouseMove            Code = 0xFF
)

// MouseActions lists the mouse actions in keymap order: the n-th entry of a
// positional mouse-actions list binds MouseActions[n].
var MouseActions = []Code{MouseMove, MouseLeftClick, MouseRightClick, MouseDrag, MouseDoubleLeftClick}

// Keyboard codes.
const (
	KeyA Code = iota
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ
	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyEqual
	KeyMinus
	KeyLeftBracket
	KeyRightBracket
	KeyQuote
	KeySemicolon
	KeyBackslash
	KeyComma
	KeySlash
	KeyPeriod
	KeyGrave
	KeyKeypad0
	KeyKeypad1
	KeyKeypad2
	KeyKeypad3
	KeyKeypad4
	KeyKeypad5
	KeyKeypad6
	KeyKeypad7
	KeyKeypad8
	KeyKeypad9
	KeyKeypadDecimal
	KeyKeypadMultiply
	KeyKeypadPlus
	KeyKeypadClear
	KeyKeypadDivide
	KeyKeypadEnter
	KeyKeypadMinus
	KeyKeypadEquals
	KeyReturn
	KeyTab
	KeySpace
	KeyDelete
	KeyForwardDelete
	KeyEscape
	KeyCommand
	KeyShift
	KeyCapsLock
	KeyOption
	KeyControl
	KeyRightShift
	KeyRightOption
	KeyRightControl
	KeyFunction
	KeyHelp
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyLeft
	KeyRight
	KeyDown
	KeyUp
	KeyVolumeUp
	KeyVolumeDown
	KeyMute
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyF13
	KeyF14
	KeyF15
	KeyF16
	KeyF17
	KeyF18
	KeyF19
	KeyF20

	numKeys
)

// IsMouse reports whether c is a mouse action code.
func (c Code) IsMouse() bool {
	return c >= MouseBase
}

// String returns the keymap name of the code, e.g. "KEY_A" or "MOUSE_DRAG".
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CODE_%#02x", uint8(c))
}

// ParseCode looks up a code by its keymap name.
func ParseCode(name string) (Code, bool) {
	c, ok := nameCodes[name]
	return c, ok
}

var codeNames = map[Code]string{
	MouseMove:            "MOUSE_MOVE",
	MouseLeftClick:       "MOUSE_LEFT_CLICK",
	MouseRightClick:      "MOUSE_RIGHT_CLICK",
	MouseDrag:            "MOUSE_DRAG",
	MouseDoubleLeftClick: "MOUSE_DOUBLE_LEFT_CLICK",

	KeyA: "KEY_A", KeyB: "KEY_B", KeyC: "KEY_C", KeyD: "KEY_D", KeyE: "KEY_E",
	KeyF: "KEY_F", KeyG: "KEY_G", KeyH: "KEY_H", KeyI: "KEY_I", KeyJ: "KEY_J",
	KeyK: "KEY_K", KeyL: "KEY_L", KeyM: "KEY_M", KeyN: "KEY_N", KeyO: "KEY_O",
	KeyP: "KEY_P", KeyQ: "KEY_Q", KeyR: "KEY_R", KeyS: "KEY_S", KeyT: "KEY_T",
	KeyU: "KEY_U", KeyV: "KEY_V", KeyW: "KEY_W", KeyX: "KEY_X", KeyY: "KEY_Y",
	KeyZ: "KEY_Z",

	Key0: "KEY_0", Key1: "KEY_1", Key2: "KEY_2", Key3: "KEY_3", Key4: "KEY_4",
	Key5: "KEY_5", Key6: "KEY_6", Key7: "KEY_7", Key8: "KEY_8", Key9: "KEY_9",

	KeyEqual:        "KEY_Equal",
	KeyMinus:        "KEY_Minus",
	KeyLeftBracket:  "KEY_LeftBracket",
	KeyRightBracket: "KEY_RightBracket",
	KeyQuote:        "KEY_Quote",
	KeySemicolon:    "KEY_Semicolon",
	KeyBackslash:    "KEY_Backslash",
	KeyComma:        "KEY_Comma",
	KeySlash:        "KEY_Slash",
	KeyPeriod:       "KEY_Period",
	KeyGrave:        "KEY_Grave",

	KeyKeypad0: "KEY_Keypad0", KeyKeypad1: "KEY_Keypad1", KeyKeypad2: "KEY_Keypad2",
	KeyKeypad3: "KEY_Keypad3", KeyKeypad4: "KEY_Keypad4", KeyKeypad5: "KEY_Keypad5",
	KeyKeypad6: "KEY_Keypad6", KeyKeypad7: "KEY_Keypad7", KeyKeypad8: "KEY_Keypad8",
	KeyKeypad9: "KEY_Keypad9",

	KeyKeypadDecimal:  "KEY_KeypadDecimal",
	KeyKeypadMultiply: "KEY_KeypadMultiply",
	KeyKeypadPlus:     "KEY_KeypadPlus",
	KeyKeypadClear:    "KEY_KeypadClear",
	KeyKeypadDivide:   "KEY_KeypadDivide",
	KeyKeypadEnter:    "KEY_KeypadEnter",
	KeyKeypadMinus:    "KEY_KeypadMinus",
	KeyKeypadEquals:   "KEY_KeypadEquals",

	KeyReturn:        "KEY_Return",
	KeyTab:           "KEY_Tab",
	KeySpace:         "KEY_Space",
	KeyDelete:        "KEY_Delete",
	KeyForwardDelete: "KEY_ForwardDelete",
	KeyEscape:        "KEY_Escape",
	KeyCommand:       "KEY_Command",
	KeyShift:         "KEY_Shift",
	KeyCapsLock:      "KEY_CapsLock",
	KeyOption:        "KEY_Option",
	KeyControl:       "KEY_Control",
	KeyRightShift:    "KEY_RightShift",
	KeyRightOption:   "KEY_RightOption",
	KeyRightControl:  "KEY_RightControl",
	KeyFunction:      "KEY_Function",
	KeyHelp:          "KEY_Help",
	KeyHome:          "KEY_Home",
	KeyEnd:           "KEY_End",
	KeyPageUp:        "KEY_PageUp",
	KeyPageDown:      "KEY_PageDown",
	KeyLeft:          "KEY_Left",
	KeyRight:         "KEY_Right",
	KeyDown:          "KEY_Down",
	KeyUp:            "KEY_Up",
	KeyVolumeUp:      "KEY_VolumeUp",
	KeyVolumeDown:    "KEY_VolumeDown",
	KeyMute:          "KEY_Mute",

	KeyF1: "KEY_F1", KeyF2: "KEY_F2", KeyF3: "KEY_F3", KeyF4: "KEY_F4",
	KeyF5: "KEY_F5", KeyF6: "KEY_F6", KeyF7: "KEY_F7", KeyF8: "KEY_F8",
	KeyF9: "KEY_F9", KeyF10: "KEY_F10", KeyF11: "KEY_F11", KeyF12: "KEY_F12",
	KeyF13: "KEY_F13", KeyF14: "KEY_F14", KeyF15: "KEY_F15", KeyF16: "KEY_F16",
	KeyF17: "KEY_F17", KeyF18: "KEY_F18", KeyF19: "KEY_F19", KeyF20: "KEY_F20",
}

var nameCodes = func() map[string]Code {
	m := make(map[string]Code, len(codeNames))
	for c, name := range codeNames {
		m[name] = c
	}
	return m
}()
