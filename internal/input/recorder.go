package input

import (
	"sync"
)

// EventType identifies a recorded backend call.
type EventType string

const (
	EventKeyDown     EventType = "key_down"
	EventKeyUp       EventType = "key_up"
	EventMove        EventType = "move"
	EventMouseDown   EventType = "mouse_down"
	EventMouseUp     EventType = "mouse_up"
	EventDoubleClick EventType = "double_click"
)

// Event is one call made against a Recorder.
type Event struct {
	Type   EventType
	Code   Code
	Button Button
	X, Y   int
}

// Recorder is a Backend that records every call instead of touching the OS.
// It allows tests to assert on the exact event sequence a component produced.
type Recorder struct {
	mu     sync.Mutex
	events []Event
	width  int
	height int
	err    error
}

// NewRecorder creates a Recorder reporting a screen of the given size.
func NewRecorder(width, height int) *Recorder {
	return &Recorder{width: width, height: height}
}

// SetError makes every subsequent call return err. The call is still recorded.
func (r *Recorder) SetError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *Recorder) record(e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return r.err
}

// PressKey records a key-down event.
func (r *Recorder) PressKey(c Code) error {
	return r.record(Event{Type: EventKeyDown, Code: c})
}

// ReleaseKey records a key-up event.
func (r *Recorder) ReleaseKey(c Code) error {
	return r.record(Event{Type: EventKeyUp, Code: c})
}

// MoveCursor records a pointer move.
func (r *Recorder) MoveCursor(x, y int) error {
	return r.record(Event{Type: EventMove, X: x, Y: y})
}

// MouseDown records a button press.
func (r *Recorder) MouseDown(b Button, x, y int) error {
	return r.record(Event{Type: EventMouseDown, Button: b, X: x, Y: y})
}

// MouseUp records a button release.
func (r *Recorder) MouseUp(b Button, x, y int) error {
	return r.record(Event{Type: EventMouseUp, Button: b, X: x, Y: y})
}

// DoubleClick records a double click.
func (r *Recorder) DoubleClick(x, y int) error {
	return r.record(Event{Type: EventDoubleClick, X: x, Y: y})
}

// ScreenSize returns the configured screen size.
func (r *Recorder) ScreenSize() (int, int) {
	return r.width, r.height
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// Types returns only the types of the recorded events, in order.
func (r *Recorder) Types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

// Reset discards all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
