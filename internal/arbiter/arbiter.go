// Package arbiter turns per-frame gesture labels and tracked positions into
// debounced keyboard and mouse actions.
//
// The Arbiter is not safe for concurrent use. It shares a sched.Scheduler
// with its caller: timers only fire inside Scheduler.Advance, which the
// caller runs on the same goroutine as Input.
package arbiter

import (
	"errors"
	"image"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/keymap"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/sched"
)

// ErrNoKeymap is returned by Load when given a nil keymap.
var ErrNoKeymap = errors.New("arbiter: nil keymap")

// Config holds the arbiter timing.
type Config struct {
	// ResponseInterval is the cooldown after a committed action.
	ResponseInterval time.Duration
	// LostTrackingInterval resets transient state when no frame arrives in time.
	LostTrackingInterval time.Duration
	// Sensitivity is the number of votes a mouse action must exceed to commit.
	Sensitivity int
	// CountPeriod is how long a vote counts.
	CountPeriod time.Duration
}

// DefaultConfig returns the timing tuned for a 50 fps camera.
func DefaultConfig() Config {
	const frame = 20 * time.Millisecond
	return Config{
		ResponseInterval:     20 * frame,
		LostTrackingInterval: 40 * frame,
		Sensitivity:          10,
		CountPeriod:          15 * frame,
	}
}

// Kind is the kind of action dispatched for a frame.
type Kind int

const (
	None Kind = iota
	Move
	DragStart
	DragMove
	LeftClick
	RightClick
	DoubleClick
	KeyPress
)

var kindNames = map[Kind]string{
	None:        "none",
	Move:        "move",
	DragStart:   "drag_start",
	DragMove:    "drag_move",
	LeftClick:   "left_click",
	RightClick:  "right_click",
	DoubleClick: "double_click",
	KeyPress:    "key_press",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// Action is what the arbiter did for one Input call.
type Action struct {
	Kind  Kind
	Label int
	X, Y  int
	Keys  []input.Code
}

// Description is a short human readable summary of the action.
func (a Action) Description() string {
	switch a.Kind {
	case LeftClick:
		return "Mouse: Left Click"
	case RightClick:
		return "Mouse: Right Click"
	case DoubleClick:
		return "Mouse: Double Click"
	case DragStart:
		return "Mouse: Drag Beginning"
	case DragMove:
		return "Mouse: Drag"
	case Move:
		return "Mouse: Move"
	case KeyPress:
		names := make([]string, len(a.Keys))
		for i, c := range a.Keys {
			names[i] = c.String()
		}
		return strings.Join(names, "+")
	}
	return ""
}

// State is the conceptual state of the arbiter.
type State int

const (
	StateIdle State = iota
	StateCooldown
	StateDragHeld
)

func (s State) String() string {
	switch s {
	case StateCooldown:
		return "cooldown"
	case StateDragHeld:
		return "drag_held"
	}
	return "idle"
}

// DragState records a held drag and where it was last updated, so the
// release can be sent at the same position.
type DragState struct {
	Held bool
	Pos  image.Point
}

// Arbiter dispatches input actions for classified frames.
type Arbiter struct {
	cfg     Config
	s       *sched.Scheduler
	backend input.Backend
	log     *logrus.Entry

	keymap *keymap.Keymap
	cursor *CursorFilter
	votes  *voteWindow

	cooldown *sched.Timer
	watchdog *sched.Timer

	drag      DragState
	lastLabel int
	held      []input.Code

	observers []func(Action)
}

// New creates an Arbiter that schedules its timers on s and injects events
// through b. It dispatches nothing until a keymap is loaded.
func New(cfg Config, s *sched.Scheduler, b input.Backend) *Arbiter {
	a := &Arbiter{
		cfg:       cfg,
		s:         s,
		backend:   b,
		log:       logging.Component("arbiter"),
		cursor:    NewCursorFilter(),
		votes:     newVoteWindow(s, cfg.CountPeriod),
		lastLabel: -1,
	}
	a.cooldown = s.NewTimer(nil)
	a.watchdog = s.NewTimer(a.lostTracking)
	return a
}

// Load installs km, releasing anything held under the previous keymap.
func (a *Arbiter) Load(km *keymap.Keymap) error {
	if km == nil {
		return ErrNoKeymap
	}
	a.releaseMouse()
	a.releaseKeys()
	a.votes.clear()
	a.cursor.Reset()
	a.keymap = km
	a.log.WithField("labels", len(km.Labels)).Info("keymap loaded")
	return nil
}

// Labels returns the label names of the loaded keymap.
func (a *Arbiter) Labels() []string {
	if a.keymap == nil {
		return nil
	}
	return append([]string(nil), a.keymap.Labels...)
}

// OnAction registers fn to observe committed actions: clicks, drag starts
// and the first press of a key sequence.
func (a *Arbiter) OnAction(fn func(Action)) {
	a.observers = append(a.observers, fn)
}

// State reports whether a drag is held or the cooldown is running.
func (a *Arbiter) State() State {
	switch {
	case a.drag.Held:
		return StateDragHeld
	case a.cooldown.Active():
		return StateCooldown
	}
	return StateIdle
}

// Drag returns the current drag state.
func (a *Arbiter) Drag() DragState {
	return a.drag
}

// HeldKeys returns the key sequence currently held down.
func (a *Arbiter) HeldKeys() []input.Code {
	return append([]input.Code(nil), a.held...)
}

// Votes returns the non-zero vote counts of the current window.
func (a *Arbiter) Votes() map[input.Code]int {
	return a.votes.snapshot()
}

// Input handles one classified frame. label is the classifier's label index
// and (x, y) the tracked point normalized to [0,1] within the cursor region.
func (a *Arbiter) Input(label int, x, y float64) Action {
	a.watchdog.Start(a.cfg.LostTrackingInterval)

	w, h := a.backend.ScreenSize()
	pos := a.cursor.Estimate(x*float64(w), y*float64(h))

	if a.keymap != nil {
		if code, ok := a.keymap.MouseAction(label); ok {
			return a.mouseAction(label, code, pos)
		}
	}
	return a.keyboardAction(label)
}

func (a *Arbiter) mouseAction(label int, code input.Code, pos image.Point) Action {
	act := Action{Label: label, X: pos.X, Y: pos.Y}

	commit := code != input.MouseMove && !a.cooldown.Active() && a.votes.count(code) > a.cfg.Sensitivity
	if commit || (code == input.MouseDrag && a.drag.Held) {
		a.cooldown.Start(a.cfg.ResponseInterval)
		a.votes.clear()

		if code == input.MouseDrag {
			if a.drag.Held {
				act.Kind = DragMove
				a.check("drag", a.backend.MoveCursor(pos.X, pos.Y))
			} else {
				act.Kind = DragStart
				a.check("drag start", a.backend.MouseDown(input.ButtonLeft, pos.X, pos.Y))
			}
			a.drag = DragState{Held: true, Pos: pos}
			if act.Kind == DragStart {
				a.emit(act)
			}
			return act
		}

		a.releaseMouse()
		switch code {
		case input.MouseLeftClick:
			act.Kind = LeftClick
			a.click(input.ButtonLeft, pos)
		case input.MouseRightClick:
			act.Kind = RightClick
			a.click(input.ButtonRight, pos)
		case input.MouseDoubleLeftClick:
			act.Kind = DoubleClick
			a.check("double click", a.backend.DoubleClick(pos.X, pos.Y))
		}
		a.emit(act)
		return act
	}

	if a.cooldown.Active() {
		a.votes.add(input.MouseMove)
	} else {
		a.votes.add(code)
	}
	a.releaseMouse()
	a.check("move", a.backend.MoveCursor(pos.X, pos.Y))
	act.Kind = Move
	return act
}

func (a *Arbiter) keyboardAction(label int) Action {
	act := Action{Label: label}
	if a.cooldown.Active() {
		return act
	}

	a.releaseMouse()
	first := false
	if label != a.lastLabel {
		a.releaseKeys()
		seq, ok := a.lookupKeys(label)
		if !ok {
			return act
		}
		a.held = seq
		a.lastLabel = label
		first = true
	}
	if a.lastLabel == -1 {
		return act
	}

	for _, c := range a.held {
		a.check("key down", a.backend.PressKey(c))
	}
	act.Kind = KeyPress
	act.Keys = append([]input.Code(nil), a.held...)
	if first {
		a.emit(act)
	}
	return act
}

func (a *Arbiter) lookupKeys(label int) ([]input.Code, bool) {
	if a.keymap == nil {
		return nil, false
	}
	seq, ok := a.keymap.Keys(label)
	if !ok || len(seq) == 0 {
		return nil, false
	}
	return append([]input.Code(nil), seq...), true
}

func (a *Arbiter) click(b input.Button, pos image.Point) {
	a.check("mouse down", a.backend.MouseDown(b, pos.X, pos.Y))
	a.check("mouse up", a.backend.MouseUp(b, pos.X, pos.Y))
}

// releaseMouse ends a held drag at its last position.
func (a *Arbiter) releaseMouse() {
	if !a.drag.Held {
		return
	}
	a.check("drag release", a.backend.MouseUp(input.ButtonLeft, a.drag.Pos.X, a.drag.Pos.Y))
	a.drag.Held = false
}

// releaseKeys lifts the held key sequence in reverse press order.
func (a *Arbiter) releaseKeys() {
	if a.lastLabel == -1 {
		return
	}
	for i := len(a.held) - 1; i >= 0; i-- {
		a.check("key up", a.backend.ReleaseKey(a.held[i]))
	}
	a.held = nil
	a.lastLabel = -1
}

// lostTracking drops transient state after frames stop arriving. The
// keymap and a running cooldown are kept.
func (a *Arbiter) lostTracking() {
	a.log.Debug("tracking lost, resetting")
	a.cursor.Reset()
	a.releaseKeys()
	a.releaseMouse()
	a.votes.clear()
}

// Reset releases everything held and clears votes, the cooldown and the
// cursor filter.
func (a *Arbiter) Reset() {
	a.lostTracking()
	a.cooldown.Stop()
}

// Stop resets the arbiter and cancels its timers.
func (a *Arbiter) Stop() {
	a.Reset()
	a.watchdog.Stop()
}

func (a *Arbiter) emit(act Action) {
	a.log.WithFields(logging.Fields{
		"kind":  act.Kind.String(),
		"label": a.labelName(act.Label),
	}).Debug("action committed")
	for _, fn := range a.observers {
		fn(act)
	}
}

func (a *Arbiter) labelName(label int) string {
	if a.keymap == nil {
		return ""
	}
	return a.keymap.Label(label)
}

// check logs backend failures. They never interrupt dispatch.
func (a *Arbiter) check(op string, err error) {
	if err != nil {
		a.log.WithError(err).WithField("op", op).Warn("input backend call failed")
	}
}
