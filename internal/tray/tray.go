// Package tray provides the system tray menu of the running application.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

const (
	titleControlling = "● Controlling"
	titleIdle        = "○ Idle"
	lastNone         = "Last: none"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle     func(controlling bool) error
	onMonitor    func()
	onBackground func()
	onQuit       func()
	controlling  bool
	lastAction   string
	mu           sync.RWMutex

	// Menu items stored for later updates
	menuToggle     *systray.MenuItem
	menuLastAction *systray.MenuItem
}

// New creates a new Tray in the idle state.
func New() *Tray {
	return &Tray{}
}

// OnToggle sets the callback run when controlling is switched on or off.
// When it returns an error the switch is undone.
func (t *Tray) OnToggle(fn func(controlling bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnMonitor sets the callback run when the monitor menu item is clicked.
func (t *Tray) OnMonitor(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onMonitor = fn
}

// OnBackground sets the callback run when the background menu item is
// clicked.
func (t *Tray) OnBackground(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onBackground = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until Quit is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra hand gesture control")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(toggleTitle(t.controlling), "Start or stop controlling")
	systray.AddSeparator()

	t.menuLastAction = systray.AddMenuItem(lastTitle(t.lastAction), "Last dispatched action")
	t.menuLastAction.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuBackground := systray.AddMenuItem("Capture Background", "Use the current frame as background")
	menuMonitor := systray.AddMenuItem("Open Monitor...", "Open the monitor in a browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuBackground.ClickedCh:
				t.handleBackground()
			case <-menuMonitor.ClickedCh:
				t.handleMonitor()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {}

// handleToggle flips the controlling state and runs the toggle callback.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.controlling = !t.controlling
	controlling := t.controlling
	t.refresh()
	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback == nil {
		return
	}
	if err := callback(controlling); err != nil {
		t.SetControlling(!controlling)
	}
}

func (t *Tray) handleBackground() {
	t.mu.RLock()
	callback := t.onBackground
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

func (t *Tray) handleMonitor() {
	t.mu.RLock()
	callback := t.onMonitor
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetControlling updates the toggle without running the callback.
func (t *Tray) SetControlling(controlling bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.controlling = controlling
	t.refresh()
}

// SetLastAction updates the last action display in the menu.
func (t *Tray) SetLastAction(desc string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastAction = desc
	t.refresh()
}

// refresh updates the menu titles. The caller holds t.mu.
func (t *Tray) refresh() {
	if t.menuToggle != nil {
		t.menuToggle.SetTitle(toggleTitle(t.controlling))
	}
	if t.menuLastAction != nil {
		t.menuLastAction.SetTitle(lastTitle(t.lastAction))
	}
}

// IsControlling returns the state shown by the toggle.
func (t *Tray) IsControlling() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.controlling
}

// LastAction returns the last action shown.
func (t *Tray) LastAction() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.lastAction
}

func toggleTitle(controlling bool) string {
	if controlling {
		return titleControlling
	}
	return titleIdle
}

func lastTitle(desc string) string {
	if desc == "" {
		return lastNone
	}
	return "Last: " + desc
}
