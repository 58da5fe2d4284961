// Package app runs a controlling session: camera frames go through the hand
// extractor and the classifier, and the arbiter turns the results into
// mouse and keyboard input.
package app

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
	"github.com/ayusman/mudra/internal/input"
	"github.com/ayusman/mudra/internal/keymap"
	"github.com/ayusman/mudra/internal/logging"
	"github.com/ayusman/mudra/internal/sched"
	"github.com/ayusman/mudra/internal/store"
)

var (
	// ErrNoModel is returned when controlling starts without a model file.
	ErrNoModel = errors.New("no classifier model configured")
	// ErrNoStore is returned by operations that need persistence when the
	// App was created without a store.
	ErrNoStore = errors.New("no store configured")
	// ErrNoBackground is returned when a background cannot be captured yet.
	ErrNoBackground = errors.New("no frame to capture the background from")
)

// Extractor is the hand extractor used by the App.
type Extractor interface {
	hand.Extractor
	// Extracted returns the hand image of the last detection.
	Extracted() gocv.Mat
	SetBackground() bool
	ClearBackground()
	HasBackground() bool
}

// Options holds the collaborators of an App. Nil fields are built from
// Config.
type Options struct {
	Config     config.Config
	Camera     capture.Camera
	Extractor  Extractor
	Classifier gesture.Classifier
	Backend    input.Backend
	Store      *store.Store
	Clock      sched.Clock
}

// App orchestrates the capture loop and the controlling session.
type App struct {
	cfg        config.Config
	camera     capture.Camera
	extractor  Extractor
	classifier gesture.Classifier
	backend    input.Backend
	store      *store.Store
	clock      sched.Clock
	sched      *sched.Scheduler
	arbiter    *arbiter.Arbiter
	log        *logrus.Entry

	// mu serializes ticks with every change to the session.
	mu          sync.Mutex
	controlling bool
	session     string
	keymap      *keymap.Keymap
	profile     string
	// dispatched counts committed actions.
	dispatched int

	stopCh chan struct{}
	done   chan struct{}

	hub       *hub
	listeners []func(arbiter.Action)
}

// New creates an App.
func New(opts Options) *App {
	cfg := opts.Config

	a := &App{
		cfg:        cfg,
		camera:     opts.Camera,
		extractor:  opts.Extractor,
		classifier: opts.Classifier,
		backend:    opts.Backend,
		store:      opts.Store,
		clock:      opts.Clock,
		log:        logging.Component("app"),
		hub:        newHub(),
	}

	if a.camera == nil {
		a.camera = capture.NewCamera(cameraConfig(cfg.Camera))
	}
	if a.extractor == nil {
		a.extractor = hand.NewSkinExtractor(skinFilter(cfg.Skin))
	}
	if a.classifier == nil {
		a.classifier = NewClassifier(cfg.Classifier)
	}
	if a.backend == nil {
		a.backend = input.NewRobotgoBackend()
	}
	if a.clock == nil {
		a.clock = sched.RealClock{}
	}

	a.sched = sched.New(a.clock.Now())
	a.arbiter = arbiter.New(arbiterConfig(cfg), a.sched, a.backend)
	a.arbiter.OnAction(a.handleAction)
	return a
}

// NewClassifier builds the classifier backend selected by c.
func NewClassifier(c config.ClassifierConfig) gesture.Classifier {
	if c.Backend == "subprocess" {
		return gesture.NewSubprocessClassifier(c.Python, c.Script)
	}
	return gesture.NewDNNClassifier()
}

// OnAction registers fn to observe committed actions. fn runs inside the
// tick and must not call back into the App.
func (a *App) OnAction(fn func(arbiter.Action)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listeners = append(a.listeners, fn)
}

func (a *App) handleAction(act arbiter.Action) {
	a.dispatched++
	label := ""
	if a.keymap != nil {
		label = a.keymap.Label(act.Label)
	}
	a.log.WithFields(logging.Fields{
		"kind":  act.Kind.String(),
		"label": label,
	}).Info(act.Description())

	if a.store != nil {
		entry := &store.ActionEntry{
			SessionID: a.session,
			Kind:      act.Kind.String(),
			Label:     label,
			Detail:    act.Description(),
			CreatedAt: a.clock.Now(),
		}
		if err := a.store.ActionLog().Append(entry); err != nil {
			a.log.WithError(err).Warn("failed to record action")
		}
	}

	for _, fn := range a.listeners {
		fn(act)
	}
}

// StartControlling loads the keymap file and the model, then starts
// dispatching input for detected gestures.
func (a *App) StartControlling(modelFile, keymapFile string) error {
	km, err := keymap.Load(keymapFile)
	if err != nil {
		return err
	}
	return a.StartControllingWithKeymap(modelFile, km, keymapFile)
}

// StartControllingProfile starts controlling with a stored keymap profile
// referenced by ID or name. An empty modelFile falls back to the last used
// model, then to the configured one. Both choices are remembered.
func (a *App) StartControllingProfile(modelFile, ref string) error {
	if a.store == nil {
		return ErrNoStore
	}

	settings := a.store.Settings()
	if ref == "" {
		ref = settings.GetOr(store.SettingActiveKeymap, "")
	}
	profile, err := a.store.Keymaps().Resolve(ref)
	if err != nil {
		return fmt.Errorf("keymap %q: %w", ref, err)
	}
	km, err := profile.Keymap()
	if err != nil {
		return fmt.Errorf("keymap %q: %w", profile.Name, err)
	}

	if modelFile == "" {
		modelFile = settings.GetOr(store.SettingModelFile, a.cfg.Classifier.ModelFile)
	}
	if err := a.StartControllingWithKeymap(modelFile, km, profile.Name); err != nil {
		return err
	}

	if err := settings.Set(store.SettingActiveKeymap, profile.ID); err != nil {
		a.log.WithError(err).Warn("failed to remember keymap")
	}
	if err := settings.Set(store.SettingModelFile, modelFile); err != nil {
		a.log.WithError(err).Warn("failed to remember model")
	}
	return nil
}

// StartControllingWithKeymap loads the model and checks that it predicts as
// many labels as km defines. A running session is stopped first. name
// identifies the keymap in logs and snapshots.
func (a *App) StartControllingWithKeymap(modelFile string, km *keymap.Keymap, name string) error {
	if modelFile == "" {
		return ErrNoModel
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.controlling {
		a.stopControllingLocked()
	}

	n, err := a.classifier.Load(modelFile, a.cfg.Classifier.StructureFile)
	if err != nil {
		return fmt.Errorf("load model %s: %w", modelFile, err)
	}
	if err := km.Validate(n); err != nil {
		return err
	}
	if err := a.arbiter.Load(km); err != nil {
		return err
	}

	a.keymap = km
	a.profile = name
	a.session = uuid.NewString()
	a.controlling = true

	a.log.WithFields(logging.Fields{
		"session": a.session,
		"keymap":  name,
		"labels":  n,
	}).Info("controlling started")
	return nil
}

// StopControlling releases everything held and stops dispatching input.
func (a *App) StopControlling() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopControllingLocked()
}

func (a *App) stopControllingLocked() {
	if !a.controlling {
		return
	}
	a.arbiter.Stop()
	a.log.WithField("session", a.session).Info("controlling stopped")
	a.controlling = false
	a.session = ""
}

// IsControlling reports whether a session is running.
func (a *App) IsControlling() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.controlling
}

// Session returns the ID of the running session, or "".
func (a *App) Session() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// SetBackground captures the last frame as the background to subtract.
func (a *App) SetBackground() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.extractor.SetBackground() {
		return ErrNoBackground
	}
	a.log.Info("background set")
	return nil
}

// ClearBackground stops background subtraction.
func (a *App) ClearBackground() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.extractor.ClearBackground()
	a.log.Info("background cleared")
}

// Start opens the camera and runs the capture loop at the configured frame
// rate.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopCh != nil {
		return nil
	}
	if err := a.camera.Open(); err != nil {
		return err
	}
	a.camera.SetFPS(a.cfg.Camera.FPS)

	a.stopCh = make(chan struct{})
	a.done = make(chan struct{})
	go a.run(a.stopCh, a.done)

	a.log.WithField("fps", a.cfg.Camera.FPS).Info("capture started")
	return nil
}

// Stop halts the capture loop, ends any session and closes the camera.
func (a *App) Stop() {
	a.mu.Lock()
	stopCh, done := a.stopCh, a.done
	a.stopCh, a.done = nil, nil
	a.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-done
	}

	a.StopControlling()
	if err := a.camera.Close(); err != nil {
		a.log.WithError(err).Warn("failed to close camera")
	}
	a.log.Info("capture stopped")
}

// Close stops the App and releases the extractor and classifier.
func (a *App) Close() error {
	a.Stop()
	a.hub.close()
	return errors.Join(a.extractor.Close(), a.classifier.Close())
}

func (a *App) run(stopCh <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(a.cfg.FramePeriod())
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			frame, err := a.camera.ReadFrame()
			if err != nil {
				a.log.WithError(err).Debug("failed to read frame")
				a.advanceTimers()
				continue
			}
			if err := a.Tick(*frame); err != nil {
				a.log.WithError(err).Debug("frame skipped")
			}
			frame.Close()
		}
	}
}

// advanceTimers fires due timers without a frame, so the lost-tracking
// watchdog still runs while the camera fails.
func (a *App) advanceTimers() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sched.Advance(a.clock.Now())
}

// Camera returns the camera.
func (a *App) Camera() capture.Camera {
	return a.camera
}

// Store returns the store, which may be nil.
func (a *App) Store() *store.Store {
	return a.store
}
