package app

import (
	"fmt"
	"image"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/arbiter"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/hand"
)

// Snapshot describes the outcome of one tick.
type Snapshot struct {
	Time        time.Time            `json:"time"`
	Controlling bool                 `json:"controlling"`
	Background  bool                 `json:"background"`
	Keymap      string               `json:"keymap,omitempty"`
	Hand        hand.Result          `json:"hand"`
	ROI         image.Rectangle      `json:"roi"`
	Predictions []gesture.Prediction `json:"predictions,omitempty"`
	Labels      []string             `json:"labels,omitempty"`
	Action      string               `json:"action"`
	Detail      string               `json:"detail,omitempty"`
	// Committed is set when Action was dispatched as a click, drag start or
	// new key press rather than a move or a repeat.
	Committed bool `json:"committed"`
	// Frame is the JPEG encoded monitor image. It is only produced while
	// someone is subscribed.
	Frame []byte `json:"-"`
}

// Tick processes one camera frame. Due timers fire first, then the frame is
// preprocessed and searched for a hand inside the region of interest. While
// controlling, a detected hand is classified and handed to the arbiter.
func (a *App) Tick(frame gocv.Mat) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock.Now()
	a.sched.Advance(now)

	img := capture.Preprocess(frame, a.cfg.Camera.Width, a.cfg.Camera.Height, a.cfg.Camera.Mirror)
	defer img.Close()
	if img.Empty() {
		return capture.ErrEmptyFrame
	}

	roi := regionOfInterest(a.cfg, img.Cols(), img.Rows())
	crop := roi.Crop(img)
	defer crop.Close()

	detected := a.extractor.Detect(crop)
	result := a.extractor.Result()

	snap := Snapshot{
		Time:        now,
		Controlling: a.controlling,
		Background:  a.extractor.HasBackground(),
		Hand:        result,
		ROI:         roi.Rect,
		Action:      arbiter.None.String(),
	}

	if a.controlling && detected {
		preds, err := a.classify()
		if err != nil {
			return fmt.Errorf("classify: %w", err)
		}
		snap.Keymap = a.profile
		snap.Predictions = preds
		snap.Labels = make([]string, len(preds))
		for i, p := range preds {
			snap.Labels[i] = a.keymap.Label(p.Label)
		}

		if len(preds) > 0 {
			x, y := roi.Normalize(result.TrackedPoint)
			before := a.dispatched
			act := a.arbiter.Input(preds[0].Label, x, y)
			snap.Action = act.Kind.String()
			snap.Detail = act.Description()
			snap.Committed = a.dispatched != before
		}
	}

	if a.hub.wantsFrames() {
		snap.Frame = monitorImage(img, roi, result)
	}
	a.hub.publish(snap)
	return nil
}

func (a *App) classify() ([]gesture.Prediction, error) {
	sample := gesture.ResizeSample(a.extractor.Extracted())
	defer sample.Close()
	if sample.Empty() {
		return nil, nil
	}
	return a.classifier.Analyze(sample, a.cfg.Classifier.TopN)
}

// monitorImage draws the regions and the detection on a copy of img and
// encodes it as JPEG. It returns nil when encoding fails.
func monitorImage(img gocv.Mat, roi capture.ROI, r hand.Result) []byte {
	mon := img.Clone()
	defer mon.Close()

	roi.Draw(&mon)
	hand.DrawOverlay(&mon, r, roi.Rect.Min)

	buf, err := gocv.IMEncode(gocv.JPEGFileExt, mon)
	if err != nil {
		return nil
	}
	defer buf.Close()
	return append([]byte(nil), buf.GetBytes()...)
}

// Snapshot returns the outcome of the last tick.
func (a *App) Snapshot() Snapshot {
	return a.hub.last()
}

// Subscribe returns a channel receiving every tick's snapshot. With frames
// set the snapshots carry the JPEG monitor image, which is only encoded
// while such a subscriber exists. Slow subscribers miss snapshots but keep
// the last committed action. Call cancel to unsubscribe.
func (a *App) Subscribe(frames bool) (snapshots <-chan Snapshot, cancel func()) {
	return a.hub.subscribe(frames)
}
