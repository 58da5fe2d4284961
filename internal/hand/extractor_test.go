package hand

import (
	"image"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/testdata"
)

const (
	frameW = 320
	frameH = 240
)

var palm = image.Pt(160, 175)

func TestSkinExtractor_NothingDetected(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	tests := []struct {
		name  string
		frame func() gocv.Mat
	}{
		{"empty mat", gocv.NewMat},
		{"blank", func() gocv.Mat { return testdata.Blank(frameW, frameH) }},
		{"below detection area", func() gocv.Mat { return testdata.Blob(frameW, frameH, image.Pt(160, 120), 20) }},
		{"fills the frame", func() gocv.Mat { return testdata.Blob(frameW, frameH, image.Pt(160, 120), 400) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewSkinExtractor(DefaultFilter())
			defer e.Close()

			// A successful detection first, so stale outputs would show.
			hand := testdata.OpenHand(frameW, frameH, palm)
			defer hand.Close()
			if !e.Detect(hand) {
				t.Fatal("Detect(open hand) = false, want true")
			}

			frame := tt.frame()
			defer frame.Close()

			if e.Detect(frame) {
				t.Fatal("Detect() = true, want false")
			}
			r := e.Result()
			if r.Detected {
				t.Error("Result().Detected = true, want false")
			}
			if r.TrackedPoint != NoPoint {
				t.Errorf("TrackedPoint = %v, want %v", r.TrackedPoint, NoPoint)
			}
			if len(r.Fingers) != 0 {
				t.Errorf("Fingers = %v, want none", r.Fingers)
			}
			if !e.Extracted().Empty() {
				t.Error("Extracted() is not empty")
			}
		})
	}
}

func TestSkinExtractor_OpenHand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	e := NewSkinExtractor(DefaultFilter())
	defer e.Close()

	frame := testdata.OpenHand(frameW, frameH, palm)
	defer frame.Close()

	if !e.Detect(frame) {
		t.Fatal("Detect() = false, want true")
	}
	r := e.Result()

	// The middle finger is the highest point of the hand.
	top := palm.Y - 145 - testdata.FingerWidth/2
	if r.TrackedPoint.Y < top-4 || r.TrackedPoint.Y > top+8 {
		t.Errorf("TrackedPoint.Y = %d, want about %d", r.TrackedPoint.Y, top)
	}
	if r.TrackedPoint.X < palm.X-15 || r.TrackedPoint.X > palm.X+15 {
		t.Errorf("TrackedPoint.X = %d, want about %d", r.TrackedPoint.X, palm.X)
	}

	if d := dist(r.HandCenter, palm); d > 20 {
		t.Errorf("HandCenter = %v, want within 20px of %v", r.HandCenter, palm)
	}
	if r.PalmRadius <= 0 {
		t.Errorf("PalmRadius = %v, want > 0", r.PalmRadius)
	}
	if len(r.Fingers) == 0 {
		t.Error("Fingers is empty, want at least one")
	}
	for i := range r.Fingers {
		for j := i + 1; j < len(r.Fingers); j++ {
			if d := sqDist(r.Fingers[i], r.Fingers[j]); d < fingerMergeSqDist {
				t.Errorf("fingers %v and %v too close: %v", r.Fingers[i], r.Fingers[j], d)
			}
		}
	}

	if !r.HandRegion.In(r.Bounds) {
		t.Errorf("HandRegion %v not inside Bounds %v", r.HandRegion, r.Bounds)
	}
	limit := r.HandCenter.Y + int(regionBelowCenter*r.PalmRadius)
	if r.HandRegion.Max.Y > limit+1 {
		t.Errorf("HandRegion.Max.Y = %d, want <= %d", r.HandRegion.Max.Y, limit+1)
	}

	ex := e.Extracted()
	if ex.Empty() {
		t.Fatal("Extracted() is empty")
	}
	if ex.Cols() != r.HandRegion.Dx() || ex.Rows() != r.HandRegion.Dy() {
		t.Errorf("Extracted() size = %dx%d, want %dx%d", ex.Cols(), ex.Rows(), r.HandRegion.Dx(), r.HandRegion.Dy())
	}
	if e.Visualization().Empty() || e.Filtered().Empty() {
		t.Error("Visualization() or Filtered() is empty")
	}
}

func TestSkinExtractor_GrayscaleFrame(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	e := NewSkinExtractor(DefaultFilter())
	defer e.Close()

	color := testdata.OpenHand(frameW, frameH, palm)
	defer color.Close()
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(color, &gray, gocv.ColorBGRToGray)
	if gray.Channels() != 1 {
		t.Fatalf("gray frame has %d channels, want 1", gray.Channels())
	}

	// Gray pixels carry no hue, so nothing passes the skin filter.
	if e.Detect(gray) {
		t.Error("Detect() = true, want false")
	}
	if r := e.Result(); r.Detected || r.TrackedPoint != NoPoint {
		t.Errorf("Result() = %+v, want nothing detected", r)
	}

	f := e.Filtered()
	if f.Empty() || f.Channels() != 1 || f.Cols() != frameW || f.Rows() != frameH {
		t.Errorf("Filtered() = %dx%d with %d channels, want a %dx%d mask", f.Cols(), f.Rows(), f.Channels(), frameW, frameH)
	}
	if in := e.Input(); in.Channels() != 3 {
		t.Errorf("Input() has %d channels, want 3", in.Channels())
	}

	// A background set from a gray frame still applies to later color frames
	// of the same size.
	if !e.SetBackground() {
		t.Fatal("SetBackground() = false, want true")
	}
	if !e.Detect(color) {
		t.Error("Detect(color) after gray background = false, want true")
	}
}

func TestSkinExtractor_Fist(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	e := NewSkinExtractor(DefaultFilter())
	defer e.Close()

	frame := testdata.Fist(frameW, frameH, palm)
	defer frame.Close()

	if !e.Detect(frame) {
		t.Fatal("Detect() = false, want true")
	}
	r := e.Result()
	top := palm.Y - testdata.PalmRadius
	if r.TrackedPoint.Y < top-4 || r.TrackedPoint.Y > top+4 {
		t.Errorf("TrackedPoint.Y = %d, want about %d", r.TrackedPoint.Y, top)
	}
}

func TestSkinExtractor_Configure(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	e := NewSkinExtractor(DefaultFilter())
	defer e.Close()

	frame := testdata.OpenHand(frameW, frameH, palm)
	defer frame.Close()

	f := DefaultFilter()
	f.DetectionArea = 1e6
	e.Configure(f)
	if e.Detect(frame) {
		t.Error("Detect() with huge detection area = true, want false")
	}

	f = DefaultFilter()
	f.Lower.V = 250
	e.Configure(f)
	if e.Detect(frame) {
		t.Error("Detect() with skin tone outside range = true, want false")
	}

	e.Configure(DefaultFilter())
	if !e.Detect(frame) {
		t.Error("Detect() after restoring filter = false, want true")
	}
}

func TestSkinExtractor_Background(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	e := NewSkinExtractor(DefaultFilter())
	defer e.Close()

	var changes []bool
	e.OnBackgroundChange(func(set bool) { changes = append(changes, set) })

	if e.SetBackground() {
		t.Error("SetBackground() without input = true, want false")
	}
	if len(changes) != 0 {
		t.Errorf("changes = %v, want none", changes)
	}

	frame := testdata.OpenHand(frameW, frameH, palm)
	defer frame.Close()
	e.Detect(frame)

	if !e.SetBackground() {
		t.Fatal("SetBackground() = false, want true")
	}
	if !e.HasBackground() {
		t.Error("HasBackground() = false, want true")
	}

	// The hand is now part of the background.
	if e.Detect(frame) {
		t.Error("Detect(background frame) = true, want false")
	}

	e.ClearBackground()
	e.ClearBackground()
	if e.HasBackground() {
		t.Error("HasBackground() after clear = true, want false")
	}
	if want := []bool{true, false}; len(changes) != len(want) || changes[0] != want[0] || changes[1] != want[1] {
		t.Errorf("changes = %v, want %v", changes, want)
	}

	if !e.Detect(frame) {
		t.Error("Detect() after clear = false, want true")
	}
}
