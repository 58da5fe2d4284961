// Package hand locates a hand in a camera frame by skin color and derives
// the fingertips, palm center and a tracked point from its contour.
package hand

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Extractor detects a hand in a frame.
type Extractor interface {
	// Detect analyzes frame and reports whether a hand was found. The
	// outputs of the previous call are discarded either way.
	Detect(frame gocv.Mat) bool

	// Configure replaces the skin filter used by later Detect calls.
	Configure(f Filter)

	// Result returns the outputs of the last Detect call.
	Result() Result

	// Close releases any resources held by the extractor.
	Close() error
}

// HSV is a color in OpenCV's HSV ranges: H in [0,180], S and V in [0,255].
type HSV struct {
	H, S, V float64
}

func (c HSV) scalar() gocv.Scalar {
	return gocv.NewScalar(c.H, c.S, c.V, 0)
}

// Filter configures the skin color segmentation.
type Filter struct {
	Lower HSV
	Upper HSV
	// DetectionArea is the minimum contour area in pixels accepted as a hand.
	DetectionArea float64
	// Morphology enables an open and a close pass on the skin mask.
	Morphology bool
}

// DefaultFilter returns the filter tuned for indoor lighting.
func DefaultFilter() Filter {
	return Filter{
		Lower:         HSV{H: 30, S: 0, V: 100},
		Upper:         HSV{H: 180, S: 255, V: 255},
		DetectionArea: 5000,
		Morphology:    true,
	}
}

// Result describes the hand found by the last Detect call.
type Result struct {
	Detected     bool
	TrackedPoint image.Point
	Fingers      []image.Point
	HandCenter   image.Point
	PalmRadius   float64
	Bounds       image.Rectangle
	HandRegion   image.Rectangle
	Area         float64
}

// Segmentation constants.
const (
	blurSize        = 7
	blurSigma       = 0.8
	maskThreshold   = 10
	morphKernelSize = 9
	polyEpsilon     = 10
)

var white = color.RGBA{255, 255, 255, 0}

// SkinExtractor is the gocv Extractor. It is not safe for concurrent use.
type SkinExtractor struct {
	filter     Filter
	kernel     gocv.Mat
	background *Background

	input    gocv.Mat
	filtered gocv.Mat
	visual   gocv.Mat
	extract  gocv.Mat

	result   Result
	onChange func(bool)
}

// NewSkinExtractor creates an extractor using filter.
func NewSkinExtractor(filter Filter) *SkinExtractor {
	return &SkinExtractor{
		filter:     filter,
		kernel:     gocv.GetStructuringElement(gocv.MorphEllipse, image.Pt(morphKernelSize, morphKernelSize)),
		background: NewBackground(),
		input:      gocv.NewMat(),
		filtered:   gocv.NewMat(),
		visual:     gocv.NewMat(),
		extract:    gocv.NewMat(),
		result:     Result{TrackedPoint: NoPoint, HandCenter: NoPoint},
	}
}

// Configure replaces the skin filter.
func (e *SkinExtractor) Configure(f Filter) {
	e.filter = f
}

// Filter returns the active skin filter.
func (e *SkinExtractor) Filter() Filter {
	return e.filter
}

// Result returns a copy of the last detection result.
func (e *SkinExtractor) Result() Result {
	r := e.result
	r.Fingers = append([]image.Point(nil), e.result.Fingers...)
	return r
}

// Input returns the last frame given to Detect.
func (e *SkinExtractor) Input() gocv.Mat { return e.input }

// Filtered returns the binary skin mask of the last frame.
func (e *SkinExtractor) Filtered() gocv.Mat { return e.filtered }

// Visualization returns the annotated drawing of the last detection.
func (e *SkinExtractor) Visualization() gocv.Mat { return e.visual }

// Extracted returns the skin mask cropped to the hand region. It is empty
// when nothing was detected.
func (e *SkinExtractor) Extracted() gocv.Mat { return e.extract }

// Detect runs the full segmentation on frame. Single-channel frames are
// expanded to BGR first.
func (e *SkinExtractor) Detect(frame gocv.Mat) bool {
	e.reset()
	if frame.Empty() {
		return false
	}
	if frame.Channels() == 1 {
		gocv.CvtColor(frame, &e.input, gocv.ColorGrayToBGR)
	} else {
		frame.CopyTo(&e.input)
	}
	frame = e.input

	e.segment(frame)
	e.visual.Close()
	e.visual = gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 255, 255, 0), frame.Rows(), frame.Cols(), gocv.MatTypeCV8UC3)

	contour, area, ok := e.largestContour()
	if !ok {
		return false
	}
	if area > maxContourAreaRatio*float64(frame.Rows()*frame.Cols()) {
		return false
	}

	poly, defects := polygonDefects(contour)
	fingers, valleys := FindFingers(poly, defects)

	tracked := Topmost(contour)
	center := e.palmCenter(contour, frame.Rows(), frame.Cols())
	radius := PalmRadius(center, valleys, tracked)
	bounds := BoundingRect(contour)
	region := HandRegion(bounds, center, radius).Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))

	if !region.Empty() {
		roi := e.filtered.Region(region)
		roi.CopyTo(&e.extract)
		roi.Close()
	}

	e.result = Result{
		Detected:     true,
		TrackedPoint: tracked,
		Fingers:      fingers,
		HandCenter:   center,
		PalmRadius:   radius,
		Bounds:       bounds,
		HandRegion:   region,
		Area:         area,
	}
	drawResult(&e.visual, contour, e.result)
	return true
}

func (e *SkinExtractor) reset() {
	e.result = Result{TrackedPoint: NoPoint, HandCenter: NoPoint}
	e.extract.Close()
	e.extract = gocv.NewMat()
	e.visual.Close()
	e.visual = gocv.NewMat()
}

// segment builds the binary skin mask of frame into e.filtered.
func (e *SkinExtractor) segment(frame gocv.Mat) {
	src := e.background.Subtract(frame)
	defer src.Close()

	// The frame is BGR but the bounds were tuned on an RGB conversion.
	hsv := gocv.NewMat()
	defer hsv.Close()
	gocv.CvtColor(src, &hsv, gocv.ColorRGBToHSV)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.InRangeWithScalar(hsv, e.filter.Lower.scalar(), e.filter.Upper.scalar(), &mask)

	blurred := gocv.NewMat()
	defer blurred.Close()
	gocv.GaussianBlur(mask, &blurred, image.Pt(blurSize, blurSize), blurSigma, blurSigma, gocv.BorderDefault)

	gocv.Threshold(blurred, &e.filtered, maskThreshold, 255, gocv.ThresholdBinary)

	if e.filter.Morphology {
		gocv.MorphologyEx(e.filtered, &e.filtered, gocv.MorphOpen, e.kernel)
		gocv.MorphologyEx(e.filtered, &e.filtered, gocv.MorphClose, e.kernel)
	}
}

// largestContour returns the external contour with the greatest area above
// the detection area.
func (e *SkinExtractor) largestContour() ([]image.Point, float64, bool) {
	contours := gocv.FindContours(e.filtered, gocv.RetrievalExternal, gocv.ChainApproxNone)
	defer contours.Close()

	best, bestArea := -1, e.filter.DetectionArea
	for i := 0; i < contours.Size(); i++ {
		if area := gocv.ContourArea(contours.At(i)); area > bestArea {
			best, bestArea = i, area
		}
	}
	if best < 0 {
		return nil, 0, false
	}
	return contours.At(best).ToPoints(), bestArea, true
}

// polygonDefects simplifies contour and returns the polygon with its
// convexity defects.
func polygonDefects(contour []image.Point) ([]image.Point, []Defect) {
	pv := gocv.NewPointVectorFromPoints(contour)
	defer pv.Close()

	approx := gocv.ApproxPolyDP(pv, polyEpsilon, true)
	defer approx.Close()

	poly := approx.ToPoints()
	if len(poly) < 4 {
		return poly, nil
	}

	hull := gocv.NewMat()
	defer hull.Close()
	gocv.ConvexHull(approx, &hull, false, false)
	if hull.Rows() < 3 {
		return poly, nil
	}

	raw := gocv.NewMat()
	defer raw.Close()
	gocv.ConvexityDefects(approx, hull, &raw)

	defects := make([]Defect, 0, raw.Rows())
	for i := 0; i < raw.Rows(); i++ {
		defects = append(defects, Defect{
			Start: int(raw.GetIntAt(i, 0)),
			End:   int(raw.GetIntAt(i, 1)),
			Far:   int(raw.GetIntAt(i, 2)),
			Depth: float64(raw.GetIntAt(i, 3)) / 256,
		})
	}
	return poly, defects
}

// palmCenter returns the interior point farthest from the contour edge.
func (e *SkinExtractor) palmCenter(contour []image.Point, rows, cols int) image.Point {
	filled := gocv.Zeros(rows, cols, gocv.MatTypeCV8UC1)
	defer filled.Close()

	pts := gocv.NewPointsVectorFromPoints([][]image.Point{contour})
	defer pts.Close()
	gocv.DrawContours(&filled, pts, 0, white, -1)

	dist := gocv.NewMat()
	defer dist.Close()
	labels := gocv.NewMat()
	defer labels.Close()
	gocv.DistanceTransform(filled, &dist, &labels, gocv.DistL2, gocv.DistanceMask5, gocv.DistanceLabelCComp)

	_, _, _, maxLoc := gocv.MinMaxLoc(dist)
	return maxLoc
}

// SetBackground captures the last input frame as background. Without a
// previous frame it clears the background instead and returns false.
func (e *SkinExtractor) SetBackground() bool {
	if e.input.Empty() {
		e.ClearBackground()
		return false
	}
	e.background.Set(e.input)
	e.notify(true)
	return true
}

// ClearBackground drops the background. Calling it without a background
// is a no-op.
func (e *SkinExtractor) ClearBackground() {
	if e.background.Clear() {
		e.notify(false)
	}
}

// HasBackground reports whether a background is set.
func (e *SkinExtractor) HasBackground() bool {
	return e.background.Ready()
}

// OnBackgroundChange registers fn to be called with the new state whenever
// the background is set or cleared.
func (e *SkinExtractor) OnBackgroundChange(fn func(bool)) {
	e.onChange = fn
}

func (e *SkinExtractor) notify(set bool) {
	if e.onChange != nil {
		e.onChange(set)
	}
}

// Close releases all Mats.
func (e *SkinExtractor) Close() error {
	e.kernel.Close()
	e.background.Close()
	e.input.Close()
	e.filtered.Close()
	e.visual.Close()
	e.extract.Close()
	return nil
}
