package hand

import (
	"image"

	"gocv.io/x/gocv"
)

// MockExtractor is a test implementation of the Extractor interface.
// Each Detect call consumes the next queued result; once the queue is
// drained the last result repeats.
type MockExtractor struct {
	results []Result
	next    int
	filter  Filter
	calls   int

	frame      gocv.Mat
	background bool
}

// NewMockExtractor creates a MockExtractor that detects nothing until
// results are queued.
func NewMockExtractor() *MockExtractor {
	return &MockExtractor{filter: DefaultFilter()}
}

// Queue appends results to be returned by later Detect calls.
func (m *MockExtractor) Queue(results ...Result) {
	m.results = append(m.results, results...)
}

// Detect returns whether the next queued result holds a detection.
func (m *MockExtractor) Detect(frame gocv.Mat) bool {
	if m.calls > 0 && m.next < len(m.results)-1 {
		m.next++
	}
	m.calls++
	m.frame = frame
	return m.Result().Detected
}

// Extracted returns the frame given to the last Detect call. The mock does
// not own it.
func (m *MockExtractor) Extracted() gocv.Mat {
	return m.frame
}

// SetBackground succeeds once a frame has been seen.
func (m *MockExtractor) SetBackground() bool {
	m.background = m.calls > 0
	return m.background
}

// ClearBackground drops the background.
func (m *MockExtractor) ClearBackground() {
	m.background = false
}

// HasBackground reports whether SetBackground succeeded last.
func (m *MockExtractor) HasBackground() bool {
	return m.background
}

// Configure records the filter.
func (m *MockExtractor) Configure(f Filter) {
	m.filter = f
}

// Filter returns the last configured filter.
func (m *MockExtractor) Filter() Filter {
	return m.filter
}

// Result returns the current queued result.
func (m *MockExtractor) Result() Result {
	if m.calls == 0 || len(m.results) == 0 {
		return Result{TrackedPoint: NoPoint, HandCenter: NoPoint}
	}
	return m.results[m.next]
}

// Calls returns the number of Detect calls.
func (m *MockExtractor) Calls() int {
	return m.calls
}

// Close is a no-op for the mock extractor.
func (m *MockExtractor) Close() error {
	return nil
}

// DetectedAt returns a detection whose tracked point is p.
func DetectedAt(p image.Point) Result {
	return Result{
		Detected:     true,
		TrackedPoint: p,
		Fingers:      []image.Point{p},
		HandCenter:   p.Add(image.Pt(0, 60)),
		PalmRadius:   40,
		Bounds:       image.Rect(p.X-50, p.Y, p.X+50, p.Y+150),
		HandRegion:   image.Rect(p.X-50, p.Y, p.X+50, p.Y+120),
	}
}
