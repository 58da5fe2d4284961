package gesture

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockClassifier is a test implementation of the Classifier interface.
// It returns preset probabilities and counts the samples it sees.
type MockClassifier struct {
	mu      sync.Mutex
	labels  int
	probs   []float64
	loadErr error
	err     error
	calls   int
	loaded  bool
}

// NewMockClassifier creates a MockClassifier reporting labels labels.
func NewMockClassifier(labels int) *MockClassifier {
	return &MockClassifier{labels: labels}
}

// SetLabel makes every subsequent Analyze call predict label with certainty.
func (m *MockClassifier) SetLabel(label int) {
	probs := make([]float64, m.labels)
	if label >= 0 && label < m.labels {
		probs[label] = 1
	}
	m.SetProbs(probs)
}

// SetProbs sets the probabilities returned by Analyze.
func (m *MockClassifier) SetProbs(probs []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.probs = probs
}

// SetLoadError sets the error returned by Load.
func (m *MockClassifier) SetLoadError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadErr = err
}

// SetError sets the error returned by Analyze.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Load returns the configured label count.
func (m *MockClassifier) Load(modelFile, structure string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return 0, m.loadErr
	}
	m.loaded = true
	return m.labels, nil
}

// Analyze returns the preset probabilities as predictions.
func (m *MockClassifier) Analyze(img gocv.Mat, topN int) ([]Prediction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if !m.loaded {
		return nil, ErrNotLoaded
	}
	if m.err != nil {
		return nil, m.err
	}
	return TopN(m.probs, topN), nil
}

// Calls returns the number of Analyze calls.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close is a no-op for the mock classifier.
func (m *MockClassifier) Close() error {
	return nil
}
