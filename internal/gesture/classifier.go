// Package gesture classifies extracted hand images into gesture labels.
package gesture

import (
	"errors"
	"sort"

	"gocv.io/x/gocv"
)

var (
	// ErrNotLoaded is returned by Analyze before a model was loaded.
	ErrNotLoaded = errors.New("classifier: no model loaded")
	// ErrInvalidModel is returned when a model cannot serve 64x64 samples.
	ErrInvalidModel = errors.New("classifier: invalid model")
)

// Prediction is the probability that a sample shows a label.
type Prediction struct {
	Label int     `json:"label"`
	Prob  float64 `json:"prob"`
}

// Classifier recognizes gestures in hand samples.
type Classifier interface {
	// Load reads a model and returns the number of labels it predicts.
	// structure is an optional network description accompanying the model.
	Load(modelFile, structure string) (int, error)

	// Analyze returns the topN most probable labels for img, best first.
	Analyze(img gocv.Mat, topN int) ([]Prediction, error)

	// Close releases the model.
	Close() error
}

// TopN returns the n most probable labels of probs, best first. Ties keep
// the lower label first.
func TopN(probs []float64, n int) []Prediction {
	preds := make([]Prediction, len(probs))
	for i, p := range probs {
		preds[i] = Prediction{Label: i, Prob: p}
	}
	sort.SliceStable(preds, func(i, j int) bool {
		return preds[i].Prob > preds[j].Prob
	})
	if n < 0 {
		n = 0
	}
	if n < len(preds) {
		preds = preds[:n]
	}
	return preds
}
