package gesture

import (
	"image"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopN(t *testing.T) {
	tests := []struct {
		name  string
		probs []float64
		n     int
		want  []Prediction
	}{
		{
			name:  "sorted best first",
			probs: []float64{0.1, 0.6, 0.3},
			n:     3,
			want:  []Prediction{{1, 0.6}, {2, 0.3}, {0, 0.1}},
		},
		{
			name:  "truncated",
			probs: []float64{0.1, 0.6, 0.3},
			n:     1,
			want:  []Prediction{{1, 0.6}},
		},
		{
			name:  "n larger than labels",
			probs: []float64{0.2, 0.8},
			n:     5,
			want:  []Prediction{{1, 0.8}, {0, 0.2}},
		},
		{
			name:  "ties keep lower label first",
			probs: []float64{0.5, 0.5, 0},
			n:     2,
			want:  []Prediction{{0, 0.5}, {1, 0.5}},
		},
		{
			name:  "zero",
			probs: []float64{1},
			n:     0,
			want:  []Prediction{},
		},
		{
			name: "empty",
			n:    3,
			want: []Prediction{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TopN(tt.probs, tt.n)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("TopN() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLetterbox(t *testing.T) {
	tests := []struct {
		cols, rows int
		want       image.Rectangle
	}{
		{128, 64, image.Rect(0, 16, 64, 48)},
		{64, 128, image.Rect(16, 0, 48, 64)},
		{100, 30, image.Rect(0, 22, 64, 42)},
		{30, 100, image.Rect(22, 0, 42, 64)},
	}
	for _, tt := range tests {
		got := letterbox(tt.cols, tt.rows)
		if got != tt.want {
			t.Errorf("letterbox(%d, %d) = %v, want %v", tt.cols, tt.rows, got, tt.want)
		}
	}
}

func TestDNNClassifier_LoadMissingFile(t *testing.T) {
	c := NewDNNClassifier()
	defer c.Close()

	if _, err := c.Load("does-not-exist.caffemodel", ""); err == nil {
		t.Error("Load() error = nil, want error")
	}
	if c.Labels() != 0 {
		t.Errorf("Labels() = %d, want 0", c.Labels())
	}
}
