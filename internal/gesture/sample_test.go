package gesture

import (
	"image"
	"testing"

	"gocv.io/x/gocv"
)

func TestResizeSample(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	tests := []struct {
		name       string
		cols, rows int
		// filled is the area expected to carry the white input.
		filled image.Rectangle
	}{
		{"already sized", 64, 64, image.Rect(0, 0, 64, 64)},
		{"square", 200, 200, image.Rect(0, 0, 64, 64)},
		{"wide", 128, 64, image.Rect(0, 16, 64, 48)},
		{"tall", 40, 160, image.Rect(24, 0, 40, 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(255, 0, 0, 0), tt.rows, tt.cols, gocv.MatTypeCV8UC1)
			defer src.Close()

			out := ResizeSample(src)
			defer out.Close()

			if out.Rows() != SampleSize || out.Cols() != SampleSize {
				t.Fatalf("ResizeSample() size = %dx%d, want %dx%d", out.Cols(), out.Rows(), SampleSize, SampleSize)
			}
			if out.Type() != gocv.MatTypeCV8UC1 {
				t.Errorf("ResizeSample() type = %v, want CV8UC1", out.Type())
			}
			if got, want := gocv.CountNonZero(out), tt.filled.Dx()*tt.filled.Dy(); got != want {
				t.Errorf("ResizeSample() non-zero pixels = %d, want %d", got, want)
			}
		})
	}
}

func TestResizeSample_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	src := gocv.NewMat()
	defer src.Close()
	out := ResizeSample(src)
	defer out.Close()
	if !out.Empty() {
		t.Error("ResizeSample(empty) is not empty")
	}
}

func TestMockClassifier(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	m := NewMockClassifier(3)
	img := gocv.NewMatWithSize(8, 8, gocv.MatTypeCV8UC1)
	defer img.Close()

	if _, err := m.Analyze(img, 1); err != ErrNotLoaded {
		t.Errorf("Analyze() before Load error = %v, want %v", err, ErrNotLoaded)
	}

	n, err := m.Load("model", "")
	if err != nil || n != 3 {
		t.Fatalf("Load() = %d, %v, want 3, nil", n, err)
	}

	m.SetLabel(2)
	preds, err := m.Analyze(img, 5)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(preds) != 3 || preds[0].Label != 2 {
		t.Errorf("Analyze() = %v, want label 2 first", preds)
	}
	if m.Calls() != 2 {
		t.Errorf("Calls() = %d, want 2", m.Calls())
	}
}
