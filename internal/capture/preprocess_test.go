package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestPreprocess(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	tests := []struct {
		name       string
		cols, rows int
	}{
		{"same size", 640, 480},
		{"wide source", 1280, 720},
		{"narrow source", 320, 480},
		{"small source", 320, 240},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := gocv.NewMatWithSize(tt.rows, tt.cols, gocv.MatTypeCV8UC3)
			defer src.Close()

			out := Preprocess(src, 640, 480, false)
			defer out.Close()
			if out.Cols() != 640 || out.Rows() != 480 {
				t.Errorf("Preprocess() size = %dx%d, want 640x480", out.Cols(), out.Rows())
			}
		})
	}
}

func TestPreprocess_Mirror(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	src := gocv.Zeros(480, 640, gocv.MatTypeCV8UC3)
	defer src.Close()
	// White block on the left edge.
	gocv.Rectangle(&src, image.Rect(0, 0, 100, 480), color.RGBA{255, 255, 255, 0}, -1)

	plain := Preprocess(src, 640, 480, false)
	defer plain.Close()
	mirrored := Preprocess(src, 640, 480, true)
	defer mirrored.Close()

	if v := plain.GetVecbAt(240, 10)[0]; v != 255 {
		t.Errorf("unmirrored left pixel = %d, want 255", v)
	}
	if v := mirrored.GetVecbAt(240, 10)[0]; v != 0 {
		t.Errorf("mirrored left pixel = %d, want 0", v)
	}
	if v := mirrored.GetVecbAt(240, 630)[0]; v != 255 {
		t.Errorf("mirrored right pixel = %d, want 255", v)
	}
}

func TestPreprocess_Empty(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	src := gocv.NewMat()
	defer src.Close()
	out := Preprocess(src, 640, 480, true)
	defer out.Close()
	if !out.Empty() {
		t.Error("Preprocess(empty) is not empty")
	}
}

func TestROI_Crop(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv test in short mode")
	}

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	r := NewROI(640, 480, 48, 98, 2, 68, DefaultMargins())
	crop := r.Crop(frame)
	defer crop.Close()
	if crop.Cols() != r.Rect.Dx() || crop.Rows() != r.Rect.Dy() {
		t.Errorf("Crop() size = %dx%d, want %dx%d", crop.Cols(), crop.Rows(), r.Rect.Dx(), r.Rect.Dy())
	}
}
