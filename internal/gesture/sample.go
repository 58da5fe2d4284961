package gesture

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// SampleSize is the side of the square image the classifier consumes.
const SampleSize = 64

// ResizeSample scales img to SampleSize x SampleSize keeping its aspect
// ratio. The scaled image is centered and the rest filled with black.
// Empty and already sized images are returned as copies. The caller must
// close the returned Mat.
func ResizeSample(img gocv.Mat) gocv.Mat {
	if img.Empty() || (img.Rows() == SampleSize && img.Cols() == SampleSize) {
		return img.Clone()
	}

	out := gocv.NewMat()
	if img.Rows() == img.Cols() {
		gocv.Resize(img, &out, image.Pt(SampleSize, SampleSize), 0, 0, gocv.InterpolationLinear)
		return out
	}

	rect := letterbox(img.Cols(), img.Rows())

	scaled := gocv.NewMat()
	defer scaled.Close()
	gocv.Resize(img, &scaled, rect.Size(), 0, 0, gocv.InterpolationLinear)

	out.Close()
	out = gocv.Zeros(SampleSize, SampleSize, img.Type())
	roi := out.Region(rect)
	scaled.CopyTo(&roi)
	roi.Close()
	return out
}

// letterbox returns where a cols x rows image lands inside the sample.
func letterbox(cols, rows int) image.Rectangle {
	sx := float64(SampleSize) / float64(cols)
	sy := float64(SampleSize) / float64(rows)

	if sx < sy {
		h := int(math.Ceil(float64(rows) * sx))
		y := (SampleSize - h) / 2
		return image.Rect(0, y, SampleSize, y+h)
	}
	w := int(math.Ceil(float64(cols) * sy))
	x := (SampleSize - w) / 2
	return image.Rect(x, 0, x+w, SampleSize)
}
