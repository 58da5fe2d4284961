package capture

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	green = color.RGBA{0, 255, 0, 0}
	red   = color.RGBA{255, 0, 0, 0}
)

// Preprocess scales src to height keeping its aspect ratio, crops the
// center width columns and mirrors the result when mirror is set. Frames
// narrower than width after scaling are stretched to width instead. The
// caller must close the returned Mat.
func Preprocess(src gocv.Mat, width, height int, mirror bool) gocv.Mat {
	out := gocv.NewMat()
	if src.Empty() {
		return out
	}

	scaledW := src.Cols() * height / src.Rows()
	if scaledW < width {
		gocv.Resize(src, &out, image.Pt(width, height), 0, 0, gocv.InterpolationLinear)
	} else {
		scaled := gocv.NewMat()
		defer scaled.Close()
		gocv.Resize(src, &scaled, image.Pt(scaledW, height), 0, 0, gocv.InterpolationLinear)

		x := (scaledW - width) / 2
		region := scaled.Region(image.Rect(x, 0, x+width, height))
		region.CopyTo(&out)
		region.Close()
	}

	if mirror {
		gocv.Flip(out, &out, 1)
	}
	return out
}
