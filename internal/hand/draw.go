package hand

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

var (
	gray  = color.RGBA{127, 127, 127, 0}
	red   = color.RGBA{255, 0, 0, 0}
	green = color.RGBA{0, 255, 0, 0}
	blue  = color.RGBA{0, 0, 255, 0}
)

const (
	markerRadius = 10
	lineWidth    = 3
)

// drawResult paints the contour and the detected hand features onto img.
func drawResult(img *gocv.Mat, contour []image.Point, r Result) {
	pts := gocv.NewPointsVectorFromPoints([][]image.Point{contour})
	defer pts.Close()
	gocv.DrawContours(img, pts, 0, gray, -1)

	for _, f := range r.Fingers {
		gocv.Circle(img, f, markerRadius, red, lineWidth)
		gocv.Line(img, f, r.HandCenter, blue, lineWidth)
	}

	gocv.Rectangle(img, r.HandRegion, green, 2)
	gocv.Circle(img, r.HandCenter, markerRadius, red, -1)
	if r.PalmRadius >= 1 {
		gocv.Circle(img, r.HandCenter, int(r.PalmRadius), red, 2)
	}
}

// DrawOverlay marks the tracked point and fingertips of r on a camera frame.
// Nothing is drawn when r holds no detection.
func DrawOverlay(img *gocv.Mat, r Result, offset image.Point) {
	if !r.Detected {
		return
	}
	gocv.Rectangle(img, r.Bounds.Add(offset), green, 2)
	for _, f := range r.Fingers {
		gocv.Circle(img, f.Add(offset), markerRadius/2, red, 2)
	}
	gocv.Circle(img, r.TrackedPoint.Add(offset), markerRadius, blue, -1)
}
