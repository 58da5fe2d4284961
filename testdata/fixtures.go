// Package testdata draws synthetic camera frames for pipeline tests.
//
// Frames are BGR with a black background and a hand painted in a single
// skin tone that passes the default skin filter.
package testdata

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"
)

// Skin is the color used for painted hands.
var Skin = color.RGBA{R: 220, G: 160, B: 120}

// Hand geometry relative to the palm center.
const (
	PalmRadius  = 60
	FingerWidth = 18
)

// FingerTips are the fingertip offsets of an open hand from its palm center.
var FingerTips = []image.Point{
	{X: -90, Y: -75},
	{X: -50, Y: -135},
	{X: 0, Y: -145},
	{X: 50, Y: -135},
	{X: 90, Y: -75},
}

// Blank returns a black frame.
func Blank(width, height int) gocv.Mat {
	return gocv.Zeros(height, width, gocv.MatTypeCV8UC3)
}

// OpenHand returns a frame with an open hand whose palm is centered at
// palm. The caller must close the returned Mat.
func OpenHand(width, height int, palm image.Point) gocv.Mat {
	frame := Blank(width, height)
	gocv.Circle(&frame, palm, PalmRadius, Skin, -1)
	for _, tip := range FingerTips {
		gocv.Line(&frame, palm, palm.Add(tip), Skin, FingerWidth)
	}
	return frame
}

// Fist returns a frame with a closed hand, a single palm disc.
func Fist(width, height int, palm image.Point) gocv.Mat {
	frame := Blank(width, height)
	gocv.Circle(&frame, palm, PalmRadius, Skin, -1)
	return frame
}

// Blob returns a frame with a skin-colored disc of the given radius.
func Blob(width, height int, at image.Point, radius int) gocv.Mat {
	frame := Blank(width, height)
	gocv.Circle(&frame, at, radius, Skin, -1)
	return frame
}

// Sequence returns n open-hand frames whose palm moves by step between
// consecutive frames.
func Sequence(width, height, n int, start, step image.Point) []gocv.Mat {
	frames := make([]gocv.Mat, 0, n)
	p := start
	for i := 0; i < n; i++ {
		frames = append(frames, OpenHand(width, height, p))
		p = p.Add(step)
	}
	return frames
}

// CloseAll closes every frame.
func CloseAll(frames []gocv.Mat) {
	for _, f := range frames {
		f.Close()
	}
}
