package capture

import (
	"image"

	"gocv.io/x/gocv"
)

// Margins are the distances in pixels between the region of interest and
// the smaller cursor region inside it. The bottom margin leaves room for
// the wrist below a hand whose fingertip sits at the cursor region's edge.
type Margins struct {
	Left, Right, Top, Bottom int
}

// DefaultMargins returns the margins used by the cursor region.
func DefaultMargins() Margins {
	return Margins{Left: 50, Right: 50, Top: 10, Bottom: 150}
}

// ROI is the part of the frame searched for a hand. The tracked point is
// mapped to the screen through the cursor region.
type ROI struct {
	// Rect is the region of interest in frame coordinates.
	Rect image.Rectangle
	// Cursor is the cursor region in frame coordinates.
	Cursor  image.Rectangle
	Margins Margins
}

// NewROI builds the region of interest for a width x height frame from
// percent bounds. The region is grown to fit the margins when needed,
// shifting it back inside the frame.
func NewROI(width, height, startX, endX, startY, endY int, m Margins) ROI {
	x := width * startX / 100
	y := height * startY / 100
	w := width * (endX - startX) / 100
	h := height * (endY - startY) / 100

	if minW := m.Left + m.Right + 1; w < minW {
		w = minW
		if x+w > width {
			x = width - w
		}
	}
	if minH := m.Top + m.Bottom + 1; h < minH {
		h = minH
		if y+h > height {
			y = height - h
		}
	}

	r := ROI{
		Rect:    image.Rect(x, y, x+w, y+h),
		Margins: m,
	}
	r.Cursor = image.Rect(x+m.Left, y+m.Top, x+w-m.Right, y+h-m.Bottom)
	return r
}

// Normalize maps p, in region of interest coordinates, into the cursor
// region with both axes scaled to [0,1]. Points outside the cursor region
// are clamped to its edge.
func (r ROI) Normalize(p image.Point) (x, y float64) {
	x = float64(p.X-r.Margins.Left) / float64(r.Cursor.Dx())
	y = float64(p.Y-r.Margins.Top) / float64(r.Cursor.Dy())
	return clamp01(x), clamp01(y)
}

// Crop returns the region of interest of frame. The region is clipped to
// the frame. The caller must close the returned Mat.
func (r ROI) Crop(frame gocv.Mat) gocv.Mat {
	rect := r.Rect.Intersect(image.Rect(0, 0, frame.Cols(), frame.Rows()))
	if rect.Empty() {
		return gocv.NewMat()
	}
	region := frame.Region(rect)
	defer region.Close()
	return region.Clone()
}

// Draw outlines the region of interest in green and the cursor region in red.
func (r ROI) Draw(frame *gocv.Mat) {
	gocv.Rectangle(frame, r.Rect, green, 2)
	gocv.Rectangle(frame, r.Cursor, red, 3)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
