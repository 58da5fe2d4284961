package hand

import (
	"image"
	"math"
)

// NoPoint is the tracked point reported when nothing is detected.
var NoPoint = image.Point{X: -1, Y: -1}

// Finger estimation limits. Distances are squared pixels, angles radians.
const (
	minFingerSqDist   = 100
	maxFingerSqDist   = 30000
	minFingerAngle    = 0.2618 // 15 degrees
	maxFingerAngle    = 2.3562 // 135 degrees
	fingerMergeSqDist = 900
	tipPairSqDist     = 1000
)

// Palm radius and hand region factors.
const (
	palmRadiusFactor    = 1.2
	palmFallbackFactor  = 0.8
	regionBelowCenter   = 1.5
	maxContourAreaRatio = 0.9
)

// Defect is one convexity defect of a polygon. Start, End and Far index the
// polygon's vertices; Depth is in pixels.
type Defect struct {
	Start int
	End   int
	Far   int
	Depth float64
}

// FindFingers estimates fingertip positions from the convexity defects of a
// hand polygon. It also returns the far points of every accepted defect,
// which approximate the valleys between fingers.
//
// Kept fingertips are always at least fingerMergeSqDist apart.
func FindFingers(poly []image.Point, defects []Defect) (fingers, valleys []image.Point) {
	for _, d := range defects {
		if !validIndex(poly, d.Start) || !validIndex(poly, d.End) || !validIndex(poly, d.Far) {
			continue
		}
		s, e, f := poly[d.Start], poly[d.End], poly[d.Far]

		sf := sqDist(s, f)
		if sf < minFingerSqDist || sf > maxFingerSqDist {
			continue
		}
		ef := sqDist(e, f)
		if ef < minFingerSqDist || ef > maxFingerSqDist {
			continue
		}
		angle := angleAt(f, s, e)
		if angle < minFingerAngle || angle > maxFingerAngle {
			continue
		}

		valleys = append(valleys, f)

		keepS := !nearAny(fingers, s)
		keepE := !nearAny(fingers, e)
		switch {
		case keepS && keepE:
			if sqDist(s, e) < tipPairSqDist {
				if s.Y < e.Y {
					fingers = append(fingers, s)
				} else {
					fingers = append(fingers, e)
				}
			} else {
				fingers = append(fingers, s, e)
			}
		case keepS:
			fingers = append(fingers, s)
		case keepE:
			fingers = append(fingers, e)
		}
	}
	return fingers, valleys
}

// Topmost returns the point with the smallest Y, the first one on ties.
func Topmost(pts []image.Point) image.Point {
	if len(pts) == 0 {
		return NoPoint
	}
	top := pts[0]
	for _, p := range pts[1:] {
		if p.Y < top.Y {
			top = p
		}
	}
	return top
}

// PalmRadius estimates the palm radius around center from the finger
// valleys, falling back to the distance of the tracked point.
func PalmRadius(center image.Point, valleys []image.Point, tracked image.Point) float64 {
	if len(valleys) == 0 {
		return palmFallbackFactor * dist(tracked, center)
	}
	min := math.Inf(1)
	for _, v := range valleys {
		if d := dist(v, center); d < min {
			min = d
		}
	}
	return palmRadiusFactor * min
}

// HandRegion clamps the bottom of bounds so the region ends no more than
// 1.5 palm radii below the hand center. The result is never empty.
func HandRegion(bounds image.Rectangle, center image.Point, radius float64) image.Rectangle {
	r := bounds
	limit := center.Y + int(regionBelowCenter*radius)
	if r.Max.Y > limit {
		r.Max.Y = limit
	}
	if r.Max.Y <= r.Min.Y {
		r.Max.Y = r.Min.Y + 1
	}
	return r
}

// BoundingRect returns the smallest rectangle containing pts.
func BoundingRect(pts []image.Point) image.Rectangle {
	if len(pts) == 0 {
		return image.Rectangle{}
	}
	r := image.Rectangle{Min: pts[0], Max: pts[0].Add(image.Pt(1, 1))}
	for _, p := range pts[1:] {
		r = r.Union(image.Rectangle{Min: p, Max: p.Add(image.Pt(1, 1))})
	}
	return r
}

func validIndex(poly []image.Point, i int) bool {
	return i >= 0 && i < len(poly)
}

func nearAny(pts []image.Point, p image.Point) bool {
	for _, q := range pts {
		if sqDist(p, q) < fingerMergeSqDist {
			return true
		}
	}
	return false
}

// angleAt returns the angle at vertex f of the triangle (s, f, e).
func angleAt(f, s, e image.Point) float64 {
	ax, ay := float64(s.X-f.X), float64(s.Y-f.Y)
	bx, by := float64(e.X-f.X), float64(e.Y-f.Y)
	den := math.Sqrt((ax*ax + ay*ay) * (bx*bx + by*by))
	if den == 0 {
		return 0
	}
	cos := (ax*bx + ay*by) / den
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}

func sqDist(a, b image.Point) float64 {
	dx, dy := float64(a.X-b.X), float64(a.Y-b.Y)
	return dx*dx + dy*dy
}

func dist(a, b image.Point) float64 {
	return math.Sqrt(sqDist(a, b))
}
