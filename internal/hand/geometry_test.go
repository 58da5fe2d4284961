package hand

import (
	"image"
	"math"
	"testing"
)

func TestFindFingers(t *testing.T) {
	tests := []struct {
		name        string
		poly        []image.Point
		defects     []Defect
		wantFingers []image.Point
		wantValleys int
	}{
		{
			name:        "both tips kept",
			poly:        []image.Point{{100, 0}, {120, 100}, {140, 0}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantFingers: []image.Point{{100, 0}, {140, 0}},
			wantValleys: 1,
		},
		{
			name:        "close tips keep the topmost",
			poly:        []image.Point{{100, 0}, {114, 100}, {128, 5}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantFingers: []image.Point{{100, 0}},
			wantValleys: 1,
		},
		{
			name:        "close tips keep the topmost end",
			poly:        []image.Point{{100, 5}, {114, 100}, {128, 0}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantFingers: []image.Point{{128, 0}},
			wantValleys: 1,
		},
		{
			name: "shared tip merged",
			poly: []image.Point{{100, 0}, {120, 100}, {140, 0}, {160, 100}, {180, 0}},
			defects: []Defect{
				{Start: 0, End: 2, Far: 1},
				{Start: 2, End: 4, Far: 3},
			},
			wantFingers: []image.Point{{100, 0}, {140, 0}, {180, 0}},
			wantValleys: 2,
		},
		{
			name:        "too short",
			poly:        []image.Point{{100, 0}, {102, 5}, {104, 0}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantValleys: 0,
		},
		{
			name:        "too long",
			poly:        []image.Point{{0, 0}, {50, 300}, {100, 0}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantValleys: 0,
		},
		{
			name:        "angle too wide",
			poly:        []image.Point{{0, 100}, {100, 105}, {200, 100}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantValleys: 0,
		},
		{
			name:        "angle too narrow",
			poly:        []image.Point{{100, 0}, {101, 150}, {104, 0}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantValleys: 0,
		},
		{
			name:        "index out of range",
			poly:        []image.Point{{100, 0}, {120, 100}},
			defects:     []Defect{{Start: 0, End: 2, Far: 1}},
			wantValleys: 0,
		},
		{
			name: "no defects",
			poly: []image.Point{{0, 0}, {10, 0}, {10, 10}, {0, 10}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fingers, valleys := FindFingers(tt.poly, tt.defects)
			if len(fingers) != len(tt.wantFingers) {
				t.Fatalf("FindFingers() fingers = %v, want %v", fingers, tt.wantFingers)
			}
			for i := range fingers {
				if fingers[i] != tt.wantFingers[i] {
					t.Errorf("finger[%d] = %v, want %v", i, fingers[i], tt.wantFingers[i])
				}
			}
			if len(valleys) != tt.wantValleys {
				t.Errorf("FindFingers() valleys = %d, want %d", len(valleys), tt.wantValleys)
			}
		})
	}
}

func TestFindFingers_Separation(t *testing.T) {
	// A fan of defects whose tips crowd together.
	var poly []image.Point
	var defects []Defect
	for i := 0; i < 8; i++ {
		base := len(poly)
		x := 100 + i*12
		poly = append(poly, image.Pt(x, 0), image.Pt(x+20, 100), image.Pt(x+40, 0))
		defects = append(defects, Defect{Start: base, Far: base + 1, End: base + 2})
	}

	fingers, _ := FindFingers(poly, defects)
	for i := range fingers {
		for j := i + 1; j < len(fingers); j++ {
			if d := sqDist(fingers[i], fingers[j]); d < fingerMergeSqDist {
				t.Errorf("fingers %v and %v are %v apart, want >= %d", fingers[i], fingers[j], d, fingerMergeSqDist)
			}
		}
	}
}

func TestTopmost(t *testing.T) {
	tests := []struct {
		name string
		pts  []image.Point
		want image.Point
	}{
		{"empty", nil, NoPoint},
		{"single", []image.Point{{3, 4}}, image.Pt(3, 4)},
		{"smallest y", []image.Point{{0, 9}, {5, 2}, {7, 3}}, image.Pt(5, 2)},
		{"first wins on ties", []image.Point{{0, 9}, {5, 2}, {1, 2}}, image.Pt(5, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Topmost(tt.pts); got != tt.want {
				t.Errorf("Topmost() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPalmRadius(t *testing.T) {
	center := image.Pt(100, 100)

	got := PalmRadius(center, []image.Point{{100, 150}, {130, 100}, {100, 20}}, image.Pt(100, 0))
	if math.Abs(got-36) > 1e-9 {
		t.Errorf("PalmRadius() with valleys = %v, want 36", got)
	}

	got = PalmRadius(center, nil, image.Pt(100, 0))
	if math.Abs(got-80) > 1e-9 {
		t.Errorf("PalmRadius() fallback = %v, want 80", got)
	}
}

func TestHandRegion(t *testing.T) {
	bounds := image.Rect(10, 10, 110, 300)

	got := HandRegion(bounds, image.Pt(60, 100), 40)
	if want := image.Rect(10, 10, 110, 160); got != want {
		t.Errorf("HandRegion() = %v, want %v", got, want)
	}

	got = HandRegion(bounds, image.Pt(60, 100), 400)
	if got != bounds {
		t.Errorf("HandRegion() with large radius = %v, want %v", got, bounds)
	}

	got = HandRegion(bounds, image.Pt(60, 0), 0)
	if got.Empty() {
		t.Errorf("HandRegion() = %v, want non-empty", got)
	}
}

func TestBoundingRect(t *testing.T) {
	if got := BoundingRect(nil); !got.Empty() {
		t.Errorf("BoundingRect(nil) = %v, want empty", got)
	}
	got := BoundingRect([]image.Point{{5, 5}, {1, 9}, {7, 2}})
	if want := image.Rect(1, 2, 8, 10); got != want {
		t.Errorf("BoundingRect() = %v, want %v", got, want)
	}
}

func TestAngleAt(t *testing.T) {
	got := angleAt(image.Pt(0, 0), image.Pt(10, 0), image.Pt(0, 10))
	if math.Abs(got-math.Pi/2) > 1e-9 {
		t.Errorf("angleAt() = %v, want pi/2", got)
	}
	if got := angleAt(image.Pt(0, 0), image.Pt(0, 0), image.Pt(0, 10)); got != 0 {
		t.Errorf("angleAt() degenerate = %v, want 0", got)
	}
}
