package geometry

import (
	"testing"
)

func rect(minX, minY, maxX, maxY float64) Rectangle {
	return Rectangle{Min: Vector2D{minX, minY}, Max: Vector2D{maxX, maxY}}
}

func TestNewRectangle_OrdersCorners(t *testing.T) {
	got := NewRectangle(Vector2D{5, -1}, Vector2D{-5, 1})
	want := rect(-5, -1, 5, 1)
	if !got.Eq(want) {
		t.Errorf("NewRectangle = %v; want %v", got, want)
	}
}

func TestRectangleFromCenter(t *testing.T) {
	got := RectangleFromCenter(Vector2D{10, 20}, Vector2D{4, 2})
	want := rect(8, 19, 12, 21)
	if !got.Eq(want) {
		t.Errorf("RectangleFromCenter = %v; want %v", got, want)
	}
	if !got.Center().Eq(Vector2D{10, 20}) {
		t.Errorf("Center = %v; want (10, 20)", got.Center())
	}
	if got.Width() != 4 || got.Height() != 2 || got.Area() != 8 {
		t.Errorf("Width/Height/Area = %v/%v/%v; want 4/2/8", got.Width(), got.Height(), got.Area())
	}
}

func TestRectangle_Contains(t *testing.T) {
	outer := rect(-10, -10, 10, 10)

	tests := []struct {
		name  string
		inner Rectangle
		want  bool
	}{
		{"Strictly inside", rect(-1, -1, 1, 1), true},
		{"Itself", outer, false},
		{"Touching left edge", rect(-10, -1, 0, 1), false},
		{"Touching top edge", rect(-1, 0, 1, 10), false},
		{"Straddling", rect(5, 5, 15, 15), false},
		{"Outside", rect(20, 20, 30, 30), false},
		{"Degenerate point inside", rect(3, 3, 3, 3), true},
		{"Degenerate point on edge", rect(10, 3, 10, 3), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("%v.Contains(%v) = %v; want %v", outer, tt.inner, got, tt.want)
			}
		})
	}
}

func TestRectangle_Partition(t *testing.T) {
	r := rect(-100, -50, 100, 50)
	parts := r.Partition()

	want := [4]Rectangle{
		BottomLeft:  rect(-100, -50, 0, 0),
		BottomRight: rect(0, -50, 100, 0),
		TopLeft:     rect(-100, 0, 0, 50),
		TopRight:    rect(0, 0, 100, 50),
	}
	for i := range parts {
		if !parts[i].Eq(want[i]) {
			t.Errorf("Partition()[%d] = %v; want %v", i, parts[i], want[i])
		}
	}

	// Union covers the whole area and no two quadrants overlap.
	area := 0.0
	for i := range parts {
		area += parts[i].Area()
		for j := i + 1; j < len(parts); j++ {
			if parts[i].Overlaps(parts[j]) {
				t.Errorf("quadrants %d and %d overlap: %v %v", i, j, parts[i], parts[j])
			}
		}
	}
	if !floatEquals(area, r.Area()) {
		t.Errorf("sum of quadrant areas = %v; want %v", area, r.Area())
	}

	// Same input, same output.
	if again := r.Partition(); again != parts {
		t.Errorf("Partition is not reproducible: %v vs %v", again, parts)
	}
}

func TestRectangle_Magnify(t *testing.T) {
	r := rect(0, 0, 2, 4)

	got := r.Magnify(Vector2D{3, 0.5})
	want := rect(-2, 1, 4, 3)
	if !got.Eq(want) {
		t.Errorf("Magnify = %v; want %v", got, want)
	}
	if !got.Center().Eq(r.Center()) {
		t.Errorf("Magnify moved the center: %v vs %v", got.Center(), r.Center())
	}
	if !r.Magnify(Splat(1)).Eq(r) {
		t.Error("Magnify by 1 should be the identity")
	}
}

func TestRectangle_OverlapsAndIntersection(t *testing.T) {
	a := rect(0, 0, 10, 10)
	b := rect(5, 5, 15, 15)
	c := rect(10, 0, 20, 10) // shares only an edge with a

	if !a.Overlaps(b) {
		t.Error("a and b should overlap")
	}
	if a.Overlaps(c) {
		t.Error("edge sharing rectangles should not overlap")
	}

	got, ok := a.Intersection(b)
	if !ok || !got.Eq(rect(5, 5, 10, 10)) {
		t.Errorf("Intersection = %v, %v; want [5,5..10,10], true", got, ok)
	}
	if _, ok := a.Intersection(c); ok {
		t.Error("Intersection of edge sharing rectangles should be empty")
	}
}

func TestRectangle_TranslateShrink(t *testing.T) {
	r := rect(-10, -10, 10, 10)
	if got := r.Translate(Vector2D{1, 2}); !got.Eq(rect(-9, -8, 11, 12)) {
		t.Errorf("Translate = %v", got)
	}
	if got := r.Shrink(2); !got.Eq(rect(-8, -8, 8, 8)) {
		t.Errorf("Shrink(2) = %v", got)
	}
	if got := r.Shrink(50); !got.Eq(rect(0, 0, 0, 0)) {
		t.Errorf("Shrink(50) = %v; want collapsed to the center", got)
	}
}
