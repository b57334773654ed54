package layout

import (
	"math"
	"testing"
)

func TestRectWidthHeight(t *testing.T) {
	r := Rect{X0: 0.1, Y0: 0.2, X1: 0.4, Y1: 0.5}
	if w := r.Width(); math.Abs(w-0.3) > 1e-9 {
		t.Errorf("Width = %v, want 0.3", w)
	}
	if h := r.Height(); h != 0.3 {
		t.Errorf("Height = %v, want 0.3", h)
	}
}

func TestRectMidpoints(t *testing.T) {
	r := Rect{X0: 0, Y0: 0, X1: 1, Y1: 0.5}
	if m := r.XMid(); m != 0.5 {
		t.Errorf("XMid = %v, want 0.5", m)
	}
	if m := r.YMid(); m != 0.25 {
		t.Errorf("YMid = %v, want 0.25", m)
	}
}

func TestRectUnion(t *testing.T) {
	a := Rect{X0: 0, Y0: 0, X1: 0.3, Y1: 0.3}
	b := Rect{X0: 0.2, Y0: -0.1, X1: 0.5, Y1: 0.2}
	got := a.Union(b)
	want := Rect{X0: 0, Y0: -0.1, X1: 0.5, Y1: 0.3}
	if got != want {
		t.Errorf("Union = %+v, want %+v", got, want)
	}
}

func TestRectContainsInclusiveOfEdges(t *testing.T) {
	r := Rect{X0: 0.1, Y0: 0.1, X1: 0.4, Y1: 0.4}
	cases := []struct {
		x, y float64
		want bool
	}{
		{0.1, 0.1, true},
		{0.4, 0.4, true},
		{0.25, 0.25, true},
		{0.05, 0.25, false},
		{0.25, 0.41, false},
	}
	for _, c := range cases {
		if got := r.Contains(c.x, c.y); got != c.want {
			t.Errorf("Contains(%v,%v) = %v, want %v", c.x, c.y, got, c.want)
		}
	}
}

func TestRectAreaDegenerateIsZero(t *testing.T) {
	zero := Rect{X0: 0.2, Y0: 0.2, X1: 0.2, Y1: 0.5}
	if a := zero.Area(); a != 0 {
		t.Errorf("Area of a zero-width rect = %v, want 0", a)
	}
	inverted := Rect{X0: 0.5, Y0: 0.2, X1: 0.2, Y1: 0.5}
	if a := inverted.Area(); a != 0 {
		t.Errorf("Area of an inverted rect = %v, want 0", a)
	}
}

func TestRectAreaPositive(t *testing.T) {
	r := Rect{X0: 0, Y0: 0, X1: 0.4, Y1: 0.5}
	if a := r.Area(); a != 0.2 {
		t.Errorf("Area = %v, want 0.2", a)
	}
}

func TestTokenRangeLen(t *testing.T) {
	r := TokenRange{Start: 3, End: 8}
	if got := r.Len(); got != 5 {
		t.Errorf("Len = %d, want 5", got)
	}
}

func TestTokenRangeLenEmptyRange(t *testing.T) {
	r := TokenRange{Start: 4, End: 4}
	if got := r.Len(); got != 0 {
		t.Errorf("Len = %d, want 0", got)
	}
}

func TestBlockFontSizeReturnsMedian(t *testing.T) {
	b := Block{FontSizeMed: 12.5}
	if got := b.FontSize(); got != 12.5 {
		t.Errorf("FontSize() = %v, want 12.5", got)
	}
}
