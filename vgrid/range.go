package vgrid

import "fmt"

// Range is a half-open index range [Start, End).
type Range struct {
	Start int
	End   int
}

// Len returns the number of indices in the range.
func (r Range) Len() int {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// IsEmpty reports whether the range holds no indices.
func (r Range) IsEmpty() bool {
	return r.Len() == 0
}

// Contains reports whether i lies inside the range.
func (r Range) Contains(i int) bool {
	return i >= r.Start && i < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// grow widens r by n on both sides without leaving [0, limit).
func (r Range) grow(n, limit int) Range {
	if r.IsEmpty() {
		return Range{}
	}
	out := Range{Start: r.Start - n, End: r.End + n}
	if out.Start < 0 {
		out.Start = 0
	}
	if out.End > limit {
		out.End = limit
	}
	return out
}

// Point is an offset in pixels.
type Point struct {
	X float64
	Y float64
}

// Box is where one cell is drawn. X and Y are absolute offsets inside the
// content; ViewX and ViewY are relative to the viewport's top-left corner.
type Box struct {
	Row      int
	Column   int
	X        float64
	Y        float64
	ViewX    float64
	ViewY    float64
	Width    float64
	Height   float64
	Measured bool
	// Epoch tags measurement reports made for this box.
	Epoch uint64
}

// Visible reports whether any part of the box falls inside a viewport of
// the given size.
func (b Box) Visible(width, height float64) bool {
	return b.ViewX+b.Width > 0 && b.ViewX < width &&
		b.ViewY+b.Height > 0 && b.ViewY < height
}
