package terrain

import "github.com/Faultbox/marching-terrain/pkg/math"

// SampleGrid stores the height and paint samples of one chunk and the dirty bit of
// every cell. Samples are row-major with index x + z*width. A cell (x, z) spans the
// samples (x,z), (x+1,z), (x,z+1) and (x+1,z+1); its dirty bit lives at the index of
// its origin sample.
type SampleGrid struct {
	width, depth int
	heights      []float32
	colors       []math.Color
	dirty        []bool
}

// NewSampleGrid creates a grid of width x depth samples painted with fill.
func NewSampleGrid(width, depth int, fill math.Color) *SampleGrid {
	n := width * depth
	g := &SampleGrid{
		width:   width,
		depth:   depth,
		heights: make([]float32, n),
		colors:  make([]math.Color, n),
		dirty:   make([]bool, n),
	}
	for i := range g.colors {
		g.colors[i] = fill
	}
	return g
}

// Width returns the number of samples along X.
func (g *SampleGrid) Width() int { return g.width }

// Depth returns the number of samples along Z.
func (g *SampleGrid) Depth() int { return g.depth }

// InBounds reports whether (x, z) is a sample of this grid.
func (g *SampleGrid) InBounds(x, z int) bool {
	return x >= 0 && z >= 0 && x < g.width && z < g.depth
}

// IsBoundary reports whether (x, z) lies on the grid edge and is shared with a neighbor.
func (g *SampleGrid) IsBoundary(x, z int) bool {
	return x == 0 || z == 0 || x == g.width-1 || z == g.depth-1
}

func (g *SampleGrid) index(x, z int) int {
	return x + z*g.width
}

// Height returns the sample height, or 0 outside the grid.
func (g *SampleGrid) Height(x, z int) float32 {
	if !g.InBounds(x, z) {
		return 0
	}
	return g.heights[g.index(x, z)]
}

// SetHeight writes a sample height. It returns false when (x, z) is outside the grid.
// Dirty bits are left alone; see MarkDirty.
func (g *SampleGrid) SetHeight(x, z int, h float32) bool {
	if !g.InBounds(x, z) {
		return false
	}
	g.heights[g.index(x, z)] = h
	return true
}

// Color returns the sample paint, or the zero color outside the grid.
func (g *SampleGrid) Color(x, z int) math.Color {
	if !g.InBounds(x, z) {
		return math.Color{}
	}
	return g.colors[g.index(x, z)]
}

// SetColor writes a sample paint. It returns false when (x, z) is outside the grid.
func (g *SampleGrid) SetColor(x, z int, c math.Color) bool {
	if !g.InBounds(x, z) {
		return false
	}
	g.colors[g.index(x, z)] = c
	return true
}

func (g *SampleGrid) isCell(x, z int) bool {
	return x >= 0 && z >= 0 && x < g.width-1 && z < g.depth-1
}

// MarkDirty flags every cell touching sample (x, z): the cells (x,z), (x,z-1),
// (x-1,z) and (x-1,z-1). Cells outside the grid are skipped.
func (g *SampleGrid) MarkDirty(x, z int) {
	for _, c := range [4][2]int{{x, z}, {x, z - 1}, {x - 1, z}, {x - 1, z - 1}} {
		if g.isCell(c[0], c[1]) {
			g.dirty[g.index(c[0], c[1])] = true
		}
	}
}

// MarkAllDirty flags every cell.
func (g *SampleGrid) MarkAllDirty() {
	for z := 0; z < g.depth-1; z++ {
		for x := 0; x < g.width-1; x++ {
			g.dirty[g.index(x, z)] = true
		}
	}
}

// IsDirty reports whether cell (x, z) needs to be rebuilt.
func (g *SampleGrid) IsDirty(x, z int) bool {
	return g.isCell(x, z) && g.dirty[g.index(x, z)]
}

// ClearDirty resets the dirty bit of cell (x, z).
func (g *SampleGrid) ClearDirty(x, z int) {
	if g.isCell(x, z) {
		g.dirty[g.index(x, z)] = false
	}
}

// DirtyCount returns the number of dirty cells.
func (g *SampleGrid) DirtyCount() int {
	n := 0
	for _, d := range g.dirty {
		if d {
			n++
		}
	}
	return n
}

// Corners returns the four corner heights of cell (x, z).
func (g *SampleGrid) Corners(x, z int) Corners {
	return Corners{
		A: g.Height(x, z),
		B: g.Height(x+1, z),
		C: g.Height(x, z+1),
		D: g.Height(x+1, z+1),
	}
}

// CornerColors returns the four corner colors of cell (x, z) in A, B, C, D order.
func (g *SampleGrid) CornerColors(x, z int) [4]math.Color {
	return [4]math.Color{
		g.Color(x, z),
		g.Color(x+1, z),
		g.Color(x, z+1),
		g.Color(x+1, z+1),
	}
}
