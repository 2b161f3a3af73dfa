package terrain

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/Faultbox/marching-terrain/internal/logger"
	"github.com/Faultbox/marching-terrain/pkg/math"
)

// ErrLengthMismatch is returned by bulk edits whose position and value lists differ in length.
var ErrLengthMismatch = errors.New("positions and values differ in length")

// SampleRef addresses one sample of one chunk.
type SampleRef struct {
	Chunk ChunkCoord
	X, Z  int
}

// HeightEdit sets one sample height.
type HeightEdit struct {
	SampleRef
	Height float32
}

// ColorEdit sets one sample paint.
type ColorEdit struct {
	SampleRef
	Color math.Color
}

// sampleWrite applies a value to one sample and reports whether it changed.
type sampleWrite func(g *SampleGrid, x, z int) bool

// writeHeight never stores a non-finite height. NaN compares unequal to itself,
// so a stored NaN would keep bouncing between the chunks sharing a seam.
func writeHeight(h float32) sampleWrite {
	return func(g *SampleGrid, x, z int) bool {
		if !finite(h) || g.Height(x, z) == h {
			return false
		}
		return g.SetHeight(x, z, h)
	}
}

func writeColor(c math.Color) sampleWrite {
	return func(g *SampleGrid, x, z int) bool {
		if !finiteColor(c) || g.Color(x, z) == c {
			return false
		}
		return g.SetColor(x, z, c)
	}
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}

func finiteColor(c math.Color) bool {
	return finite(c.R) && finite(c.G) && finite(c.B) && finite(c.A)
}

// edit collects the chunks touched by a batch of writes so each is rebuilt once.
type edit struct {
	t       *Terrain
	touched map[ChunkCoord]struct{}
	written int
}

func (t *Terrain) newEdit() *edit {
	return &edit{t: t, touched: make(map[ChunkCoord]struct{})}
}

// apply writes start and spreads the write to every chunk sharing the sample.
// A sample that already holds the value is neither written nor spread further,
// so the walk ends once all copies agree.
func (e *edit) apply(start SampleRef, write sampleWrite) {
	queue := []SampleRef{start}
	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]

		c, ok := e.t.chunks[ref.Chunk]
		if !ok {
			continue
		}
		if !c.grid.InBounds(ref.X, ref.Z) || !write(c.grid, ref.X, ref.Z) {
			continue
		}
		c.grid.MarkDirty(ref.X, ref.Z)
		e.touched[ref.Chunk] = struct{}{}
		e.written++

		queue = append(queue, e.t.mirrors(ref)...)
	}
}

// commit regenerates every touched chunk in a stable order.
func (e *edit) commit() int {
	coords := make([]ChunkCoord, 0, len(e.touched))
	for c := range e.touched {
		coords = append(coords, c)
	}
	sortCoords(coords)
	for _, coord := range coords {
		e.t.publish(e.t.chunks[coord])
	}
	return e.written
}

// mirrors returns the copies of a boundary sample held by neighbor chunks. A corner
// sample also names the diagonal neighbor, which may have no cardinal chunk to
// relay the write.
func (t *Terrain) mirrors(ref SampleRef) []SampleRef {
	lw, ld := t.settings.Dimensions.X-1, t.settings.Dimensions.Z-1
	var out []SampleRef
	if (ref.X == 0 || ref.X == lw) && (ref.Z == 0 || ref.Z == ld) {
		dx, dz, mx, mz := 1, 1, 0, 0
		if ref.X == 0 {
			dx, mx = -1, lw
		}
		if ref.Z == 0 {
			dz, mz = -1, ld
		}
		out = append(out, SampleRef{ref.Chunk.Offset(dx, dz), mx, mz})
	}
	if ref.X == 0 {
		out = append(out, SampleRef{ref.Chunk.Offset(-1, 0), lw, ref.Z})
	}
	if ref.X == lw {
		out = append(out, SampleRef{ref.Chunk.Offset(1, 0), 0, ref.Z})
	}
	if ref.Z == 0 {
		out = append(out, SampleRef{ref.Chunk.Offset(0, -1), ref.X, ld})
	}
	if ref.Z == ld {
		out = append(out, SampleRef{ref.Chunk.Offset(0, 1), ref.X, 0})
	}
	return out
}

// SetHeight writes a sample height, copies it to neighbors sharing the sample and
// rebuilds the affected chunks. It returns the number of samples written; zero means
// the value was already in place, h is not finite, or the chunk does not exist, and
// nothing was rebuilt.
func (t *Terrain) SetHeight(coord ChunkCoord, x, z int, h float32) int {
	e := t.newEdit()
	e.apply(SampleRef{coord, x, z}, writeHeight(h))
	return e.commit()
}

// SetColor writes a sample paint like SetHeight.
func (t *Terrain) SetColor(coord ChunkCoord, x, z int, c math.Color) int {
	e := t.newEdit()
	e.apply(SampleRef{coord, x, z}, writeColor(c))
	return e.commit()
}

// SetHeights applies many height writes with one rebuild per chunk. With flatten set
// every sample receives the average of the requested heights.
func (t *Terrain) SetHeights(edits []HeightEdit, flatten bool) int {
	if len(edits) == 0 {
		return 0
	}
	var avg float32
	if flatten {
		for _, ed := range edits {
			avg += ed.Height
		}
		avg /= float32(len(edits))
	}

	e := t.newEdit()
	for _, ed := range edits {
		h := ed.Height
		if flatten {
			h = avg
		}
		e.apply(ed.SampleRef, writeHeight(h))
	}
	return e.commit()
}

// SetColors applies many paint writes with one rebuild per chunk.
func (t *Terrain) SetColors(edits []ColorEdit) int {
	e := t.newEdit()
	for _, ed := range edits {
		e.apply(ed.SampleRef, writeColor(ed.Color))
	}
	return e.commit()
}

// SetHeightAtPositions sets the samples nearest to the given world positions to h.
// Positions outside every chunk are ignored.
func (t *Terrain) SetHeightAtPositions(positions []math.Vec2, h float32) int {
	edits := make([]HeightEdit, 0, len(positions))
	for _, p := range positions {
		if ref, ok := t.SampleAt(p.X, p.Y); ok {
			edits = append(edits, HeightEdit{ref, h})
		}
	}
	return t.SetHeights(edits, false)
}

// SetHeightsAtPositions sets the samples nearest to positions[i] to heights[i].
func (t *Terrain) SetHeightsAtPositions(positions []math.Vec2, heights []float32, flatten bool) (int, error) {
	if len(positions) != len(heights) {
		return 0, fmt.Errorf("%w: %d positions, %d heights", ErrLengthMismatch, len(positions), len(heights))
	}
	edits := make([]HeightEdit, 0, len(positions))
	for i, p := range positions {
		if ref, ok := t.SampleAt(p.X, p.Y); ok {
			edits = append(edits, HeightEdit{ref, heights[i]})
		}
	}
	return t.SetHeights(edits, flatten), nil
}

// SetColorAtPositions paints the samples nearest to the given world positions.
func (t *Terrain) SetColorAtPositions(positions []math.Vec2, c math.Color) int {
	edits := make([]ColorEdit, 0, len(positions))
	for _, p := range positions {
		if ref, ok := t.SampleAt(p.X, p.Y); ok {
			edits = append(edits, ColorEdit{ref, c})
		}
	}
	return t.SetColors(edits)
}

// GenerateHeightmap overwrites every height of a chunk from src, sampled at the world
// position of each sample, and rebuilds the whole chunk. Edge samples are copied to
// neighbors as with SetHeight. Samples where src yields NaN or an infinity keep
// their previous height.
func (t *Terrain) GenerateHeightmap(coord ChunkCoord, src HeightSource) int {
	c, ok := t.chunks[coord]
	if !ok {
		logger.Debug("heightmap target chunk missing", zap.Stringer("chunk", coord))
		return 0
	}

	origin := c.Origin()
	cell := t.settings.CellSize
	e := t.newEdit()
	for z := 0; z < c.grid.Depth(); z++ {
		for x := 0; x < c.grid.Width(); x++ {
			h := src.Height(origin.X+float32(x)*cell.X, origin.Y+float32(z)*cell.Y)
			e.apply(SampleRef{coord, x, z}, writeHeight(h))
		}
	}
	c.grid.MarkAllDirty()
	e.touched[coord] = struct{}{}
	return e.commit()
}
