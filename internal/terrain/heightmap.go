package terrain

import (
	"github.com/chewxy/math32"
)

// boundaryEpsilon is how close (in chunk units) a position must be to a chunk edge
// to count as lying on it.
const boundaryEpsilon = 1e-4

// chunkAt returns the chunk coordinate containing a world position.
func (t *Terrain) chunkAt(x, z float32) (ChunkCoord, float32, float32) {
	ext := t.settings.ChunkExtent()
	fx := x / ext.X
	fz := z / ext.Y
	return ChunkCoord{int(math32.Floor(fx)), int(math32.Floor(fz))}, fx, fz
}

// chunkCovering returns an existing chunk covering a world position. A position on
// the far edge of a chunk with no neighbor past it still belongs to that chunk.
func (t *Terrain) chunkCovering(x, z float32) (*Chunk, bool) {
	coord, _, _ := t.chunkAt(x, z)
	if c, ok := t.chunks[coord]; ok {
		return c, true
	}
	near := t.ChunksOverlappingPosition(x, z)
	if len(near) == 0 {
		return nil, false
	}
	return t.chunks[near[0]], true
}

// SampleAt returns the sample nearest to a world position.
func (t *Terrain) SampleAt(x, z float32) (SampleRef, bool) {
	c, ok := t.chunkCovering(x, z)
	if !ok {
		return SampleRef{}, false
	}
	origin := c.Origin()
	cell := t.settings.CellSize
	sx := int(math32.Floor((x-origin.X)/cell.X + 0.5))
	sz := int(math32.Floor((z-origin.Y)/cell.Y + 0.5))
	sx = clampi(sx, 0, c.grid.Width()-1)
	sz = clampi(sz, 0, c.grid.Depth()-1)
	return SampleRef{c.coord, sx, sz}, true
}

// HeightAtPosition returns the bilinearly interpolated sample height at a world position.
// The second result is false when no chunk covers the position.
func (t *Terrain) HeightAtPosition(x, z float32) (float32, bool) {
	c, ok := t.chunkCovering(x, z)
	if !ok {
		return 0, false
	}

	origin := c.Origin()
	cellFX := (x - origin.X) / t.settings.CellSize.X
	cellFZ := (z - origin.Y) / t.settings.CellSize.Y

	cellX := clampi(int(cellFX), 0, c.grid.Width()-2)
	cellZ := clampi(int(cellFZ), 0, c.grid.Depth()-2)

	// Fractional position within the cell (0-1)
	fracX := clampf(cellFX-float32(cellX), 0, 1)
	fracZ := clampf(cellFZ-float32(cellZ), 0, 1)

	h := c.grid.Corners(cellX, cellZ)
	near := h.A*(1-fracX) + h.B*fracX
	far := h.C*(1-fracX) + h.D*fracX
	return near*(1-fracZ) + far*fracZ, true
}

// ChunksOverlappingPosition returns the existing chunks covering a world position.
// A position on a chunk edge belongs to both chunks sharing that edge, and a chunk
// corner to up to four.
func (t *Terrain) ChunksOverlappingPosition(x, z float32) []ChunkCoord {
	coord, fx, fz := t.chunkAt(x, z)

	xs := []int{coord.X}
	if fx-math32.Floor(fx) < boundaryEpsilon {
		xs = append(xs, coord.X-1)
	} else if math32.Ceil(fx)-fx < boundaryEpsilon {
		xs = append(xs, coord.X+1)
	}
	zs := []int{coord.Z}
	if fz-math32.Floor(fz) < boundaryEpsilon {
		zs = append(zs, coord.Z-1)
	} else if math32.Ceil(fz)-fz < boundaryEpsilon {
		zs = append(zs, coord.Z+1)
	}

	var out []ChunkCoord
	for _, cz := range zs {
		for _, cx := range xs {
			cc := ChunkCoord{cx, cz}
			if _, ok := t.chunks[cc]; ok {
				out = append(out, cc)
			}
		}
	}
	sortCoords(out)
	return out
}

func clampf(v, min, max float32) float32 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

func clampi(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
