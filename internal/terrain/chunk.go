package terrain

import (
	"go.uber.org/zap"

	"github.com/Faultbox/marching-terrain/internal/logger"
	"github.com/Faultbox/marching-terrain/pkg/math"
)

// Chunk is one square of terrain. It owns its samples, the geometry cache of every
// cell and the last assembled mesh.
type Chunk struct {
	coord    ChunkCoord
	settings *Settings
	grid     *SampleGrid
	cells    []CellGeometry
	mesh     *Mesh
	revision int
	skipped  int
}

func newChunk(coord ChunkCoord, s *Settings) *Chunk {
	cx, cz := s.Dimensions.Cells()
	c := &Chunk{
		coord:    coord,
		settings: s,
		grid:     NewSampleGrid(s.Dimensions.X, s.Dimensions.Z, s.DefaultColor),
		cells:    make([]CellGeometry, cx*cz),
		mesh:     &Mesh{},
	}
	c.grid.MarkAllDirty()
	return c
}

// Coord returns the chunk coordinate.
func (c *Chunk) Coord() ChunkCoord { return c.coord }

// Samples returns the chunk's sample grid. Writing to it directly bypasses seam
// propagation; call Regenerate afterwards.
func (c *Chunk) Samples() *SampleGrid { return c.grid }

// Mesh returns the mesh built by the last Regenerate.
func (c *Chunk) Mesh() *Mesh { return c.mesh }

// Revision counts completed regenerations.
func (c *Chunk) Revision() int { return c.revision }

// Skipped returns how many cells matched no case during the last regeneration.
func (c *Chunk) Skipped() int { return c.skipped }

// Origin returns the world position of sample (0, 0).
func (c *Chunk) Origin() math.Vec2 {
	ext := c.settings.ChunkExtent()
	return math.Vec2{X: float32(c.coord.X) * ext.X, Y: float32(c.coord.Z) * ext.Y}
}

// Cell returns the cached geometry of cell (x, z), or nil outside the chunk.
func (c *Chunk) Cell(x, z int) *CellGeometry {
	cx, cz := c.settings.Dimensions.Cells()
	if x < 0 || z < 0 || x >= cx || z >= cz {
		return nil
	}
	return &c.cells[x+z*cx]
}

// Regenerate rebuilds the chunk mesh. Dirty cells are classified and emitted into
// the cache; clean cells are copied from it unchanged.
func (c *Chunk) Regenerate() *Mesh {
	cx, cz := c.settings.Dimensions.Cells()
	mesh := &Mesh{}
	rebuilt, skipped := 0, 0

	for z := 0; z < cz; z++ {
		for x := 0; x < cx; x++ {
			cell := &c.cells[x+z*cx]
			if c.grid.IsDirty(x, z) {
				if !emitCell(c.grid.Corners(x, z), c.grid.CornerColors(x, z), x, z, c.settings, cell) {
					logger.Debug("skipping unclassifiable cell",
						zap.Stringer("chunk", c.coord),
						zap.Int("x", x),
						zap.Int("z", z),
						zap.Any("corners", c.grid.Corners(x, z)))
				}
				c.grid.ClearDirty(x, z)
				rebuilt++
			}
			if cell.Case == CaseNone {
				skipped++
				continue
			}
			appendCell(mesh, cell)
		}
	}

	if c.settings.SmoothAngle > 0 {
		SmoothNormals(mesh, c.settings.SmoothAngle)
	}

	c.mesh = mesh
	c.skipped = skipped
	c.revision++

	logger.Debug("chunk regenerated",
		zap.Stringer("chunk", c.coord),
		zap.Int("rebuiltCells", rebuilt),
		zap.Int("triangles", mesh.TriangleCount()),
		zap.Int("skippedCells", skipped))

	return mesh
}
