package terrain

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/marching-terrain/internal/logger"
)

// Terrain owns the chunk map. Chunks find their neighbors through the map only.
// A Terrain is not safe for concurrent use.
type Terrain struct {
	settings Settings
	chunks   map[ChunkCoord]*Chunk
	sink     MeshSink
}

// Option configures a Terrain.
type Option func(*Terrain)

// WithSink sends every regenerated or removed chunk to sink.
func WithSink(sink MeshSink) Option {
	return func(t *Terrain) {
		t.sink = sink
	}
}

// New creates an empty terrain.
func New(settings Settings, opts ...Option) (*Terrain, error) {
	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("creating terrain: %w", err)
	}
	t := &Terrain{
		settings: settings,
		chunks:   make(map[ChunkCoord]*Chunk),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Settings returns the terrain settings.
func (t *Terrain) Settings() Settings {
	return t.settings
}

// Len returns the number of chunks.
func (t *Terrain) Len() int {
	return len(t.chunks)
}

// Chunk returns the chunk at (cx, cz).
func (t *Terrain) Chunk(cx, cz int) (*Chunk, bool) {
	c, ok := t.chunks[ChunkCoord{cx, cz}]
	return c, ok
}

// Chunks returns all chunk coordinates sorted by Z, then X.
func (t *Terrain) Chunks() []ChunkCoord {
	coords := make([]ChunkCoord, 0, len(t.chunks))
	for c := range t.chunks {
		coords = append(coords, c)
	}
	sortCoords(coords)
	return coords
}

// AddChunk creates the chunk at (cx, cz), copies the shared edge samples of any
// existing neighbors into it and builds its mesh. Neighbors whose copy of a shared
// sample differs from the stitched value are updated and rebuilt too. An existing
// chunk is returned as is.
func (t *Terrain) AddChunk(cx, cz int) *Chunk {
	coord := ChunkCoord{cx, cz}
	if c, ok := t.chunks[coord]; ok {
		return c
	}

	c := newChunk(coord, &t.settings)
	t.chunks[coord] = c
	t.stitch(c)
	t.settle(c)

	logger.Named("terrain").Debug("chunk added", zap.Stringer("chunk", coord), zap.Int("chunks", len(t.chunks)))
	return c
}

// stitch copies boundary samples from existing neighbors into a new chunk.
// Diagonal neighbors go first; they only share a single corner sample.
func (t *Terrain) stitch(c *Chunk) {
	w, d := t.settings.Dimensions.X, t.settings.Dimensions.Z
	lw, ld := w-1, d-1

	diagonals := []struct {
		dx, dz     int
		srcX, srcZ int
		dstX, dstZ int
	}{
		{-1, -1, lw, ld, 0, 0},
		{1, -1, 0, ld, lw, 0},
		{-1, 1, lw, 0, 0, ld},
		{1, 1, 0, 0, lw, ld},
	}
	for _, n := range diagonals {
		if nb, ok := t.chunks[c.coord.Offset(n.dx, n.dz)]; ok {
			copySample(nb.grid, n.srcX, n.srcZ, c.grid, n.dstX, n.dstZ)
		}
	}

	if nb, ok := t.chunks[c.coord.Offset(-1, 0)]; ok {
		for z := 0; z < d; z++ {
			copySample(nb.grid, lw, z, c.grid, 0, z)
		}
	}
	if nb, ok := t.chunks[c.coord.Offset(1, 0)]; ok {
		for z := 0; z < d; z++ {
			copySample(nb.grid, 0, z, c.grid, lw, z)
		}
	}
	if nb, ok := t.chunks[c.coord.Offset(0, -1)]; ok {
		for x := 0; x < w; x++ {
			copySample(nb.grid, x, ld, c.grid, x, 0)
		}
	}
	if nb, ok := t.chunks[c.coord.Offset(0, 1)]; ok {
		for x := 0; x < w; x++ {
			copySample(nb.grid, x, 0, c.grid, x, ld)
		}
	}
}

// settle pushes the stitched boundary samples back out to every chunk sharing
// them. Neighbors that disagreed about a shared sample, e.g. two chunks meeting
// only at a corner, adopt the value the new chunk took, and are rebuilt along
// with it.
func (t *Terrain) settle(c *Chunk) {
	e := t.newEdit()
	e.touched[c.coord] = struct{}{}
	g := c.grid
	for z := 0; z < g.Depth(); z++ {
		for x := 0; x < g.Width(); x++ {
			if !g.IsBoundary(x, z) {
				continue
			}
			h, col := g.Height(x, z), g.Color(x, z)
			for _, m := range t.mirrors(SampleRef{c.coord, x, z}) {
				e.apply(m, writeHeight(h))
				e.apply(m, writeColor(col))
			}
		}
	}
	e.commit()
}

func copySample(src *SampleGrid, sx, sz int, dst *SampleGrid, dx, dz int) {
	dst.SetHeight(dx, dz, src.Height(sx, sz))
	dst.SetColor(dx, dz, src.Color(sx, sz))
	dst.MarkDirty(dx, dz)
}

// RemoveChunk drops the chunk at (cx, cz). Neighbors keep their edge samples.
func (t *Terrain) RemoveChunk(cx, cz int) bool {
	coord := ChunkCoord{cx, cz}
	if _, ok := t.chunks[coord]; !ok {
		return false
	}
	delete(t.chunks, coord)
	if t.sink != nil {
		t.sink.ChunkRemoved(coord)
	}
	logger.Named("terrain").Debug("chunk removed", zap.Stringer("chunk", coord), zap.Int("chunks", len(t.chunks)))
	return true
}

// Regenerate rebuilds the mesh of every chunk, e.g. after direct sample writes.
func (t *Terrain) Regenerate() {
	for _, coord := range t.Chunks() {
		t.publish(t.chunks[coord])
	}
}

func (t *Terrain) publish(c *Chunk) {
	mesh := c.Regenerate()
	if t.sink != nil {
		t.sink.ChunkUpdated(c.coord, mesh)
	}
}

func sortCoords(coords []ChunkCoord) {
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
}
