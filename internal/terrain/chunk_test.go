package terrain

import (
	"reflect"
	"testing"

	"github.com/Faultbox/marching-terrain/pkg/math"
)

func smallSettings() Settings {
	s := DefaultSettings()
	s.Dimensions = Dimensions{X: 3, Z: 3}
	return s
}

func TestChunkRegenerateFlat(t *testing.T) {
	s := smallSettings()
	c := newChunk(ChunkCoord{}, &s)

	mesh := c.Regenerate()
	if mesh.TriangleCount() != 8 {
		t.Errorf("TriangleCount() = %d, want 8", mesh.TriangleCount())
	}
	if c.Revision() != 1 {
		t.Errorf("Revision() = %d, want 1", c.Revision())
	}
	if c.Samples().DirtyCount() != 0 {
		t.Errorf("DirtyCount() = %d after regenerate, want 0", c.Samples().DirtyCount())
	}
	if mesh.Bounds.Min != (math.Vec3{}) || mesh.Bounds.Max != (math.Vec3{X: 2, Z: 2}) {
		t.Errorf("Bounds = %+v, want (0,0,0)-(2,0,2)", mesh.Bounds)
	}
	for _, v := range mesh.Vertices {
		if v.Normal != (math.Vec3{Y: 1}) {
			t.Errorf("flat vertex normal = %v, want up", v.Normal)
			break
		}
	}
}

func TestChunkCache(t *testing.T) {
	s := smallSettings()
	c := newChunk(ChunkCoord{}, &s)
	c.Samples().SetHeight(1, 1, 3)
	first := c.Regenerate()

	// Nothing dirty: the cached cells produce the same mesh.
	second := c.Regenerate()
	if !reflect.DeepEqual(first, second) {
		t.Error("regenerating a clean chunk changed the mesh")
	}
	if c.Revision() != 2 {
		t.Errorf("Revision() = %d, want 2", c.Revision())
	}

	// A write without MarkDirty is invisible until the cells are flagged.
	c.Samples().SetHeight(1, 1, 0)
	if !reflect.DeepEqual(c.Regenerate(), first) {
		t.Error("clean cells were rebuilt")
	}

	c.Samples().MarkDirty(1, 1)
	flat := c.Regenerate()
	if flat.TriangleCount() != 8 {
		t.Errorf("TriangleCount() = %d after flattening, want 8", flat.TriangleCount())
	}
	if flat.Bounds.Max.Y != 0 {
		t.Errorf("Bounds.Max.Y = %v, want 0", flat.Bounds.Max.Y)
	}
}

func TestChunkSkipsUnclassifiableCells(t *testing.T) {
	s := smallSettings()
	s.MergeThreshold = 0.5
	c := newChunk(ChunkCoord{}, &s)
	c.Samples().SetHeight(0, 0, 0.5)

	mesh := c.Regenerate()
	if c.Skipped() != 1 {
		t.Errorf("Skipped() = %d, want 1", c.Skipped())
	}
	if mesh.TriangleCount() != 6 {
		t.Errorf("TriangleCount() = %d, want 6", mesh.TriangleCount())
	}
	if cell := c.Cell(0, 0); cell.Case != CaseNone {
		t.Errorf("Cell(0, 0).Case = %v, want None", cell.Case)
	}
}

func TestChunkCell(t *testing.T) {
	s := smallSettings()
	c := newChunk(ChunkCoord{}, &s)
	c.Samples().SetHeight(2, 2, 4)
	c.Regenerate()

	cell := c.Cell(1, 1)
	if cell == nil || cell.Case != CaseOuterCorner || cell.Rotation != 2 {
		t.Errorf("Cell(1, 1) = %+v, want OuterCorner@2", cell)
	}
	if c.Cell(2, 0) != nil || c.Cell(-1, 0) != nil {
		t.Error("Cell outside the chunk should be nil")
	}
}

func TestChunkOrigin(t *testing.T) {
	s := DefaultSettings()
	s.CellSize = math.Vec2{X: 2, Y: 0.5}
	c := newChunk(ChunkCoord{X: 2, Z: -1}, &s)

	want := math.Vec2{X: 128, Y: -16}
	if c.Origin() != want {
		t.Errorf("Origin() = %v, want %v", c.Origin(), want)
	}
}

func TestChunkSmoothing(t *testing.T) {
	s := smallSettings()
	s.SmoothAngle = 0
	c := newChunk(ChunkCoord{}, &s)
	c.Samples().SetHeight(1, 1, 0.4)
	faceted := c.Regenerate()

	s.SmoothAngle = 80
	smooth := c.Regenerate()

	// The six faces around the peak lean in opposing pairs, so their average
	// points straight up.
	var peaks int
	for i, v := range smooth.Vertices {
		if v.Position != (math.Vec3{X: 1, Y: 0.4, Z: 1}) {
			continue
		}
		peaks++
		if v.Normal.Y < 0.999 {
			t.Errorf("smoothed peak normal = %v, want up", v.Normal)
		}
		if faceted.Vertices[i].Normal.Y > 0.999 {
			t.Errorf("faceted peak normal = %v, want tilted", faceted.Vertices[i].Normal)
		}
	}
	if peaks == 0 {
		t.Fatal("no vertex at the peak")
	}
}

func TestChunkSmoothingStopsAtSeam(t *testing.T) {
	tr := gridTerrain(t, 2, 1)
	tent := HeightFunc(func(x, z float32) float32 {
		if x <= 2 {
			return 0.2 * x
		}
		return 0.2 * (4 - x)
	})
	for _, coord := range tr.Chunks() {
		tr.GenerateHeightmap(coord, tent)
	}

	// The ridge sits on the seam. Each chunk smooths only its own faces, so the
	// ridge vertices keep the slope of their own side.
	west, _ := tr.Chunk(0, 0)
	east, _ := tr.Chunk(1, 0)
	check := func(name string, c *Chunk, wantNegative bool) {
		var n int
		for _, v := range c.Mesh().Vertices {
			if v.Position.Y < 0.39 {
				continue
			}
			n++
			if (v.Normal.X < -0.1) != wantNegative || (v.Normal.X > 0.1) == wantNegative {
				t.Errorf("%s ridge normal = %v", name, v.Normal)
			}
		}
		if n == 0 {
			t.Fatalf("%s has no ridge vertex", name)
		}
	}
	check("west", west, true)
	check("east", east, false)
}
