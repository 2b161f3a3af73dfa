package terrain

import (
	"errors"
	"reflect"
	"testing"

	"github.com/Faultbox/marching-terrain/pkg/math"
)

// recordingSink remembers every sink call.
type recordingSink struct {
	updated []ChunkCoord
	removed []ChunkCoord
}

func (s *recordingSink) ChunkUpdated(coord ChunkCoord, mesh *Mesh) {
	s.updated = append(s.updated, coord)
}

func (s *recordingSink) ChunkRemoved(coord ChunkCoord) {
	s.removed = append(s.removed, coord)
}

func newTestTerrain(t *testing.T, opts ...Option) *Terrain {
	t.Helper()
	tr, err := New(smallSettings(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return tr
}

func TestNewInvalidSettings(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Settings)
		want   error
	}{
		{"single sample row", func(s *Settings) { s.Dimensions.Z = 1 }, ErrInvalidDimensions},
		{"zero cell width", func(s *Settings) { s.CellSize.X = 0 }, ErrInvalidCellSize},
		{"negative cell depth", func(s *Settings) { s.CellSize.Y = -1 }, ErrInvalidCellSize},
		{"zero threshold", func(s *Settings) { s.MergeThreshold = 0 }, ErrInvalidThreshold},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSettings()
			tt.modify(&s)
			if _, err := New(s); !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestAddChunk(t *testing.T) {
	sink := &recordingSink{}
	tr := newTestTerrain(t, WithSink(sink))

	c := tr.AddChunk(0, 0)
	if c.Revision() != 1 {
		t.Errorf("new chunk Revision() = %d, want 1", c.Revision())
	}
	if again := tr.AddChunk(0, 0); again != c {
		t.Error("AddChunk on an existing coordinate returned a new chunk")
	}
	if tr.Len() != 1 || len(sink.updated) != 1 {
		t.Errorf("Len() = %d, updates = %d; want 1, 1", tr.Len(), len(sink.updated))
	}

	tr.AddChunk(-1, 2)
	tr.AddChunk(1, 0)
	want := []ChunkCoord{{0, 0}, {1, 0}, {-1, 2}}
	if got := tr.Chunks(); !reflect.DeepEqual(got, want) {
		t.Errorf("Chunks() = %v, want %v", got, want)
	}
}

func TestAddChunkStitchesNeighbors(t *testing.T) {
	tr := newTestTerrain(t)
	tr.AddChunk(0, 0)
	tr.SetHeight(ChunkCoord{0, 0}, 2, 1, 5)
	tr.SetHeight(ChunkCoord{0, 0}, 1, 2, 7)
	tr.SetHeight(ChunkCoord{0, 0}, 2, 2, 3)
	tr.SetColor(ChunkCoord{0, 0}, 2, 0, math.Color{G: 1})

	east := tr.AddChunk(1, 0)
	if h := east.Samples().Height(0, 1); h != 5 {
		t.Errorf("east chunk edge height = %v, want 5", h)
	}
	if c := east.Samples().Color(0, 0); c != (math.Color{G: 1}) {
		t.Errorf("east chunk edge color = %v, want green", c)
	}

	south := tr.AddChunk(0, 1)
	if h := south.Samples().Height(1, 0); h != 7 {
		t.Errorf("south chunk edge height = %v, want 7", h)
	}

	// The diagonal chunk shares only a corner with (0, 0) but also borders the
	// two chunks added above.
	diag := tr.AddChunk(1, 1)
	if h := diag.Samples().Height(0, 0); h != 3 {
		t.Errorf("diagonal chunk corner height = %v, want 3", h)
	}
}

func TestAddChunkDiagonalOnly(t *testing.T) {
	tr := newTestTerrain(t)
	tr.AddChunk(0, 0)
	tr.SetHeight(ChunkCoord{0, 0}, 2, 2, 4)

	diag := tr.AddChunk(1, 1)
	if h := diag.Samples().Height(0, 0); h != 4 {
		t.Errorf("corner height = %v, want 4", h)
	}
	if diag.Cell(0, 0).Case != CaseOuterCorner {
		t.Errorf("corner cell case = %v, want OuterCorner", diag.Cell(0, 0).Case)
	}
}

func TestAddChunkSettlesDisagreeingNeighbors(t *testing.T) {
	tr := newTestTerrain(t)
	west := tr.AddChunk(0, 1)
	north := tr.AddChunk(1, 0)

	// Direct grid writes skip propagation, leaving the two neighbors in
	// disagreement about the corner they share with (1, 1).
	west.Samples().SetHeight(2, 0, 5)
	west.Samples().SetColor(2, 0, math.Color{G: 1})
	westRev, northRev := west.Revision(), north.Revision()

	c := tr.AddChunk(1, 1)

	corner := c.Samples().Height(0, 0)
	if h := west.Samples().Height(2, 0); h != corner {
		t.Errorf("seam (0,1)|(1,1): %v vs %v", h, corner)
	}
	if h := north.Samples().Height(0, 2); h != corner {
		t.Errorf("seam (1,0)|(1,1): %v vs %v", h, corner)
	}
	paint := c.Samples().Color(0, 0)
	if west.Samples().Color(2, 0) != paint || north.Samples().Color(0, 2) != paint {
		t.Errorf("corner paint disagrees: %v, %v, %v",
			west.Samples().Color(2, 0), north.Samples().Color(0, 2), paint)
	}

	// Only the neighbor that changed is rebuilt.
	if west.Revision() != westRev+1 {
		t.Errorf("west Revision() = %d, want %d", west.Revision(), westRev+1)
	}
	if north.Revision() != northRev {
		t.Errorf("north Revision() = %d, want %d", north.Revision(), northRev)
	}
}

func TestAddChunkKeepsSeamsAfterCornerEdit(t *testing.T) {
	tr := newTestTerrain(t)
	tr.AddChunk(0, 1)
	tr.AddChunk(1, 0)
	tr.SetHeight(ChunkCoord{0, 1}, 2, 0, 5)

	c := tr.AddChunk(1, 1)
	west, _ := tr.Chunk(0, 1)
	for z := 0; z < 3; z++ {
		if w, e := west.Samples().Height(2, z), c.Samples().Height(0, z); w != e {
			t.Errorf("seam (0,1)|(1,1) z=%d: %v vs %v", z, w, e)
		}
	}
	if h := c.Samples().Height(0, 0); h != 5 {
		t.Errorf("corner = %v, want 5", h)
	}
}

func TestRemoveChunk(t *testing.T) {
	sink := &recordingSink{}
	tr := newTestTerrain(t, WithSink(sink))
	tr.AddChunk(0, 0)
	tr.AddChunk(1, 0)
	tr.SetHeight(ChunkCoord{0, 0}, 2, 1, 2)

	if !tr.RemoveChunk(1, 0) {
		t.Fatal("RemoveChunk(1, 0) = false, want true")
	}
	if tr.RemoveChunk(1, 0) {
		t.Error("second RemoveChunk(1, 0) = true, want false")
	}
	if !reflect.DeepEqual(sink.removed, []ChunkCoord{{1, 0}}) {
		t.Errorf("removed = %v, want [(1,0)]", sink.removed)
	}
	if _, ok := tr.Chunk(1, 0); ok {
		t.Error("removed chunk still present")
	}

	// Edits next to the gap stay local, and a re-added chunk picks the seam back up.
	if n := tr.SetHeight(ChunkCoord{0, 0}, 2, 1, 6); n != 1 {
		t.Errorf("SetHeight() = %d, want 1", n)
	}
	if h := tr.AddChunk(1, 0).Samples().Height(0, 1); h != 6 {
		t.Errorf("re-added chunk edge height = %v, want 6", h)
	}
}

func TestRegenerateAll(t *testing.T) {
	sink := &recordingSink{}
	tr := newTestTerrain(t, WithSink(sink))
	tr.AddChunk(0, 0)
	tr.AddChunk(1, 0)
	sink.updated = nil

	c, _ := tr.Chunk(1, 0)
	c.Samples().SetHeight(1, 1, 2)
	c.Samples().MarkDirty(1, 1)
	tr.Regenerate()

	if !reflect.DeepEqual(sink.updated, []ChunkCoord{{0, 0}, {1, 0}}) {
		t.Errorf("updated = %v, want both chunks in order", sink.updated)
	}
	if c.Mesh().Bounds.Max.Y != 2 {
		t.Errorf("Bounds.Max.Y = %v, want 2", c.Mesh().Bounds.Max.Y)
	}
}

func TestTerrainDeterministic(t *testing.T) {
	build := func() *Terrain {
		tr := newTestTerrain(t)
		tr.AddChunk(0, 0)
		tr.AddChunk(1, 0)
		tr.AddChunk(0, 1)
		tr.SetHeight(ChunkCoord{0, 0}, 2, 2, 3)
		tr.SetHeight(ChunkCoord{1, 0}, 1, 1, 1.5)
		tr.SetColor(ChunkCoord{0, 1}, 1, 1, math.Color{A: 1})
		return tr
	}

	a, b := build(), build()
	for _, coord := range a.Chunks() {
		ca, _ := a.Chunk(coord.X, coord.Z)
		cb, _ := b.Chunk(coord.X, coord.Z)
		if !reflect.DeepEqual(ca.Mesh(), cb.Mesh()) {
			t.Errorf("chunk %v differs between identical builds", coord)
		}
	}
}
