package meshio

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"

	"github.com/Faultbox/marching-terrain/internal/terrain"
	"github.com/Faultbox/marching-terrain/pkg/math"
)

func testTerrain(t *testing.T, store *Store) *terrain.Terrain {
	t.Helper()
	s := terrain.DefaultSettings()
	s.Dimensions = terrain.Dimensions{X: 3, Z: 3}
	tr, err := terrain.New(s, terrain.WithSink(store))
	if err != nil {
		t.Fatalf("terrain.New() error = %v", err)
	}
	return tr
}

func TestStoreTracksChunks(t *testing.T) {
	store := NewStore()
	tr := testTerrain(t, store)

	tr.AddChunk(1, 0)
	tr.AddChunk(0, 0)
	tr.AddChunk(0, 1)

	coords := store.Coords()
	want := []terrain.ChunkCoord{{X: 0, Z: 0}, {X: 1, Z: 0}, {X: 0, Z: 1}}
	if len(coords) != len(want) {
		t.Fatalf("Coords() = %v, want %v", coords, want)
	}
	for i := range want {
		if coords[i] != want[i] {
			t.Errorf("Coords()[%d] = %v, want %v", i, coords[i], want[i])
		}
	}

	before := store.Updates()
	tr.SetHeight(terrain.ChunkCoord{X: 0, Z: 0}, 1, 1, 3)
	if store.Updates() != before+1 {
		t.Errorf("interior edit sent %d updates, want 1", store.Updates()-before)
	}

	tr.RemoveChunk(1, 0)
	if _, ok := store.Mesh(terrain.ChunkCoord{X: 1, Z: 0}); ok {
		t.Error("removed chunk still has a stored mesh")
	}
}

func TestWriteOBJ(t *testing.T) {
	store := NewStore()
	tr := testTerrain(t, store)
	tr.AddChunk(0, 0)
	tr.AddChunk(1, 0)

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, store.Collect(tr)); err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "o chunk_0_0") || !strings.Contains(out, "o chunk_1_0") {
		t.Errorf("missing chunk objects in output:\n%s", out)
	}

	var verts, faces int
	for _, line := range strings.Split(out, "\n") {
		switch {
		case strings.HasPrefix(line, "v "):
			verts++
		case strings.HasPrefix(line, "f "):
			faces++
		}
	}
	// 2 chunks x 4 flat cells x 2 triangles.
	if faces != 16 {
		t.Errorf("got %d faces, want 16", faces)
	}
	if verts != faces*3 {
		t.Errorf("got %d vertices, want %d", verts, faces*3)
	}
	// The second chunk must index past the first chunk's vertices.
	if !strings.Contains(out, "f 25/25/25") {
		t.Error("second chunk faces do not continue the vertex numbering")
	}
}

func TestWriteOBJAppliesOrigin(t *testing.T) {
	mesh := &terrain.Mesh{
		Vertices: []terrain.Vertex{
			{Position: math.Vec3{X: 0, Y: 1, Z: 0}},
			{Position: math.Vec3{X: 0, Y: 1, Z: 1}},
			{Position: math.Vec3{X: 1, Y: 1, Z: 0}},
		},
		Indices: []uint32{0, 1, 2},
	}
	var buf bytes.Buffer
	err := WriteOBJ(&buf, []ChunkMesh{{Coord: terrain.ChunkCoord{X: 2}, Origin: math.Vec2{X: 10, Y: 20}, Mesh: mesh}})
	if err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}
	if !strings.Contains(buf.String(), "v 10 1 20 0 0 0") {
		t.Errorf("expected first vertex offset by origin, got:\n%s", buf.String())
	}
}

func TestWriteOBJOptions(t *testing.T) {
	mesh := &terrain.Mesh{
		Vertices: []terrain.Vertex{
			{Position: math.Vec3{X: 1, Y: 2, Z: 0}, Normal: math.Vec3{X: 1}},
			{Position: math.Vec3{X: 0, Y: 2, Z: 1}, Normal: math.Vec3{X: 1}},
			{Position: math.Vec3{X: 1, Y: 2, Z: 1}, Normal: math.Vec3{X: 1}},
		},
		Indices: []uint32{0, 1, 2},
	}
	chunks := []ChunkMesh{{Origin: math.Vec2{X: 1}, Mesh: mesh}}

	var buf bytes.Buffer
	if err := WriteOBJ(&buf, chunks, WithScale(3)); err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}
	// Origin is applied before scaling.
	if !strings.Contains(buf.String(), "v 6 6 0 ") {
		t.Errorf("expected scaled first vertex, got:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "vn 1 0 0") {
		t.Errorf("expected unit normal after scaling, got:\n%s", buf.String())
	}

	buf.Reset()
	if err := WriteOBJ(&buf, chunks, WithYaw(180)); err != nil {
		t.Fatalf("WriteOBJ() error = %v", err)
	}
	var first string
	for _, line := range strings.Split(buf.String(), "\n") {
		if strings.HasPrefix(line, "v ") {
			first = line
			break
		}
	}
	var x, y, z float32
	if _, err := fmt.Sscanf(first, "v %g %g %g", &x, &y, &z); err != nil {
		t.Fatalf("parsing %q: %v", first, err)
	}
	if x > -1.999 || x < -2.001 || y != 2 {
		t.Errorf("turned vertex = (%v, %v, %v), want (-2, 2, ~0)", x, y, z)
	}
}

func TestWriteOBJFileGzip(t *testing.T) {
	store := NewStore()
	tr := testTerrain(t, store)
	tr.AddChunk(0, 0)

	path := filepath.Join(t.TempDir(), "out", "terrain.obj.gz")
	if err := WriteOBJFile(path, store.Collect(tr)); err != nil {
		t.Fatalf("WriteOBJFile() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	zr, err := gzip.NewReader(f)
	if err != nil {
		t.Fatalf("output is not gzip: %v", err)
	}
	defer zr.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(zr); err != nil {
		t.Fatalf("failed to decompress: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# marching-terrain export") {
		t.Errorf("unexpected OBJ header: %q", buf.String()[:20])
	}
	if zr.Name != "terrain.obj" {
		t.Errorf("gzip name = %q, want terrain.obj", zr.Name)
	}
}
