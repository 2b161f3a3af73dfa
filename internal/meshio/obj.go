package meshio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/chewxy/math32"
	"github.com/klauspost/compress/gzip"

	"github.com/Faultbox/marching-terrain/internal/terrain"
	"github.com/Faultbox/marching-terrain/pkg/math"
)

// ChunkMesh is a chunk mesh placed in the world.
type ChunkMesh struct {
	Coord  terrain.ChunkCoord
	Origin math.Vec2
	Mesh   *terrain.Mesh
}

// Collect pairs every stored mesh with its chunk origin from t.
func (s *Store) Collect(t *terrain.Terrain) []ChunkMesh {
	var out []ChunkMesh
	for _, coord := range s.Coords() {
		c, ok := t.Chunk(coord.X, coord.Z)
		if !ok {
			continue
		}
		out = append(out, ChunkMesh{Coord: coord, Origin: c.Origin(), Mesh: s.meshes[coord]})
	}
	return out
}

// Transform returns the chunk-to-world transform of the mesh.
func (cm ChunkMesh) Transform() math.Mat4 {
	return math.Translate(math.Vec3{X: cm.Origin.X, Z: cm.Origin.Y})
}

type exportOptions struct {
	scale float32
	yaw   float32
}

// ExportOption configures an OBJ export.
type ExportOption func(*exportOptions)

// WithScale multiplies all exported positions by s. Zero is ignored.
func WithScale(s float32) ExportOption {
	return func(o *exportOptions) {
		if s != 0 {
			o.scale = s
		}
	}
}

// WithYaw turns the whole export around the world Y axis by deg degrees.
func WithYaw(deg float32) ExportOption {
	return func(o *exportOptions) {
		o.yaw = deg * math32.Pi / 180
	}
}

// WriteOBJ writes the meshes as one Wavefront OBJ object per chunk. Vertex colors
// follow the position as the common "v x y z r g b" extension; the alpha paint
// channel is dropped.
func WriteOBJ(w io.Writer, chunks []ChunkMesh, opts ...ExportOption) error {
	o := exportOptions{scale: 1}
	for _, opt := range opts {
		opt(&o)
	}
	world := math.RotateY(o.yaw).Mul(math.Scale(o.scale))

	bw := bufio.NewWriter(w)
	fmt.Fprintln(bw, "# marching-terrain export")

	base := 1
	for _, cm := range chunks {
		m := cm.Mesh
		if m == nil || len(m.Vertices) == 0 {
			continue
		}
		xf := world.Mul(cm.Transform())
		fmt.Fprintf(bw, "o chunk_%d_%d\n", cm.Coord.X, cm.Coord.Z)
		for _, v := range m.Vertices {
			p := xf.TransformPoint(v.Position)
			fmt.Fprintf(bw, "v %g %g %g %g %g %g\n", p.X, p.Y, p.Z, v.Color.R, v.Color.G, v.Color.B)
		}
		for _, v := range m.Vertices {
			fmt.Fprintf(bw, "vt %g %g\n", v.TexCoord.X, v.TexCoord.Y)
		}
		for _, v := range m.Vertices {
			n := xf.TransformDirection(v.Normal).Normalize()
			fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
		}
		for i := 0; i+2 < len(m.Indices); i += 3 {
			a := int(m.Indices[i]) + base
			b := int(m.Indices[i+1]) + base
			c := int(m.Indices[i+2]) + base
			fmt.Fprintf(bw, "f %d/%d/%d %d/%d/%d %d/%d/%d\n", a, a, a, b, b, b, c, c, c)
		}
		base += len(m.Vertices)
	}
	return bw.Flush()
}

// WriteOBJFile writes an OBJ file, gzip-compressed when path ends in ".gz".
func WriteOBJFile(path string, chunks []ChunkMesh, opts ...ExportOption) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file: %w", cerr)
		}
	}()

	if !strings.HasSuffix(path, ".gz") {
		if err := WriteOBJ(f, chunks, opts...); err != nil {
			return fmt.Errorf("writing OBJ: %w", err)
		}
		return nil
	}

	zw := gzip.NewWriter(f)
	zw.Name = strings.TrimSuffix(filepath.Base(path), ".gz")
	if err := WriteOBJ(zw, chunks, opts...); err != nil {
		return fmt.Errorf("writing OBJ: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("compressing OBJ: %w", err)
	}
	return nil
}
