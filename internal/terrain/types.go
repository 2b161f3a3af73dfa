// Package terrain builds chunked cliff terrain meshes from per-sample heights and paint
// weights using a marching-squares case table with floor and wall geometry per cell.
package terrain

import (
	"errors"
	"fmt"

	"github.com/Faultbox/marching-terrain/pkg/math"
)

// Settings validation errors.
var (
	ErrInvalidDimensions = errors.New("chunk dimensions must be at least 2x2 samples")
	ErrInvalidCellSize   = errors.New("cell size must be positive")
	ErrInvalidThreshold  = errors.New("merge threshold must be positive")
)

// Vertex represents a terrain mesh vertex with all attributes.
type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	TexCoord math.Vec2
	Color    math.Color
}

// Mesh holds the triangle buffers of one chunk, in chunk-local space.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// TriangleCount returns the number of triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Bounds holds the axis-aligned bounding box of a mesh.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Dimensions is the number of samples along each axis of a chunk.
type Dimensions struct {
	X int `yaml:"x"`
	Z int `yaml:"z"`
}

// Cells returns the number of cells along each axis.
func (d Dimensions) Cells() (int, int) {
	return d.X - 1, d.Z - 1
}

// ChunkCoord identifies a chunk on the terrain grid.
type ChunkCoord struct {
	X, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.X, c.Z)
}

// Offset returns the coordinate moved by dx, dz.
func (c ChunkCoord) Offset(dx, dz int) ChunkCoord {
	return ChunkCoord{c.X + dx, c.Z + dz}
}

// Settings configures a Terrain.
type Settings struct {
	Dimensions Dimensions
	// CellSize is the world size of one cell; Y holds the Z extent.
	CellSize math.Vec2
	// MergeThreshold is the height difference below which two samples form a slope
	// instead of a cliff.
	MergeThreshold float32
	// HighFidelityFloor builds flat cells as a four-triangle fan through the corner
	// average instead of a two-triangle split.
	HighFidelityFloor bool
	// SmoothAngle is the normal smoothing threshold in degrees. Zero keeps face normals.
	// Smoothing is per chunk: a vertex on a seam averages only its own chunk's faces,
	// so slopes crossing a seam keep a shading crease there.
	SmoothAngle float32
	// DefaultColor is the paint every sample starts with.
	DefaultColor math.Color
}

// DefaultSettings returns settings for a 33x33 sample chunk with unit cells.
func DefaultSettings() Settings {
	return Settings{
		Dimensions:     Dimensions{X: 33, Z: 33},
		CellSize:       math.Vec2{X: 1, Y: 1},
		MergeThreshold: 0.6,
		SmoothAngle:    30,
		DefaultColor:   math.Color{R: 1},
	}
}

// Validate checks the construction invariants.
func (s Settings) Validate() error {
	if s.Dimensions.X < 2 || s.Dimensions.Z < 2 {
		return fmt.Errorf("%w: got %dx%d", ErrInvalidDimensions, s.Dimensions.X, s.Dimensions.Z)
	}
	if s.CellSize.X <= 0 || s.CellSize.Y <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidCellSize, s.CellSize)
	}
	if s.MergeThreshold <= 0 {
		return fmt.Errorf("%w: got %v", ErrInvalidThreshold, s.MergeThreshold)
	}
	return nil
}

// ChunkExtent returns the world size covered by one chunk.
func (s Settings) ChunkExtent() math.Vec2 {
	cx, cz := s.Dimensions.Cells()
	return math.Vec2{X: float32(cx) * s.CellSize.X, Y: float32(cz) * s.CellSize.Y}
}

// HeightSource supplies heights for world positions, e.g. a noise generator or an image.
type HeightSource interface {
	Height(x, z float32) float32
}

// HeightFunc adapts a plain function to HeightSource.
type HeightFunc func(x, z float32) float32

// Height implements HeightSource.
func (f HeightFunc) Height(x, z float32) float32 {
	return f(x, z)
}

// MeshSink receives finished chunk meshes, typically a renderer or an exporter.
type MeshSink interface {
	ChunkUpdated(coord ChunkCoord, mesh *Mesh)
	ChunkRemoved(coord ChunkCoord)
}
