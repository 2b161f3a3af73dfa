package terrain

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/marching-terrain/pkg/math"
)

// appendCell adds a cell's cached triangles to the mesh with flat face normals.
func appendCell(mesh *Mesh, cell *CellGeometry) {
	for i := 0; i+2 < len(cell.Vertices); i += 3 {
		p0, p1, p2 := cell.Vertices[i], cell.Vertices[i+1], cell.Vertices[i+2]
		normal := faceNormal(p0, p1, p2)

		baseIdx := uint32(len(mesh.Vertices))
		for k := 0; k < 3; k++ {
			pos := cell.Vertices[i+k]
			if len(mesh.Vertices) == 0 {
				mesh.Bounds = Bounds{Min: pos, Max: pos}
			} else {
				updateBounds(&mesh.Bounds, pos)
			}
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: pos,
				Normal:   normal,
				TexCoord: cell.UVs[i+k],
				Color:    cell.Colors[i+k],
			})
		}
		mesh.Indices = append(mesh.Indices, baseIdx, baseIdx+1, baseIdx+2)
	}
}

// positionEpsilon is the grid vertices are snapped to when matching positions.
const positionEpsilon float32 = 0.001

func positionKey(p math.Vec3) [3]int32 {
	return [3]int32{
		int32(math32.Floor(p.X/positionEpsilon + 0.5)),
		int32(math32.Floor(p.Y/positionEpsilon + 0.5)),
		int32(math32.Floor(p.Z/positionEpsilon + 0.5)),
	}
}

// SmoothNormals replaces vertex normals with the average of the face normals meeting
// at the vertex position, counting only faces within angleDeg of the vertex's own
// triangle. Floors blend across cells while cliff edges stay sharp.
func SmoothNormals(mesh *Mesh, angleDeg float32) {
	triCount := len(mesh.Indices) / 3
	if triCount == 0 {
		return
	}

	faces := make([]math.Vec3, triCount)
	for t := range faces {
		faces[t] = faceNormal(
			mesh.Vertices[mesh.Indices[t*3]].Position,
			mesh.Vertices[mesh.Indices[t*3+1]].Position,
			mesh.Vertices[mesh.Indices[t*3+2]].Position,
		)
	}

	// Group triangles by the quantized positions of their corners for O(n) lookup.
	keys := make([][3]int32, len(mesh.Vertices))
	posMap := make(map[[3]int32][]int)
	for t := 0; t < triCount; t++ {
		for k := 0; k < 3; k++ {
			idx := mesh.Indices[t*3+k]
			key := positionKey(mesh.Vertices[idx].Position)
			keys[idx] = key
			tris := posMap[key]
			if n := len(tris); n > 0 && tris[n-1] == t {
				continue
			}
			posMap[key] = append(tris, t)
		}
	}

	minDot := math32.Cos(angleDeg * math32.Pi / 180)
	for t := 0; t < triCount; t++ {
		own := faces[t]
		for k := 0; k < 3; k++ {
			idx := mesh.Indices[t*3+k]
			var sum math.Vec3
			for _, other := range posMap[keys[idx]] {
				if faces[other].Dot(own) >= minDot {
					sum = sum.Add(faces[other])
				}
			}
			n := sum.Normalize()
			if n == (math.Vec3{}) {
				n = own
			}
			mesh.Vertices[idx].Normal = n
		}
	}
}

func faceNormal(p0, p1, p2 math.Vec3) math.Vec3 {
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	if n == (math.Vec3{}) {
		return math.Vec3{Y: 1}
	}
	return n
}

func updateBounds(b *Bounds, p math.Vec3) {
	b.Min = b.Min.Min(p)
	b.Max = b.Max.Max(p)
}
