// Package meshio collects finished chunk meshes and writes them to disk.
package meshio

import (
	"sort"

	"github.com/Faultbox/marching-terrain/internal/terrain"
)

// Store keeps the latest mesh of every chunk. It implements terrain.MeshSink.
type Store struct {
	meshes  map[terrain.ChunkCoord]*terrain.Mesh
	updates int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{meshes: make(map[terrain.ChunkCoord]*terrain.Mesh)}
}

// ChunkUpdated implements terrain.MeshSink.
func (s *Store) ChunkUpdated(coord terrain.ChunkCoord, mesh *terrain.Mesh) {
	s.meshes[coord] = mesh
	s.updates++
}

// ChunkRemoved implements terrain.MeshSink.
func (s *Store) ChunkRemoved(coord terrain.ChunkCoord) {
	delete(s.meshes, coord)
}

// Mesh returns the latest mesh of a chunk.
func (s *Store) Mesh(coord terrain.ChunkCoord) (*terrain.Mesh, bool) {
	m, ok := s.meshes[coord]
	return m, ok
}

// Updates counts received mesh updates.
func (s *Store) Updates() int {
	return s.updates
}

// Coords returns the stored chunk coordinates sorted by Z, then X.
func (s *Store) Coords() []terrain.ChunkCoord {
	coords := make([]terrain.ChunkCoord, 0, len(s.meshes))
	for c := range s.meshes {
		coords = append(coords, c)
	}
	sort.Slice(coords, func(i, j int) bool {
		if coords[i].Z != coords[j].Z {
			return coords[i].Z < coords[j].Z
		}
		return coords[i].X < coords[j].X
	})
	return coords
}
