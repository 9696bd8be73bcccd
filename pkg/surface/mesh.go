package surface

import (
	"fmt"

	"github.com/chewxy/math32"
)

// VertexStride is the size in bytes of one packed vertex: position then
// normal, three float32 each.
const VertexStride = 24

// IndexStride is the size in bytes of one packed index.
const IndexStride = 4

// Vertex is a mesh vertex. Normal is the unnormalized sum of the unit
// normals of every face touching the vertex.
type Vertex struct {
	Position [3]float32 `json:"position"`
	Normal   [3]float32 `json:"normal"`
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex `json:"vertices"`
	Indices  []uint32 `json:"indices"` // [i0,i1,i2, ...] triangles
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0 && len(m.Indices) == 0
}

// VertexBytes returns the size of the packed vertex buffer.
func (m *Mesh) VertexBytes() int {
	return len(m.Vertices) * VertexStride
}

// IndexBytes returns the size of the packed index buffer.
func (m *Mesh) IndexBytes() int {
	return len(m.Indices) * IndexStride
}

// Validate checks that the index list describes whole triangles and only
// references existing vertices.
func (m *Mesh) Validate() error {
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("surface: index count %d is not a multiple of 3", len(m.Indices))
	}
	n := uint32(len(m.Vertices))
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("surface: index %d references vertex %d of %d", i, idx, n)
		}
	}
	return nil
}

// NormalizedNormals returns unit-length copies of the accumulated vertex
// normals. Zero normals stay zero.
func (m *Mesh) NormalizedNormals() [][3]float32 {
	out := make([][3]float32, len(m.Vertices))
	for i, v := range m.Vertices {
		n := v.Normal
		l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
		if l == 0 {
			continue
		}
		out[i] = [3]float32{n[0] / l, n[1] / l, n[2] / l}
	}
	return out
}

// Flatten returns positions and normals as flat [x0,y0,z0, x1,...] arrays.
// When normalize is set the normals are scaled to unit length.
func (m *Mesh) Flatten(normalize bool) (positions, normals []float32) {
	positions = make([]float32, 0, len(m.Vertices)*3)
	normals = make([]float32, 0, len(m.Vertices)*3)

	var unit [][3]float32
	if normalize {
		unit = m.NormalizedNormals()
	}
	for i, v := range m.Vertices {
		positions = append(positions, v.Position[0], v.Position[1], v.Position[2])
		n := v.Normal
		if normalize {
			n = unit[i]
		}
		normals = append(normals, n[0], n[1], n[2])
	}
	return positions, normals
}
