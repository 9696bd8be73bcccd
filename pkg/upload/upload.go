// Package upload packs an extracted mesh into the fixed-capacity vertex and
// index buffers a GPU renderer uploads each frame.
package upload

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/chazu/voxie/pkg/surface"
)

// DefaultCapacity is the size of each upload buffer in bytes.
const DefaultCapacity = 1 << 20

// ErrMeshCapacityExceeded is returned when a mesh does not fit the buffers.
var ErrMeshCapacityExceeded = errors.New("mesh capacity exceeded")

// CapacityError reports which buffer overflowed and by how much.
type CapacityError struct {
	Buffer   string // "vertex" or "index"
	Required int
	Capacity int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("upload: %s buffer needs %d bytes, capacity is %d: %v",
		e.Buffer, e.Required, e.Capacity, ErrMeshCapacityExceeded)
}

func (e *CapacityError) Unwrap() error {
	return ErrMeshCapacityExceeded
}

// Buffers holds little-endian vertex and index data ready for upload.
// Each vertex is position then normal, three float32 each.
type Buffers struct {
	Vertex     []byte
	Index      []byte
	IndexCount int
}

// Check reports whether m fits in buffers of the given capacity without
// packing it.
func Check(m *surface.Mesh, capacity int) error {
	if need := m.VertexBytes(); need > capacity {
		return &CapacityError{Buffer: "vertex", Required: need, Capacity: capacity}
	}
	if need := m.IndexBytes(); need > capacity {
		return &CapacityError{Buffer: "index", Required: need, Capacity: capacity}
	}
	return nil
}

// Pack serializes m. It never truncates: a mesh that does not fit yields a
// *CapacityError and no buffers.
func Pack(m *surface.Mesh, capacity int) (*Buffers, error) {
	if err := Check(m, capacity); err != nil {
		return nil, err
	}

	b := &Buffers{
		Vertex:     make([]byte, 0, m.VertexBytes()),
		Index:      make([]byte, 0, m.IndexBytes()),
		IndexCount: len(m.Indices),
	}
	for _, v := range m.Vertices {
		for _, f := range v.Position {
			b.Vertex = binary.LittleEndian.AppendUint32(b.Vertex, math.Float32bits(f))
		}
		for _, f := range v.Normal {
			b.Vertex = binary.LittleEndian.AppendUint32(b.Vertex, math.Float32bits(f))
		}
	}
	for _, i := range m.Indices {
		b.Index = binary.LittleEndian.AppendUint32(b.Index, i)
	}
	return b, nil
}
