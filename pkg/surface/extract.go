// Package surface extracts a renderable triangle mesh from the occupancy
// data of a voxel volume.
//
// Extraction places one vertex at the center of every boundary cell (a unit
// cell whose eight corner voxels are neither all set nor all empty) and then
// emits a quad for every pair of axis-adjacent voxels with differing
// occupancy, connecting the four boundary cells that surround the pair.
package surface

import (
	"sync"

	"github.com/chazu/voxie/pkg/voxel"
)

const (
	n     = voxel.Size
	cells = n * n * n
)

// cellGrids holds scratch lookup tables mapping a cell to its vertex index.
var cellGrids = sync.Pool{
	New: func() any {
		g := make([]uint32, cells)
		return &g
	},
}

// cellIndex flattens a cell coordinate into the lookup table.
func cellIndex(c [3]int) int {
	return c[2]*n*n + c[1]*n + c[0]
}

// Extract builds the boundary surface of v. It is a pure function of the
// volume's bits: calling it twice on an unmodified volume yields identical
// output. Normals are accumulated, not normalized.
func Extract(v *voxel.Volume) *Mesh {
	gp := cellGrids.Get().(*[]uint32)
	defer cellGrids.Put(gp)
	grid := *gp

	m := &Mesh{
		Vertices: []Vertex{},
		Indices:  []uint32{},
	}
	placeVertices(v, grid, m)
	for axis := 0; axis < 3; axis++ {
		emitFaces(v, grid, m, axis)
	}
	return m
}

// placeVertices emits a vertex for every boundary cell and records its index
// in grid. Slots of non-boundary cells are left untouched and may hold
// values from a previous extraction; emitFaces never reads them.
func placeVertices(v *voxel.Volume, grid []uint32, m *Mesh) {
	for z := 0; z < n-1; z++ {
		for y := 0; y < n-1; y++ {
			for x := 0; x < n-1; x++ {
				count := v.Sample(x, y, z) +
					v.Sample(x+1, y, z) +
					v.Sample(x+1, y+1, z) +
					v.Sample(x, y+1, z) +
					v.Sample(x, y, z+1) +
					v.Sample(x+1, y, z+1) +
					v.Sample(x+1, y+1, z+1) +
					v.Sample(x, y+1, z+1)
				if count == 0 || count == 8 {
					continue
				}
				grid[cellIndex([3]int{x, y, z})] = uint32(len(m.Vertices))
				m.Vertices = append(m.Vertices, Vertex{
					Position: [3]float32{float32(x) + 0.5, float32(y) + 0.5, float32(z) + 0.5},
				})
			}
		}
	}
}

// sweepOrder gives the (outer, middle) loop axes of each face sweep; the
// swept axis is always innermost. It fixes the order of the index stream.
var sweepOrder = [3][2]int{
	{2, 1}, // x: z, y
	{2, 0}, // y: z, x
	{1, 0}, // z: y, x
}

// emitFaces sweeps the volume along axis, emitting a quad wherever a voxel
// and its neighbour one step further along the axis differ. The two
// perpendicular axes are taken cyclically: x→(y,z), y→(z,x), z→(x,y).
func emitFaces(v *voxel.Volume, grid []uint32, m *Mesh, axis int) {
	p := (axis + 1) % 3
	q := (axis + 2) % 3

	sample := func(c [3]int) uint64 {
		return v.Sample(c[0], c[1], c[2])
	}

	outer, middle := sweepOrder[axis][0], sweepOrder[axis][1]

	for oi := 1; oi < n-1; oi++ {
		for mi := 1; mi < n-1; mi++ {
			for ai := 0; ai < n-1; ai++ {
				var c [3]int
				c[axis], c[outer], c[middle] = ai, oi, mi

				next := c
				next[axis]++
				s0, s1 := sample(c), sample(next)
				if s0 == s1 {
					continue
				}

				cell := func(dp, dq int) uint32 {
					k := c
					k[p] += dp
					k[q] += dq
					return grid[cellIndex(k)]
				}
				i0 := cell(-1, -1)
				i1 := cell(-1, 0)
				i2 := cell(0, 0)
				i3 := cell(0, -1)

				// The quad faces away from the occupied side.
				var normal [3]float32
				if s0 < s1 {
					normal[axis] = -1
					m.Indices = append(m.Indices, i0, i1, i2, i2, i3, i0)
				} else {
					normal[axis] = 1
					m.Indices = append(m.Indices, i0, i3, i2, i2, i1, i0)
				}

				for _, i := range [4]uint32{i0, i1, i2, i3} {
					vn := &m.Vertices[i].Normal
					vn[0] += normal[0]
					vn[1] += normal[1]
					vn[2] += normal[2]
				}
			}
		}
	}
}
