package voxel

import (
	"fmt"
	"math/bits"

	"github.com/chewxy/math32"
)

// Size is the edge length of every volume in voxels.
const Size = 64

// Coord addresses a single voxel. Valid coordinates lie in [0, Size).
type Coord struct {
	X, Y, Z int
}

func (c Coord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// Add returns c offset by d.
func (c Coord) Add(d Coord) Coord {
	return Coord{X: c.X + d.X, Y: c.Y + d.Y, Z: c.Z + d.Z}
}

// InBounds reports whether every component of c lies in [0, Size).
func (c Coord) InBounds() bool {
	return inRange(c.X) && inRange(c.Y) && inRange(c.Z)
}

func inRange(v int) bool {
	return v >= 0 && v < Size
}

// Volume is a dense Size×Size×Size occupancy grid. The zero value is an
// empty volume ready to use.
type Volume struct {
	data [Size * Size]uint64
}

// New returns an empty volume.
func New() *Volume {
	return &Volume{}
}

// column returns the index of the word holding the (y, z) column.
func column(y, z int) int {
	return z*Size + y
}

// Read returns the occupancy bit (0 or 1) at c.
func (v *Volume) Read(c Coord) (uint64, error) {
	if !c.InBounds() {
		return 0, outOfRange("read", c)
	}
	return v.Sample(c.X, c.Y, c.Z), nil
}

// Occupied reports whether the voxel at c is set. Coordinates outside the
// volume are never occupied.
func (v *Volume) Occupied(c Coord) bool {
	return v.Sample(c.X, c.Y, c.Z) == 1
}

// Sample returns the occupancy bit at (x, y, z), treating every position
// outside the volume as empty.
func (v *Volume) Sample(x, y, z int) uint64 {
	if !inRange(x) || !inRange(y) || !inRange(z) {
		return 0
	}
	return (v.data[column(y, z)] >> uint(x)) & 1
}

// Set writes a single voxel.
func (v *Volume) Set(c Coord, on bool) error {
	if !c.InBounds() {
		return outOfRange("set", c)
	}
	if on {
		v.data[column(c.Y, c.Z)] |= 1 << uint(c.X)
	} else {
		v.data[column(c.Y, c.Z)] &^= 1 << uint(c.X)
	}
	return nil
}

// Union sets every voxel that is set in other.
func (v *Volume) Union(other *Volume) {
	for i := range v.data {
		v.data[i] |= other.data[i]
	}
}

// Difference clears every voxel that is set in other.
func (v *Volume) Difference(other *Volume) {
	for i := range v.data {
		v.data[i] &^= other.data[i]
	}
}

// Intersect clears every voxel that is not set in other.
func (v *Volume) Intersect(other *Volume) {
	for i := range v.data {
		v.data[i] &= other.data[i]
	}
}

// PaintCube sets every voxel with x in [min.X, max.X), y in [min.Y, max.Y]
// and z in [min.Z, max.Z]. The x bound is exclusive and may equal Size; the
// y and z bounds are inclusive.
func (v *Volume) PaintCube(min, max Coord) error {
	if min.X < 0 || max.X > Size || !inRange(min.Y) || !inRange(max.Y) || !inRange(min.Z) || !inRange(max.Z) {
		if !min.InBounds() {
			return outOfRange("paint cube", min)
		}
		return outOfRange("paint cube", max)
	}
	if min.X > max.X || min.Y > max.Y || min.Z > max.Z {
		return fmt.Errorf("voxel: paint cube %s..%s: %w", min, max, ErrInvalidRange)
	}

	// A shift by Size yields zero, so maxMask covers the whole word when
	// max.X == Size.
	minMask := uint64(1)<<uint(min.X) - 1
	maxMask := uint64(1)<<uint(max.X) - 1
	mask := maxMask - minMask

	for z := min.Z; z <= max.Z; z++ {
		for y := min.Y; y <= max.Y; y++ {
			v.data[column(y, z)] |= mask
		}
	}
	return nil
}

// PaintSphere sets every voxel at center+o where o is an integer offset
// with |o| <= radius. Offsets are measured between lattice points, not voxel
// centers. Voxels falling outside the volume are skipped.
func (v *Volume) PaintSphere(center Coord, radius float32) error {
	if !center.InBounds() {
		return outOfRange("paint sphere", center)
	}
	if radius < 0 || math32.IsNaN(radius) || math32.IsInf(radius, 0) {
		return fmt.Errorf("voxel: paint sphere radius %v: %w", radius, ErrInvalidRadius)
	}

	// No offset beyond Size can land inside the volume, so the reach is
	// clamped before converting to int.
	reach := Size
	if radius < Size {
		reach = int(math32.Ceil(radius))
	}
	lo := Coord{X: max(center.X-reach, 0), Y: max(center.Y-reach, 0), Z: max(center.Z-reach, 0)}
	hi := Coord{X: min(center.X+reach, Size-1), Y: min(center.Y+reach, Size-1), Z: min(center.Z+reach, Size-1)}

	for z := lo.Z; z <= hi.Z; z++ {
		dz := z - center.Z
		for y := lo.Y; y <= hi.Y; y++ {
			dy := y - center.Y
			for x := lo.X; x <= hi.X; x++ {
				dx := x - center.X
				if math32.Sqrt(float32(dx*dx+dy*dy+dz*dz)) > radius {
					continue
				}
				v.data[column(y, z)] |= 1 << uint(x)
			}
		}
	}
	return nil
}

// Clear empties the volume.
func (v *Volume) Clear() {
	v.data = [Size * Size]uint64{}
}

// Clone returns an independent copy of v.
func (v *Volume) Clone() *Volume {
	c := *v
	return &c
}

// Equal reports whether v and other hold identical bits.
func (v *Volume) Equal(other *Volume) bool {
	return v.data == other.data
}

// IsEmpty reports whether no voxel is set.
func (v *Volume) IsEmpty() bool {
	for _, w := range v.data {
		if w != 0 {
			return false
		}
	}
	return true
}

// Count returns the number of set voxels.
func (v *Volume) Count() int {
	n := 0
	for _, w := range v.data {
		n += bits.OnesCount64(w)
	}
	return n
}
