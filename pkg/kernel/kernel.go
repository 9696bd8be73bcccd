// Package kernel defines the abstract geometry kernel interface used to
// stamp analytic solids into voxel layers. Implementations (sdfx) provide
// solid modeling and boolean operations behind this interface; Voxelize
// turns any solid into occupancy bits.
package kernel

import (
	"fmt"
	"math"

	"github.com/chazu/voxie/pkg/voxel"
)

// Solid is an opaque handle to a geometry kernel solid.
// Implementations wrap their internal representation.
type Solid interface {
	// BoundingBox returns the axis-aligned bounding box.
	BoundingBox() (min, max [3]float64)

	// Inside reports whether p lies inside or on the surface of the solid.
	Inside(p [3]float64) bool
}

// Kernel is the abstract geometry kernel interface.
type Kernel interface {
	// Primitives
	Box(x, y, z float64) Solid
	Sphere(radius float64) Solid
	Cylinder(height, radius float64, segments int) Solid

	// Boolean operations
	Union(a, b Solid) Solid
	Difference(a, b Solid) Solid
	Intersection(a, b Solid) Solid

	// Transforms
	Translate(s Solid, x, y, z float64) Solid
	Rotate(s Solid, x, y, z float64) Solid // Euler angles in degrees
}

// Voxelize sets every voxel of v whose lattice point lies inside s and
// returns how many lattice points were inside. Only the part of the solid's
// bounding box that overlaps the volume is sampled.
func Voxelize(s Solid, v *voxel.Volume) (int, error) {
	bbMin, bbMax := s.BoundingBox()

	var lo, hi [3]int
	for i := 0; i < 3; i++ {
		if math.IsNaN(bbMin[i]) || math.IsNaN(bbMax[i]) {
			return 0, nil
		}
		lo[i] = max(0, int(math.Ceil(math.Max(bbMin[i], -1))))
		hi[i] = min(voxel.Size-1, int(math.Floor(math.Min(bbMax[i], voxel.Size))))
		if lo[i] > hi[i] {
			return 0, nil
		}
	}

	n := 0
	for z := lo[2]; z <= hi[2]; z++ {
		for y := lo[1]; y <= hi[1]; y++ {
			for x := lo[0]; x <= hi[0]; x++ {
				if !s.Inside([3]float64{float64(x), float64(y), float64(z)}) {
					continue
				}
				if err := v.Set(voxel.Coord{X: x, Y: y, Z: z}, true); err != nil {
					return n, fmt.Errorf("kernel: voxelize: %w", err)
				}
				n++
			}
		}
	}
	return n, nil
}
