package document

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/chazu/voxie/pkg/voxel"
)

// BlendMode selects how a layer is folded into the composite.
type BlendMode int

const (
	Union      BlendMode = iota // add the layer's voxels
	Difference                  // remove the layer's voxels from what is below
)

func (b BlendMode) String() string {
	switch b {
	case Union:
		return "union"
	case Difference:
		return "difference"
	default:
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
}

// ParseBlendMode converts "union" or "difference" to a BlendMode.
func ParseBlendMode(s string) (BlendMode, error) {
	switch s {
	case "union":
		return Union, nil
	case "difference":
		return Difference, nil
	}
	return 0, fmt.Errorf("invalid blend mode %q, expected union or difference", s)
}

// Valid reports whether b is one of the defined modes.
func (b BlendMode) Valid() bool {
	return b == Union || b == Difference
}

// Apply folds src into dst.
func (b BlendMode) Apply(dst, src *voxel.Volume) {
	switch b {
	case Union:
		dst.Union(src)
	case Difference:
		dst.Difference(src)
	}
}

// Layer is one named, blendable volume of a document. The layer owns its
// volume exclusively.
type Layer struct {
	ID      uuid.UUID     `json:"id"`
	Name    string        `json:"name"`
	Visible bool          `json:"visible"`
	Blend   BlendMode     `json:"blend"`
	Volume  *voxel.Volume `json:"-"`
}

// NewLayer returns a visible layer with an empty volume.
func NewLayer(name string, blend BlendMode) *Layer {
	return &Layer{
		ID:      uuid.New(),
		Name:    name,
		Visible: true,
		Blend:   blend,
		Volume:  voxel.New(),
	}
}
