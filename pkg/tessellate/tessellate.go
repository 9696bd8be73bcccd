// Package tessellate turns a layered document into the single surface mesh
// the renderer draws. The document is validated, its visible layers are
// composited in order, and the composite is meshed.
package tessellate

import (
	"errors"
	"fmt"

	"github.com/chazu/voxie/pkg/document"
	"github.com/chazu/voxie/pkg/surface"
	"github.com/chazu/voxie/pkg/voxel"
)

// ErrInvalidDocument is wrapped by Tessellate when validation reports a
// blocking finding.
var ErrInvalidDocument = errors.New("invalid document")

// Result is a mesh together with the composite it was extracted from.
type Result struct {
	Composite *voxel.Volume
	Mesh      *surface.Mesh
	Voxels    int
}

// Tessellate composites doc and extracts its surface. A nil document
// yields an empty result. The document is never mutated.
func Tessellate(doc *document.Document) (*Result, error) {
	if doc == nil {
		return &Result{Composite: voxel.New(), Mesh: &surface.Mesh{}}, nil
	}
	if errs := document.Errors(document.Validate(doc)); len(errs) > 0 {
		return nil, fmt.Errorf("tessellate: %w: %v", ErrInvalidDocument, errs[0])
	}

	composite := doc.Composite()
	return &Result{
		Composite: composite,
		Mesh:      surface.Extract(composite),
		Voxels:    composite.Count(),
	}, nil
}
