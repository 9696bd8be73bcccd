// Package document holds the ordered layer stack of a voxel model and folds
// it into a composite volume for meshing.
package document

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/chazu/voxie/pkg/voxel"
)

var (
	// ErrLayerNotFound is returned when an operation names a missing layer.
	ErrLayerNotFound = errors.New("layer not found")

	// ErrDuplicateLayer is returned when a layer name is already taken.
	ErrDuplicateLayer = errors.New("duplicate layer name")
)

// Document is an ordered stack of layers. Order matters: a difference layer
// only removes what the layers before it have added.
type Document struct {
	Layers    []*Layer             `json:"layers"`
	NameIndex map[string]uuid.UUID `json:"name_index"`
	Version   uint64               `json:"version"`
}

// New creates an empty document.
func New() *Document {
	return &Document{
		NameIndex: make(map[string]uuid.UUID),
	}
}

// AddLayer appends a new empty layer on top of the stack.
func (d *Document) AddLayer(name string, blend BlendMode) (*Layer, error) {
	if name == "" {
		return nil, fmt.Errorf("document: add layer: name must not be empty")
	}
	if !blend.Valid() {
		return nil, fmt.Errorf("document: add layer %q: invalid blend mode %s", name, blend)
	}
	if _, ok := d.NameIndex[name]; ok {
		return nil, fmt.Errorf("document: add layer %q: %w", name, ErrDuplicateLayer)
	}
	l := NewLayer(name, blend)
	d.Layers = append(d.Layers, l)
	d.NameIndex[name] = l.ID
	d.Version++
	return l, nil
}

// Lookup returns the layer with the given name, or nil.
func (d *Document) Lookup(name string) *Layer {
	id, ok := d.NameIndex[name]
	if !ok {
		return nil
	}
	return d.Get(id)
}

// MustLookup returns the layer with the given name, or panics.
func (d *Document) MustLookup(name string) *Layer {
	l := d.Lookup(name)
	if l == nil {
		panic(fmt.Sprintf("document: no layer named %q", name))
	}
	return l
}

// Get returns the layer with the given ID, or nil.
func (d *Document) Get(id uuid.UUID) *Layer {
	l, ok := lo.Find(d.Layers, func(l *Layer) bool { return l != nil && l.ID == id })
	if !ok {
		return nil
	}
	return l
}

// Index returns the stack position of the layer, or -1.
func (d *Document) Index(id uuid.UUID) int {
	_, i, ok := lo.FindIndexOf(d.Layers, func(l *Layer) bool { return l != nil && l.ID == id })
	if !ok {
		return -1
	}
	return i
}

// RemoveLayer deletes a layer from the stack.
func (d *Document) RemoveLayer(id uuid.UUID) error {
	i := d.Index(id)
	if i < 0 {
		return fmt.Errorf("document: remove layer %s: %w", id, ErrLayerNotFound)
	}
	delete(d.NameIndex, d.Layers[i].Name)
	d.Layers = append(d.Layers[:i], d.Layers[i+1:]...)
	d.Version++
	return nil
}

// MoveLayer moves a layer to position to, shifting the layers in between.
func (d *Document) MoveLayer(id uuid.UUID, to int) error {
	from := d.Index(id)
	if from < 0 {
		return fmt.Errorf("document: move layer %s: %w", id, ErrLayerNotFound)
	}
	if to < 0 || to >= len(d.Layers) {
		return fmt.Errorf("document: move layer %s: position %d out of range [0, %d)", id, to, len(d.Layers))
	}
	l := d.Layers[from]
	rest := append(d.Layers[:from:from], d.Layers[from+1:]...)
	d.Layers = append(rest[:to:to], append([]*Layer{l}, rest[to:]...)...)
	d.Version++
	return nil
}

// RenameLayer changes a layer's display name.
func (d *Document) RenameLayer(id uuid.UUID, name string) error {
	l := d.Get(id)
	if l == nil {
		return fmt.Errorf("document: rename layer %s: %w", id, ErrLayerNotFound)
	}
	if name == "" {
		return fmt.Errorf("document: rename layer %s: name must not be empty", id)
	}
	if other, ok := d.NameIndex[name]; ok && other != id {
		return fmt.Errorf("document: rename layer %q: %w", name, ErrDuplicateLayer)
	}
	delete(d.NameIndex, l.Name)
	l.Name = name
	d.NameIndex[name] = id
	d.Version++
	return nil
}

// SetVisible shows or hides a layer.
func (d *Document) SetVisible(id uuid.UUID, visible bool) error {
	l := d.Get(id)
	if l == nil {
		return fmt.Errorf("document: set visible %s: %w", id, ErrLayerNotFound)
	}
	l.Visible = visible
	d.Version++
	return nil
}

// VisibleLayers returns the visible layers in stack order.
func (d *Document) VisibleLayers() []*Layer {
	return lo.Filter(d.Layers, func(l *Layer, _ int) bool { return l != nil && l.Visible })
}

// LayerCount returns the total number of layers.
func (d *Document) LayerCount() int {
	return len(d.Layers)
}

// Composite folds every visible layer, bottom to top, into a fresh volume.
// The result is scratch state owned by the caller; layer volumes are never
// modified.
func (d *Document) Composite() *voxel.Volume {
	return lo.Reduce(d.VisibleLayers(), func(acc *voxel.Volume, l *Layer, _ int) *voxel.Volume {
		if l.Volume != nil {
			l.Blend.Apply(acc, l.Volume)
		}
		return acc
	}, voxel.New())
}
