package editor

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/google/uuid"

	"github.com/chazu/voxie/pkg/document"
	"github.com/chazu/voxie/pkg/voxel"
)

// ErrNoActiveLayer is returned when painting without a usable active layer.
var ErrNoActiveLayer = errors.New("no active layer")

// State is the editor's tool selection.
type State struct {
	Tool        Tool      `json:"tool"`
	BrushRadius float32   `json:"brush_radius"`
	ActiveLayer uuid.UUID `json:"active_layer"`
}

// NewState returns a state with the paintbrush selected.
func NewState(radius float32) *State {
	return &State{Tool: Paintbrush, BrushRadius: radius}
}

// SelectByShortcut switches to the tool bound to key. It reports whether a
// tool matched.
func (s *State) SelectByShortcut(key string) bool {
	t, ok := ToolForKey(key)
	if ok {
		s.Tool = t
	}
	return ok
}

// SetBrushRadius changes the radius used by Paint. Negative, NaN and
// infinite radii are rejected and leave the brush unchanged.
func (s *State) SetBrushRadius(radius float32) error {
	if radius < 0 || math32.IsNaN(radius) || math32.IsInf(radius, 0) {
		return fmt.Errorf("editor: brush radius %v: %w", radius, voxel.ErrInvalidRadius)
	}
	s.BrushRadius = radius
	return nil
}

// Paint applies the current tool at c on the active layer of doc.
func (s *State) Paint(doc *document.Document, c voxel.Coord) error {
	l := doc.Get(s.ActiveLayer)
	if l == nil || l.Volume == nil {
		return fmt.Errorf("editor: %s at %s: %w", s.Tool, c, ErrNoActiveLayer)
	}
	if err := s.Tool.Apply(l.Volume, c, s.BrushRadius); err != nil {
		return fmt.Errorf("editor: %s on layer %q: %w", s.Tool, l.Name, err)
	}
	doc.Version++
	return nil
}
