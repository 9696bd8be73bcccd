// Package editor provides the painting tools that modify a document's
// active layer.
package editor

import (
	"fmt"
	"strings"

	"github.com/chazu/voxie/pkg/voxel"
)

// Tool enumerates the editing tools. The set is closed; each tool carries
// its presentation and its effect on a volume.
type Tool int

const (
	Paintbrush Tool = iota // fills a sphere
	Eraser                 // clears a sphere
)

// Tools lists every tool in toolbar order.
var Tools = []Tool{Paintbrush, Eraser}

// Shortcut is a single-key keyboard shortcut without modifiers.
type Shortcut struct {
	Key string `json:"key"`
}

func (t Tool) String() string {
	switch t {
	case Paintbrush:
		return "paintbrush"
	case Eraser:
		return "eraser"
	default:
		return fmt.Sprintf("Tool(%d)", int(t))
	}
}

// Icon returns the icon font glyph for the toolbar.
func (t Tool) Icon() string {
	switch t {
	case Paintbrush:
		return "\uf1fc"
	case Eraser:
		return "\uf12d"
	}
	return ""
}

// Tooltip returns the human-readable tool name.
func (t Tool) Tooltip() string {
	switch t {
	case Paintbrush:
		return "Paintbrush"
	case Eraser:
		return "Eraser"
	}
	return ""
}

// Shortcut returns the key that selects the tool.
func (t Tool) Shortcut() Shortcut {
	switch t {
	case Paintbrush:
		return Shortcut{Key: "B"}
	case Eraser:
		return Shortcut{Key: "E"}
	}
	return Shortcut{}
}

// ToolForKey returns the tool bound to key, ignoring case.
func ToolForKey(key string) (Tool, bool) {
	for _, t := range Tools {
		if strings.EqualFold(t.Shortcut().Key, key) {
			return t, true
		}
	}
	return 0, false
}

// Apply runs the tool on v with a spherical brush.
func (t Tool) Apply(v *voxel.Volume, at voxel.Coord, radius float32) error {
	switch t {
	case Paintbrush:
		return v.PaintSphere(at, radius)
	case Eraser:
		brush := voxel.New()
		if err := brush.PaintSphere(at, radius); err != nil {
			return err
		}
		v.Difference(brush)
		return nil
	}
	return fmt.Errorf("editor: unknown tool %s", t)
}
