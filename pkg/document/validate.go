package document

import (
	"fmt"

	"github.com/google/uuid"
)

// ValidationSeverity indicates whether a validation finding blocks meshing
// or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks meshing
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// ValidationError describes a single validation finding.
type ValidationError struct {
	LayerID  uuid.UUID          // which layer has the problem (nil UUID if document-level)
	Layer    string             // layer name at validation time
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
}

func (e ValidationError) Error() string {
	if e.LayerID == uuid.Nil {
		return fmt.Sprintf("[%s] %s", e.Severity, e.Message)
	}
	return fmt.Sprintf("[%s] layer %q: %s", e.Severity, e.Layer, e.Message)
}

// Validate checks the document's structure and returns every finding. An
// empty slice means the document is valid. Validate never mutates d.
func Validate(d *Document) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateLayers(d)...)
	errs = append(errs, validateNames(d)...)
	errs = append(errs, validateBlendOrder(d)...)
	return errs
}

// Errors returns only the blocking findings.
func Errors(findings []ValidationError) []ValidationError {
	var out []ValidationError
	for _, f := range findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// validateLayers checks per-layer invariants.
func validateLayers(d *Document) []ValidationError {
	var errs []ValidationError
	seen := make(map[uuid.UUID]bool)
	for _, l := range d.Layers {
		if l == nil {
			errs = append(errs, ValidationError{Message: "nil layer in stack", Severity: SeverityError})
			continue
		}
		if seen[l.ID] {
			errs = append(errs, layerError(l, "duplicate layer ID"))
		}
		seen[l.ID] = true
		if l.Volume == nil {
			errs = append(errs, layerError(l, "layer has no volume"))
		}
		if !l.Blend.Valid() {
			errs = append(errs, layerError(l, fmt.Sprintf("invalid blend mode %s", l.Blend)))
		}
	}
	return errs
}

// validateNames checks that names are unique, non-empty, and indexed.
func validateNames(d *Document) []ValidationError {
	var errs []ValidationError
	names := make(map[string]int)
	for _, l := range d.Layers {
		if l == nil {
			continue
		}
		if l.Name == "" {
			errs = append(errs, layerError(l, "layer has an empty name"))
			continue
		}
		names[l.Name]++
		if names[l.Name] == 2 {
			errs = append(errs, layerError(l, "layer name is not unique"))
		}
		if id, ok := d.NameIndex[l.Name]; !ok || id != l.ID {
			errs = append(errs, layerError(l, "layer name missing from name index"))
		}
	}
	for name, id := range d.NameIndex {
		if d.Get(id) == nil {
			errs = append(errs, ValidationError{
				Message:  fmt.Sprintf("name index entry %q references a missing layer", name),
				Severity: SeverityError,
			})
		}
	}
	return errs
}

// validateBlendOrder warns about visible difference layers that have no
// visible union layer below them, since they cannot remove anything.
func validateBlendOrder(d *Document) []ValidationError {
	var errs []ValidationError
	unioned := false
	for _, l := range d.VisibleLayers() {
		if l == nil {
			continue
		}
		switch l.Blend {
		case Union:
			unioned = true
		case Difference:
			if !unioned {
				errs = append(errs, ValidationError{
					LayerID:  l.ID,
					Layer:    l.Name,
					Message:  "difference layer has nothing below it to remove from",
					Severity: SeverityWarning,
				})
			}
		}
	}
	return errs
}

func layerError(l *Layer, msg string) ValidationError {
	return ValidationError{LayerID: l.ID, Layer: l.Name, Message: msg, Severity: SeverityError}
}
