package voxel

import (
	"errors"
	"fmt"
)

var (
	// ErrCoordinateOutOfRange is returned when a coordinate lies outside [0, Size).
	ErrCoordinateOutOfRange = errors.New("coordinate out of range")

	// ErrInvalidRange is returned when a box has min greater than max on some axis.
	ErrInvalidRange = errors.New("invalid range")

	// ErrInvalidRadius is returned for negative, NaN or infinite sphere radii.
	ErrInvalidRadius = errors.New("invalid radius")
)

// CoordError describes which operation rejected which coordinate.
type CoordError struct {
	Op    string
	Coord Coord
	Err   error
}

func (e *CoordError) Error() string {
	return fmt.Sprintf("voxel: %s %s: %v", e.Op, e.Coord, e.Err)
}

func (e *CoordError) Unwrap() error {
	return e.Err
}

func outOfRange(op string, c Coord) error {
	return &CoordError{Op: op, Coord: c, Err: ErrCoordinateOutOfRange}
}
