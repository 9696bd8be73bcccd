// Package voxel implements the dense occupancy volume used by every layer
// of a document. A Volume is a fixed cube of Size voxels per axis stored as
// one 64-bit word per (y, z) column, where bit x of the word is the voxel at
// (x, y, z).
package voxel
