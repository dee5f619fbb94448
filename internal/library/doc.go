// Package library loads an iTunes XML property list into an immutable
// [models.LibrarySnapshot].
//
// The snapshot is read once at the start of a run and never mutated. Any
// missing required key or unparsable structure is reported as
// [shared.ErrLibraryFormat] before reconciliation begins; the export
// pipeline never runs on partial metadata.
package library
