// Package models defines domain entities for the extunes export pipeline.
//
// The package contains two categories of types:
//
// 1. Library snapshot types, read once per run and never mutated:
//   - [Track] : one media item with source location, size, and type metadata
//   - [Playlist] : a named, ordered list of track references with optional attributes
//   - [LibrarySnapshot] : the full track universe and playlist list plus library metadata
//
// 2. Run reporting types:
//   - [SyncSummary] : the externally observable counts of one export run
//   - [Run] : a persisted run summary implementing the [Model] interface
//
// Playlist flags are computed by a pure function over the playlist's optional
// fields, enumerated in a fixed table; see [Playlist.Flags].
package models
