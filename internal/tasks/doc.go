// Package tasks orchestrates the export pipeline with real-time progress reporting.
//
// # Core Operation
//
// [ExportEngine.Run] performs one full export run:
//
//  1. Resolve the requested playlists against the library snapshot
//     - Explicitly ignored names are dropped unconditionally
//     - Playlists resolving to zero eligible tracks are dropped as empty
//  2. Compute the desired destination state and the copy plan
//     - Destination path collisions abort before any mutation
//  3. Write playlist files (fully rewritten every run)
//  4. Reconcile the playlist root, then the music root
//  5. Execute the scheduled copies on a bounded worker pool
//
// Repeated runs converge the destination to exactly the desired state:
// nothing extra is left behind, nothing required is missing, and unchanged
// files are not re-copied.
//
// # Progress Reporting
//
// All phases emit non-blocking [ProgressUpdate] values containing phase,
// step counters, messages, and optional data for advanced UI rendering.
// Updates use select with default to prevent blocking.
//
// # Dry Runs
//
// With [Options.DryRun] every mutating action becomes a no-op that still
// participates in count reporting, so the resulting [models.SyncSummary]
// matches what a real run would have applied.
package tasks
