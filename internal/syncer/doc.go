// Package syncer implements the destination reconciliation core: track
// selection, copy planning, tree cleanup, and copy execution.
//
// The destination tree is the only durable state. Each run recomputes the
// desired file set from the library snapshot, diffs it against what exists
// on disk, and applies the minimal set of deletions and copies to converge.
// All destructive operations are bounded to the scoped roots passed in by
// the caller; the roots themselves are never deleted.
//
// Mutating operations go through the [Mutator] interface so a dry run can
// replace every mkdir, write, delete, and copy with a no-op that still
// participates in count reporting.
package syncer
