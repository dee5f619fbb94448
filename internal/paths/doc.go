// Package paths rewrites source library paths into destination-safe paths.
//
// All functions are pure and deterministic: the same inputs always produce
// the same output, and nothing here touches the filesystem. Anchoring is
// enforced by [Normalize]; callers never place library-controlled absolute
// paths under a destination root directly.
package paths
