// Package resolver implements the import resolution pipeline for agent
// bodies.
//
// Resolution runs in three phases:
//
//  1. Parse: the directive package scans the body and returns an ordered
//     directive list. Directives inside code fences or inline code spans
//     are never produced, with the single exception of executable fences,
//     which are recognized only at top-level fence starts.
//  2. Resolve: each directive is dispatched concurrently under a
//     fixed-capacity limit (DefaultConcurrency). File imports recurse back
//     into the pipeline with the imported file's directory as the new base;
//     glob, symbol, URL, command, and fence directives do not recurse.
//  3. Inject: resolved replacements are spliced into the original body in
//     descending index order, so earlier offsets stay valid and the result
//     is deterministic regardless of completion order.
//
// # Cycle Detection
//
// Every file import resolves to its canonical path (symlinks followed)
// before being opened. The ImportStack carries the chain of canonical paths
// currently being expanded; pushing a path already on the stack fails with
// an error naming the full chain. The stack is passed by value into each
// recursion, so sibling resolutions never observe each other.
//
// # Resource Limits
//
//   - Each imported file is bounded by MaxInputSize.
//   - Directly imported binaries are an error; glob imports skip them.
//   - Glob bundles are bounded by the resolved model context window.
//   - Commands and fences are bounded by the shellexec timeout and output
//     cap.
//   - Concurrent I/O is bounded by the resolver's concurrency limit.
//
// # Progress
//
// Live command and fence directives report start/update/finish events to an
// optional Progress sink (the TTY dashboard). The sink is presentation
// only: it cannot affect directive ordering, output capture, or exit codes.
package resolver
