// Package scanner walks a project tree and produces the document sequence
// for one corpus build.
//
// # Filtering
//
// A scan is configured with values, not subtypes: an extension allow-list,
// glob exclude patterns, and an include predicate that also prunes whole
// directories. Pruned directories are never descended into, which matters on
// large trees with .godot caches or addons directories.
//
//	docs, err := scanner.Scan(ctx, "/path/to/project", scanner.GodotConfig())
//
// # Error Handling
//
// A single unreadable or binary file never aborts a scan; it is logged and
// skipped. Only failures on the root itself (missing directory, permission
// error) fail the whole operation.
//
// # Ordering
//
// Documents are produced in directory traversal order. The order is not
// meaningful but is stable within one build, which the corpus alignment
// invariant depends on. Files are read concurrently, but results are slotted
// by traversal position so concurrency never reorders the output.
package scanner
