// Package storage implements the backward scan engine, the only code in
// sterling that performs raw file I/O. It treats a shard file as an array
// of fixed-size slots and scans from the highest offset (most recently
// appended record) toward the lowest.
//
// # Overview
//
// Shard files are append-only: a "delete" never removes bytes, it overwrites
// the one-byte active flag at the head of a slot. Because every record of a
// kind has the same width, the engine needs no index structure; it locates
// records purely by arithmetic over the file size.
//
// # Operations
//
//	FindFirst  - backward scan, stop at the first slot the predicate accepts
//	Collect    - backward scan, gather matching slots most-recent-first,
//	             optionally bounded by a limit
//	FlipActive - backward scan, overwrite the active byte of every matching
//	             slot, return how many were modified
//	Append     - append exactly one whole slot at the end of the file
//
// The backward order is a workload decision: the hot records (newest posts,
// current relation state) sit near the tail, so interactive reads usually
// terminate long before offset zero even though the worst case is still a
// full-file scan.
//
// # Invariants
//
// The slot size must evenly divide the file size at all times. An append
// writes a whole slot; a flip changes one byte in place. Any observed
// partial-slot remainder means the file was damaged outside the engine and
// every operation aborts with ErrCorruptShard rather than guessing an
// alignment.
//
// Zero matches is never an engine error: FindFirst reports not-found,
// Collect returns an empty slice, FlipActive returns a zero count. Whether
// an empty result is a failure is the caller's call, case by case.
//
// # Concurrency model
//
// All access to one shard file is serialized behind a mutex scoped to that
// file's path, so within a shard, scans observe records in strict
// reverse-append order. Nothing coordinates operations that span multiple
// shards; a sequence touching two shards can be observed half-applied
// (see the social package for where that matters).
package storage
