// Package social implements the domain operations of the record store:
// credential management, post fan-out and relation toggling. It composes
// the record codec, the shard router and the backward scan engine; it
// performs no file I/O of its own.
//
// # Overview
//
// Every operation follows the same shape: resolve the shard path through
// the router, build a partial-match predicate through the codec, and hand
// both to the scan engine to read, append or tombstone fixed-width records.
//
// # Cross-entity rules
//
// Fan-out on write: saving a post appends one record to the author's
// profile shard and a denormalized copy to the timeline shard of every
// active follower. One profile write plus F follower writes buys an
// O(1)-shard timeline read.
//
// Cascade on deactivation: deleting a credential first deletes every
// profile post the user owns, each of which tombstones its timeline copies
// across all followers, and only then tombstones the credential itself.
//
// Revive before append: re-following after an unfollow flips the existing
// tombstoned relation records back to active instead of appending new
// ones, so repeated toggling cannot grow the relation shards.
//
// # Atomicity
//
// Operations that touch one shard are serialized by the engine's per-path
// lock. Operations that touch several shards (follow, unfollow, fan-out,
// the deactivation cascade) are not atomic: writes happen in a fixed,
// documented order and any mid-sequence I/O error is surfaced immediately,
// but a crash between writes leaves a one-sided edge or a partial fan-out.
// That hazard is inherent to the file-per-shard design and is demonstrated
// by tests rather than papered over.
package social
