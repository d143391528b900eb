// Package shard maps usernames to shard files. It is the routing half of
// sterling's indexing-by-convention: all of a user's records of one kind
// live in exactly one file, selected by a pure function of the username,
// so lookups never consult an index.
//
// # Routing
//
// The route of a username for a kind is the sum of the username's code
// points reduced modulo the kind's configured shard count. The same
// username always lands in the same shard, which the backward scan engine
// depends on for correctness. Different usernames landing in the same
// shard is not a collision to resolve: co-locating many users per file is
// the intended space/speed trade.
//
// # Layout
//
// Shard files live flat in one storage root, named <kind>_<index>.txt with
// indices 0..count-1 per kind, and are pre-created empty before first use.
// Shard counts are fixed for the life of the data: changing a count after
// records exist silently reroutes usernames to different files and
// corrupts every lookup, so counts travel inside the immutable
// configuration alongside the field widths.
package shard
