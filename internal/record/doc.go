// Package record implements the fixed-width serialization format shared by
// every persisted entity in sterling: credentials, profile posts, timeline
// posts and follow relations.
//
// # Overview
//
// All records are newline-free text of a fixed byte width determined by the
// record kind and the configured field widths. Records are concatenated in
// shard files with no delimiters, so a record's offset is always a multiple
// of its kind's slot size and any record can be located by arithmetic alone.
//
// # Record layouts
//
// Field boundaries are purely positional:
//
//	credential     ┌─┬──────────┬──────────┐
//	               │a│ username │ password │
//	               └─┴──────────┴──────────┘
//	profile_post   ┌─┬──────────┬──────────┬──────┐
//	               │a│ username │timestamp │ text │
//	               └─┴──────────┴──────────┴──────┘
//	timeline_post  ┌─┬──────────┬──────────┬──────────┬──────┐
//	               │a│ username │  author  │timestamp │ text │
//	               └─┴──────────┴──────────┴──────────┴──────┘
//	relation       ┌─┬──────────┬─┬──────────┐
//	               │a│  first   │d│  second  │
//	               └─┴──────────┴─┴──────────┘
//
// where "a" is the one-byte active flag ('1' live, '0' tombstoned) and "d"
// is the relation direction ('>' outbound, '<' inbound).
//
// # Padding
//
// Variable-content fields (usernames, passwords, text) are left-padded with
// the filler byte '~' up to their configured width. The filler may never
// appear in legitimate field content; encoding rejects values that contain
// it so that stripping the padding at decode time is unambiguous. Values
// longer than their field width are rejected outright, never truncated.
//
// # Partial matching
//
// Lookups and in-place updates never decode whole records. Instead a filter
// names a subset of fields; each named field is re-encoded with the same
// padding rule used at write time and compared against the corresponding
// byte range of the candidate record. Omitted fields are wildcards. This is
// what lets "any post by user X" be answered with two byte comparisons.
package record
