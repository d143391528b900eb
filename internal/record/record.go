package record

import "errors"

// Filler pads variable-content fields up to their fixed width. It is
// reserved: no legitimate username, password or post text may contain it.
const Filler = '~'

// TimestampWidth is the fixed byte width of a serialized timestamp,
// formatted as a 10-digit decimal number of seconds since the Unix epoch.
const TimestampWidth = 10

// Validation and lookup errors surfaced by the codec.
var (
	// ErrFieldTooLong is returned when a field value exceeds the fixed
	// width configured for it. Values are never truncated.
	ErrFieldTooLong = errors.New("field value exceeds its fixed width")

	// ErrFieldHasFiller is returned when a field value contains the
	// filler byte, which would make unpadding ambiguous.
	ErrFieldHasFiller = errors.New("field value contains the filler byte")

	// ErrBadTimestamp is returned when a timestamp is not exactly ten
	// decimal digits.
	ErrBadTimestamp = errors.New("timestamp must be ten decimal digits")

	// ErrBadDirection is returned when a relation direction is neither
	// '>' nor '<'.
	ErrBadDirection = errors.New("relation direction must be '>' or '<'")

	// ErrBadFlag is returned when an active-flag byte is neither '1'
	// nor '0'.
	ErrBadFlag = errors.New("active flag byte must be '1' or '0'")

	// ErrRecordLength is returned when a serialized record does not
	// have its kind's exact slot size.
	ErrRecordLength = errors.New("serialized record has the wrong length")

	// ErrUnknownKind is returned when a Kind is not one of the four
	// declared record kinds.
	ErrUnknownKind = errors.New("unknown record kind")
)

// Kind identifies one of the four record kinds. Each kind has its own shard
// files, slot size and field layout.
type Kind int

const (
	KindCredential Kind = iota
	KindProfilePost
	KindTimelinePost
	KindRelation
)

// Kinds lists the four declared record kinds in a stable order, for callers
// that iterate over every kind (shard file creation, validation).
var Kinds = [...]Kind{KindCredential, KindProfilePost, KindTimelinePost, KindRelation}

// String returns the kind's name as used in shard file names.
func (k Kind) String() string {
	switch k {
	case KindCredential:
		return "credential"
	case KindProfilePost:
		return "profile_post"
	case KindTimelinePost:
		return "timeline_post"
	case KindRelation:
		return "relation"
	}
	return "unknown"
}

// Direction marks which way a relation record points. A single logical
// "A follows B" edge is stored twice: outbound in A's shard and inbound
// in B's shard, so both follower and friend listings are single-shard scans.
type Direction byte

const (
	Outbound Direction = '>' // first follows second
	Inbound  Direction = '<' // second follows first
)

// Widths holds the configured maximum byte widths of the variable-content
// fields. A Widths value is immutable once handed to a Codec or Router;
// changing widths after data exists corrupts every stored offset.
type Widths struct {
	Username int `yaml:"username"`
	Password int `yaml:"password"`
	Text     int `yaml:"text"`
}

// SlotSize returns the fixed byte width of one serialized record of kind k.
func (w Widths) SlotSize(k Kind) (int, error) {
	switch k {
	case KindCredential:
		return 1 + w.Username + w.Password, nil
	case KindProfilePost:
		return 1 + w.Username + TimestampWidth + w.Text, nil
	case KindTimelinePost:
		return 1 + 2*w.Username + TimestampWidth + w.Text, nil
	case KindRelation:
		return 1 + 2*w.Username + 1, nil
	}
	return 0, ErrUnknownKind
}

// Credential is an account record. Identity: username. At most one record
// per username is active at a time; inactive duplicates remain as history.
type Credential struct {
	Active   bool
	Username string
	Password string
}

// ProfilePost is a post as stored in its author's profile shard.
// Identity: (username, timestamp).
type ProfilePost struct {
	Active    bool
	Username  string
	Timestamp string
	Text      string
}

// TimelinePost is a denormalized copy of a ProfilePost stored in a
// follower's timeline shard, one per (owner, post) pair where the owner
// follows the author.
type TimelinePost struct {
	Active    bool
	Username  string // timeline owner
	Author    string
	Timestamp string
	Text      string
}

// Relation is one physical half of a follow edge, stored in the shard of
// its first username.
type Relation struct {
	Active    bool
	First     string
	Direction Direction
	Second    string
}
