package record

// Flag is the tri-state active constraint of a filter: match only live
// records, only tombstoned ones, or both.
type Flag int

const (
	FlagAny Flag = iota
	FlagActive
	FlagInactive
)

// CredentialFilter names the credential fields a match must agree on.
// Empty strings are wildcards.
type CredentialFilter struct {
	Active   Flag
	Username string
	Password string
}

// ProfilePostFilter names the profile post fields a match must agree on.
// Empty strings are wildcards.
type ProfilePostFilter struct {
	Active    Flag
	Username  string
	Timestamp string
	Text      string
}

// TimelinePostFilter names the timeline post fields a match must agree on.
// Empty strings are wildcards.
type TimelinePostFilter struct {
	Active    Flag
	Username  string
	Author    string
	Timestamp string
	Text      string
}

// RelationFilter names the relation fields a match must agree on. Empty
// strings are wildcards, as is a zero Direction.
type RelationFilter struct {
	Active    Flag
	First     string
	Direction Direction
	Second    string
}

// matchFlag compares a record's leading flag byte against a tri-state
// constraint.
func matchFlag(b byte, f Flag) bool {
	switch f {
	case FlagActive:
		return b == '1'
	case FlagInactive:
		return b == '0'
	}
	return true
}

// matchPadded re-encodes value with the write-time padding rule and compares
// it against one byte range of a serialized record. A value that cannot be
// encoded at all (too long, contains the filler) can never have been stored,
// so it matches nothing.
func matchPadded(window []byte, value string, width int) bool {
	padded, err := pad(value, width)
	if err != nil {
		return false
	}
	return string(window) == padded
}

// MatchCredential reports whether serialized record b satisfies filter f.
// Fields omitted from the filter are not examined; no full decode happens.
func (c *Codec) MatchCredential(b []byte, f CredentialFilter) bool {
	slot, _ := c.w.SlotSize(KindCredential)
	if len(b) != slot || !matchFlag(b[0], f.Active) {
		return false
	}
	if f.Username != "" && !matchPadded(b[1:1+c.w.Username], f.Username, c.w.Username) {
		return false
	}
	if f.Password != "" && !matchPadded(b[1+c.w.Username:], f.Password, c.w.Password) {
		return false
	}
	return true
}

// MatchProfilePost reports whether serialized record b satisfies filter f.
func (c *Codec) MatchProfilePost(b []byte, f ProfilePostFilter) bool {
	slot, _ := c.w.SlotSize(KindProfilePost)
	if len(b) != slot || !matchFlag(b[0], f.Active) {
		return false
	}
	tsStart := 1 + c.w.Username
	if f.Username != "" && !matchPadded(b[1:tsStart], f.Username, c.w.Username) {
		return false
	}
	if f.Timestamp != "" && string(b[tsStart:tsStart+TimestampWidth]) != f.Timestamp {
		return false
	}
	if f.Text != "" && !matchPadded(b[tsStart+TimestampWidth:], f.Text, c.w.Text) {
		return false
	}
	return true
}

// MatchTimelinePost reports whether serialized record b satisfies filter f.
func (c *Codec) MatchTimelinePost(b []byte, f TimelinePostFilter) bool {
	slot, _ := c.w.SlotSize(KindTimelinePost)
	if len(b) != slot || !matchFlag(b[0], f.Active) {
		return false
	}
	authorStart := 1 + c.w.Username
	tsStart := authorStart + c.w.Username
	if f.Username != "" && !matchPadded(b[1:authorStart], f.Username, c.w.Username) {
		return false
	}
	if f.Author != "" && !matchPadded(b[authorStart:tsStart], f.Author, c.w.Username) {
		return false
	}
	if f.Timestamp != "" && string(b[tsStart:tsStart+TimestampWidth]) != f.Timestamp {
		return false
	}
	if f.Text != "" && !matchPadded(b[tsStart+TimestampWidth:], f.Text, c.w.Text) {
		return false
	}
	return true
}

// MatchRelation reports whether serialized record b satisfies filter f.
func (c *Codec) MatchRelation(b []byte, f RelationFilter) bool {
	slot, _ := c.w.SlotSize(KindRelation)
	if len(b) != slot || !matchFlag(b[0], f.Active) {
		return false
	}
	if f.First != "" && !matchPadded(b[1:1+c.w.Username], f.First, c.w.Username) {
		return false
	}
	if f.Direction != 0 && b[1+c.w.Username] != byte(f.Direction) {
		return false
	}
	if f.Second != "" && !matchPadded(b[2+c.w.Username:], f.Second, c.w.Username) {
		return false
	}
	return true
}
