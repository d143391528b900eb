package record

import (
	"fmt"
	"strings"
)

// Codec serializes and deserializes records against one immutable set of
// field widths. Multiple codecs with different widths can coexist, which
// tests rely on; nothing in this package is process-global.
type Codec struct {
	w Widths
}

// NewCodec validates the widths and returns a codec bound to them.
func NewCodec(w Widths) (*Codec, error) {
	if w.Username <= 0 || w.Password <= 0 || w.Text <= 0 {
		return nil, fmt.Errorf("record: all field widths must be positive, got %+v", w)
	}
	return &Codec{w: w}, nil
}

// Widths returns the widths the codec was built with.
func (c *Codec) Widths() Widths { return c.w }

// SlotSize returns the fixed byte width of one serialized record of kind k.
func (c *Codec) SlotSize(k Kind) (int, error) { return c.w.SlotSize(k) }

// pad left-pads value with the filler byte up to width. It rejects values
// that already contain the filler (unpadding would be ambiguous) and values
// longer than the field width (no truncation, fail fast).
func pad(value string, width int) (string, error) {
	if strings.ContainsRune(value, Filler) {
		return "", fmt.Errorf("%w: %q", ErrFieldHasFiller, value)
	}
	if len(value) > width {
		return "", fmt.Errorf("%w: %q exceeds %d bytes", ErrFieldTooLong, value, width)
	}
	return strings.Repeat(string(Filler), width-len(value)) + value, nil
}

// unpad strips the filler prefix added by pad.
func unpad(value string) string {
	return strings.TrimLeft(value, string(Filler))
}

func flagByte(active bool) byte {
	if active {
		return '1'
	}
	return '0'
}

func parseFlag(b byte) (bool, error) {
	switch b {
	case '1':
		return true, nil
	case '0':
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrBadFlag, b)
}

// validTimestamp reports whether ts is exactly ten decimal digits.
// Timestamps are carried as their literal text everywhere so that decoding
// never reinterprets leading zeros.
func validTimestamp(ts string) bool {
	if len(ts) != TimestampWidth {
		return false
	}
	for i := 0; i < len(ts); i++ {
		if ts[i] < '0' || ts[i] > '9' {
			return false
		}
	}
	return true
}

// EncodeCredential serializes r into its fixed slot size.
func (c *Codec) EncodeCredential(r Credential) ([]byte, error) {
	username, err := pad(r.Username, c.w.Username)
	if err != nil {
		return nil, fmt.Errorf("credential username: %w", err)
	}
	password, err := pad(r.Password, c.w.Password)
	if err != nil {
		return nil, fmt.Errorf("credential password: %w", err)
	}
	return []byte(string(flagByte(r.Active)) + username + password), nil
}

// DecodeCredential slices b at the credential field offsets and strips the
// padding from the content fields.
func (c *Codec) DecodeCredential(b []byte) (Credential, error) {
	slot, _ := c.w.SlotSize(KindCredential)
	if len(b) != slot {
		return Credential{}, fmt.Errorf("credential: %w: got %d, want %d", ErrRecordLength, len(b), slot)
	}
	active, err := parseFlag(b[0])
	if err != nil {
		return Credential{}, fmt.Errorf("credential: %w", err)
	}
	return Credential{
		Active:   active,
		Username: unpad(string(b[1 : 1+c.w.Username])),
		Password: unpad(string(b[1+c.w.Username:])),
	}, nil
}

// EncodeProfilePost serializes r into its fixed slot size.
func (c *Codec) EncodeProfilePost(r ProfilePost) ([]byte, error) {
	if !validTimestamp(r.Timestamp) {
		return nil, fmt.Errorf("profile post: %w: %q", ErrBadTimestamp, r.Timestamp)
	}
	username, err := pad(r.Username, c.w.Username)
	if err != nil {
		return nil, fmt.Errorf("profile post username: %w", err)
	}
	text, err := pad(r.Text, c.w.Text)
	if err != nil {
		return nil, fmt.Errorf("profile post text: %w", err)
	}
	return []byte(string(flagByte(r.Active)) + username + r.Timestamp + text), nil
}

// DecodeProfilePost slices b at the profile post field offsets.
func (c *Codec) DecodeProfilePost(b []byte) (ProfilePost, error) {
	slot, _ := c.w.SlotSize(KindProfilePost)
	if len(b) != slot {
		return ProfilePost{}, fmt.Errorf("profile post: %w: got %d, want %d", ErrRecordLength, len(b), slot)
	}
	active, err := parseFlag(b[0])
	if err != nil {
		return ProfilePost{}, fmt.Errorf("profile post: %w", err)
	}
	tsStart := 1 + c.w.Username
	return ProfilePost{
		Active:    active,
		Username:  unpad(string(b[1:tsStart])),
		Timestamp: string(b[tsStart : tsStart+TimestampWidth]),
		Text:      unpad(string(b[tsStart+TimestampWidth:])),
	}, nil
}

// EncodeTimelinePost serializes r into its fixed slot size.
func (c *Codec) EncodeTimelinePost(r TimelinePost) ([]byte, error) {
	if !validTimestamp(r.Timestamp) {
		return nil, fmt.Errorf("timeline post: %w: %q", ErrBadTimestamp, r.Timestamp)
	}
	username, err := pad(r.Username, c.w.Username)
	if err != nil {
		return nil, fmt.Errorf("timeline post username: %w", err)
	}
	author, err := pad(r.Author, c.w.Username)
	if err != nil {
		return nil, fmt.Errorf("timeline post author: %w", err)
	}
	text, err := pad(r.Text, c.w.Text)
	if err != nil {
		return nil, fmt.Errorf("timeline post text: %w", err)
	}
	return []byte(string(flagByte(r.Active)) + username + author + r.Timestamp + text), nil
}

// DecodeTimelinePost slices b at the timeline post field offsets.
func (c *Codec) DecodeTimelinePost(b []byte) (TimelinePost, error) {
	slot, _ := c.w.SlotSize(KindTimelinePost)
	if len(b) != slot {
		return TimelinePost{}, fmt.Errorf("timeline post: %w: got %d, want %d", ErrRecordLength, len(b), slot)
	}
	active, err := parseFlag(b[0])
	if err != nil {
		return TimelinePost{}, fmt.Errorf("timeline post: %w", err)
	}
	authorStart := 1 + c.w.Username
	tsStart := authorStart + c.w.Username
	return TimelinePost{
		Active:    active,
		Username:  unpad(string(b[1:authorStart])),
		Author:    unpad(string(b[authorStart:tsStart])),
		Timestamp: string(b[tsStart : tsStart+TimestampWidth]),
		Text:      unpad(string(b[tsStart+TimestampWidth:])),
	}, nil
}

// EncodeRelation serializes r into its fixed slot size.
func (c *Codec) EncodeRelation(r Relation) ([]byte, error) {
	if r.Direction != Outbound && r.Direction != Inbound {
		return nil, fmt.Errorf("relation: %w: %q", ErrBadDirection, r.Direction)
	}
	first, err := pad(r.First, c.w.Username)
	if err != nil {
		return nil, fmt.Errorf("relation first username: %w", err)
	}
	second, err := pad(r.Second, c.w.Username)
	if err != nil {
		return nil, fmt.Errorf("relation second username: %w", err)
	}
	return []byte(string(flagByte(r.Active)) + first + string(r.Direction) + second), nil
}

// DecodeRelation slices b at the relation field offsets.
func (c *Codec) DecodeRelation(b []byte) (Relation, error) {
	slot, _ := c.w.SlotSize(KindRelation)
	if len(b) != slot {
		return Relation{}, fmt.Errorf("relation: %w: got %d, want %d", ErrRecordLength, len(b), slot)
	}
	active, err := parseFlag(b[0])
	if err != nil {
		return Relation{}, fmt.Errorf("relation: %w", err)
	}
	dir := Direction(b[1+c.w.Username])
	if dir != Outbound && dir != Inbound {
		return Relation{}, fmt.Errorf("relation: %w: %q", ErrBadDirection, dir)
	}
	return Relation{
		Active:    active,
		First:     unpad(string(b[1 : 1+c.w.Username])),
		Direction: dir,
		Second:    unpad(string(b[2+c.w.Username:])),
	}, nil
}
